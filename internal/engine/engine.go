/*
 * Copyright (c) 2026, Gestiona SRL.
 *
 * Gestiona SRL licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package engine evaluates business rules against a single record: it loads
// the tenant's rules in priority order, checks each rule's conditions, and
// applies the matching rules' actions, producing a change report. One bad
// rule never blocks the rest of the run.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/gestiona/business-rules-engine/internal/classifier"
	"github.com/gestiona/business-rules-engine/internal/lookup"
	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/system/log"
)

// RuleRepository supplies the active, prioritized rule list for one tenant
// and rule type.
type RuleRepository interface {
	GetActiveRules(ctx context.Context, tipo model.RuleType, tenantID string) ([]model.Rule, error)
}

// ExecutionRecorder persists audit rows for matched rules. Recording is
// best-effort; failures are logged and never propagate.
type ExecutionRecorder interface {
	RecordExecution(ctx context.Context, record model.ExecutionRecord) error
}

// Outcome classifies what one rule did during a run.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// RuleOutcome is the per-rule entry of the report, in execution order.
type RuleOutcome struct {
	RuleID   string         `json:"ruleId"`
	Codigo   string         `json:"codigo"`
	Nombre   string         `json:"nombre"`
	Outcome  Outcome        `json:"outcome"`
	Error    string         `json:"error,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Actions  []ActionResult `json:"actions,omitempty"`
}

// Change is one field mutation, flattened across rules for audit.
type Change struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"oldValue"`
	NewValue interface{} `json:"newValue"`
	RuleCode string      `json:"ruleCode"`
}

// Report is the terminal output of one engine run.
type Report struct {
	Outcomes     []RuleOutcome          `json:"outcomes"`
	Changes      []Change               `json:"changes"`
	Data         map[string]interface{} `json:"data"`
	RulesApplied int                    `json:"rulesApplied"`
	DuracionMs   int64                  `json:"duracionMs"`
}

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	AITimeout           time.Duration
	ConfidenceThreshold float64
	Recorder            ExecutionRecorder
}

type Engine struct {
	repo                RuleRepository
	store               lookup.Store
	classifier          classifier.Classifier
	recorder            ExecutionRecorder
	aiTimeout           time.Duration
	confidenceThreshold float64
}

func NewEngine(repo RuleRepository, store lookup.Store, clf classifier.Classifier, opts Options) *Engine {
	if opts.AITimeout <= 0 {
		opts.AITimeout = 10 * time.Second
	}
	return &Engine{
		repo:                repo,
		store:               store,
		classifier:          clf,
		recorder:            opts.Recorder,
		aiTimeout:           opts.AITimeout,
		confidenceThreshold: opts.ConfidenceThreshold,
	}
}

// Apply runs every active rule of the given type against the record, in
// priority order, mutating it in place. The only error returned is a failed
// rule-set load; rule and action failures are recorded in the report instead.
func (e *Engine) Apply(ctx context.Context, tipo model.RuleType, tenantID string, record map[string]interface{}) (*Report, error) {
	rules, err := e.repo.GetActiveRules(ctx, tipo, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading rules for type %s: %w", tipo, err)
	}

	logger := log.GetLogger()
	ectx := NewContext(tenantID, record, NewLookupCache(e.store, e.classifier))
	report := &Report{Data: ectx.Data}
	start := time.Now()

	for _, rule := range rules {
		outcome := e.applyRule(ctx, ectx, rule)
		report.Outcomes = append(report.Outcomes, outcome)

		switch outcome.Outcome {
		case OutcomeMatched:
			report.RulesApplied++
			for _, action := range outcome.Actions {
				if action.Changed {
					report.Changes = append(report.Changes, Change{
						Field:    action.Campo,
						OldValue: action.OldValue,
						NewValue: action.NewValue,
						RuleCode: rule.Codigo,
					})
				}
			}
			if rule.Configuracion.StopOnMatch {
				report.DuracionMs = time.Since(start).Milliseconds()
				e.recordExecutions(ctx, ectx, report, rules)
				return report, nil
			}
		case OutcomeError:
			logger.Warn("Rule failed during evaluation",
				log.String("codigo", rule.Codigo), log.String("error", outcome.Error))
		}
	}

	report.DuracionMs = time.Since(start).Milliseconds()
	e.recordExecutions(ctx, ectx, report, rules)
	return report, nil
}

// applyRule evaluates one rule end to end. Panics inside condition or action
// code are contained here so a malformed rule cannot take down the run.
func (e *Engine) applyRule(ctx context.Context, ectx *Context, rule model.Rule) (outcome RuleOutcome) {
	outcome = RuleOutcome{RuleID: rule.ID, Codigo: rule.Codigo, Nombre: rule.Nombre}
	defer func() {
		if r := recover(); r != nil {
			outcome.Outcome = OutcomeError
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	config := rule.Configuracion

	evalData := applyFieldTransforms(ectx.Data, config.TransformacionesCampo)
	matched, warnings := evaluateConditions(evalData, config.Condiciones, config.LogicOperator)
	outcome.Warnings = warnings
	if !matched {
		outcome.Outcome = OutcomeSkipped
		return outcome
	}

	outcome.Outcome = OutcomeMatched
	for _, action := range config.Acciones {
		result := e.applyAction(ctx, ectx, action)
		if result.Err != nil {
			log.GetLogger().Warn("Action failed",
				log.String("codigo", rule.Codigo),
				log.String("campo", action.Campo),
				log.Error(result.Err))
		}
		outcome.Actions = append(outcome.Actions, result)
	}
	return outcome
}

// recordExecutions persists one audit row per matched rule.
func (e *Engine) recordExecutions(ctx context.Context, ectx *Context, report *Report, rules []model.Rule) {
	if e.recorder == nil || report.RulesApplied == 0 {
		return
	}
	byID := make(map[string]model.Rule, len(rules))
	for _, rule := range rules {
		byID[rule.ID] = rule
	}
	for _, outcome := range report.Outcomes {
		if outcome.Outcome != OutcomeMatched {
			continue
		}
		record := model.ExecutionRecord{
			ReglaID:    outcome.RuleID,
			TenantID:   ectx.TenantID,
			Contexto:   string(byID[outcome.RuleID].Tipo),
			Entrada:    ectx.Snapshot,
			Salida:     ectx.Data,
			Exitosa:    true,
			DuracionMs: report.DuracionMs,
		}
		if err := e.recorder.RecordExecution(ctx, record); err != nil {
			log.GetLogger().Warn("Failed to record rule execution",
				log.String("reglaId", outcome.RuleID), log.Error(err))
		}
	}
}

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

package engine

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/system/log"
)

// ActionResult records the effect of a single action on the record. Err never
// aborts the rule or the batch; the field keeps its prior value unless a
// default applied.
type ActionResult struct {
	Campo    string      `json:"campo"`
	OldValue interface{} `json:"oldValue"`
	NewValue interface{} `json:"newValue"`
	Changed  bool        `json:"changed"`
	Err      error       `json:"-"`
}

// applyAction executes one action against the evaluation context and reports
// what it did.
func (e *Engine) applyAction(ctx context.Context, ectx *Context, action model.Action) ActionResult {
	old := ectx.GetPath(action.Campo)
	result := ActionResult{Campo: action.Campo, OldValue: old.Value}

	value, applied, err := e.resolveAction(ctx, ectx, action)
	if err != nil {
		result.Err = err
		if !applied {
			result.NewValue = old.Value
			return result
		}
	}
	if !applied {
		result.NewValue = old.Value
		return result
	}

	ectx.SetPath(action.Campo, value)
	result.NewValue = value
	result.Changed = !old.Found || !reflect.DeepEqual(old.Value, value)
	return result
}

// resolveAction computes the value an action wants to write. applied=false
// means the field is left untouched (a lookup miss with no default).
func (e *Engine) resolveAction(ctx context.Context, ectx *Context, action model.Action) (value interface{}, applied bool, err error) {
	switch action.Operacion {
	case model.ActionSet:
		return e.resolveSet(ectx, action), true, nil
	case model.ActionAppend:
		return e.resolveAppend(ectx, action), true, nil
	case model.ActionCalculate:
		value, err := evaluateFormula(ectx.Data, action.Formula)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	case model.ActionLookup:
		return e.resolveLookup(ctx, ectx, action)
	case model.ActionLookupJSON:
		return e.resolveLookupJSON(ctx, ectx, action)
	case model.ActionLookupChain:
		return e.resolveLookupChain(ctx, ectx, action)
	case model.ActionAILookup:
		return e.resolveAILookup(ctx, ectx, action)
	default:
		return nil, false, fmt.Errorf("unknown operation '%s'", action.Operacion)
	}
}

func (e *Engine) resolveSet(ectx *Context, action model.Action) interface{} {
	if action.ValorCampo != "" {
		return ectx.GetPath(action.ValorCampo).Value
	}
	if template, ok := action.Valor.(string); ok {
		return resolveValue(ectx.Data, template)
	}
	return action.Valor
}

// resolveAppend concatenates onto the current string at campo. The appended
// template resolves against the pre-run snapshot so a rule chain appending
// "{detalle}" twice repeats the original text instead of compounding its own
// output.
func (e *Engine) resolveAppend(ectx *Context, action model.Action) interface{} {
	current := ""
	if existing := ectx.GetPath(action.Campo); existing.Found && existing.Value != nil {
		current = stringify(existing.Value)
	}

	var appended interface{}
	if action.ValorCampo != "" {
		appended = ectx.GetSnapshotPath(action.ValorCampo).Value
	} else if template, ok := action.Valor.(string); ok {
		appended = resolveValue(ectx.Snapshot, template)
	} else {
		appended = action.Valor
	}
	if appended == nil {
		return current
	}
	return current + stringify(appended)
}

func (e *Engine) resolveLookup(ctx context.Context, ectx *Context, action model.Action) (interface{}, bool, error) {
	queryValue := resolveValue(ectx.Data, action.ValorConsulta)
	if isBlank(queryValue) {
		return e.lookupMiss(action, nil)
	}

	filter := map[string]interface{}{action.CampoConsulta: queryValue}
	row, err := ectx.Lookups.FindFirst(ctx, action.Tabla, filter)
	if err != nil {
		return e.lookupMiss(action, err)
	}
	if row == nil {
		return e.lookupMiss(action, nil)
	}
	result := getPath(row, action.CampoResultado)
	if !result.Found || result.Value == nil {
		return e.lookupMiss(action, nil)
	}
	return result.Value, true, nil
}

// resolveLookupJSON matches the query value against a JSON attribute of the
// candidate rows for the given parameter type. Values are normalized (spaces
// and dashes stripped, upper-cased) so a formatted tax ID still matches the
// stored one.
func (e *Engine) resolveLookupJSON(ctx context.Context, ectx *Context, action model.Action) (interface{}, bool, error) {
	queryValue := stringify(orEmpty(resolveValue(ectx.Data, action.ValorConsulta)))

	if special := action.CondicionEspecial; special != nil && special.Tipo == "CUIT_ESPECIAL" {
		if queryValue == "" || queryValue == "0" || strings.Trim(queryValue, "0") == "" {
			if special.CodigoDefault != "" {
				return special.CodigoDefault, true, nil
			}
			return e.lookupMiss(action, nil)
		}
	}

	if queryValue == "" {
		return e.lookupMiss(action, nil)
	}

	filter := map[string]interface{}{"tipo_campo": action.TipoCampo, "activo": true}
	rows, err := ectx.Lookups.FindAll(ctx, action.Tabla, filter)
	if err != nil {
		return e.lookupMiss(action, err)
	}

	wanted := normalizeJSONValue(queryValue)
	for _, row := range rows {
		payload, ok := row["parametros_json"].(map[string]interface{})
		if !ok {
			continue
		}
		candidate, ok := payload[action.CampoJSON]
		if !ok || candidate == nil {
			continue
		}
		if normalizeJSONValue(stringify(candidate)) == wanted {
			result := getPath(row, action.CampoResultado)
			if result.Found && result.Value != nil {
				return result.Value, true, nil
			}
		}
	}
	return e.lookupMiss(action, nil)
}

// resolveLookupChain feeds each hop's result into the next hop's query. A
// broken hop short-circuits straight to the default; it never skips a step.
func (e *Engine) resolveLookupChain(ctx context.Context, ectx *Context, action model.Action) (interface{}, bool, error) {
	current := resolveValue(ectx.Data, action.ValorConsulta)
	if isBlank(current) {
		return e.lookupMiss(action, nil)
	}

	for _, step := range action.Cadena {
		filter := map[string]interface{}{step.CampoConsulta: current}
		for key, value := range step.FiltroAdicional {
			filter[key] = value
		}
		row, err := ectx.Lookups.FindFirst(ctx, step.Tabla, filter)
		if err != nil {
			return e.lookupMiss(action, err)
		}
		if row == nil {
			return e.lookupMiss(action, nil)
		}
		result := getPath(row, step.CampoResultado)
		if !result.Found || result.Value == nil {
			return e.lookupMiss(action, nil)
		}
		current = result.Value
	}
	return current, true, nil
}

// resolveAILookup classifies free-form text through the external classifier.
// Timeouts, errors, and low-confidence answers all degrade to a lookup miss.
func (e *Engine) resolveAILookup(ctx context.Context, ectx *Context, action model.Action) (interface{}, bool, error) {
	input := stringify(orEmpty(resolveValue(ectx.Data, action.ValorConsulta)))
	if input == "" {
		return e.lookupMiss(action, nil)
	}

	classifyCtx, cancel := context.WithTimeout(ctx, e.aiTimeout)
	defer cancel()

	result, err := ectx.Lookups.GetOrClassify(classifyCtx, action.Modelo, action.Prompt, input)
	if err != nil {
		log.GetLogger().Warn("Classification failed, falling back to default",
			log.String("model", action.Modelo), log.Error(err))
		return e.lookupMiss(action, err)
	}
	if result.Value == "" || result.Confidence < e.confidenceThreshold {
		log.GetLogger().Debug("Classification below confidence threshold, falling back to default",
			log.String("model", action.Modelo), log.Float64("confidence", result.Confidence))
		return e.lookupMiss(action, nil)
	}
	return result.Value, true, nil
}

// lookupMiss applies the action's default, or leaves the field untouched when
// no default is configured.
func (e *Engine) lookupMiss(action model.Action, err error) (interface{}, bool, error) {
	if action.ValorDefecto != nil {
		return action.ValorDefecto, true, err
	}
	return nil, false, err
}

func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func orEmpty(value interface{}) interface{} {
	if value == nil {
		return ""
	}
	return value
}

func normalizeJSONValue(value string) string {
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ReplaceAll(value, " ", "")
	return strings.ToUpper(value)
}

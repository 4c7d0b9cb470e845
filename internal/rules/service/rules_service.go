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

// Package service implements the administration operations on business rules
// and keeps the engine's rule cache coherent with them.
package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/rules/store"
	"github.com/gestiona/business-rules-engine/internal/system/errors"
	"github.com/gestiona/business-rules-engine/internal/system/log"
)

// RulesServiceInterface defines the administrative surface over rules and
// tenant links.
type RulesServiceInterface interface {
	ListRules(ctx context.Context, tenantID string) ([]model.Rule, error)
	GetRule(ctx context.Context, id string) (*model.Rule, error)
	CreateRule(ctx context.Context, rule model.Rule) (*model.Rule, error)
	UpdateRule(ctx context.Context, rule model.Rule) (*model.Rule, error)
	DeleteRule(ctx context.Context, id string) error
	SetTenantLink(ctx context.Context, link model.TenantRuleLink) error
	ListTenantLinks(ctx context.Context, tenantID string) ([]model.TenantRuleLink, error)
	RecentExecutions(ctx context.Context, reglaID string, limit int) ([]model.ExecutionRecord, error)
}

// RulesService wires the rule store, the execution audit store, and the
// engine-facing repository cache.
type RulesService struct {
	store      *store.RulesStore
	executions *store.ExecutionStore
	repository *Repository
}

func NewRulesService(rulesStore *store.RulesStore, executions *store.ExecutionStore, repository *Repository) *RulesService {
	return &RulesService{store: rulesStore, executions: executions, repository: repository}
}

func (s *RulesService) ListRules(ctx context.Context, tenantID string) ([]model.Rule, error) {
	rules, err := s.store.ListRules(ctx, tenantID)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileFetchingRules, err)
	}
	return rules, nil
}

func (s *RulesService) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	rule, err := s.store.GetRuleByID(ctx, id)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileFetchingRules, err)
	}
	if rule == nil {
		return nil, errors.NewClientError(errors.ErrRuleNotFound, http.StatusNotFound)
	}
	return rule, nil
}

func (s *RulesService) CreateRule(ctx context.Context, rule model.Rule) (*model.Rule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetRuleByCodigo(ctx, rule.Codigo, rule.TenantID)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileAddingRule, err)
	}
	if existing != nil {
		return nil, errors.NewClientError(errors.ErrRuleCodeExists, http.StatusConflict)
	}

	rule.ID = uuid.New().String()
	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, errors.NewServerError(errors.ErrWhileAddingRule, err)
	}

	s.invalidate(rule)
	log.GetLogger().Info("Business rule created",
		log.String("id", rule.ID), log.String("codigo", rule.Codigo))
	return &rule, nil
}

func (s *RulesService) UpdateRule(ctx context.Context, rule model.Rule) (*model.Rule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetRuleByID(ctx, rule.ID)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileUpdatingRule, err)
	}
	if existing == nil {
		return nil, errors.NewClientError(errors.ErrRuleNotFound, http.StatusNotFound)
	}

	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return nil, errors.NewServerError(errors.ErrWhileUpdatingRule, err)
	}

	// The type may have changed; both the old and new entries go stale.
	s.invalidate(*existing)
	s.invalidate(rule)
	return &rule, nil
}

func (s *RulesService) DeleteRule(ctx context.Context, id string) error {
	existing, err := s.store.GetRuleByID(ctx, id)
	if err != nil {
		return errors.NewServerError(errors.ErrWhileDeletingRule, err)
	}
	if existing == nil {
		return nil
	}

	if err := s.store.DeleteRule(ctx, id); err != nil {
		return errors.NewServerError(errors.ErrWhileDeletingRule, err)
	}
	s.invalidate(*existing)
	return nil
}

// SetTenantLink opts a tenant into (or out of) a global rule.
func (s *RulesService) SetTenantLink(ctx context.Context, link model.TenantRuleLink) error {
	rule, err := s.store.GetRuleByID(ctx, link.ReglaGlobalID)
	if err != nil {
		return errors.NewServerError(errors.ErrWhileUpdatingTenantLink, err)
	}
	if rule == nil {
		return errors.NewClientError(errors.ErrRuleNotFound, http.StatusNotFound)
	}
	if !rule.EsGlobal {
		return errors.NewClientError(errors.ErrGlobalRuleExpected, http.StatusBadRequest)
	}

	if err := s.store.UpsertTenantLink(ctx, link); err != nil {
		return errors.NewServerError(errors.ErrWhileUpdatingTenantLink, err)
	}
	s.repository.Invalidate(rule.Tipo, link.TenantID)
	return nil
}

func (s *RulesService) ListTenantLinks(ctx context.Context, tenantID string) ([]model.TenantRuleLink, error) {
	links, err := s.store.ListTenantLinks(ctx, tenantID)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileFetchingRules, err)
	}
	return links, nil
}

func (s *RulesService) RecentExecutions(ctx context.Context, reglaID string, limit int) ([]model.ExecutionRecord, error) {
	records, err := s.executions.RecentExecutions(ctx, reglaID, limit)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileFetchingRules, err)
	}
	return records, nil
}

func (s *RulesService) invalidate(rule model.Rule) {
	if rule.EsGlobal || rule.TenantID == nil {
		s.repository.InvalidateType(rule.Tipo)
		return
	}
	s.repository.Invalidate(rule.Tipo, *rule.TenantID)
}

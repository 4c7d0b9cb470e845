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

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/rules/provider"
	"github.com/gestiona/business-rules-engine/internal/system/errors"
	"github.com/gestiona/business-rules-engine/internal/system/utils"
)

type RulesHandler struct{}

func NewRulesHandler() *RulesHandler {
	return &RulesHandler{}
}

// extractRuleID returns the path segment after /reglas, if any.
func extractRuleID(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "reglas" {
		return parts[1]
	}
	return ""
}

func isExecutionsPath(path string) bool {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return len(parts) == 3 && parts[0] == "reglas" && parts[2] == "ejecuciones"
}

// HandleRules serves the rule collection: list and create.
func (rh *RulesHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	tenantID := utils.ExtractTenantIdFromPath(r)
	rulesService := provider.NewRuleProvider().GetRulesService()

	switch r.Method {
	case http.MethodGet:
		rules, err := rulesService.ListRules(r.Context(), tenantID)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, rules)

	case http.MethodPost:
		var rule model.Rule
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&rule); err != nil {
			clientError := errors.NewClientError(errors.ErrorMessage{
				Code:        errors.ErrInvalidRuleConfig.Code,
				Message:     errors.ErrInvalidRuleConfig.Message,
				Description: fmt.Sprintf("Invalid request body. %v", err),
			}, http.StatusBadRequest)
			utils.WriteErrorResponse(w, clientError)
			return
		}
		if !rule.EsGlobal && rule.TenantID == nil {
			rule.TenantID = &tenantID
		}
		created, err := rulesService.CreateRule(r.Context(), rule)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusCreated, created)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRule serves a single rule: fetch, update, delete, and its recent
// executions.
func (rh *RulesHandler) HandleRule(w http.ResponseWriter, r *http.Request) {
	id := extractRuleID(r.URL.Path)
	if id == "" {
		http.Error(w, "missing rule id", http.StatusBadRequest)
		return
	}
	rulesService := provider.NewRuleProvider().GetRulesService()

	if isExecutionsPath(r.URL.Path) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		records, err := rulesService.RecentExecutions(r.Context(), id, limit)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, records)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rule, err := rulesService.GetRule(r.Context(), id)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, rule)

	case http.MethodPut:
		var rule model.Rule
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&rule); err != nil {
			clientError := errors.NewClientError(errors.ErrorMessage{
				Code:        errors.ErrInvalidRuleConfig.Code,
				Message:     errors.ErrInvalidRuleConfig.Message,
				Description: fmt.Sprintf("Invalid request body. %v", err),
			}, http.StatusBadRequest)
			utils.WriteErrorResponse(w, clientError)
			return
		}
		rule.ID = id
		updated, err := rulesService.UpdateRule(r.Context(), rule)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := rulesService.DeleteRule(r.Context(), id); err != nil {
			utils.HandleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTenantLinks serves the tenant's opt-ins to global rules.
func (rh *RulesHandler) HandleTenantLinks(w http.ResponseWriter, r *http.Request) {
	tenantID := utils.ExtractTenantIdFromPath(r)
	rulesService := provider.NewRuleProvider().GetRulesService()

	switch r.Method {
	case http.MethodGet:
		links, err := rulesService.ListTenantLinks(r.Context(), tenantID)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, links)

	case http.MethodPut:
		var link model.TenantRuleLink
		if err := json.NewDecoder(r.Body).Decode(&link); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		link.TenantID = tenantID
		if err := rulesService.SetTenantLink(r.Context(), link); err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, link)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

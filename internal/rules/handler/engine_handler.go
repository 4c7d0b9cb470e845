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

	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/rules/provider"
	"github.com/gestiona/business-rules-engine/internal/system/errors"
	"github.com/gestiona/business-rules-engine/internal/system/utils"
)

type EngineHandler struct{}

func NewEngineHandler() *EngineHandler {
	return &EngineHandler{}
}

type applyRequest struct {
	Tipo  model.RuleType         `json:"tipo"`
	Datos map[string]interface{} `json:"datos"`
}

// Apply runs the tenant's rules of the given type against one record and
// returns the mutated record with the change report.
func (eh *EngineHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tenantID := utils.ExtractTenantIdFromPath(r)

	var request applyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		clientError := errors.NewClientError(errors.ErrorMessage{
			Code:        errors.ErrInvalidRuleConfig.Code,
			Message:     errors.ErrInvalidRuleConfig.Message,
			Description: fmt.Sprintf("Invalid request body. %v", err),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}
	if request.Tipo == "" || request.Datos == nil {
		clientError := errors.NewClientError(errors.ErrorMessage{
			Code:        errors.ErrInvalidRuleConfig.Code,
			Message:     errors.ErrInvalidRuleConfig.Message,
			Description: "Fields 'tipo' and 'datos' are required",
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	ruleEngine := provider.NewRuleProvider().GetRuleEngine()
	report, err := ruleEngine.Apply(r.Context(), request.Tipo, tenantID, request.Datos)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, report)
}

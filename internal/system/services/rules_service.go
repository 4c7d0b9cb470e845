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

package services

import (
	"net/http"
	"strings"

	"github.com/gestiona/business-rules-engine/internal/rules/handler"
)

// RulesRoutesService routes the rule administration endpoints.
type RulesRoutesService struct {
	rulesHandler *handler.RulesHandler
}

func NewRulesRoutesService() *RulesRoutesService {

	return &RulesRoutesService{
		rulesHandler: handler.NewRulesHandler(),
	}
}

func (s *RulesRoutesService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/reglas":
		s.rulesHandler.HandleRules(w, r)
	case strings.HasPrefix(path, "/reglas/"):
		s.rulesHandler.HandleRule(w, r)
	case path == "/reglas-globales":
		s.rulesHandler.HandleTenantLinks(w, r)
	default:
		http.NotFound(w, r)
	}
}

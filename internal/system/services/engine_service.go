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

// EngineRoutesService routes the record evaluation endpoint.
type EngineRoutesService struct {
	engineHandler *handler.EngineHandler
}

func NewEngineRoutesService() *EngineRoutesService {

	return &EngineRoutesService{
		engineHandler: handler.NewEngineHandler(),
	}
}

func (s *EngineRoutesService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch path {
	case "/rules-engine/apply":
		s.engineHandler.Apply(w, r)
	default:
		http.NotFound(w, r)
	}
}

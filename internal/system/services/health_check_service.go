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
	"encoding/json"
	"net/http"
)

type HealthCheckService struct{}

func NewHealthCheckService(mux *http.ServeMux) *HealthCheckService {

	instance := &HealthCheckService{}
	mux.HandleFunc("GET /health", instance.handle)

	return instance
}

func (s *HealthCheckService) handle(w http.ResponseWriter, _ *http.Request) {

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

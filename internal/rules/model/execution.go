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

package model

import "time"

// ExecutionRecord is one audit row describing a rule that matched during an
// engine run.
type ExecutionRecord struct {
	ID         string                 `json:"id,omitempty"`
	ReglaID    string                 `json:"reglaId"`
	TenantID   string                 `json:"tenantId"`
	Contexto   string                 `json:"contexto,omitempty"`
	Entrada    map[string]interface{} `json:"entrada"`
	Salida     map[string]interface{} `json:"salida"`
	Exitosa    bool                   `json:"exitosa"`
	DuracionMs int64                  `json:"duracionMs"`
	CreatedAt  time.Time              `json:"createdAt,omitempty"`
}

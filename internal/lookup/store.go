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

package lookup

import "context"

// Store is the reference-data interface consumed by the engine's lookup
// actions. Filter keys may be dot-paths into a joined relation
// ("user.nombre"); the returned row exposes joined relations as nested maps
// under the relation alias.
//
// A missing row is (nil, nil), never an error. Errors are reserved for store
// or network failures.
type Store interface {
	FindFirst(ctx context.Context, table string, filter map[string]interface{}) (map[string]interface{}, error)
	FindAll(ctx context.Context, table string, filter map[string]interface{}) ([]map[string]interface{}, error)
}

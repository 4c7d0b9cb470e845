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

package classifier

import "context"

// Result is the classifier's answer for one input text.
type Result struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Classifier is the external AI classification service consumed by AI_LOOKUP
// actions. Implementations must honor the context deadline; the engine treats
// any error (including deadline exceeded) as a lookup miss.
type Classifier interface {
	Classify(ctx context.Context, modelID, promptID, inputText string) (Result, error)
}

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
	"strings"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
)

// applyFieldTransforms returns a copy of the record with the listed fields
// normalized. The copy is used for condition evaluation only; the record the
// actions mutate keeps its original values.
func applyFieldTransforms(data map[string]interface{}, transforms []model.FieldTransform) map[string]interface{} {
	if len(transforms) == 0 {
		return data
	}
	transformed := deepCopyMap(data)
	for _, transform := range transforms {
		value := getPath(transformed, transform.Campo)
		if !value.Found || value.Value == nil {
			continue
		}
		setPath(transformed, transform.Campo, transformValue(stringify(value.Value), transform.Transformacion))
	}
	return transformed
}

func transformValue(value string, transform model.TransformType) string {
	switch transform {
	case model.TransformRemoveLeadingZeros:
		trimmed := strings.TrimLeft(value, "0")
		if trimmed == "" && value != "" {
			return "0"
		}
		return trimmed
	case model.TransformRemoveTrailingZeros:
		return strings.TrimRight(value, "0")
	case model.TransformTrimSpaces:
		return strings.TrimSpace(value)
	case model.TransformUpperCase:
		return strings.ToUpper(value)
	case model.TransformLowerCase:
		return strings.ToLower(value)
	default:
		return value
	}
}

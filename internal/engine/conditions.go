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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
)

// evaluateConditions evaluates the condition list under the given logic
// operator against the live record. An empty list matches unconditionally.
// Conditions that cannot be evaluated (bad regex, non-numeric comparison)
// count as false and contribute a warning instead of failing the rule.
func evaluateConditions(data map[string]interface{}, conditions []model.Condition, logicOp model.LogicOperator) (bool, []string) {
	if len(conditions) == 0 {
		return true, nil
	}

	var warnings []string
	for _, condition := range conditions {
		result, warning := evaluateCondition(data, condition)
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if logicOp == model.LogicOr {
			if result {
				return true, warnings
			}
		} else if !result {
			// AND short-circuits on the first false condition.
			return false, warnings
		}
	}
	return logicOp != model.LogicOr, warnings
}

func evaluateCondition(data map[string]interface{}, condition model.Condition) (bool, string) {
	fieldValue := getPath(data, condition.Campo)

	// The comparison operand is the valor, with any {a.b} tokens resolved
	// against the record, unless valorCampo points the condition at another
	// field instead.
	var operand interface{} = condition.Valor
	if valorTemplate, ok := condition.Valor.(string); ok {
		operand = resolveValue(data, valorTemplate)
	}
	if condition.ValorCampo != "" {
		operand = getPath(data, condition.ValorCampo).Value
	}

	switch condition.Operador {
	case model.OpIsNull:
		return !fieldValue.Found || fieldValue.Value == nil, ""
	case model.OpIsNotNull:
		return fieldValue.Found && fieldValue.Value != nil, ""
	case model.OpIsEmpty:
		return isEmpty(fieldValue), ""
	case model.OpIsNotEmpty:
		return !isEmpty(fieldValue), ""
	}

	switch condition.Operador {
	case model.OpEquals:
		return looseEquals(fieldValue.Value, operand), ""
	case model.OpNotEquals:
		return !looseEquals(fieldValue.Value, operand), ""
	case model.OpContains:
		return strings.Contains(foldString(fieldValue.Value), foldString(operand)), ""
	case model.OpNotContains:
		return !strings.Contains(foldString(fieldValue.Value), foldString(operand)), ""
	case model.OpStartsWith:
		return strings.HasPrefix(foldString(fieldValue.Value), foldString(operand)), ""
	case model.OpEndsWith:
		return strings.HasSuffix(foldString(fieldValue.Value), foldString(operand)), ""
	case model.OpRegex, model.OpMatches:
		pattern, err := regexp.Compile("(?i)" + stringify(operand))
		if err != nil {
			return false, fmt.Sprintf("invalid regex for field '%s': %v", condition.Campo, err)
		}
		return pattern.MatchString(stringifyOrEmpty(fieldValue)), ""
	case model.OpIn:
		return containsValue(operandList(operand), fieldValue.Value), ""
	case model.OpNotIn:
		return !containsValue(operandList(operand), fieldValue.Value), ""
	case model.OpGreaterThan, model.OpLessThan, model.OpGreaterOrEqual, model.OpLessOrEqual:
		left, leftOk := toFloat(fieldValue.Value)
		right, rightOk := toFloat(operand)
		if !leftOk || !rightOk {
			return false, fmt.Sprintf("non-numeric comparison on field '%s'", condition.Campo)
		}
		switch condition.Operador {
		case model.OpGreaterThan:
			return left > right, ""
		case model.OpLessThan:
			return left < right, ""
		case model.OpGreaterOrEqual:
			return left >= right, ""
		default:
			return left <= right, ""
		}
	default:
		return false, fmt.Sprintf("unknown operator '%s'", condition.Operador)
	}
}

// looseEquals compares case-insensitively for strings and numerically when
// both sides coerce to numbers, so "100" equals 100 and "YPF" equals "ypf".
func looseEquals(left, right interface{}) bool {
	if leftNum, ok := toFloat(left); ok {
		if rightNum, ok := toFloat(right); ok {
			return leftNum == rightNum
		}
	}
	return foldString(left) == foldString(right)
}

func isEmpty(value PathValue) bool {
	if !value.Found || value.Value == nil {
		return true
	}
	switch typed := value.Value.(type) {
	case string:
		return strings.TrimSpace(typed) == ""
	case []interface{}:
		return len(typed) == 0
	case map[string]interface{}:
		return len(typed) == 0
	default:
		return false
	}
}

// operandList turns the valor of IN / NOT_IN into candidates: either a real
// list or a comma-separated string.
func operandList(operand interface{}) []interface{} {
	switch typed := operand.(type) {
	case []interface{}:
		return typed
	case string:
		parts := strings.Split(typed, ",")
		list := make([]interface{}, 0, len(parts))
		for _, p := range parts {
			list = append(list, strings.TrimSpace(p))
		}
		return list
	case nil:
		return nil
	default:
		return []interface{}{typed}
	}
}

func containsValue(candidates []interface{}, value interface{}) bool {
	for _, candidate := range candidates {
		if looseEquals(value, candidate) {
			return true
		}
	}
	return false
}

func foldString(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(stringify(value)))
}

func stringifyOrEmpty(value PathValue) string {
	if !value.Found || value.Value == nil {
		return ""
	}
	return stringify(value.Value)
}

func toFloat(value interface{}) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

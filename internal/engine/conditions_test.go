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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
)

func TestEvaluateCondition(t *testing.T) {
	data := map[string]interface{}{
		"descripcion": "YPF RUTA 9 KM 45",
		"monto":       1500.0,
		"montoTexto":  "1500",
		"moneda":      "ARS",
		"cuit":        nil,
		"detalle":     "  ",
		"limite":      2000.0,
	}

	tests := []struct {
		name      string
		condition model.Condition
		expected  bool
	}{
		{
			name:      "equals is case insensitive",
			condition: model.Condition{Campo: "moneda", Operador: model.OpEquals, Valor: "ars"},
			expected:  true,
		},
		{
			name:      "equals compares numerically across types",
			condition: model.Condition{Campo: "montoTexto", Operador: model.OpEquals, Valor: 1500},
			expected:  true,
		},
		{
			name:      "contains matches a fragment",
			condition: model.Condition{Campo: "descripcion", Operador: model.OpContains, Valor: "ypf"},
			expected:  true,
		},
		{
			name:      "not contains",
			condition: model.Condition{Campo: "descripcion", Operador: model.OpNotContains, Valor: "SHELL"},
			expected:  true,
		},
		{
			name:      "starts with",
			condition: model.Condition{Campo: "descripcion", Operador: model.OpStartsWith, Valor: "YPF"},
			expected:  true,
		},
		{
			name:      "ends with",
			condition: model.Condition{Campo: "descripcion", Operador: model.OpEndsWith, Valor: "km 45"},
			expected:  true,
		},
		{
			name:      "regex",
			condition: model.Condition{Campo: "descripcion", Operador: model.OpRegex, Valor: `ruta \d+`},
			expected:  true,
		},
		{
			name:      "matches behaves as regex",
			condition: model.Condition{Campo: "descripcion", Operador: model.OpMatches, Valor: `^ypf`},
			expected:  true,
		},
		{
			name:      "in accepts a csv list",
			condition: model.Condition{Campo: "moneda", Operador: model.OpIn, Valor: "USD, ARS, EUR"},
			expected:  true,
		},
		{
			name:      "in accepts a real list",
			condition: model.Condition{Campo: "moneda", Operador: model.OpIn, Valor: []interface{}{"USD", "ARS"}},
			expected:  true,
		},
		{
			name:      "not in",
			condition: model.Condition{Campo: "moneda", Operador: model.OpNotIn, Valor: "USD, EUR"},
			expected:  true,
		},
		{
			name:      "is null on a nil field",
			condition: model.Condition{Campo: "cuit", Operador: model.OpIsNull},
			expected:  true,
		},
		{
			name:      "is null on an absent field",
			condition: model.Condition{Campo: "no.existe", Operador: model.OpIsNull},
			expected:  true,
		},
		{
			name:      "is not null",
			condition: model.Condition{Campo: "monto", Operador: model.OpIsNotNull},
			expected:  true,
		},
		{
			name:      "whitespace counts as empty",
			condition: model.Condition{Campo: "detalle", Operador: model.OpIsEmpty},
			expected:  true,
		},
		{
			name:      "is not empty",
			condition: model.Condition{Campo: "descripcion", Operador: model.OpIsNotEmpty},
			expected:  true,
		},
		{
			name:      "greater than coerces strings",
			condition: model.Condition{Campo: "montoTexto", Operador: model.OpGreaterThan, Valor: "1000"},
			expected:  true,
		},
		{
			name:      "less or equal",
			condition: model.Condition{Campo: "monto", Operador: model.OpLessOrEqual, Valor: 1500},
			expected:  true,
		},
		{
			name:      "valorCampo compares against another field",
			condition: model.Condition{Campo: "monto", Operador: model.OpLessThan, ValorCampo: "limite"},
			expected:  true,
		},
		{
			name:      "valorCampo mismatch",
			condition: model.Condition{Campo: "monto", Operador: model.OpGreaterThan, ValorCampo: "limite"},
			expected:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, warning := evaluateCondition(data, tc.condition)
			assert.Empty(t, warning)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestEvaluateConditionWarnings(t *testing.T) {
	data := map[string]interface{}{"descripcion": "YPF", "moneda": "ARS"}

	result, warning := evaluateCondition(data, model.Condition{
		Campo: "descripcion", Operador: model.OpRegex, Valor: "([",
	})
	assert.False(t, result)
	assert.Contains(t, warning, "invalid regex")

	result, warning = evaluateCondition(data, model.Condition{
		Campo: "moneda", Operador: model.OpGreaterThan, Valor: 10,
	})
	assert.False(t, result)
	assert.Contains(t, warning, "non-numeric")
}

func TestEvaluateConditionValorTemplate(t *testing.T) {
	data := map[string]interface{}{
		"moneda":         "ARS",
		"monedaEsperada": "ARS",
		"monto":          1500.0,
		"resumen":        map[string]interface{}{"limite": 2000.0},
	}

	tests := []struct {
		name      string
		condition model.Condition
		expected  bool
	}{
		{
			name:      "valor template resolves to another field before comparison",
			condition: model.Condition{Campo: "moneda", Operador: model.OpEquals, Valor: "{monedaEsperada}"},
			expected:  true,
		},
		{
			name:      "resolved template mismatches a different value",
			condition: model.Condition{Campo: "monto", Operador: model.OpEquals, Valor: "{resumen.limite}"},
			expected:  false,
		},
		{
			name:      "nested template feeds a numeric comparison",
			condition: model.Condition{Campo: "monto", Operador: model.OpLessThan, Valor: "{resumen.limite}"},
			expected:  true,
		},
		{
			name:      "missing token resolves to empty",
			condition: model.Condition{Campo: "moneda", Operador: model.OpEquals, Valor: "{inexistente}"},
			expected:  false,
		},
		{
			name:      "plain string valor passes through untouched",
			condition: model.Condition{Campo: "moneda", Operador: model.OpEquals, Valor: "ARS"},
			expected:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, warning := evaluateCondition(data, tc.condition)
			assert.Empty(t, warning)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestAndShortCircuitsOnFirstFalse(t *testing.T) {
	data := map[string]interface{}{"descripcion": "YPF"}

	conditions := []model.Condition{
		{Campo: "descripcion", Operador: model.OpEquals, Valor: "SHELL"},
		{Campo: "descripcion", Operador: model.OpRegex, Valor: "(["},
	}

	// The broken regex is never reached, so no warning is emitted.
	matched, warnings := evaluateConditions(data, conditions, model.LogicAnd)
	assert.False(t, matched)
	assert.Empty(t, warnings)
}

func TestEvaluateConditionsLogic(t *testing.T) {
	data := map[string]interface{}{"descripcion": "YPF", "monto": 100.0}

	matchYPF := model.Condition{Campo: "descripcion", Operador: model.OpEquals, Valor: "YPF"}
	matchBig := model.Condition{Campo: "monto", Operador: model.OpGreaterThan, Valor: 1000}

	matched, _ := evaluateConditions(data, nil, model.LogicAnd)
	assert.True(t, matched, "empty condition list matches unconditionally")

	matched, _ = evaluateConditions(data, []model.Condition{matchYPF, matchBig}, model.LogicAnd)
	assert.False(t, matched)

	matched, _ = evaluateConditions(data, []model.Condition{matchYPF, matchBig}, model.LogicOr)
	assert.True(t, matched)

	// An unset logic operator defaults to AND.
	matched, _ = evaluateConditions(data, []model.Condition{matchYPF}, "")
	assert.True(t, matched)
}

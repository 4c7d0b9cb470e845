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
)

func TestResolveValue(t *testing.T) {
	data := map[string]interface{}{
		"descripcion": "YPF RUTA 9",
		"monto": map[string]interface{}{
			"total": 1500.0,
		},
		"cuotas": 3.0,
	}

	tests := []struct {
		name     string
		template string
		expected interface{}
	}{
		{
			name:     "plain text passes through",
			template: "sin tokens",
			expected: "sin tokens",
		},
		{
			name:     "single token keeps native type",
			template: "{monto.total}",
			expected: 1500.0,
		},
		{
			name:     "mixed template stringifies",
			template: "Compra {descripcion} por {monto.total}",
			expected: "Compra YPF RUTA 9 por 1500",
		},
		{
			name:     "missing path resolves to empty string",
			template: "ref: {no.existe}!",
			expected: "ref: !",
		},
		{
			name:     "single missing token yields nil",
			template: "{no.existe}",
			expected: nil,
		},
		{
			name:     "fractional amount keeps decimals",
			template: "total {cuotas} cuotas",
			expected: "total 3 cuotas",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, resolveValue(data, tc.template))
		})
	}
}

func TestContextPaths(t *testing.T) {
	data := map[string]interface{}{
		"resumen": map[string]interface{}{
			"numeroTarjeta": "00451234",
		},
	}
	ectx := NewContext("tenant-1", data, nil)

	ectx.SetPath("resumen.numeroTarjeta", "451234")
	ectx.SetPath("contabilidad.cuenta", "600")

	assert.Equal(t, "451234", ectx.GetPath("resumen.numeroTarjeta").Value)
	assert.Equal(t, "600", ectx.GetPath("contabilidad.cuenta").Value)

	// The snapshot keeps the pre-run values even for nested maps.
	assert.Equal(t, "00451234", ectx.GetSnapshotPath("resumen.numeroTarjeta").Value)
	assert.False(t, ectx.GetSnapshotPath("contabilidad.cuenta").Found)
}

func TestGetPathDistinguishesNilFromAbsent(t *testing.T) {
	data := map[string]interface{}{"cuit": nil}

	present := getPath(data, "cuit")
	assert.True(t, present.Found)
	assert.Nil(t, present.Value)

	absent := getPath(data, "otro")
	assert.False(t, absent.Found)
}

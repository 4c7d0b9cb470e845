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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestiona/business-rules-engine/internal/classifier"
	"github.com/gestiona/business-rules-engine/internal/rules/model"
)

func newTestEngine(store *memoryStore, clf classifier.Classifier) *Engine {
	if store == nil {
		store = &memoryStore{}
	}
	return NewEngine(nil, store, clf, Options{AITimeout: 50 * time.Millisecond, ConfidenceThreshold: 0.7})
}

func newTestContext(e *Engine, data map[string]interface{}) *Context {
	return NewContext("tenant-1", data, NewLookupCache(e.store, e.classifier))
}

func TestApplySetAndAppend(t *testing.T) {
	e := newTestEngine(nil, nil)
	ectx := newTestContext(e, map[string]interface{}{
		"descripcion": "YPF RUTA 9",
		"monto":       1500.0,
	})

	set := model.Action{Operacion: model.ActionSet, Campo: "categoria", Valor: "Combustible"}
	result := e.applyAction(context.Background(), ectx, set)
	assert.True(t, result.Changed)
	assert.Equal(t, "Combustible", ectx.GetPath("categoria").Value)

	// Re-applying SET with the same value is a no-op in the change report.
	result = e.applyAction(context.Background(), ectx, set)
	assert.False(t, result.Changed)

	appendAction := model.Action{Operacion: model.ActionAppend, Campo: "observaciones", Valor: "compra {descripcion}; "}
	e.applyAction(context.Background(), ectx, appendAction)
	e.applyAction(context.Background(), ectx, appendAction)
	assert.Equal(t, "compra YPF RUTA 9; compra YPF RUTA 9; ", ectx.GetPath("observaciones").Value)
}

func TestAppendResolvesAgainstSnapshot(t *testing.T) {
	e := newTestEngine(nil, nil)
	ectx := newTestContext(e, map[string]interface{}{"detalle": "original"})

	// A rule mutates the source field, then a later APPEND references it.
	e.applyAction(context.Background(), ectx, model.Action{
		Operacion: model.ActionSet, Campo: "detalle", Valor: "modificado",
	})
	e.applyAction(context.Background(), ectx, model.Action{
		Operacion: model.ActionAppend, Campo: "audit", Valor: "era: {detalle}",
	})
	assert.Equal(t, "era: original", ectx.GetPath("audit").Value)
}

func TestApplySetFromField(t *testing.T) {
	e := newTestEngine(nil, nil)
	ectx := newTestContext(e, map[string]interface{}{
		"resumen": map[string]interface{}{"moneda": "USD"},
	})

	e.applyAction(context.Background(), ectx, model.Action{
		Operacion: model.ActionSet, Campo: "moneda", ValorCampo: "resumen.moneda",
	})
	assert.Equal(t, "USD", ectx.GetPath("moneda").Value)
}

func TestApplyCalculate(t *testing.T) {
	e := newTestEngine(nil, nil)
	ectx := newTestContext(e, map[string]interface{}{"monto": 1000.0})

	result := e.applyAction(context.Background(), ectx, model.Action{
		Operacion: model.ActionCalculate, Campo: "montoConIva", Formula: "{monto} * 1.21",
	})
	require.NoError(t, result.Err)
	assert.InDelta(t, 1210.0, ectx.GetPath("montoConIva").Value, 0.001)

	// Absent fields count as zero.
	result = e.applyAction(context.Background(), ectx, model.Action{
		Operacion: model.ActionCalculate, Campo: "neto", Formula: "{monto} - {descuento}",
	})
	require.NoError(t, result.Err)
	assert.InDelta(t, 1000.0, ectx.GetPath("neto").Value, 0.001)

	// A broken formula records the error and leaves the field alone.
	result = e.applyAction(context.Background(), ectx, model.Action{
		Operacion: model.ActionCalculate, Campo: "neto", Formula: "{monto} *",
	})
	assert.Error(t, result.Err)
	assert.False(t, result.Changed)
	assert.InDelta(t, 1000.0, ectx.GetPath("neto").Value, 0.001)
}

func TestApplyLookup(t *testing.T) {
	store := &memoryStore{tables: map[string][]map[string]interface{}{
		"parametros_maestros": {
			{"codigo": "YPF", "nombre": "YPF S.A.", "tipo_campo": "proveedor"},
		},
	}}
	e := newTestEngine(store, nil)
	ectx := newTestContext(e, map[string]interface{}{"proveedorCodigo": "YPF"})

	result := e.applyAction(context.Background(), ectx, model.Action{
		Operacion:      model.ActionLookup,
		Campo:          "proveedorNombre",
		Tabla:          "parametros_maestros",
		CampoConsulta:  "codigo",
		ValorConsulta:  "{proveedorCodigo}",
		CampoResultado: "nombre",
	})
	require.NoError(t, result.Err)
	assert.Equal(t, "YPF S.A.", ectx.GetPath("proveedorNombre").Value)
}

func TestApplyLookupMissUsesDefault(t *testing.T) {
	store := &memoryStore{tables: map[string][]map[string]interface{}{}}
	e := newTestEngine(store, nil)
	ectx := newTestContext(e, map[string]interface{}{"proveedorCodigo": "DESCONOCIDO"})

	action := model.Action{
		Operacion:      model.ActionLookup,
		Campo:          "proveedorNombre",
		Tabla:          "parametros_maestros",
		CampoConsulta:  "codigo",
		ValorConsulta:  "{proveedorCodigo}",
		CampoResultado: "nombre",
		ValorDefecto:   "Proveedor generico",
	}
	result := e.applyAction(context.Background(), ectx, action)
	assert.True(t, result.Changed)
	assert.Equal(t, "Proveedor generico", ectx.GetPath("proveedorNombre").Value)

	// Without a default the field stays untouched.
	action.Campo = "otroCampo"
	action.ValorDefecto = nil
	result = e.applyAction(context.Background(), ectx, action)
	assert.False(t, result.Changed)
	assert.False(t, ectx.GetPath("otroCampo").Found)
}

func TestApplyLookupChain(t *testing.T) {
	store := &memoryStore{tables: map[string][]map[string]interface{}{
		"user_tarjetas_credito": {
			{"numero_tarjeta": "451234", "user_id": "u-9"},
		},
		"user_atributos": {
			{"user_id": "u-9", "valor_atributo_id": "va-3"},
		},
		"valores_atributo": {
			{"id": "va-3", "codigo": "CODDIM-77", "atributo": map[string]interface{}{"codigo": "CODDIM"}},
			{"id": "va-3", "codigo": "SUBCUE-12", "atributo": map[string]interface{}{"codigo": "SUBCUE"}},
		},
	}}
	e := newTestEngine(store, nil)
	ectx := newTestContext(e, map[string]interface{}{
		"resumen": map[string]interface{}{"numeroTarjeta": "451234"},
	})

	chain := model.Action{
		Operacion:     model.ActionLookupChain,
		Campo:         "codigoDimension",
		ValorConsulta: "{resumen.numeroTarjeta}",
		ValorDefecto:  "SIN-DIM",
		Cadena: []model.LookupStep{
			{Tabla: "user_tarjetas_credito", CampoConsulta: "numero_tarjeta", CampoResultado: "user_id"},
			{Tabla: "user_atributos", CampoConsulta: "user_id", CampoResultado: "valor_atributo_id"},
			{
				Tabla:           "valores_atributo",
				CampoConsulta:   "id",
				CampoResultado:  "codigo",
				FiltroAdicional: map[string]interface{}{"atributo.codigo": "CODDIM"},
			},
		},
	}
	result := e.applyAction(context.Background(), ectx, chain)
	require.NoError(t, result.Err)
	assert.Equal(t, "CODDIM-77", ectx.GetPath("codigoDimension").Value)

	// An unknown card breaks the first hop and falls back to the default.
	ectx2 := newTestContext(e, map[string]interface{}{
		"resumen": map[string]interface{}{"numeroTarjeta": "999999"},
	})
	result = e.applyAction(context.Background(), ectx2, chain)
	assert.Equal(t, "SIN-DIM", ectx2.GetPath("codigoDimension").Value)
	assert.True(t, result.Changed)
}

func TestApplyLookupJSON(t *testing.T) {
	store := &memoryStore{tables: map[string][]map[string]interface{}{
		"parametros_maestros": {
			{
				"tipo_campo": "proveedor",
				"activo":     true,
				"codigo":     "PROV-01",
				"parametros_json": map[string]interface{}{
					"cuit": "30-12345678-9",
				},
			},
		},
	}}
	e := newTestEngine(store, nil)
	ectx := newTestContext(e, map[string]interface{}{"cuit": "30123456789"})

	action := model.Action{
		Operacion:      model.ActionLookupJSON,
		Campo:          "codigoProveedor",
		Tabla:          "parametros_maestros",
		TipoCampo:      "proveedor",
		CampoJSON:      "cuit",
		ValorConsulta:  "{cuit}",
		CampoResultado: "codigo",
		ValorDefecto:   "PROV-GEN",
	}

	// Formatted and unformatted tax IDs normalize to the same value.
	result := e.applyAction(context.Background(), ectx, action)
	require.NoError(t, result.Err)
	assert.Equal(t, "PROV-01", ectx.GetPath("codigoProveedor").Value)

	// The all-zero placeholder short-circuits to the special default.
	ectx2 := newTestContext(e, map[string]interface{}{"cuit": "00000000000"})
	action.CondicionEspecial = &model.SpecialCondition{Tipo: "CUIT_ESPECIAL", CodigoDefault: "PROV-MIGRA"}
	result = e.applyAction(context.Background(), ectx2, action)
	require.NoError(t, result.Err)
	assert.Equal(t, "PROV-MIGRA", ectx2.GetPath("codigoProveedor").Value)
}

func TestApplyAILookup(t *testing.T) {
	clf := &staticClassifier{result: classifier.Result{Value: "Combustible", Confidence: 0.93}}
	e := newTestEngine(nil, clf)
	ectx := newTestContext(e, map[string]interface{}{"descripcion": "YPF RUTA 9"})

	action := model.Action{
		Operacion:     model.ActionAILookup,
		Campo:         "categoria",
		Modelo:        "gpt-class-1",
		Prompt:        "categoria-gasto",
		ValorConsulta: "{descripcion}",
		ValorDefecto:  "Sin clasificar",
	}
	result := e.applyAction(context.Background(), ectx, action)
	require.NoError(t, result.Err)
	assert.Equal(t, "Combustible", ectx.GetPath("categoria").Value)

	// Low-confidence answers degrade to the default.
	clf.result = classifier.Result{Value: "Viajes", Confidence: 0.2}
	ectx2 := newTestContext(e, map[string]interface{}{"descripcion": "gasto raro"})
	e.applyAction(context.Background(), ectx2, action)
	assert.Equal(t, "Sin clasificar", ectx2.GetPath("categoria").Value)

	// Classifier failure also degrades to the default, recording the error.
	clf.err = assert.AnError
	ectx3 := newTestContext(e, map[string]interface{}{"descripcion": "otro gasto"})
	result = e.applyAction(context.Background(), ectx3, action)
	assert.Error(t, result.Err)
	assert.Equal(t, "Sin clasificar", ectx3.GetPath("categoria").Value)
}

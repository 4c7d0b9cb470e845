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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestiona/business-rules-engine/internal/classifier"
)

func TestLookupCacheMemoizesRows(t *testing.T) {
	store := &memoryStore{tables: map[string][]map[string]interface{}{
		"parametros_maestros": {{"codigo": "YPF", "nombre": "YPF S.A."}},
	}}
	cache := NewLookupCache(store, nil)

	for i := 0; i < 3; i++ {
		row, err := cache.FindFirst(context.Background(), "parametros_maestros", map[string]interface{}{"codigo": "YPF"})
		require.NoError(t, err)
		assert.Equal(t, "YPF S.A.", row["nombre"])
	}
	assert.Equal(t, 1, store.calls)
}

func TestLookupCacheMemoizesMisses(t *testing.T) {
	store := &memoryStore{tables: map[string][]map[string]interface{}{}}
	cache := NewLookupCache(store, nil)

	for i := 0; i < 3; i++ {
		row, err := cache.FindFirst(context.Background(), "parametros_maestros", map[string]interface{}{"codigo": "NADA"})
		require.NoError(t, err)
		assert.Nil(t, row)
	}
	assert.Equal(t, 1, store.calls)
}

func TestLookupCacheDoesNotCacheErrors(t *testing.T) {
	store := &memoryStore{err: assert.AnError}
	cache := NewLookupCache(store, nil)

	_, err := cache.FindFirst(context.Background(), "parametros_maestros", map[string]interface{}{"codigo": "YPF"})
	assert.Error(t, err)

	// The store recovers; the next call goes through again.
	store.err = nil
	store.tables = map[string][]map[string]interface{}{
		"parametros_maestros": {{"codigo": "YPF"}},
	}
	row, err := cache.FindFirst(context.Background(), "parametros_maestros", map[string]interface{}{"codigo": "YPF"})
	require.NoError(t, err)
	assert.NotNil(t, row)
	assert.Equal(t, 2, store.calls)
}

func TestLookupCacheDistinguishesFilters(t *testing.T) {
	store := &memoryStore{tables: map[string][]map[string]interface{}{
		"parametros_maestros": {
			{"codigo": "A", "tipo_campo": "banco"},
			{"codigo": "A", "tipo_campo": "proveedor"},
		},
	}}
	cache := NewLookupCache(store, nil)

	first, err := cache.FindFirst(context.Background(), "parametros_maestros",
		map[string]interface{}{"codigo": "A", "tipo_campo": "banco"})
	require.NoError(t, err)
	second, err := cache.FindFirst(context.Background(), "parametros_maestros",
		map[string]interface{}{"codigo": "A", "tipo_campo": "proveedor"})
	require.NoError(t, err)

	assert.Equal(t, "banco", first["tipo_campo"])
	assert.Equal(t, "proveedor", second["tipo_campo"])
	assert.Equal(t, 2, store.calls)
}

func TestGetOrClassifyMemoizesPerRun(t *testing.T) {
	clf := &staticClassifier{result: classifier.Result{Value: "Combustible", Confidence: 0.9}}
	cache := NewLookupCache(&memoryStore{}, clf)

	for i := 0; i < 3; i++ {
		result, err := cache.GetOrClassify(context.Background(), "model-1", "prompt-1", "YPF RUTA 9")
		require.NoError(t, err)
		assert.Equal(t, "Combustible", result.Value)
	}
	assert.Equal(t, 1, clf.calls)

	// A different input text is a different key.
	_, err := cache.GetOrClassify(context.Background(), "model-1", "prompt-1", "SHELL KM 10")
	require.NoError(t, err)
	assert.Equal(t, 2, clf.calls)
}

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

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
)

type fakeLoader struct {
	rules map[string][]model.Rule
	calls int
	err   error
}

func (l *fakeLoader) GetActiveRules(_ context.Context, tipo model.RuleType, tenantID string, _ time.Time) ([]model.Rule, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.rules[string(tipo)+"|"+tenantID], nil
}

func TestRepositoryCachesPerTypeAndTenant(t *testing.T) {
	loader := &fakeLoader{rules: map[string][]model.Rule{
		"IMPORTACION|t1": {{ID: "r-1", Codigo: "UNO"}},
		"IMPORTACION|t2": {{ID: "r-2", Codigo: "DOS"}},
	}}
	repo := NewRepository(loader, 5*time.Minute)

	for i := 0; i < 3; i++ {
		rules, err := repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "UNO", rules[0].Codigo)
	}
	assert.Equal(t, 1, loader.calls)

	rules, err := repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t2")
	require.NoError(t, err)
	assert.Equal(t, "DOS", rules[0].Codigo)
	assert.Equal(t, 2, loader.calls)
}

func TestRepositoryExpiresEntries(t *testing.T) {
	loader := &fakeLoader{rules: map[string][]model.Rule{
		"IMPORTACION|t1": {{ID: "r-1"}},
	}}
	current := time.Now()
	repo := NewRepositoryWithClock(loader, 5*time.Minute, func() time.Time { return current })

	_, err := repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	require.NoError(t, err)
	_, err = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	current = current.Add(6 * time.Minute)
	_, err = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestRepositoryInvalidation(t *testing.T) {
	loader := &fakeLoader{rules: map[string][]model.Rule{
		"IMPORTACION|t1": {{ID: "r-1"}},
		"IMPORTACION|t2": {{ID: "r-2"}},
	}}
	repo := NewRepository(loader, 5*time.Minute)

	_, _ = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	_, _ = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t2")
	assert.Equal(t, 2, loader.calls)

	// Targeted invalidation only reloads the affected tenant.
	repo.Invalidate(model.RuleTypeImportacion, "t1")
	_, _ = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	_, _ = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t2")
	assert.Equal(t, 3, loader.calls)

	// A global rule change drops every tenant of the type.
	repo.InvalidateType(model.RuleTypeImportacion)
	_, _ = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	_, _ = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t2")
	assert.Equal(t, 5, loader.calls)
}

func TestRepositoryPropagatesLoadFailure(t *testing.T) {
	loader := &fakeLoader{err: assert.AnError}
	repo := NewRepository(loader, 5*time.Minute)

	_, err := repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	assert.Error(t, err)

	// Failures are not cached.
	loader.err = nil
	_, err = repo.GetActiveRules(context.Background(), model.RuleTypeImportacion, "t1")
	assert.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

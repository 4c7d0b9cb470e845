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
	"time"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/system/cache"
	"github.com/gestiona/business-rules-engine/internal/system/errors"
)

// RuleLoader is the store-level read the repository caches.
type RuleLoader interface {
	GetActiveRules(ctx context.Context, tipo model.RuleType, tenantID string, now time.Time) ([]model.Rule, error)
}

// Repository serves the engine's rule reads through a TTL cache keyed by
// (tipo, tenantID). Entries expire lazily; administrative mutations
// invalidate them eagerly. Concurrent readers racing on a cold key do at most
// one redundant store read each, which is harmless.
type Repository struct {
	loader RuleLoader
	cache  *cache.Cache
	now    func() time.Time
}

func NewRepository(loader RuleLoader, ttl time.Duration) *Repository {
	return NewRepositoryWithClock(loader, ttl, time.Now)
}

func NewRepositoryWithClock(loader RuleLoader, ttl time.Duration, now func() time.Time) *Repository {
	return &Repository{
		loader: loader,
		cache:  cache.NewCacheWithClock(ttl, now),
		now:    now,
	}
}

// GetActiveRules returns the active rules for the tenant and type in priority
// order. A load failure propagates; without rules there is nothing to
// evaluate.
func (r *Repository) GetActiveRules(ctx context.Context, tipo model.RuleType, tenantID string) ([]model.Rule, error) {
	key := ruleCacheKey(tipo, tenantID)
	if cached, found := r.cache.Get(key); found {
		return cached.([]model.Rule), nil
	}

	rules, err := r.loader.GetActiveRules(ctx, tipo, tenantID, r.now())
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileFetchingRules, err)
	}
	r.cache.Set(key, rules)
	return rules, nil
}

// Invalidate drops the cache entry for one (tipo, tenant) pair.
func (r *Repository) Invalidate(tipo model.RuleType, tenantID string) {
	r.cache.Delete(ruleCacheKey(tipo, tenantID))
}

// InvalidateType drops every tenant's entry for one rule type. Used when a
// global rule changes, since any tenant may be linked to it.
func (r *Repository) InvalidateType(tipo model.RuleType) {
	r.cache.DeleteByPrefix(string(tipo) + "|")
}

func ruleCacheKey(tipo model.RuleType, tenantID string) string {
	return string(tipo) + "|" + tenantID
}

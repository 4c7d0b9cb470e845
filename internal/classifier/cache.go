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

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestiona/business-rules-engine/internal/system/cache"
	"github.com/gestiona/business-rules-engine/internal/system/log"
)

// ResultCache stores classification results across runs. Classifier calls are
// slow and billed per request, so results are shared between engine runs
// rather than memoized per run only.
type ResultCache interface {
	Get(ctx context.Context, key string) (Result, bool)
	Set(ctx context.Context, key string, result Result)
}

// ResultKey derives the cache key for a classification request. Input text is
// hashed so free-form descriptions of any length produce bounded keys.
func ResultKey(modelID, promptID, inputText string) string {
	sum := sha256.Sum256([]byte(inputText))
	return fmt.Sprintf("classifier|%s|%s|%s", modelID, promptID, hex.EncodeToString(sum[:]))
}

// MemoryResultCache keeps results in the in-process TTL cache.
type MemoryResultCache struct {
	cache *cache.Cache
}

func NewMemoryResultCache(ttl time.Duration) *MemoryResultCache {
	return &MemoryResultCache{cache: cache.NewCache(ttl)}
}

func (c *MemoryResultCache) Get(_ context.Context, key string) (Result, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return Result{}, false
	}
	result, ok := value.(Result)
	return result, ok
}

func (c *MemoryResultCache) Set(_ context.Context, key string, result Result) {
	c.cache.Set(key, result)
}

// RedisResultCache shares results between instances through Redis. Cache
// failures are logged and treated as misses so classification still works
// when Redis is down.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

func (c *RedisResultCache) Get(ctx context.Context, key string) (Result, bool) {
	payload, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return Result{}, false
	}
	if err != nil {
		log.GetLogger().Warn("Classifier cache read failed", log.Error(err))
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (c *RedisResultCache) Set(ctx context.Context, key string, result Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.GetLogger().Warn("Classifier cache write failed", log.Error(err))
	}
}

// CachedClassifier consults the result cache before delegating to the
// underlying classifier.
type CachedClassifier struct {
	delegate Classifier
	results  ResultCache
}

func NewCachedClassifier(delegate Classifier, results ResultCache) *CachedClassifier {
	return &CachedClassifier{delegate: delegate, results: results}
}

func (c *CachedClassifier) Classify(ctx context.Context, modelID, promptID, inputText string) (Result, error) {
	key := ResultKey(modelID, promptID, inputText)
	if result, found := c.results.Get(ctx, key); found {
		return result, nil
	}
	result, err := c.delegate.Classify(ctx, modelID, promptID, inputText)
	if err != nil {
		return Result{}, err
	}
	c.results.Set(ctx, key, result)
	return result, nil
}

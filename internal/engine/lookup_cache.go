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
	"encoding/json"
	"fmt"

	"github.com/gestiona/business-rules-engine/internal/classifier"
	"github.com/gestiona/business-rules-engine/internal/lookup"
)

// LookupCache memoizes reference lookups and classifier calls for the
// duration of a single engine run. Not-found results are cached too, so a
// batch of rules probing the same missing reference row costs one query.
// Store errors are never cached.
type LookupCache struct {
	store      lookup.Store
	classifier classifier.Classifier
	rows       map[string]map[string]interface{}
	rowSets    map[string][]map[string]interface{}
	results    map[string]classifier.Result
}

func NewLookupCache(store lookup.Store, clf classifier.Classifier) *LookupCache {
	return &LookupCache{
		store:      store,
		classifier: clf,
		rows:       map[string]map[string]interface{}{},
		rowSets:    map[string][]map[string]interface{}{},
		results:    map[string]classifier.Result{},
	}
}

// FindFirst returns the first row matching the filter, memoized per run.
// A missing row is (nil, nil).
func (c *LookupCache) FindFirst(ctx context.Context, table string, filter map[string]interface{}) (map[string]interface{}, error) {
	key := lookupKey(table, filter)
	if row, found := c.rows[key]; found {
		return row, nil
	}
	row, err := c.store.FindFirst(ctx, table, filter)
	if err != nil {
		return nil, err
	}
	c.rows[key] = row
	return row, nil
}

// FindAll returns every row matching the filter, memoized per run.
func (c *LookupCache) FindAll(ctx context.Context, table string, filter map[string]interface{}) ([]map[string]interface{}, error) {
	key := lookupKey(table, filter)
	if rows, found := c.rowSets[key]; found {
		return rows, nil
	}
	rows, err := c.store.FindAll(ctx, table, filter)
	if err != nil {
		return nil, err
	}
	c.rowSets[key] = rows
	return rows, nil
}

// GetOrClassify returns the classification for the given input, memoized per
// run on top of whatever cross-run caching the classifier itself carries.
func (c *LookupCache) GetOrClassify(ctx context.Context, modelID, promptID, inputText string) (classifier.Result, error) {
	if c.classifier == nil {
		return classifier.Result{}, fmt.Errorf("no classifier configured")
	}
	key := classifier.ResultKey(modelID, promptID, inputText)
	if result, found := c.results[key]; found {
		return result, nil
	}
	result, err := c.classifier.Classify(ctx, modelID, promptID, inputText)
	if err != nil {
		return classifier.Result{}, err
	}
	c.results[key] = result
	return result, nil
}

// lookupKey serializes the filter deterministically (json.Marshal sorts map
// keys) so equivalent filters hit the same entry.
func lookupKey(table string, filter map[string]interface{}) string {
	payload, err := json.Marshal(filter)
	if err != nil {
		payload = []byte(fmt.Sprintf("%v", filter))
	}
	return table + "|" + string(payload)
}

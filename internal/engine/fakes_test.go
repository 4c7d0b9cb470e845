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
	"fmt"

	"github.com/gestiona/business-rules-engine/internal/classifier"
	"github.com/gestiona/business-rules-engine/internal/rules/model"
)

// memoryStore is an in-memory lookup.Store. Filter keys may be dot-paths into
// nested rows, mirroring how the SQL store exposes joined relations.
type memoryStore struct {
	tables map[string][]map[string]interface{}
	calls  int
	err    error
}

func (s *memoryStore) FindFirst(_ context.Context, table string, filter map[string]interface{}) (map[string]interface{}, error) {
	rows, err := s.FindAll(nil, table, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *memoryStore) FindAll(_ context.Context, table string, filter map[string]interface{}) ([]map[string]interface{}, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var matched []map[string]interface{}
	for _, row := range s.tables[table] {
		if rowMatches(row, filter) {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func rowMatches(row map[string]interface{}, filter map[string]interface{}) bool {
	for key, want := range filter {
		got := getPath(row, key)
		if !got.Found || fmt.Sprintf("%v", got.Value) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

type staticRepo struct {
	rules []model.Rule
	err   error
}

func (r *staticRepo) GetActiveRules(context.Context, model.RuleType, string) ([]model.Rule, error) {
	return r.rules, r.err
}

type staticClassifier struct {
	result classifier.Result
	err    error
	calls  int
}

func (c *staticClassifier) Classify(ctx context.Context, _, _, _ string) (classifier.Result, error) {
	c.calls++
	if err := ctx.Err(); err != nil {
		return classifier.Result{}, err
	}
	if c.err != nil {
		return classifier.Result{}, c.err
	}
	return c.result, nil
}

type memoryRecorder struct {
	records []model.ExecutionRecord
	err     error
}

func (r *memoryRecorder) RecordExecution(_ context.Context, record model.ExecutionRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

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

import "strings"

// PathValue is the result of resolving a dot-path. Found distinguishes an
// absent path from a present path holding nil.
type PathValue struct {
	Value interface{}
	Found bool
}

// Context carries the mutable state of a single engine run: the record being
// processed, an immutable snapshot of it taken before any rule ran, and the
// per-run lookup cache.
type Context struct {
	TenantID string
	Data     map[string]interface{}
	Snapshot map[string]interface{}
	Lookups  *LookupCache
}

// NewContext snapshots the record and prepares a fresh lookup cache.
func NewContext(tenantID string, data map[string]interface{}, lookups *LookupCache) *Context {
	return &Context{
		TenantID: tenantID,
		Data:     data,
		Snapshot: deepCopyMap(data),
		Lookups:  lookups,
	}
}

// GetPath resolves a dot-path against the live record.
func (c *Context) GetPath(path string) PathValue {
	return getPath(c.Data, path)
}

// GetSnapshotPath resolves a dot-path against the pre-run snapshot.
func (c *Context) GetSnapshotPath(path string) PathValue {
	return getPath(c.Snapshot, path)
}

// SetPath writes a value at a dot-path, creating intermediate maps as needed.
// An intermediate segment holding a non-map value is replaced by a map.
func (c *Context) SetPath(path string, value interface{}) {
	setPath(c.Data, path, value)
}

func getPath(data map[string]interface{}, path string) PathValue {
	if path == "" {
		return PathValue{}
	}
	current := interface{}(data)
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return PathValue{}
		}
		current, ok = node[segment]
		if !ok {
			return PathValue{}
		}
	}
	return PathValue{Value: current, Found: true}
}

func setPath(data map[string]interface{}, path string, value interface{}) {
	segments := strings.Split(path, ".")
	current := data
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// deepCopyMap copies maps and slices recursively; scalar leaves are shared.
func deepCopyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(typed)
	case []interface{}:
		copied := make([]interface{}, len(typed))
		for i, item := range typed {
			copied[i] = deepCopyValue(item)
		}
		return copied
	default:
		return v
	}
}

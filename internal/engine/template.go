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
	"fmt"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{([a-zA-Z0-9_.]+)\}`)

// resolveValue resolves a template string against the given record. A
// template that is exactly one token ("{monto.total}") returns the referenced
// value with its native type; any other template returns a string with each
// token replaced by the stringified value. Missing paths resolve to the empty
// string.
func resolveValue(data map[string]interface{}, template string) interface{} {
	matches := tokenPattern.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template
	}

	// Single token spanning the whole template keeps the native type.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(template) {
		path := template[matches[0][2]:matches[0][3]]
		return getPath(data, path).Value
	}

	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		path := strings.Trim(token, "{}")
		resolved := getPath(data, path)
		if !resolved.Found || resolved.Value == nil {
			return ""
		}
		return stringify(resolved.Value)
	})
}

// stringify renders a value the way it reads in generated descriptions.
// Floats holding whole numbers drop the trailing ".0" that fmt would not
// print anyway, and everything else goes through the default format.
func stringify(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%v", typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

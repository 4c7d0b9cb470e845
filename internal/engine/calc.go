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
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

var numberLiteralPattern = regexp.MustCompile(`\d+\.\d+|\d+`)

// evaluateFormula substitutes {dot.path} tokens in a CALCULATE formula with
// the record's numeric values (absent or non-numeric fields become 0) and
// evaluates the resulting arithmetic expression. Integer literals are widened
// to doubles first because the evaluator has no int*double overload. The cost
// limit keeps a bad formula from exhausting the evaluator.
func evaluateFormula(data map[string]interface{}, formula string) (interface{}, error) {
	substituted := tokenPattern.ReplaceAllStringFunc(formula, func(token string) string {
		path := strings.Trim(token, "{}")
		number, ok := toFloat(getPath(data, path).Value)
		if !ok {
			return "0.0"
		}
		return strconv.FormatFloat(number, 'f', -1, 64)
	})
	substituted = numberLiteralPattern.ReplaceAllStringFunc(substituted, func(literal string) string {
		if strings.Contains(literal, ".") {
			return literal
		}
		return literal + ".0"
	})

	env, err := cel.NewEnv()
	if err != nil {
		return nil, errors.Wrap(err, "creating formula environment")
	}

	ast, issues := env.Compile(substituted)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("formula does not compile: %w", issues.Err())
	}

	prog, err := env.Program(ast, cel.CostLimit(100000))
	if err != nil {
		return nil, errors.Wrap(err, "building formula program")
	}

	out, _, err := prog.Eval(map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("formula evaluation failed: %w", err)
	}
	return out.Value(), nil
}

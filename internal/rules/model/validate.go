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

package model

import (
	"fmt"
	"net/http"

	"github.com/gestiona/business-rules-engine/internal/system/errors"
)

var allowedRuleTypes = map[RuleType]bool{
	RuleTypeImportacion:    true,
	RuleTypeValidacion:     true,
	RuleTypeTransformacion: true,
}

var allowedOperators = map[ConditionOperator]bool{
	OpEquals: true, OpNotEquals: true,
	OpContains: true, OpNotContains: true,
	OpStartsWith: true, OpEndsWith: true,
	OpRegex: true, OpMatches: true,
	OpIn: true, OpNotIn: true,
	OpIsNull: true, OpIsNotNull: true,
	OpIsEmpty: true, OpIsNotEmpty: true,
	OpGreaterThan: true, OpLessThan: true,
	OpGreaterOrEqual: true, OpLessOrEqual: true,
}

// Operators that test presence only; they take no comparison value.
var unaryOperators = map[ConditionOperator]bool{
	OpIsNull: true, OpIsNotNull: true,
	OpIsEmpty: true, OpIsNotEmpty: true,
}

var allowedOperations = map[ActionOperation]bool{
	ActionSet: true, ActionAppend: true, ActionCalculate: true,
	ActionLookup: true, ActionLookupJSON: true, ActionLookupChain: true,
	ActionAILookup: true,
}

var allowedTransforms = map[TransformType]bool{
	TransformRemoveLeadingZeros:  true,
	TransformRemoveTrailingZeros: true,
	TransformTrimSpaces:          true,
	TransformUpperCase:           true,
	TransformLowerCase:           true,
}

// Validate rejects malformed rules at load time so that evaluation never sees
// an unknown operator or an action missing its required parameters.
func (r *Rule) Validate() error {
	if r.Codigo == "" {
		return configError("'codigo' is required")
	}
	if r.Nombre == "" {
		return configError("'nombre' is required")
	}
	if !allowedRuleTypes[r.Tipo] {
		return configError(fmt.Sprintf("'%s' is not a known rule type", r.Tipo))
	}
	if r.EsGlobal && r.TenantID != nil {
		return configError("a global rule cannot have a tenant owner")
	}
	if !r.EsGlobal && (r.TenantID == nil || *r.TenantID == "") {
		return configError("a non-global rule must belong to a tenant")
	}
	if r.FechaVigencia != nil && r.FechaVencimiento != nil && r.FechaVencimiento.Before(*r.FechaVigencia) {
		return configError("'fechaVencimiento' precedes 'fechaVigencia'")
	}
	return r.Configuracion.Validate()
}

// Validate checks the configuration payload as a closed tagged union.
func (c *RuleConfig) Validate() error {
	if c.LogicOperator != "" && c.LogicOperator != LogicAnd && c.LogicOperator != LogicOr {
		return configError(fmt.Sprintf("logicOperator '%s' must be AND or OR", c.LogicOperator))
	}
	if len(c.Acciones) == 0 {
		return configError("at least one action is required")
	}
	for i, cond := range c.Condiciones {
		if err := cond.validate(); err != nil {
			return configError(fmt.Sprintf("condicion %d: %v", i, err))
		}
	}
	for i, action := range c.Acciones {
		if err := action.validate(); err != nil {
			return configError(fmt.Sprintf("accion %d: %v", i, err))
		}
	}
	for i, tr := range c.TransformacionesCampo {
		if tr.Campo == "" {
			return configError(fmt.Sprintf("transformacion %d: 'campo' is required", i))
		}
		if !allowedTransforms[tr.Transformacion] {
			return configError(fmt.Sprintf("transformacion %d: unknown transform '%s'", i, tr.Transformacion))
		}
	}
	return nil
}

func (cond Condition) validate() error {
	if cond.Campo == "" {
		return fmt.Errorf("'campo' is required")
	}
	if !allowedOperators[cond.Operador] {
		return fmt.Errorf("unknown operator '%s'", cond.Operador)
	}
	if !unaryOperators[cond.Operador] && cond.Valor == nil && cond.ValorCampo == "" {
		return fmt.Errorf("operator %s requires 'valor' or 'valorCampo'", cond.Operador)
	}
	return nil
}

func (a Action) validate() error {
	if !allowedOperations[a.Operacion] {
		return fmt.Errorf("unknown operation '%s'", a.Operacion)
	}
	if a.Campo == "" {
		return fmt.Errorf("'campo' is required")
	}
	switch a.Operacion {
	case ActionSet, ActionAppend:
		if a.Valor == nil && a.ValorCampo == "" {
			return fmt.Errorf("%s requires 'valor' or 'valorCampo'", a.Operacion)
		}
	case ActionCalculate:
		if a.Formula == "" {
			return fmt.Errorf("CALCULATE requires 'formula'")
		}
	case ActionLookup:
		if a.Tabla == "" || a.CampoConsulta == "" || a.ValorConsulta == "" || a.CampoResultado == "" {
			return fmt.Errorf("LOOKUP requires tabla, campoConsulta, valorConsulta and campoResultado")
		}
	case ActionLookupJSON:
		if a.TipoCampo == "" || a.CampoJSON == "" || a.ValorConsulta == "" || a.CampoResultado == "" {
			return fmt.Errorf("LOOKUP_JSON requires tipoCampo, campoJSON, valorConsulta and campoResultado")
		}
	case ActionLookupChain:
		if a.ValorConsulta == "" {
			return fmt.Errorf("LOOKUP_CHAIN requires 'valorConsulta'")
		}
		if len(a.Cadena) == 0 {
			return fmt.Errorf("LOOKUP_CHAIN requires a non-empty 'cadena'")
		}
		for i, step := range a.Cadena {
			if step.Tabla == "" || step.CampoConsulta == "" || step.CampoResultado == "" {
				return fmt.Errorf("cadena step %d requires tabla, campoConsulta and campoResultado", i)
			}
		}
	case ActionAILookup:
		if a.Modelo == "" {
			return fmt.Errorf("AI_LOOKUP requires 'modelo'")
		}
		if a.ValorConsulta == "" {
			return fmt.Errorf("AI_LOOKUP requires 'valorConsulta'")
		}
	}
	return nil
}

func configError(description string) error {
	msg := errors.ErrInvalidRuleConfig
	msg.Description = description
	return errors.NewClientError(msg, http.StatusBadRequest)
}

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

import "time"

// RuleType partitions rule sets. Rules of different types are never evaluated
// in the same pass.
type RuleType string

const (
	RuleTypeImportacion    RuleType = "IMPORTACION"
	RuleTypeValidacion     RuleType = "VALIDACION"
	RuleTypeTransformacion RuleType = "TRANSFORMACION"
)

type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

type ConditionOperator string

const (
	OpEquals         ConditionOperator = "EQUALS"
	OpNotEquals      ConditionOperator = "NOT_EQUALS"
	OpContains       ConditionOperator = "CONTAINS"
	OpNotContains    ConditionOperator = "NOT_CONTAINS"
	OpStartsWith     ConditionOperator = "STARTS_WITH"
	OpEndsWith       ConditionOperator = "ENDS_WITH"
	OpRegex          ConditionOperator = "REGEX"
	OpMatches        ConditionOperator = "MATCHES" // alias of REGEX kept for older rule payloads
	OpIn             ConditionOperator = "IN"
	OpNotIn          ConditionOperator = "NOT_IN"
	OpIsNull         ConditionOperator = "IS_NULL"
	OpIsNotNull      ConditionOperator = "IS_NOT_NULL"
	OpIsEmpty        ConditionOperator = "IS_EMPTY"
	OpIsNotEmpty     ConditionOperator = "IS_NOT_EMPTY"
	OpGreaterThan    ConditionOperator = "GREATER_THAN"
	OpLessThan       ConditionOperator = "LESS_THAN"
	OpGreaterOrEqual ConditionOperator = "GREATER_OR_EQUAL"
	OpLessOrEqual    ConditionOperator = "LESS_OR_EQUAL"
)

type ActionOperation string

const (
	ActionSet         ActionOperation = "SET"
	ActionAppend      ActionOperation = "APPEND"
	ActionCalculate   ActionOperation = "CALCULATE"
	ActionLookup      ActionOperation = "LOOKUP"
	ActionLookupJSON  ActionOperation = "LOOKUP_JSON"
	ActionLookupChain ActionOperation = "LOOKUP_CHAIN"
	ActionAILookup    ActionOperation = "AI_LOOKUP"
)

type TransformType string

const (
	TransformRemoveLeadingZeros  TransformType = "REMOVE_LEADING_ZEROS"
	TransformRemoveTrailingZeros TransformType = "REMOVE_TRAILING_ZEROS"
	TransformTrimSpaces          TransformType = "TRIM_SPACES"
	TransformUpperCase           TransformType = "UPPER_CASE"
	TransformLowerCase           TransformType = "LOWER_CASE"
)

// Condition compares a record field against a literal, a template, or another
// field of the record. The wire names (campo, operador, valor) match the rule
// payloads authored in the administration screens.
type Condition struct {
	Campo      string            `json:"campo"`
	Operador   ConditionOperator `json:"operador"`
	Valor      interface{}       `json:"valor,omitempty"`
	ValorCampo string            `json:"valorCampo,omitempty"`
}

// LookupStep is one hop of a LOOKUP_CHAIN. The previous hop's result becomes
// this hop's query value.
type LookupStep struct {
	Tabla           string                 `json:"tabla"`
	CampoConsulta   string                 `json:"campoConsulta"`
	CampoResultado  string                 `json:"campoResultado"`
	Descripcion     string                 `json:"descripcion,omitempty"`
	FiltroAdicional map[string]interface{} `json:"filtroAdicional,omitempty"`
}

// SpecialCondition handles legacy edge cases in LOOKUP_JSON, e.g. the all-zero
// CUIT placeholder produced by card statement imports.
type SpecialCondition struct {
	Tipo          string `json:"tipo"`
	CodigoDefault string `json:"codigoDefault,omitempty"`
}

// Action mutates one destination field of the record. Which parameters apply
// depends on the operation; Validate enforces the per-operation requirements.
type Action struct {
	Operacion         ActionOperation   `json:"operacion"`
	Campo             string            `json:"campo"`
	Valor             interface{}       `json:"valor,omitempty"`
	ValorCampo        string            `json:"valorCampo,omitempty"`
	Formula           string            `json:"formula,omitempty"`
	Tabla             string            `json:"tabla,omitempty"`
	CampoConsulta     string            `json:"campoConsulta,omitempty"`
	ValorConsulta     string            `json:"valorConsulta,omitempty"`
	CampoResultado    string            `json:"campoResultado,omitempty"`
	TipoCampo         string            `json:"tipoCampo,omitempty"`
	CampoJSON         string            `json:"campoJSON,omitempty"`
	Cadena            []LookupStep      `json:"cadena,omitempty"`
	ValorDefecto      interface{}       `json:"valorDefecto,omitempty"`
	Modelo            string            `json:"modelo,omitempty"`
	Prompt            string            `json:"prompt,omitempty"`
	CondicionEspecial *SpecialCondition `json:"condicionEspecial,omitempty"`
}

// FieldTransform normalizes one record field before condition evaluation.
type FieldTransform struct {
	Campo          string        `json:"campo"`
	Transformacion TransformType `json:"transformacion"`
}

// RuleConfig is the structured payload stored in the rule's configuracion
// column.
type RuleConfig struct {
	Condiciones           []Condition      `json:"condiciones,omitempty"`
	LogicOperator         LogicOperator    `json:"logicOperator,omitempty"`
	Acciones              []Action         `json:"acciones"`
	StopOnMatch           bool             `json:"stopOnMatch,omitempty"`
	TransformacionesCampo []FieldTransform `json:"transformacionesCampo,omitempty"`
}

// Rule is a named, prioritized, tenant- or globally-scoped condition/action
// bundle. A global rule (TenantID == nil) is a template and only applies to a
// tenant through an active TenantRuleLink.
type Rule struct {
	ID               string     `json:"id"`
	Codigo           string     `json:"codigo"`
	Nombre           string     `json:"nombre"`
	Descripcion      string     `json:"descripcion,omitempty"`
	Tipo             RuleType   `json:"tipo"`
	Activa           bool       `json:"activa"`
	Prioridad        int        `json:"prioridad"`
	EsGlobal         bool       `json:"esGlobal"`
	TenantID         *string    `json:"tenantId,omitempty"`
	FechaVigencia    *time.Time `json:"fechaVigencia,omitempty"`
	FechaVencimiento *time.Time `json:"fechaVencimiento,omitempty"`
	Configuracion    RuleConfig `json:"configuracion"`
	CreatedAt        time.Time  `json:"createdAt,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt,omitempty"`
}

// VigenteAt reports whether the rule's effective window covers the given time.
func (r *Rule) VigenteAt(t time.Time) bool {
	if r.FechaVigencia != nil && r.FechaVigencia.After(t) {
		return false
	}
	if r.FechaVencimiento != nil && !r.FechaVencimiento.After(t) {
		return false
	}
	return true
}

// TenantRuleLink is the sole mechanism by which a tenant opts into a global
// rule.
type TenantRuleLink struct {
	TenantID      string    `json:"tenantId"`
	ReglaGlobalID string    `json:"reglaGlobalId"`
	Activa        bool      `json:"activa"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

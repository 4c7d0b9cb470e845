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

// Package store persists business rules, tenant links to global rules, and
// execution audit rows.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/system/database/client"
)

type RulesStore struct {
	client client.DBClientInterface
}

func NewRulesStore(dbClient client.DBClientInterface) *RulesStore {
	return &RulesStore{client: dbClient}
}

const activeRulesQuery = `
	SELECT r.id, r.codigo, r.nombre, r.descripcion, r.tipo, r.activa, r.prioridad,
	       r.es_global, r.tenant_id, r.fecha_vigencia, r.fecha_vencimiento,
	       r.configuracion, r.created_at, r.updated_at
	FROM reglas_negocio r
	WHERE r.tipo = $1
	  AND r.activa = TRUE
	  AND (r.fecha_vigencia IS NULL OR r.fecha_vigencia <= $3)
	  AND (r.fecha_vencimiento IS NULL OR r.fecha_vencimiento > $3)
	  AND (
	      (r.es_global = FALSE AND r.tenant_id = $2)
	      OR (r.es_global = TRUE AND EXISTS (
	          SELECT 1 FROM empresa_reglas_globales l
	          WHERE l.regla_global_id = r.id AND l.tenant_id = $2 AND l.activa = TRUE))
	  )
	ORDER BY r.prioridad ASC, r.codigo ASC`

// GetActiveRules returns the tenant's own active rules plus the global rules
// the tenant opted into, inside their effective window, in priority order.
func (s *RulesStore) GetActiveRules(ctx context.Context, tipo model.RuleType, tenantID string, now time.Time) ([]model.Rule, error) {
	rows, err := s.client.ExecuteQuery(ctx, activeRulesQuery, string(tipo), tenantID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying active rules")
	}
	return buildRules(rows)
}

func (s *RulesStore) GetRuleByID(ctx context.Context, id string) (*model.Rule, error) {
	rows, err := s.client.ExecuteQuery(ctx,
		`SELECT * FROM reglas_negocio WHERE id = $1`, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying rule by id")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rule, err := buildRule(rows[0])
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *RulesStore) GetRuleByCodigo(ctx context.Context, codigo string, tenantID *string) (*model.Rule, error) {
	var rows []map[string]interface{}
	var err error
	if tenantID == nil {
		rows, err = s.client.ExecuteQuery(ctx,
			`SELECT * FROM reglas_negocio WHERE codigo = $1 AND tenant_id IS NULL`, codigo)
	} else {
		rows, err = s.client.ExecuteQuery(ctx,
			`SELECT * FROM reglas_negocio WHERE codigo = $1 AND tenant_id = $2`, codigo, *tenantID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying rule by codigo")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rule, err := buildRule(rows[0])
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListRules returns the tenant's own rules and every global rule, newest
// first, for the administration screens.
func (s *RulesStore) ListRules(ctx context.Context, tenantID string) ([]model.Rule, error) {
	rows, err := s.client.ExecuteQuery(ctx,
		`SELECT * FROM reglas_negocio
		 WHERE tenant_id = $1 OR es_global = TRUE
		 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing rules")
	}
	return buildRules(rows)
}

func (s *RulesStore) CreateRule(ctx context.Context, rule model.Rule) error {
	configJSON, err := json.Marshal(rule.Configuracion)
	if err != nil {
		return pkgerrors.Wrap(err, "encoding rule configuration")
	}
	_, err = s.client.Exec(ctx,
		`INSERT INTO reglas_negocio
		 (id, codigo, nombre, descripcion, tipo, activa, prioridad, es_global,
		  tenant_id, fecha_vigencia, fecha_vencimiento, configuracion, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())`,
		rule.ID, rule.Codigo, rule.Nombre, rule.Descripcion, string(rule.Tipo),
		rule.Activa, rule.Prioridad, rule.EsGlobal, nullableString(rule.TenantID),
		nullableTime(rule.FechaVigencia), nullableTime(rule.FechaVencimiento), string(configJSON))
	if err != nil {
		return pkgerrors.Wrap(err, "inserting rule")
	}
	return nil
}

func (s *RulesStore) UpdateRule(ctx context.Context, rule model.Rule) error {
	configJSON, err := json.Marshal(rule.Configuracion)
	if err != nil {
		return pkgerrors.Wrap(err, "encoding rule configuration")
	}
	_, err = s.client.Exec(ctx,
		`UPDATE reglas_negocio
		 SET codigo = $2, nombre = $3, descripcion = $4, tipo = $5, activa = $6,
		     prioridad = $7, es_global = $8, tenant_id = $9, fecha_vigencia = $10,
		     fecha_vencimiento = $11, configuracion = $12, updated_at = NOW()
		 WHERE id = $1`,
		rule.ID, rule.Codigo, rule.Nombre, rule.Descripcion, string(rule.Tipo),
		rule.Activa, rule.Prioridad, rule.EsGlobal, nullableString(rule.TenantID),
		nullableTime(rule.FechaVigencia), nullableTime(rule.FechaVencimiento), string(configJSON))
	if err != nil {
		return pkgerrors.Wrap(err, "updating rule")
	}
	return nil
}

func (s *RulesStore) DeleteRule(ctx context.Context, id string) error {
	if _, err := s.client.Exec(ctx,
		`DELETE FROM empresa_reglas_globales WHERE regla_global_id = $1`, id); err != nil {
		return pkgerrors.Wrap(err, "deleting tenant links")
	}
	if _, err := s.client.Exec(ctx,
		`DELETE FROM reglas_negocio WHERE id = $1`, id); err != nil {
		return pkgerrors.Wrap(err, "deleting rule")
	}
	return nil
}

// UpsertTenantLink creates or toggles a tenant's opt-in to a global rule.
func (s *RulesStore) UpsertTenantLink(ctx context.Context, link model.TenantRuleLink) error {
	_, err := s.client.Exec(ctx,
		`INSERT INTO empresa_reglas_globales (tenant_id, regla_global_id, activa, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 ON CONFLICT (tenant_id, regla_global_id)
		 DO UPDATE SET activa = EXCLUDED.activa, updated_at = NOW()`,
		link.TenantID, link.ReglaGlobalID, link.Activa)
	if err != nil {
		return pkgerrors.Wrap(err, "upserting tenant rule link")
	}
	return nil
}

func (s *RulesStore) ListTenantLinks(ctx context.Context, tenantID string) ([]model.TenantRuleLink, error) {
	rows, err := s.client.ExecuteQuery(ctx,
		`SELECT tenant_id, regla_global_id, activa, created_at, updated_at
		 FROM empresa_reglas_globales WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing tenant rule links")
	}
	links := make([]model.TenantRuleLink, 0, len(rows))
	for _, row := range rows {
		links = append(links, model.TenantRuleLink{
			TenantID:      asString(row["tenant_id"]),
			ReglaGlobalID: asString(row["regla_global_id"]),
			Activa:        asBool(row["activa"]),
			CreatedAt:     asTime(row["created_at"]),
			UpdatedAt:     asTime(row["updated_at"]),
		})
	}
	return links, nil
}

func buildRules(rows []map[string]interface{}) ([]model.Rule, error) {
	rules := make([]model.Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := buildRule(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func buildRule(row map[string]interface{}) (model.Rule, error) {
	rule := model.Rule{
		ID:          asString(row["id"]),
		Codigo:      asString(row["codigo"]),
		Nombre:      asString(row["nombre"]),
		Descripcion: asString(row["descripcion"]),
		Tipo:        model.RuleType(asString(row["tipo"])),
		Activa:      asBool(row["activa"]),
		Prioridad:   int(asInt64(row["prioridad"])),
		EsGlobal:    asBool(row["es_global"]),
		CreatedAt:   asTime(row["created_at"]),
		UpdatedAt:   asTime(row["updated_at"]),
	}
	if tenantID := asString(row["tenant_id"]); tenantID != "" {
		rule.TenantID = &tenantID
	}
	if vigencia, ok := row["fecha_vigencia"].(time.Time); ok {
		rule.FechaVigencia = &vigencia
	}
	if vencimiento, ok := row["fecha_vencimiento"].(time.Time); ok {
		rule.FechaVencimiento = &vencimiento
	}
	if raw := asString(row["configuracion"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rule.Configuracion); err != nil {
			return model.Rule{}, pkgerrors.Wrapf(err, "decoding configuration of rule %s", rule.ID)
		}
	}
	return rule, nil
}

func nullableString(value *string) interface{} {
	if value == nil {
		return sql.NullString{}
	}
	return *value
}

func nullableTime(value *time.Time) interface{} {
	if value == nil {
		return sql.NullTime{}
	}
	return *value
}

func asString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func asBool(value interface{}) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return false
}

func asInt64(value interface{}) int64 {
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	default:
		return 0
	}
}

func asTime(value interface{}) time.Time {
	if t, ok := value.(time.Time); ok {
		return t
	}
	return time.Time{}
}

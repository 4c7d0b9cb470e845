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

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/gestiona/business-rules-engine/internal/system/constants"
	"github.com/gestiona/business-rules-engine/internal/system/database/client"
)

// relation describes a single-hop join from a reference table to a related
// table, mirroring the associations the administration schema defines.
type relation struct {
	table   string
	fromCol string
	toCol   string
}

// relations maps table -> alias -> join. The joined row is exposed in the
// result map under the alias as a nested map, so dot-path result fields like
// "user.nombre" resolve without the caller knowing about SQL joins.
var relations = map[string]map[string]relation{
	"user_tarjetas_credito": {
		"user":        {table: "usuarios", fromCol: "user_id", toCol: "id"},
		"autorizante": {table: "usuarios", fromCol: "autorizante_id", toCol: "id"},
	},
	"user_atributos": {
		"valor_atributo": {table: "valores_atributo", fromCol: "valor_atributo_id", toCol: "id"},
	},
	"valores_atributo": {
		"atributo": {table: "atributos", fromCol: "atributo_id", toCol: "id"},
	},
	"banco_tipo_tarjeta": {
		"banco":        {table: "bancos", fromCol: "banco_id", toCol: "id"},
		"tipo_tarjeta": {table: "tipos_tarjeta", fromCol: "tipo_tarjeta_id", toCol: "id"},
	},
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore implements Store on top of the shared DB client.
type PostgresStore struct {
	client client.DBClientInterface
}

func NewPostgresStore(dbClient client.DBClientInterface) *PostgresStore {
	return &PostgresStore{client: dbClient}
}

// FindFirst returns the first row of table matching the filter, or (nil, nil)
// when nothing matches.
func (s *PostgresStore) FindFirst(ctx context.Context, table string, filter map[string]interface{}) (map[string]interface{}, error) {
	rows, err := s.query(ctx, table, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindAll returns every row of table matching the filter.
func (s *PostgresStore) FindAll(ctx context.Context, table string, filter map[string]interface{}) ([]map[string]interface{}, error) {
	return s.query(ctx, table, filter, 0)
}

func (s *PostgresStore) query(ctx context.Context, table string, filter map[string]interface{}, limit int) ([]map[string]interface{}, error) {
	if !constants.AllowedLookupTables[table] {
		return nil, fmt.Errorf("table '%s' is not allowed for lookups", table)
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name '%s'", table)
	}

	tableRelations := relations[table]

	// Base select plus every declared relation as a JSON column under its
	// alias. The relation set per table is small, so joining them
	// unconditionally keeps the query builder simple.
	selectCols := []string{"t.*"}
	joins := []string{}
	for alias, rel := range tableRelations {
		selectCols = append(selectCols, fmt.Sprintf(`row_to_json(%s.*) AS "%s"`, alias, alias))
		joins = append(joins, fmt.Sprintf(`LEFT JOIN %s %s ON %s.%s = t.%s`,
			rel.table, alias, alias, rel.toCol, rel.fromCol))
	}

	whereClauses := []string{}
	args := []interface{}{}
	argIndex := 1
	for key, value := range filter {
		qualified, err := qualifyColumn(table, key)
		if err != nil {
			return nil, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", qualified, argIndex))
		args = append(args, value)
		argIndex++
	}

	query := fmt.Sprintf("SELECT %s FROM %s t", strings.Join(selectCols, ", "), table)
	if len(joins) > 0 {
		query += " " + strings.Join(joins, " ")
	}
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.client.ExecuteQuery(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "lookup query against %s failed", table)
	}

	for _, row := range rows {
		expandRelationColumns(row, tableRelations)
	}
	return rows, nil
}

// qualifyColumn maps a filter key to a qualified column reference. Dot-path
// keys address a declared relation ("user.nombre" -> user.nombre); plain keys
// address the base table.
func qualifyColumn(table, key string) (string, error) {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if !identifierPattern.MatchString(p) {
			return "", fmt.Errorf("invalid filter column '%s'", key)
		}
	}
	switch len(parts) {
	case 1:
		return fmt.Sprintf("t.%s", parts[0]), nil
	case 2:
		if _, ok := relations[table][parts[0]]; !ok {
			return "", fmt.Errorf("unknown relation '%s' for table '%s'", parts[0], table)
		}
		return fmt.Sprintf("%s.%s", parts[0], parts[1]), nil
	default:
		return "", fmt.Errorf("filter key '%s' nests deeper than one relation", key)
	}
}

// expandRelationColumns converts the row_to_json relation columns from JSON
// text into nested maps so dot-path extraction works on the row.
func expandRelationColumns(row map[string]interface{}, tableRelations map[string]relation) {
	for alias := range tableRelations {
		raw, ok := row[alias].(string)
		if !ok || raw == "" {
			continue
		}
		var nested map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &nested); err == nil {
			row[alias] = nested
		}
	}
}

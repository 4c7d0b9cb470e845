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

package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/gestiona/business-rules-engine/internal/rules/model"
	"github.com/gestiona/business-rules-engine/internal/system/database/client"
)

// ExecutionStore is an insert-only audit log of matched rules.
type ExecutionStore struct {
	client client.DBClientInterface
}

func NewExecutionStore(dbClient client.DBClientInterface) *ExecutionStore {
	return &ExecutionStore{client: dbClient}
}

func (s *ExecutionStore) RecordExecution(ctx context.Context, record model.ExecutionRecord) error {
	entrada, err := json.Marshal(record.Entrada)
	if err != nil {
		return pkgerrors.Wrap(err, "encoding execution input")
	}
	salida, err := json.Marshal(record.Salida)
	if err != nil {
		return pkgerrors.Wrap(err, "encoding execution output")
	}

	_, err = s.client.Exec(ctx,
		`INSERT INTO reglas_ejecuciones
		 (id, regla_id, tenant_id, contexto, entrada, salida, exitosa, duracion_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		uuid.New().String(), record.ReglaID, record.TenantID, record.Contexto,
		string(entrada), string(salida), record.Exitosa, record.DuracionMs)
	if err != nil {
		return pkgerrors.Wrap(err, "inserting execution record")
	}
	return nil
}

// RecentExecutions returns the latest audit rows for one rule.
func (s *ExecutionStore) RecentExecutions(ctx context.Context, reglaID string, limit int) ([]model.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.client.ExecuteQuery(ctx,
		`SELECT id, regla_id, tenant_id, contexto, entrada, salida, exitosa, duracion_ms, created_at
		 FROM reglas_ejecuciones
		 WHERE regla_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, reglaID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying execution records")
	}

	records := make([]model.ExecutionRecord, 0, len(rows))
	for _, row := range rows {
		record := model.ExecutionRecord{
			ID:         asString(row["id"]),
			ReglaID:    asString(row["regla_id"]),
			TenantID:   asString(row["tenant_id"]),
			Contexto:   asString(row["contexto"]),
			Exitosa:    asBool(row["exitosa"]),
			DuracionMs: asInt64(row["duracion_ms"]),
			CreatedAt:  asTime(row["created_at"]),
		}
		if raw := asString(row["entrada"]); raw != "" {
			_ = json.Unmarshal([]byte(raw), &record.Entrada)
		}
		if raw := asString(row["salida"]); raw != "" {
			_ = json.Unmarshal([]byte(raw), &record.Salida)
		}
		records = append(records, record)
	}
	return records, nil
}

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

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore implements Store against a document database. Deployments that
// replicate reference data into documents get dot-path filters natively.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) FindFirst(ctx context.Context, table string, filter map[string]interface{}) (map[string]interface{}, error) {
	var row map[string]interface{}
	err := s.db.Collection(table).FindOne(ctx, toBSON(filter)).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "lookup against collection %s failed", table)
	}
	return row, nil
}

func (s *MongoStore) FindAll(ctx context.Context, table string, filter map[string]interface{}) ([]map[string]interface{}, error) {
	cursor, err := s.db.Collection(table).Find(ctx, toBSON(filter))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "lookup against collection %s failed", table)
	}
	defer cursor.Close(ctx)

	var rows []map[string]interface{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, pkgerrors.Wrapf(err, "decoding rows from collection %s failed", table)
	}
	return rows, nil
}

func toBSON(filter map[string]interface{}) bson.M {
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

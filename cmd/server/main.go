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

package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gestiona/business-rules-engine/internal/classifier"
	"github.com/gestiona/business-rules-engine/internal/engine"
	"github.com/gestiona/business-rules-engine/internal/lookup"
	ruleprovider "github.com/gestiona/business-rules-engine/internal/rules/provider"
	"github.com/gestiona/business-rules-engine/internal/rules/service"
	"github.com/gestiona/business-rules-engine/internal/rules/store"
	"github.com/gestiona/business-rules-engine/internal/system/config"
	"github.com/gestiona/business-rules-engine/internal/system/constants"
	"github.com/gestiona/business-rules-engine/internal/system/database/client"
	dbprovider "github.com/gestiona/business-rules-engine/internal/system/database/provider"
	"github.com/gestiona/business-rules-engine/internal/system/log"
	"github.com/gestiona/business-rules-engine/internal/system/managers"
)

const configFile = "repository/conf/deployment.yaml"
const schemaFile = "dbscripts/schema.sql"

func main() {
	breHome := getBREHome()

	envFiles, _ := filepath.Glob("config/*.env")
	_ = godotenv.Load(envFiles...)

	breConfig, err := config.LoadConfig(breHome, configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	if err := log.Init(breConfig.Log.LogLevel); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.GetLogger()

	dbClient, err := dbprovider.NewDBProvider().GetDBClient(breConfig.DataSource)
	if err != nil {
		stdlog.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()

	if err := dbClient.InitDatabase(breHome, schemaFile); err != nil {
		stdlog.Fatalf("Failed to initialize database schema: %v", err)
	}

	ruleEngine, rulesService := wireServices(dbClient, breConfig)
	ruleprovider.Init(rulesService, ruleEngine)

	serverAddr := fmt.Sprintf("%s:%d", breConfig.Addr.Host, breConfig.Addr.Port)
	mux := enableCORS(initMultiplexer())

	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		stdlog.Fatalf("Failed to start listener: %v", err)
	}
	logger.Info("Business rules engine started", log.String("addr", serverAddr))

	server := &http.Server{Handler: mux}
	if err := server.Serve(ln); err != nil {
		stdlog.Fatalf("Failed to serve requests: %v", err)
	}
}

// wireServices builds the engine and the administration service on top of the
// shared database client.
func wireServices(dbClient client.DBClientInterface, breConfig *config.Config) (*engine.Engine, *service.RulesService) {
	logger := log.GetLogger()

	rulesStore := store.NewRulesStore(dbClient)
	executionStore := store.NewExecutionStore(dbClient)
	repository := service.NewRepository(rulesStore, breConfig.RuleCacheTTL())

	var lookupStore lookup.Store = lookup.NewPostgresStore(dbClient)
	if breConfig.Mongo.URI != "" {
		mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(breConfig.Mongo.URI))
		if err != nil {
			stdlog.Fatalf("Failed to connect to document store: %v", err)
		}
		lookupStore = lookup.NewMongoStore(mongoClient.Database(breConfig.Mongo.Database))
		logger.Info("Reference lookups served from document store",
			log.String("database", breConfig.Mongo.Database))
	}

	var clf classifier.Classifier
	if breConfig.Classifier.Endpoint != "" {
		var results classifier.ResultCache
		if breConfig.Redis.Addr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     breConfig.Redis.Addr,
				Password: breConfig.Redis.Password,
				DB:       breConfig.Redis.DB,
			})
			results = classifier.NewRedisResultCache(redisClient, breConfig.ClassifierCacheTTL())
		} else {
			results = classifier.NewMemoryResultCache(breConfig.ClassifierCacheTTL())
		}
		clf = classifier.NewCachedClassifier(classifier.NewHTTPClassifier(breConfig.Classifier), results)
	}

	ruleEngine := engine.NewEngine(repository, lookupStore, clf, engine.Options{
		AITimeout:           breConfig.ClassifierTimeout(),
		ConfidenceThreshold: breConfig.Classifier.ConfidenceThreshold,
		Recorder:            executionStore,
	})
	rulesService := service.NewRulesService(rulesStore, executionStore, repository)
	return ruleEngine, rulesService
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)

	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		stdlog.Fatalf("Failed to register the services: %v", err)
	}

	return mux
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getBREHome() string {

	projectHomeFlag := flag.String("breHome", "", "Path to the rules engine home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		return *projectHomeFlag
	}
	dir, err := os.Getwd()
	if err != nil {
		stdlog.Fatalf("Failed to get current working directory: %v", err)
	}
	return dir
}

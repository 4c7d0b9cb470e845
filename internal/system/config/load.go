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

package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	defaultRuleCacheTTL      = 5 * time.Minute
	defaultClassifierTimeout = 10 * time.Second
)

// LoadConfig reads the deployment YAML relative to the application home.
// Environment variable references inside the file are expanded before parsing.
func LoadConfig(appHome, filePath string) (*Config, error) {
	file, err := os.ReadFile(path.Join(appHome, filePath))
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RuleCacheTTL returns the configured rule cache TTL, or the 5 minute default.
func (c *Config) RuleCacheTTL() time.Duration {
	if c.Engine.RuleCacheTTLSeconds <= 0 {
		return defaultRuleCacheTTL
	}
	return time.Duration(c.Engine.RuleCacheTTLSeconds) * time.Second
}

// ClassifierCacheTTL returns how long classifier answers are shared between
// runs. Defaults to 24 hours; classifications of identical text rarely change.
func (c *Config) ClassifierCacheTTL() time.Duration {
	if c.Classifier.CacheTTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Classifier.CacheTTLSeconds) * time.Second
}

// ClassifierTimeout returns the per-call classifier timeout, or the default.
func (c *Config) ClassifierTimeout() time.Duration {
	if c.Classifier.TimeoutSeconds <= 0 {
		return defaultClassifierTimeout
	}
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

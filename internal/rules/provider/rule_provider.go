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

package provider

import (
	"github.com/gestiona/business-rules-engine/internal/engine"
	"github.com/gestiona/business-rules-engine/internal/rules/service"
)

var (
	rulesService service.RulesServiceInterface
	ruleEngine   *engine.Engine
)

// Init wires the provider singletons at startup.
func Init(svc service.RulesServiceInterface, eng *engine.Engine) {
	rulesService = svc
	ruleEngine = eng
}

// RuleProviderInterface defines the interface for the rule provider.
type RuleProviderInterface interface {
	GetRulesService() service.RulesServiceInterface
	GetRuleEngine() *engine.Engine
}

// RuleProvider is the default implementation of the RuleProviderInterface.
type RuleProvider struct{}

// NewRuleProvider creates a new instance of RuleProvider.
func NewRuleProvider() RuleProviderInterface {

	return &RuleProvider{}
}

// GetRulesService returns the rules administration service instance.
func (rp *RuleProvider) GetRulesService() service.RulesServiceInterface {

	return rulesService
}

// GetRuleEngine returns the shared rule engine instance.
func (rp *RuleProvider) GetRuleEngine() *engine.Engine {

	return ruleEngine
}

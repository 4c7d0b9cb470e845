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

package errors

var (
	// Rule administration errors.
	ErrWhileAddingRule = ErrorMessage{
		Code:        "RUL-1001",
		Message:     "Error while adding business rule",
		Description: "The rule could not be persisted",
	}
	ErrWhileUpdatingRule = ErrorMessage{
		Code:        "RUL-1002",
		Message:     "Error while updating business rule",
		Description: "The rule could not be updated",
	}
	ErrWhileDeletingRule = ErrorMessage{
		Code:        "RUL-1003",
		Message:     "Error while deleting business rule",
		Description: "The rule could not be deleted",
	}
	ErrWhileFetchingRules = ErrorMessage{
		Code:        "RUL-1004",
		Message:     "Error while fetching business rules",
		Description: "The active rule set could not be loaded from the store",
	}
	ErrRuleNotFound = ErrorMessage{
		Code:        "RUL-1005",
		Message:     "Business rule not found",
		Description: "No rule exists for the given identifier",
	}
	ErrInvalidRuleConfig = ErrorMessage{
		Code:        "RUL-1006",
		Message:     "Invalid rule configuration",
		Description: "The rule configuration payload failed validation",
	}
	ErrRuleCodeExists = ErrorMessage{
		Code:        "RUL-1007",
		Message:     "Rule code already in use",
		Description: "Rule codes must be unique",
	}
	ErrWhileUpdatingTenantLink = ErrorMessage{
		Code:        "RUL-1008",
		Message:     "Error while updating tenant rule link",
		Description: "The global rule activation for the tenant could not be updated",
	}
	ErrGlobalRuleExpected = ErrorMessage{
		Code:        "RUL-1009",
		Message:     "Rule is not a global rule",
		Description: "Tenant links can only be created against global rules",
	}

	// Engine errors.
	ErrWhileRecordingExecution = ErrorMessage{
		Code:        "ENG-2001",
		Message:     "Error while recording rule execution",
		Description: "The execution audit row could not be inserted",
	}
	ErrWhileQueryingReferenceData = ErrorMessage{
		Code:        "ENG-2002",
		Message:     "Error while querying reference data",
		Description: "The lookup against the reference store failed",
	}
	ErrClassifierUnavailable = ErrorMessage{
		Code:        "ENG-2003",
		Message:     "Classifier call failed",
		Description: "The external classifier did not return a usable result",
	}
)

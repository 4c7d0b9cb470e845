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

package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gestiona/business-rules-engine/internal/system/config"
	"github.com/gestiona/business-rules-engine/internal/system/errors"
	"github.com/gestiona/business-rules-engine/internal/system/log"
)

// HTTPClassifier posts classification requests to the configured gateway.
// Each request carries a short-lived HS256 service token.
type HTTPClassifier struct {
	endpoint      string
	issuer        string
	signingSecret []byte
	httpClient    *http.Client
}

type classifyRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Input  string `json:"input"`
}

func NewHTTPClassifier(cfg config.ClassifierConfig) *HTTPClassifier {
	return &HTTPClassifier{
		endpoint:      cfg.Endpoint,
		issuer:        cfg.Issuer,
		signingSecret: []byte(cfg.SigningSecret),
		httpClient:    &http.Client{},
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, modelID, promptID, inputText string) (Result, error) {
	body, err := json.Marshal(classifyRequest{Model: modelID, Prompt: promptID, Input: inputText})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.serviceToken()
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, errors.NewServerError(errors.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.GetLogger().Warn("Classifier returned non-200 status",
			log.Int("status", resp.StatusCode), log.String("body", string(payload)))
		return Result{}, errors.NewServerError(errors.ErrClassifierUnavailable,
			fmt.Errorf("classifier returned status %d", resp.StatusCode))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, errors.NewServerError(errors.ErrClassifierUnavailable, err)
	}
	return result, nil
}

// serviceToken signs a short-lived JWT identifying this service to the
// classifier gateway.
func (c *HTTPClassifier) serviceToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.issuer,
		"iat": now.Unix(),
		"exp": now.Add(2 * time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingSecret)
}

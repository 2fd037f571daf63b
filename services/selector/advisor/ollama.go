// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/selection"
)

// Ollama is the advisory source backed by a local Ollama instance. It
// gives an air-gapped deployment a second opinion without any external
// API dependency.
//
// Environment:
//
//	OLLAMA_BASE_URL - Base URL of the Ollama server. Required.
//	OLLAMA_MODEL - Model name. Default: gpt-oss.
//	LLM_TEMPERATURE, LLM_MAX_TOKENS - Shared generation settings.
type Ollama struct {
	httpClient *http.Client
	baseURL    string
	model      string

	temperature float32
	maxTokens   int
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// NewOllama builds the Ollama advisory source from the environment.
func NewOllama() (*Ollama, error) {
	baseURL := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("%w: OLLAMA_BASE_URL is missing", ErrNotConfigured)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OLLAMA_MODEL"))
	if model == "" {
		model = "gpt-oss"
		slog.Warn("OLLAMA_MODEL not set, defaulting to gpt-oss")
	}

	slog.Info("Initializing Ollama advisor", "base_url", baseURL, "model", model)
	return &Ollama{
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
		baseURL:     baseURL,
		model:       model,
		temperature: envFloat32("LLM_TEMPERATURE", defaultTemperature),
		maxTokens:   envInt("LLM_MAX_TOKENS", defaultMaxTokens),
	}, nil
}

// Name implements selection.Advisor.
func (o *Ollama) Name() string { return "ollama" }

// Select implements selection.Advisor against /api/generate with JSON
// format forced. Failure semantics match the other backends.
func (o *Ollama) Select(ctx context.Context, payload *datatypes.SelectRequest) (*selection.Result, error) {
	userPrompt, err := buildUserPrompt(payload)
	if err != nil {
		return nil, err
	}

	reqBody := ollamaGenerateRequest{
		Model:  o.model,
		System: systemPrompt,
		Prompt: userPrompt,
		Stream: false,
		Format: "json",
		Options: map[string]any{
			"temperature": o.temperature,
			"num_predict": o.maxTokens,
		},
	}
	reqBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request to Ollama: %w", err)
	}

	generateURL := o.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, generateURL, bytes.NewBuffer(reqBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to Ollama: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Calling Ollama advisor", "model", o.model)
	resp, err := o.httpClient.Do(req)
	if err != nil {
		slog.Warn("Ollama advisor call failed", "error", err)
		return errorResult("external", "ollama", err.Error()), nil
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("Failed to read Ollama response body", "error", err)
		return errorResult("external", "ollama", err.Error()), nil
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			var errResp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(respBodyBytes, &errResp); err == nil &&
				strings.Contains(errResp.Error, "model") && strings.Contains(errResp.Error, "not found") {
				slog.Warn("Ollama model not found", "model", o.model)
				return nil, fmt.Errorf("model '%s' not found. Please run: 'ollama pull %s'", o.model, o.model)
			}
		}
		slog.Warn("Ollama returned an error",
			"status_code", resp.StatusCode, "response", string(respBodyBytes))
		return errorResult("external", "ollama",
			fmt.Sprintf("http:%d", resp.StatusCode)), nil
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(respBodyBytes, &genResp); err != nil {
		slog.Warn("Failed to parse JSON response from Ollama", "error", err)
		return nil, fmt.Errorf("failed to parse Ollama response: %w", err)
	}

	result, err := parseSelection(genResp.Response)
	if err != nil {
		return nil, err
	}
	result.Metadata["mode"] = "external"
	result.Metadata["provider"] = "ollama"
	slog.Info("Ollama advisor selection",
		"selected", len(result.SelectedTests), "confidence", result.Confidence)
	return result, nil
}

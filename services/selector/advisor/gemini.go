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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/selection"
)

// Gemini is the advisory source backed by the Gemini API.
//
// Environment:
//
//	GEMINI_API_KEY - API key. Required.
//	GEMINI_MODEL - Model name. Default: gemini-1.5-pro.
//	LLM_TEMPERATURE, LLM_MAX_TOKENS - Shared generation settings.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewGemini builds the Gemini advisory source from the environment.
func NewGemini(ctx context.Context) (*Gemini, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		slog.Error("GEMINI_API_KEY environment variable not set")
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is missing", ErrNotConfigured)
	}

	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = "gemini-1.5-pro"
		slog.Warn("GEMINI_MODEL not set, defaulting to gemini-1.5-pro")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	slog.Info("Initializing Gemini advisor", "model", model)
	return &Gemini{
		client:      client,
		model:       model,
		temperature: envFloat32("LLM_TEMPERATURE", defaultTemperature),
		maxTokens:   envInt("LLM_MAX_TOKENS", defaultMaxTokens),
	}, nil
}

// Name implements selection.Advisor.
func (g *Gemini) Name() string { return "gemini" }

// Select implements selection.Advisor. Failure semantics match the
// OpenAI backend: transport errors degrade to a low-confidence empty
// result, unparseable responses are errors.
func (g *Gemini) Select(ctx context.Context, payload *datatypes.SelectRequest) (*selection.Result, error) {
	userPrompt, err := buildUserPrompt(payload)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   int32(g.maxTokens),
		ResponseMIMEType:  "application/json",
	}

	slog.Debug("Calling Gemini advisor", "model", g.model)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), cfg)
	if err != nil {
		slog.Warn("Gemini advisor call failed", "error", err)
		return errorResult("external", "gemini", err.Error()), nil
	}

	content := resp.Text()
	if content == "" {
		slog.Warn("Gemini advisor returned no content")
		return errorResult("external", "gemini", ErrEmptyResponse.Error()), nil
	}

	result, err := parseSelection(content)
	if err != nil {
		return nil, err
	}
	result.Metadata["mode"] = "external"
	result.Metadata["provider"] = "gemini"
	slog.Info("Gemini advisor selection",
		"selected", len(result.SelectedTests), "confidence", result.Confidence)
	return result, nil
}

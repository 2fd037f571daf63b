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
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/selection"
)

// OpenAI is the advisory source backed by an OpenAI-compatible chat
// completions endpoint. Any service implementing that API works: OpenAI
// itself, Azure OpenAI, or an open-source serving platform.
//
// Environment:
//
//	LLM_API_KEY - Bearer token. Required.
//	LLM_ENDPOINT - Base URL or full chat-completions URL. Default: OpenAI.
//	LLM_MODEL - Model name. Default: gpt-4o-mini.
//	LLM_TEMPERATURE - Sampling temperature. Default: 0.2.
//	LLM_MAX_TOKENS - Response token cap. Default: 800.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAI builds the OpenAI-compatible advisory source from the
// environment.
func NewOpenAI() (*OpenAI, error) {
	apiKey := strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	if apiKey == "" {
		slog.Error("LLM_API_KEY environment variable not set")
		return nil, fmt.Errorf("%w: LLM_API_KEY is missing", ErrNotConfigured)
	}

	model := strings.TrimSpace(os.Getenv("LLM_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("LLM_MODEL not set, defaulting to gpt-4o-mini")
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint := strings.TrimSpace(os.Getenv("LLM_ENDPOINT")); endpoint != "" {
		// Accept the full chat-completions URL for compatibility with
		// older deployments; the client wants the API base.
		endpoint = strings.TrimSuffix(endpoint, "/")
		endpoint = strings.TrimSuffix(endpoint, "/chat/completions")
		cfg.BaseURL = endpoint
	}

	slog.Info("Initializing OpenAI-compatible advisor",
		"model", model, "base_url", cfg.BaseURL)
	return &OpenAI{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: envFloat32("LLM_TEMPERATURE", defaultTemperature),
		maxTokens:   envInt("LLM_MAX_TOKENS", defaultMaxTokens),
	}, nil
}

// Name implements selection.Advisor.
func (o *OpenAI) Name() string { return "openai" }

// Select implements selection.Advisor.
//
// Description:
//
//	Builds the selection prompt, calls the chat completions API with a
//	forced JSON response format, and parses the answer. API and
//	transport failures produce a low-confidence empty result so hybrid
//	mode still returns the deterministic selection; only a response
//	that contains no parseable JSON is an error.
func (o *OpenAI) Select(ctx context.Context, payload *datatypes.SelectRequest) (*selection.Result, error) {
	userPrompt, err := buildUserPrompt(payload)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:         o.temperature,
		MaxCompletionTokens: o.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	slog.Debug("Calling OpenAI-compatible advisor", "model", o.model)
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Warn("OpenAI advisor call failed", "error", err)
		return errorResult("external", "openai-compatible", err.Error()), nil
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI advisor returned no choices")
		return errorResult("external", "openai-compatible", ErrEmptyResponse.Error()), nil
	}

	result, err := parseSelection(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	result.Metadata["mode"] = "external"
	result.Metadata["provider"] = "openai-compatible"
	slog.Info("OpenAI advisor selection",
		"selected", len(result.SelectedTests), "confidence", result.Confidence)
	return result, nil
}

func envFloat32(key string, fallback float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		slog.Warn("Invalid float in environment, using default", "key", key, "value", raw)
		return fallback
	}
	return float32(v)
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", raw)
		return fallback
	}
	return v
}

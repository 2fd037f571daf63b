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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAI_RequiresAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")

	if _, err := NewOpenAI(); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestOpenAI_SelectSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": `{"selected_tests":["ServiceTest#testProcessData"],"confidence":0.8}`,
					},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_ENDPOINT", server.URL+"/chat/completions")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")

	adv, err := NewOpenAI()
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}

	res, err := adv.Select(context.Background(), promptPayload())
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if len(res.SelectedTests) != 1 || res.SelectedTests[0] != "ServiceTest#testProcessData" {
		t.Errorf("selected = %v", res.SelectedTests)
	}
	if res.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", res.Confidence)
	}
	if res.Metadata["provider"] != "openai-compatible" {
		t.Errorf("provider = %v", res.Metadata["provider"])
	}
}

func TestOpenAI_APIErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_ENDPOINT", server.URL+"/chat/completions")

	adv, err := NewOpenAI()
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}

	res, err := adv.Select(context.Background(), promptPayload())
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}

	if len(res.SelectedTests) != 0 {
		t.Errorf("selected = %v, want empty", res.SelectedTests)
	}
	if res.Confidence != errorConfidence {
		t.Errorf("confidence = %v, want %v", res.Confidence, errorConfidence)
	}
}

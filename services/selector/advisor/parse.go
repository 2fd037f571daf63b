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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianSelect/services/selector/selection"
)

// fencedJSONPattern extracts a ```json fenced block from a chatty model
// response.
var fencedJSONPattern = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")

// modelSelection is the JSON object every backend is instructed to
// return. Confidence is a pointer so a missing field can default.
type modelSelection struct {
	SelectedTests []string          `json:"selected_tests"`
	Explanations  map[string]string `json:"explanations"`
	Confidence    *float64          `json:"confidence"`
	Metadata      map[string]any    `json:"metadata"`
}

// parseSelection salvages a selection object from model output.
//
// Description:
//
//	Tries, in order: the whole text as JSON, a ```json fenced block,
//	and the outermost {...} substring. Models wrap their JSON in prose
//	and fences often enough that all three paths occur in practice.
//
// Inputs:
//
//	content - Raw model response text.
//
// Outputs:
//
//	*selection.Result - The parsed selection; confidence defaults to
//	  0.5 when the model omits it.
//	error - ErrParseFailed when no candidate parses.
func parseSelection(content string) (*selection.Result, error) {
	content = strings.TrimSpace(content)

	candidates := []string{content}
	if m := fencedJSONPattern.FindStringSubmatch(content); m != nil {
		candidates = append(candidates, m[1])
	}
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start != -1 && end > start {
		candidates = append(candidates, content[start:end+1])
	}

	for _, candidate := range candidates {
		var parsed modelSelection
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		return resultFrom(parsed), nil
	}

	head := content
	if len(head) > 100 {
		head = head[:100]
	}
	return nil, fmt.Errorf("%w: %q", ErrParseFailed, head)
}

func resultFrom(parsed modelSelection) *selection.Result {
	confidence := 0.5
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	if parsed.SelectedTests == nil {
		parsed.SelectedTests = []string{}
	}
	if parsed.Explanations == nil {
		parsed.Explanations = map[string]string{}
	}
	if parsed.Metadata == nil {
		parsed.Metadata = map[string]any{}
	}
	return &selection.Result{
		SelectedTests: parsed.SelectedTests,
		Explanations:  parsed.Explanations,
		Confidence:    confidence,
		Metadata:      parsed.Metadata,
	}
}

// errorResult is the low-confidence empty result reported for transport
// and HTTP failures, in place of a hard error.
func errorResult(mode, provider string, errDetail string) *selection.Result {
	return &selection.Result{
		SelectedTests: []string{},
		Explanations:  map[string]string{},
		Confidence:    errorConfidence,
		Metadata: map[string]any{
			"mode":     mode,
			"provider": provider,
			"error":    errDetail,
		},
	}
}

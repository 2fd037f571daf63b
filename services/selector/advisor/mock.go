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
	"log/slog"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/selection"
)

// Mock is the advisory source used for pipeline testing. It never
// invents tests; the deterministic engine carries the selection and the
// mock contributes only a confidence signal.
type Mock struct{}

// NewMock returns the mock advisory source.
func NewMock() *Mock { return &Mock{} }

// Name implements selection.Advisor.
func (m *Mock) Name() string { return "mock" }

// Select implements selection.Advisor with an empty, deterministic
// answer. An empty change set scores 0.5, anything else 0.4.
func (m *Mock) Select(_ context.Context, payload *datatypes.SelectRequest) (*selection.Result, error) {
	if len(payload.ChangedFiles) == 0 {
		return &selection.Result{
			SelectedTests: []string{},
			Explanations:  map[string]string{},
			Confidence:    0.5,
			Metadata:      map[string]any{"reason": "no changes", "mode": "mock"},
		}, nil
	}

	slog.Debug("Mock advisory selection",
		"changed_files", len(payload.ChangedFiles), "selected", 0)
	return &selection.Result{
		SelectedTests: []string{},
		Explanations:  map[string]string{},
		Confidence:    0.4,
		Metadata:      map[string]any{"mode": "mock"},
	}, nil
}

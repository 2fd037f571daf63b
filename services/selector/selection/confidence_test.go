// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selection

import (
	"testing"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

func TestCalculateConfidence_NoTouchedMethodsFloor(t *testing.T) {
	meta := &GraphMetadata{TouchedMethodsCount: 0}

	got := calculateConfidence(nil, meta, 0)

	if got != NoSignalConfidence {
		t.Errorf("expected fixed floor %.2f, got %.2f", NoSignalConfidence, got)
	}
}

func TestCalculateConfidence_SmallChangeWithCoverage(t *testing.T) {
	// coverage 0.7, size 1.0 (1 line), selection 1.0 (2 tests),
	// depth 0.9 (max depth 1): 0.28+0.25+0.2+0.135 = 0.865 -> 0.87.
	changed := []datatypes.ChangedFile{
		{Path: "a.java", Hunks: []datatypes.Hunk{{Start: 10, End: 10}}},
	}
	meta := &GraphMetadata{
		TouchedMethodsCount: 1,
		TotalCallersCount:   3,
		MaxDepthUsed:        1,
	}

	got := calculateConfidence(changed, meta, 2)

	if got != 0.87 {
		t.Errorf("expected 0.87, got %.2f", got)
	}
}

func TestCalculateConfidence_LargeDiffLowersSizeFactor(t *testing.T) {
	// 500 changed lines clamps the size factor to 0.3.
	changed := []datatypes.ChangedFile{
		{Path: "a.java", Hunks: []datatypes.Hunk{{Start: 1, End: 500}}},
	}
	meta := &GraphMetadata{
		TouchedMethodsCount: 1,
		TotalCallersCount:   5,
		MaxDepthUsed:        2,
	}

	// 0.4*0.7 + 0.25*0.3 + 0.2*1.0 + 0.15*0.8 = 0.675, floored to
	// nothing (already above 0.5) and rounded.
	got := calculateConfidence(changed, meta, 3)

	if got != 0.68 {
		t.Errorf("expected 0.68, got %.2f", got)
	}
}

func TestCalculateConfidence_HunkLineFallbacks(t *testing.T) {
	tests := []struct {
		name string
		hunk datatypes.Hunk
		want int
	}{
		{"explicit range", datatypes.Hunk{Start: 3, End: 7}, 5},
		{"new lines only", datatypes.Hunk{NewLines: 12}, 12},
		{"old lines only", datatypes.Hunk{OldLines: 4}, 4},
		{"nothing known", datatypes.Hunk{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hunk.ChangedLines(); got != tt.want {
				t.Errorf("ChangedLines() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateConfidence_DeepTraversalClampsDepthFactor(t *testing.T) {
	changed := []datatypes.ChangedFile{
		{Path: "a.java", Hunks: []datatypes.Hunk{{Start: 1, End: 1}}},
	}
	meta := &GraphMetadata{
		TouchedMethodsCount: 1,
		TotalCallersCount:   50,
		MaxDepthUsed:        12, // 1.0 - 1.2 clamps to 0.4
	}

	// 0.4*0.7 + 0.25*1.0 + 0.2*1.0 + 0.15*0.4 = 0.79
	got := calculateConfidence(changed, meta, 5)

	if got != 0.79 {
		t.Errorf("expected 0.79, got %.2f", got)
	}
}

func TestCalculateConfidence_GraphSupportedSelectionNeverLow(t *testing.T) {
	// Huge diff, many tests, deep chain: every factor at its minimum.
	// 0.4*0.7 + 0.25*0.3 + 0.2*0.6 + 0.15*0.4 = 0.535 -> 0.54, which is
	// the worst case for a graph-supported non-empty selection; the 0.5
	// floor holds.
	changed := []datatypes.ChangedFile{
		{Path: "a.java", Hunks: []datatypes.Hunk{{Start: 1, End: 2000}}},
	}
	meta := &GraphMetadata{
		TouchedMethodsCount: 1,
		TotalCallersCount:   400,
		MaxDepthUsed:        15,
	}

	got := calculateConfidence(changed, meta, 200)

	if got != 0.54 {
		t.Errorf("expected 0.54, got %.2f", got)
	}
	if got < 0.5 {
		t.Errorf("graph-supported selection reported below the 0.5 floor: %.2f", got)
	}
}

func TestCalculateConfidence_NoFloorWithoutSelection(t *testing.T) {
	changed := []datatypes.ChangedFile{
		{Path: "a.java", Hunks: []datatypes.Hunk{{Start: 5, End: 9}}},
	}
	meta := &GraphMetadata{
		TouchedMethodsCount: 1,
		TotalCallersCount:   1, // nothing beyond the touched set
		MaxDepthUsed:        0,
	}

	// 0.4*0.3 + 0.25*1.0 + 0.2*0.2 + 0.15*1.0 = 0.56
	got := calculateConfidence(changed, meta, 0)

	if got != 0.56 {
		t.Errorf("expected 0.56, got %.2f", got)
	}
}

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
	"math"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

// NoSignalConfidence is reported when no touched identifiers were found.
const NoSignalConfidence = 0.1

// Confidence factor weights. These are design choices, not values fit to
// data, and are reproduced exactly for compatibility with existing CI
// gates that consume the score.
const (
	coverageWeight  = 0.4
	sizeWeight      = 0.25
	selectionWeight = 0.2
	depthWeight     = 0.15
)

// calculateConfidence combines graph-coverage, change-size,
// selection-count and traversal-depth signals into one score in [0,1],
// rounded to two decimals.
//
// A graph-supported non-empty selection is floored at 0.5: when at least
// one test was selected and the traversal reached callers beyond the
// touched set, the score is never reported as low-confidence.
func calculateConfidence(changedFiles []datatypes.ChangedFile, meta *GraphMetadata, selectedCount int) float64 {
	if meta.TouchedMethodsCount == 0 {
		return NoSignalConfidence
	}

	// The traversal always visits the seeds, so "found call
	// relationships" means it reached callers beyond the touched set.
	reachedBeyondTouched := meta.TotalCallersCount > meta.TouchedMethodsCount

	coverageFactor := 0.3
	if reachedBeyondTouched {
		coverageFactor = 0.7
	}

	changedLines := 0
	for _, cf := range changedFiles {
		for _, h := range cf.Hunks {
			changedLines += h.ChangedLines()
		}
	}
	if changedLines < 1 {
		changedLines = 1
	}
	sizeFactor := clamp(50.0/float64(changedLines), 0.3, 1.0)

	var selectionFactor float64
	switch {
	case selectedCount == 0:
		selectionFactor = 0.2
	case selectedCount <= 10:
		selectionFactor = 1.0
	case selectedCount <= 50:
		selectionFactor = 0.8
	default:
		selectionFactor = 0.6
	}

	depthFactor := clamp(1.0-float64(meta.MaxDepthUsed)*0.1, 0.4, 1.0)

	confidence := coverageWeight*coverageFactor +
		sizeWeight*sizeFactor +
		selectionWeight*selectionFactor +
		depthWeight*depthFactor

	if selectedCount > 0 && reachedBeyondTouched {
		confidence = math.Max(confidence, 0.5)
	}

	return round2(clamp(confidence, 0.0, 1.0))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

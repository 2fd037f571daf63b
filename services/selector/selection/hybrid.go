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
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

// DefaultAdvisorTimeout bounds one advisory-source invocation.
const DefaultAdvisorTimeout = 60 * time.Second

// deterministicSourceName prefixes deterministic explanations in merged
// hybrid output.
const deterministicSourceName = "Deterministic"

// Advisor is a pluggable second opinion on test selection.
//
// Concrete advisors (remote model call, local model, static stub) are
// interchangeable strategy implementations of this one capability; the
// orchestrator never depends on a concrete type. An advisor may fail for
// any reason (network, parse, configuration); failures degrade the
// hybrid result to deterministic-only and are never fatal.
type Advisor interface {
	// Name identifies the advisor in logs, metadata and merged
	// explanations, e.g. "openai" or "mock".
	Name() string

	// Select returns an independent candidate selection for the payload.
	// Implementations must honor ctx cancellation.
	Select(ctx context.Context, payload *datatypes.SelectRequest) (*Result, error)
}

// SelectTestsHybrid combines the deterministic selector with an
// advisory source.
//
// Description:
//
//	Computes the deterministic result first, then invokes the advisor
//	under a bounded timeout. Any advisor failure is logged and the
//	hybrid result degrades to the deterministic result alone. On
//	success, the selected set is the union of both candidate sets; when
//	the union exceeds the cap, every deterministic test is kept and
//	remaining capacity is filled with advisory-only tests in the
//	advisor's original order. Deterministic tests are never evicted.
//
//	Hybrid confidence is min(1.0, max(det, advisory) + 0.2*overlap),
//	with overlap = |intersection| / max(|union|, 1). With a nil advisor,
//	the deterministic result is returned unchanged.
//
// Inputs:
//
//	ctx - Caller context; the advisor call gets a derived timeout.
//	in - Selection input, as for SelectTests.
//	adv - Advisory source; nil disables hybrid merging.
//	timeout - Advisor timeout; <= 0 uses DefaultAdvisorTimeout.
//
// Outputs:
//
//	*Result - The merged (or degraded) result.
//	error - Only for caller-contract violations in the input.
func SelectTestsHybrid(ctx context.Context, in Input, adv Advisor, timeout time.Duration) (*Result, error) {
	det, err := SelectTests(in)
	if err != nil {
		return nil, err
	}
	if adv == nil {
		return det, nil
	}

	if timeout <= 0 {
		timeout = DefaultAdvisorTimeout
	}
	advCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	advRes, advErr := adv.Select(advCtx, advisorPayload(in))
	if advErr != nil {
		slog.Warn("Advisory selection failed, using deterministic only",
			"advisor", adv.Name(), "error", advErr)
		det.Metadata["advisor_error"] = advErr.Error()
		det.Metadata["advisor"] = adv.Name()
		return det, nil
	}

	return mergeResults(det, advRes, adv.Name(), effectiveMaxTests(in), in.AllowedTests), nil
}

// advisorPayload rebuilds the request payload handed to the advisor.
func advisorPayload(in Input) *datatypes.SelectRequest {
	return &datatypes.SelectRequest{
		Repo:         in.Repo,
		ChangedFiles: in.ChangedFiles,
		JdepsGraph:   in.JdepsGraph,
		CallGraph:    in.CallGraph,
		AllowedTests: in.AllowedTests,
		Settings:     datatypes.Settings{MaxTests: effectiveMaxTests(in)},
	}
}

func effectiveMaxTests(in Input) int {
	if in.MaxTests == 0 {
		return datatypes.DefaultMaxTests
	}
	return in.MaxTests
}

// mergeResults unions the deterministic and advisory selections under
// the deterministic-first truncation policy.
func mergeResults(det, adv *Result, advisorName string, maxTests int, allowedTests []string) *Result {
	detSet := make(map[string]struct{}, len(det.SelectedTests))
	for _, t := range det.SelectedTests {
		detSet[t] = struct{}{}
	}

	allowed := make(map[string]struct{}, len(allowedTests))
	for _, t := range allowedTests {
		allowed[t] = struct{}{}
	}

	// Advisory candidates outside the allowed set are discarded up
	// front; an advisor must not widen the selection past what the
	// build system knows about.
	advisoryOnly := make([]string, 0, len(adv.SelectedTests))
	advSet := make(map[string]struct{}, len(adv.SelectedTests))
	for _, t := range adv.SelectedTests {
		if len(allowed) > 0 {
			if _, ok := allowed[t]; !ok {
				continue
			}
		}
		if _, dup := advSet[t]; dup {
			continue
		}
		advSet[t] = struct{}{}
		if _, ok := detSet[t]; !ok {
			advisoryOnly = append(advisoryOnly, t)
		}
	}

	unionSize := len(det.SelectedTests) + len(advisoryOnly)
	union := make([]string, 0, unionSize)
	union = append(union, det.SelectedTests...)
	union = append(union, advisoryOnly...)
	if len(union) > maxTests {
		union = union[:maxTests]
	}

	overlap := 0
	for t := range advSet {
		if _, ok := detSet[t]; ok {
			overlap++
		}
	}
	overlapRatio := float64(overlap) / float64(max(unionSize, 1))

	explanations := make(map[string]string, len(union))
	for _, t := range union {
		detExp, inDet := det.Explanations[t]
		advExp, inAdv := adv.Explanations[t]
		switch {
		case inDet && inAdv:
			explanations[t] = deterministicSourceName + ": " + detExp + "; " + advisorName + ": " + advExp
		case inDet:
			explanations[t] = deterministicSourceName + ": " + detExp
		case inAdv:
			explanations[t] = advisorName + ": " + advExp
		}
	}

	confidence := clamp(max(det.Confidence, adv.Confidence)+0.2*overlapRatio, 0.0, 1.0)

	metadata := map[string]any{
		"selection_method": "hybrid_deterministic_advisory",
		"advisor":          advisorName,
		"deterministic": map[string]any{
			"tests_count": len(det.SelectedTests),
			"confidence":  det.Confidence,
			"metadata":    det.Metadata,
		},
		"advisory": map[string]any{
			"tests_count": len(adv.SelectedTests),
			"confidence":  adv.Confidence,
			"metadata":    adv.Metadata,
		},
		"union": map[string]any{
			"total_tests":        len(union),
			"overlap_count":      overlap,
			"overlap_ratio":      overlapRatio,
			"deterministic_only": len(det.SelectedTests) - overlap,
			"advisory_only":      len(advisoryOnly),
		},
	}

	slog.Info("Hybrid selection complete",
		"deterministic", len(det.SelectedTests),
		"advisory", len(adv.SelectedTests),
		"union", len(union),
		"overlap", overlap,
		"confidence", confidence)

	return &Result{
		SelectedTests: union,
		Explanations:  explanations,
		Confidence:    confidence,
		Metadata:      metadata,
	}
}

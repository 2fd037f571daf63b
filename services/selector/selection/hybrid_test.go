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
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/graph"
)

// stubAdvisor is a canned advisory source for merge tests.
type stubAdvisor struct {
	name string
	res  *Result
	err  error
}

func (s *stubAdvisor) Name() string { return s.name }

func (s *stubAdvisor) Select(_ context.Context, _ *datatypes.SelectRequest) (*Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

// blockingAdvisor never answers; it only honors cancellation.
type blockingAdvisor struct{}

func (blockingAdvisor) Name() string { return "slow" }

func (blockingAdvisor) Select(ctx context.Context, _ *datatypes.SelectRequest) (*Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func hybridInput() Input {
	return Input{
		ChangedFiles: serviceChange(),
		CallGraph: []graph.CallEdge{
			{Caller: "ServiceTest#testProcessData", Callee: "com.foo.Service#processData"},
			{Caller: "IntegrationTest#testWorkflow", Callee: "com.foo.Service#processData"},
		},
	}
}

func TestSelectTestsHybrid_NilAdvisorReturnsDeterministic(t *testing.T) {
	in := hybridInput()

	det, err := SelectTests(in)
	if err != nil {
		t.Fatalf("SelectTests failed: %v", err)
	}
	hyb, err := SelectTestsHybrid(context.Background(), in, nil, 0)
	if err != nil {
		t.Fatalf("SelectTestsHybrid failed: %v", err)
	}

	if !reflect.DeepEqual(hyb.SelectedTests, det.SelectedTests) {
		t.Errorf("selected differ: %v vs %v", hyb.SelectedTests, det.SelectedTests)
	}
	if hyb.Confidence != det.Confidence {
		t.Errorf("confidence differ: %.2f vs %.2f", hyb.Confidence, det.Confidence)
	}
	if !reflect.DeepEqual(hyb.Explanations, det.Explanations) {
		t.Errorf("explanations differ: %v vs %v", hyb.Explanations, det.Explanations)
	}
	if hyb.Metadata["selection_method"] != "graph_based_traversal" {
		t.Errorf("selection_method = %v, want graph_based_traversal", hyb.Metadata["selection_method"])
	}
}

func TestSelectTestsHybrid_UnionAndConfidence(t *testing.T) {
	in := hybridInput()
	adv := &stubAdvisor{
		name: "mock",
		res: &Result{
			SelectedTests: []string{"ServiceTest#testProcessData", "EdgeCaseTest#testBoundary"},
			Explanations: map[string]string{
				"ServiceTest#testProcessData": "model ranked this high",
				"EdgeCaseTest#testBoundary":   "boundary conditions near the change",
			},
			Confidence: 0.9,
			Metadata:   map[string]any{},
		},
	}

	res, err := SelectTestsHybrid(context.Background(), in, adv, 0)
	if err != nil {
		t.Fatalf("SelectTestsHybrid failed: %v", err)
	}

	// Deterministic set (sorted) first, then the advisory-only test.
	want := []string{
		"IntegrationTest#testWorkflow",
		"ServiceTest#testProcessData",
		"EdgeCaseTest#testBoundary",
	}
	if !reflect.DeepEqual(res.SelectedTests, want) {
		t.Errorf("selected = %v, want %v", res.SelectedTests, want)
	}

	// 1 overlap over a 3-test union.
	det, _ := SelectTests(in)
	wantConf := math.Min(1.0, math.Max(det.Confidence, 0.9)+0.2*(1.0/3.0))
	if math.Abs(res.Confidence-wantConf) > 1e-9 {
		t.Errorf("confidence = %v, want %v", res.Confidence, wantConf)
	}

	if res.Metadata["selection_method"] != "hybrid_deterministic_advisory" {
		t.Errorf("selection_method = %v", res.Metadata["selection_method"])
	}
}

func TestSelectTestsHybrid_ExplanationMerging(t *testing.T) {
	in := hybridInput()
	adv := &stubAdvisor{
		name: "mock",
		res: &Result{
			SelectedTests: []string{"ServiceTest#testProcessData", "EdgeCaseTest#testBoundary"},
			Explanations: map[string]string{
				"ServiceTest#testProcessData": "model ranked this high",
				"EdgeCaseTest#testBoundary":   "boundary conditions near the change",
			},
			Confidence: 0.9,
		},
	}

	res, err := SelectTestsHybrid(context.Background(), in, adv, 0)
	if err != nil {
		t.Fatalf("SelectTestsHybrid failed: %v", err)
	}

	both := res.Explanations["ServiceTest#testProcessData"]
	if both != "Deterministic: "+ExplanationDirect+"; mock: model ranked this high" {
		t.Errorf("merged explanation = %q", both)
	}
	detOnly := res.Explanations["IntegrationTest#testWorkflow"]
	if !strings.HasPrefix(detOnly, "Deterministic: ") {
		t.Errorf("deterministic-only explanation = %q", detOnly)
	}
	advOnly := res.Explanations["EdgeCaseTest#testBoundary"]
	if advOnly != "mock: boundary conditions near the change" {
		t.Errorf("advisory-only explanation = %q", advOnly)
	}
}

func TestSelectTestsHybrid_AdvisorFailureDegrades(t *testing.T) {
	in := hybridInput()
	adv := &stubAdvisor{name: "mock", err: errors.New("model endpoint unreachable")}

	det, _ := SelectTests(in)
	res, err := SelectTestsHybrid(context.Background(), in, adv, 0)
	if err != nil {
		t.Fatalf("SelectTestsHybrid failed: %v", err)
	}

	if !reflect.DeepEqual(res.SelectedTests, det.SelectedTests) {
		t.Errorf("degraded selection = %v, want %v", res.SelectedTests, det.SelectedTests)
	}
	if res.Confidence != det.Confidence {
		t.Errorf("degraded confidence = %.2f, want %.2f", res.Confidence, det.Confidence)
	}
	if res.Metadata["advisor_error"] != "model endpoint unreachable" {
		t.Errorf("advisor_error = %v", res.Metadata["advisor_error"])
	}
	if res.Metadata["advisor"] != "mock" {
		t.Errorf("advisor = %v", res.Metadata["advisor"])
	}
}

func TestSelectTestsHybrid_AdvisorTimeoutDegrades(t *testing.T) {
	in := hybridInput()

	res, err := SelectTestsHybrid(context.Background(), in, blockingAdvisor{}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("SelectTestsHybrid failed: %v", err)
	}

	if _, ok := res.Metadata["advisor_error"]; !ok {
		t.Error("expected advisor_error metadata after timeout")
	}
	if len(res.SelectedTests) != 2 {
		t.Errorf("expected deterministic selection to survive, got %v", res.SelectedTests)
	}
}

func TestSelectTestsHybrid_DeterministicNeverEvicted(t *testing.T) {
	in := hybridInput()
	in.MaxTests = 3
	adv := &stubAdvisor{
		name: "mock",
		res: &Result{
			SelectedTests: []string{
				"ZetaTest#testOmega",
				"AlphaTest#testAlpha",
				"BetaTest#testBeta",
			},
			Explanations: map[string]string{},
			Confidence:   0.8,
		},
	}

	res, err := SelectTestsHybrid(context.Background(), in, adv, 0)
	if err != nil {
		t.Fatalf("SelectTestsHybrid failed: %v", err)
	}

	// Both deterministic tests kept; one advisory slot, filled in the
	// advisor's original order.
	want := []string{
		"IntegrationTest#testWorkflow",
		"ServiceTest#testProcessData",
		"ZetaTest#testOmega",
	}
	if !reflect.DeepEqual(res.SelectedTests, want) {
		t.Errorf("selected = %v, want %v", res.SelectedTests, want)
	}
}

func TestSelectTestsHybrid_AdvisoryFilteredByAllowedTests(t *testing.T) {
	in := hybridInput()
	in.AllowedTests = []string{
		"IntegrationTest#testWorkflow",
		"ServiceTest#testProcessData",
		"KnownTest#testKnown",
	}
	adv := &stubAdvisor{
		name: "mock",
		res: &Result{
			SelectedTests: []string{"KnownTest#testKnown", "HallucinatedTest#testGhost"},
			Explanations:  map[string]string{},
			Confidence:    0.8,
		},
	}

	res, err := SelectTestsHybrid(context.Background(), in, adv, 0)
	if err != nil {
		t.Fatalf("SelectTestsHybrid failed: %v", err)
	}

	for _, test := range res.SelectedTests {
		if test == "HallucinatedTest#testGhost" {
			t.Error("advisory test outside the allowed set leaked into the selection")
		}
	}
	found := false
	for _, test := range res.SelectedTests {
		if test == "KnownTest#testKnown" {
			found = true
		}
	}
	if !found {
		t.Errorf("allowed advisory test missing from selection: %v", res.SelectedTests)
	}
}

func TestSelectTestsHybrid_InvalidInputStillRejected(t *testing.T) {
	in := hybridInput()
	in.MaxTests = -5

	_, err := SelectTestsHybrid(context.Background(), in, &stubAdvisor{name: "mock"}, 0)
	if !errors.Is(err, ErrNegativeMaxTests) {
		t.Errorf("expected ErrNegativeMaxTests, got %v", err)
	}
}

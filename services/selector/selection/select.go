// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selection implements the deterministic test-impact selection
// engine: touched-method extraction, reverse reachability over the call
// graph, test classification, confidence scoring, and the hybrid merge
// with an advisory source.
//
// One selection request is one pure, synchronous call. Nothing is shared
// between calls, so the package is safe to use concurrently for
// independent requests without locking.
package selection

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/graph"
)

// ExplanationDirect is attached to tests that invoke a touched
// identifier directly.
const ExplanationDirect = "directly calls a touched identifier"

// ExplanationTransitive is attached to tests that reach a touched
// identifier through intermediate callers.
const ExplanationTransitive = "transitively reaches a touched identifier through the call chain"

// touchedSampleCap limits the touched-identifier sample in metadata.
const touchedSampleCap = 10

// Input is everything one deterministic selection call consumes.
type Input struct {
	// Repo is informational only; it is passed through to advisory
	// sources in hybrid mode and never consulted by the core.
	Repo datatypes.RepoInfo

	// ChangedFiles is the structured change set.
	ChangedFiles []datatypes.ChangedFile

	// CallGraph is the raw method-level edge list.
	CallGraph []graph.CallEdge

	// JdepsGraph is the class-level dependency graph. The BFS path does
	// not consult it; it is accepted for backward compatibility.
	JdepsGraph map[string][]string

	// AllowedTests filters the selection when non-empty. Every entry
	// must carry the "Type#member" separator.
	AllowedTests []string

	// MaxTests caps the selection. Zero means datatypes.DefaultMaxTests,
	// negative values are rejected.
	MaxTests int

	// MaxDepth bounds the reverse traversal. Zero means
	// graph.DefaultMaxTraversalDepth.
	MaxDepth int
}

// Result is the four-part outcome of a selection call.
type Result struct {
	SelectedTests []string
	Explanations  map[string]string
	Confidence    float64
	Metadata      map[string]any
}

// Response converts a Result to the wire format.
func (r *Result) Response() *datatypes.SelectResponse {
	return &datatypes.SelectResponse{
		SelectedTests: r.SelectedTests,
		Explanations:  r.Explanations,
		Confidence:    r.Confidence,
		Metadata:      r.Metadata,
	}
}

// GraphMetadata summarizes one reachability analysis.
type GraphMetadata struct {
	Reason               string         `json:"reason,omitempty"`
	TouchedMethodsCount  int            `json:"touched_methods_count"`
	TotalCallersCount    int            `json:"total_callers_count"`
	TestMethodsCount     int            `json:"test_methods_count"`
	MaxDepthUsed         int            `json:"max_depth_used"`
	TouchedMethodsSample []string       `json:"touched_methods_sample"`
	DepthDistribution    map[string]int `json:"depth_distribution"`
	SkippedEdges         int            `json:"skipped_edges"`
}

// validateInput rejects caller-contract violations before any
// computation happens. Partial computation on invalid input is never
// attempted.
func validateInput(in Input) error {
	if in.MaxTests < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeMaxTests, in.MaxTests)
	}
	for _, id := range in.AllowedTests {
		if !strings.Contains(id, "#") {
			return fmt.Errorf("%w: %q", ErrMalformedAllowedTest, id)
		}
	}
	return nil
}

// FindAffectedTests finds every test method affected by the change set.
//
// Description:
//
//	Extracts touched identifiers, runs bounded reverse BFS over the call
//	graph, classifies the reached nodes, and filters against the allowed
//	set when one is given. When no identifiers can be extracted the
//	result is empty with reason "no_touched_methods" - that is a
//	no-signal condition, not an error.
//
// Inputs:
//
//	changedFiles - The structured change set.
//	callGraph - Raw method-level edge list.
//	allowed - Optional allowed-tests set; nil or empty disables the filter.
//	maxDepth - Traversal bound; <= 0 uses graph.DefaultMaxTraversalDepth.
//
// Outputs:
//
//	Set of affected test identifiers and the analysis metadata.
func FindAffectedTests(changedFiles []datatypes.ChangedFile, callGraph []graph.CallEdge, allowed map[string]struct{}, maxDepth int) (map[string]struct{}, *GraphMetadata) {
	touched := ExtractTouchedMethods(changedFiles)
	if len(touched) == 0 {
		return nil, &GraphMetadata{Reason: "no_touched_methods"}
	}

	g := graph.NewCallGraph(callGraph)
	return affectedTests(g, touched, allowed, maxDepth)
}

// affectedTests runs the reachability and classification steps against a
// prebuilt graph.
func affectedTests(g *graph.CallGraph, touched map[string]struct{}, allowed map[string]struct{}, maxDepth int) (map[string]struct{}, *GraphMetadata) {
	allCallers, depths := g.FindAllCallers(touched, maxDepth)
	slog.Debug("Reverse reachability complete",
		"touched", len(touched), "reached", len(allCallers))

	testMethods := make(map[string]struct{})
	for method := range allCallers {
		if !IsTestMethod(method) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[method]; !ok {
				continue
			}
		}
		testMethods[method] = struct{}{}
	}

	maxDepthUsed := 0
	for _, d := range depths {
		if d > maxDepthUsed {
			maxDepthUsed = d
		}
	}

	meta := &GraphMetadata{
		TouchedMethodsCount:  len(touched),
		TotalCallersCount:    len(allCallers),
		TestMethodsCount:     len(testMethods),
		MaxDepthUsed:         maxDepthUsed,
		TouchedMethodsSample: sampleOf(touched, touchedSampleCap),
		DepthDistribution:    depthDistribution(testMethods, depths),
		SkippedEdges:         g.SkippedEdges(),
	}

	return testMethods, meta
}

// depthDistribution buckets selected test methods by their distance from
// the nearest touched identifier, keyed "depth_<n>".
func depthDistribution(testMethods map[string]struct{}, depths map[string]int) map[string]int {
	dist := make(map[string]int)
	for method := range testMethods {
		depth, ok := depths[method]
		if !ok {
			depth = -1
		}
		dist[fmt.Sprintf("depth_%d", depth)]++
	}
	return dist
}

// sampleOf returns up to n elements of a set, sorted for stable output.
func sampleOf(set map[string]struct{}, n int) []string {
	sample := make([]string, 0, len(set))
	for v := range set {
		sample = append(sample, v)
	}
	sort.Strings(sample)
	if len(sample) > n {
		sample = sample[:n]
	}
	return sample
}

// SelectTests is the primary deterministic selection entry point.
//
// Description:
//
//	Runs the full pipeline: extract touched identifiers, reverse BFS,
//	test classification, allowed-tests intersection, truncation to the
//	cap, confidence scoring, and per-test explanation generation. The
//	selected set is sorted before truncation so identical inputs always
//	yield an identical selected set, even when the cap binds.
//
// Inputs:
//
//	in - The selection input. See Input for field semantics.
//
// Outputs:
//
//	*Result - Selected tests, explanations, confidence, metadata.
//	error - Only for caller-contract violations; no-signal conditions
//	  return a well-formed empty result instead.
func SelectTests(in Input) (*Result, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	maxTests := in.MaxTests
	if maxTests == 0 {
		maxTests = datatypes.DefaultMaxTests
	}

	slog.Debug("SelectTests inputs",
		"changed_files", len(in.ChangedFiles),
		"call_graph_edges", len(in.CallGraph),
		"jdeps_nodes", len(in.JdepsGraph),
		"max_tests", maxTests)

	touched := ExtractTouchedMethods(in.ChangedFiles)
	if len(touched) == 0 {
		slog.Info("No touched identifiers extracted, returning empty selection")
		return emptyResult("no_touched_methods"), nil
	}

	allowed := make(map[string]struct{}, len(in.AllowedTests))
	for _, id := range in.AllowedTests {
		allowed[id] = struct{}{}
	}

	g := graph.NewCallGraph(in.CallGraph)
	affected, meta := affectedTests(g, touched, allowed, in.MaxDepth)

	selected := make([]string, 0, len(affected))
	for test := range affected {
		selected = append(selected, test)
	}
	sort.Strings(selected)
	if len(selected) > maxTests {
		selected = selected[:maxTests]
	}

	explanations := make(map[string]string, len(selected))
	for _, test := range selected {
		explanations[test] = explainSelection(test, touched, g)
	}

	confidence := calculateConfidence(in.ChangedFiles, meta, len(selected))

	changedPaths := make([]string, 0, len(in.ChangedFiles))
	for _, cf := range in.ChangedFiles {
		changedPaths = append(changedPaths, cf.Path)
	}

	metadata := map[string]any{
		"selection_method":    "graph_based_traversal",
		"graph_analysis":      meta,
		"changed_files_paths": changedPaths,
		"reachability_stats": map[string]any{
			"total_affected_methods": meta.TotalCallersCount,
			"affected_tests":         len(affected),
			"selected_tests":         len(selected),
			"max_depth":              meta.MaxDepthUsed,
		},
	}

	slog.Info("Deterministic selection complete",
		"selected", len(selected),
		"affected", len(affected),
		"confidence", confidence)

	return &Result{
		SelectedTests: selected,
		Explanations:  explanations,
		Confidence:    confidence,
		Metadata:      metadata,
	}, nil
}

// explainSelection produces the human-readable reason for one selection.
func explainSelection(test string, touched map[string]struct{}, g *graph.CallGraph) string {
	for callee := range g.Callees(test) {
		if _, ok := touched[callee]; ok {
			return ExplanationDirect
		}
	}
	return ExplanationTransitive
}

// emptyResult builds the well-formed no-signal result.
func emptyResult(reason string) *Result {
	return &Result{
		SelectedTests: []string{},
		Explanations:  map[string]string{},
		Confidence:    NoSignalConfidence,
		Metadata: map[string]any{
			"reason":                reason,
			"touched_methods_count": 0,
		},
	}
}

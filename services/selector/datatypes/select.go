// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the wire format of the selector service.
//
// The identifier format "TypeName#memberName" for methods and "TypeName"
// for classes is load-bearing: the test classifier and touch extractor
// both key on it, so it must be preserved exactly.
package datatypes

import (
	"github.com/AleutianAI/AleutianSelect/services/selector/graph"
)

// DefaultMaxTests caps a selection when the request does not set one.
const DefaultMaxTests = 500

// Hunk is a contiguous range of changed lines within a file.
//
// Start/End are 1-based line numbers in the new file. Diff producers that
// only know added/removed counts may set NewLines or OldLines instead.
type Hunk struct {
	Start    int `json:"start"`
	End      int `json:"end"`
	NewLines int `json:"new_lines,omitempty"`
	OldLines int `json:"old_lines,omitempty"`
}

// ChangedLines returns the number of lines this hunk accounts for.
//
// Falls back to NewLines, then OldLines, then 1 when no range is known,
// so every hunk contributes at least one line to change sizing.
func (h Hunk) ChangedLines() int {
	if h.Start > 0 && h.End >= h.Start {
		return h.End - h.Start + 1
	}
	if h.NewLines > 0 {
		return h.NewLines
	}
	if h.OldLines > 0 {
		return h.OldLines
	}
	return 1
}

// TouchedMethod is a method whose body overlaps a changed hunk.
type TouchedMethod struct {
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`

	// FQN is the fully qualified identifier, e.g. "com.foo.Bar#methodName".
	FQN string `json:"fqn,omitempty"`
}

// ChangedFile is one file in the change set, enriched by the external
// diff analyzer. For Java files the package, class and touched-method
// metadata is populated when available.
type ChangedFile struct {
	Path string `json:"path"`

	// ChangeType is A (added), M (modified) or D (deleted).
	ChangeType string `json:"change_type" binding:"omitempty,oneof=A M D"`

	Hunks []Hunk `json:"hunks,omitempty"`

	FileName             string          `json:"file_name,omitempty"`
	Lang                 string          `json:"lang,omitempty"`
	Package              string          `json:"package,omitempty"`
	ClassName            string          `json:"class_name,omitempty"`
	FullyQualifiedClass  string          `json:"fully_qualified_class,omitempty"`
	TouchedMethods       []TouchedMethod `json:"touched_methods,omitempty"`
}

// RepoInfo identifies the repository and revisions of a request.
// Informational only; the selection core never consults it.
type RepoInfo struct {
	Name       string `json:"name"`
	BaseCommit string `json:"base_commit"`
	HeadCommit string `json:"head_commit"`
}

// Settings carries per-request selection settings.
type Settings struct {
	// ConfidenceThreshold is informational; the core reports confidence
	// but does not enforce a threshold. Downstream gates do.
	ConfidenceThreshold float64 `json:"confidence_threshold" binding:"omitempty,gte=0,lte=1"`

	// MaxTests caps the number of selected tests. Zero means
	// DefaultMaxTests; negative values are rejected.
	MaxTests int `json:"max_tests"`
}

// SelectRequest is the payload of POST /v1/selector/select-tests.
type SelectRequest struct {
	Repo         RepoInfo            `json:"repo"`
	ChangedFiles []ChangedFile       `json:"changed_files"`
	JdepsGraph   map[string][]string `json:"jdeps_graph,omitempty"`
	CallGraph    []graph.CallEdge    `json:"call_graph,omitempty"`
	AllowedTests []string            `json:"allowed_tests,omitempty"`
	Settings     Settings            `json:"settings"`
}

// SelectResponse is the four-part selection result.
//
// Advisory sources return the same shape, which keeps the deterministic
// core, the advisors, and the HTTP boundary on one wire format.
type SelectResponse struct {
	SelectedTests []string          `json:"selected_tests"`
	Explanations  map[string]string `json:"explanations"`
	Confidence    float64           `json:"confidence"`
	Metadata      map[string]any    `json:"metadata"`
}

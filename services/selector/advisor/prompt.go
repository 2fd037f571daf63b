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
	"strings"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

// Prompt summarization caps. The full payload is attached as compact
// JSON below the summary; the caps only keep the readable part short.
const (
	promptMaxChangedFiles   = 100
	promptMaxTouchedPerFile = 5
	promptMaxHunksPerFile   = 5
	promptMaxCallEdges      = 50
)

// systemPrompt instructs the model on task and response schema. The
// schema matches the service's own response format so the parsed answer
// drops straight into the merge.
const systemPrompt = "You are an expert build/CI assistant that selects the minimal yet sufficient set of JUnit tests " +
	"to run for a given code change in a large Java Gradle monorepo. " +
	"Use only the provided structured inputs (changed files with hunks and dependency graphs). " +
	"You will be given both a brief summary and the FULL JSON for changed_files, jdeps_graph, and call_graph. " +
	"Favor precision and recall trade-offs that keep runtime low while maintaining correctness. " +
	"Always respond with a strict JSON object matching this schema: " +
	"{\"selected_tests\": string[], \"explanations\": {[test: string]: string}, \"confidence\": number, \"metadata\": object}. " +
	"selected_tests must contain fully qualified test method names in the form Class#method (no spaces). " +
	"confidence is a float in [0,1]. Explanations should be short, evidence-based, and reference inputs."

// buildUserPrompt renders the request payload as a model prompt:
// human-readable summaries first, then the complete compact JSON.
func buildUserPrompt(payload *datatypes.SelectRequest) (string, error) {
	maxTests := payload.Settings.MaxTests
	if maxTests == 0 {
		maxTests = datatypes.DefaultMaxTests
	}

	fullInputs, err := json.Marshal(map[string]any{
		"changed_files": payload.ChangedFiles,
		"jdeps_graph":   payload.JdepsGraph,
		"call_graph":    payload.CallGraph,
		"allowed_tests": payload.AllowedTests,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt payload: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", payload.Repo.Name)
	fmt.Fprintf(&b, "Base: %s\nHead: %s\n\n", payload.Repo.BaseCommit, payload.Repo.HeadCommit)
	fmt.Fprintf(&b, "Changed files (summary):\n%s\n\n", summarizeChangedFiles(payload.ChangedFiles))
	fmt.Fprintf(&b, "Graphs (summary):\n%s\n\n", summarizeGraphs(payload))
	fmt.Fprintf(&b,
		"Task: From the inputs, choose up to %d JUnit tests that most likely cover or are impacted by the changes. "+
			"Use jdeps/call graph for transitive impact. "+
			"Prefer fewer tests when confidence is high; include more when changes are wide or uncertain. "+
			"If there is no signal, return an empty list with a lower confidence and explain why.\n\n",
		maxTests)
	b.WriteString("Full inputs (JSON): changed_files, jdeps_graph, call_graph:\n")
	b.WriteString("```json\n")
	b.Write(fullInputs)
	b.WriteString("\n```\n\n")
	b.WriteString("Additionally, you are provided an allowed_tests array in the payload. " +
		"You must ONLY return tests from allowed_tests. Do not invent or hallucinate tests; " +
		"if unsure, return an empty list with a clear explanation. " +
		"Return strictly JSON with keys: selected_tests, explanations, confidence, metadata.")

	return b.String(), nil
}

func summarizeChangedFiles(changed []datatypes.ChangedFile) string {
	if len(changed) == 0 {
		return "(none)"
	}

	var parts []string
	for i, cf := range changed {
		if i == promptMaxChangedFiles {
			break
		}

		javaCtx := ""
		if cf.Lang == "java" {
			class := cf.FullyQualifiedClass
			if class == "" {
				class = cf.ClassName
			}
			javaCtx = " class=" + class
			if touched := summarizeTouched(cf.TouchedMethods); touched != "" {
				javaCtx += " touched=[" + touched + "]"
			}
		}

		changeType := cf.ChangeType
		if changeType == "" {
			changeType = "M"
		}
		parts = append(parts, fmt.Sprintf("- %s (%s)%s, hunks=%s",
			cf.Path, changeType, javaCtx, summarizeHunks(cf.Hunks)))
	}
	if more := len(changed) - promptMaxChangedFiles; more > 0 {
		parts = append(parts, fmt.Sprintf("... and %d more files", more))
	}
	return strings.Join(parts, "\n")
}

func summarizeTouched(methods []datatypes.TouchedMethod) string {
	var parts []string
	for i, m := range methods {
		if i == promptMaxTouchedPerFile {
			break
		}
		name := m.FQN
		if name == "" {
			name = m.Name
		}
		if name == "" {
			name = "?"
		}
		if m.StartLine > 0 && m.EndLine > 0 {
			name += fmt.Sprintf("[%d-%d]", m.StartLine, m.EndLine)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

func summarizeHunks(hunks []datatypes.Hunk) string {
	var parts []string
	for i, h := range hunks {
		if i == promptMaxHunksPerFile {
			break
		}
		parts = append(parts, fmt.Sprintf("(%d,%d)", h.Start, h.End))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func summarizeGraphs(payload *datatypes.SelectRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "jdeps nodes: %d", len(payload.JdepsGraph))

	if len(payload.CallGraph) > 0 {
		b.WriteString("\ncall graph sample:")
		for i, e := range payload.CallGraph {
			if i == promptMaxCallEdges {
				break
			}
			fmt.Fprintf(&b, "\n- %s -> %s", e.Caller, e.Callee)
		}
	}
	if more := len(payload.CallGraph) - promptMaxCallEdges; more > 0 {
		fmt.Fprintf(&b, "\n... and %d more call edges", more)
	}
	return b.String()
}

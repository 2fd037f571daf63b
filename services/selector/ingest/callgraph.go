// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"bufio"
	"io"
	"strings"

	"github.com/AleutianAI/AleutianSelect/services/selector/graph"
)

// ParseCallGraph reads the analyzer's text dump of method calls.
//
// Description:
//
//	One edge per line, "caller -> callee". Lines without the arrow are
//	skipped, and stray "#?" artifacts some bytecode analyzers emit on
//	the caller side are stripped.
//
// Inputs:
//
//	r - Text dump reader.
//
// Outputs:
//
//	[]graph.CallEdge - The parsed edge list, input order preserved.
//	error - Only I/O errors from the reader.
func ParseCallGraph(r io.Reader) ([]graph.CallEdge, error) {
	var edges []graph.CallEdge

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, "->") {
			continue
		}

		caller, callee, _ := strings.Cut(line, "->")
		caller = strings.ReplaceAll(strings.TrimSpace(caller), "#?", "")
		callee = strings.TrimSpace(callee)

		edges = append(edges, graph.CallEdge{Caller: caller, Callee: callee})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

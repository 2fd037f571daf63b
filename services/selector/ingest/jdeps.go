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
	"regexp"
	"sort"
	"strings"
)

// jdepsLinePattern matches one dependency line of jdeps output, e.g.
// "   com.foo.Service -> com.foo.Repo   classes".
var jdepsLinePattern = regexp.MustCompile(`^\s*([\w.$]+)\s*->\s*([\w.$]+)`)

// ParseJdeps reads jdeps output into a class-level dependency graph.
//
// Description:
//
//	Keeps lines matching "source -> target", drops self-dependencies,
//	deduplicates targets and sorts each adjacency list for stable
//	output. A non-empty prefix keeps only edges whose source belongs to
//	the project packages, filtering out JDK and third-party noise.
//
// Inputs:
//
//	r - jdeps output reader.
//	prefix - Optional project-package prefix filter; empty keeps all.
//
// Outputs:
//
//	map[string][]string - Source class to sorted dependency targets.
//	error - Only I/O errors from the reader.
func ParseJdeps(r io.Reader, prefix string) (map[string][]string, error) {
	deps := make(map[string]map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := jdepsLinePattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		src, dst := m[1], m[2]
		if src == dst {
			continue
		}
		if prefix != "" && !strings.HasPrefix(src, prefix) {
			continue
		}

		if deps[src] == nil {
			deps[src] = make(map[string]struct{})
		}
		deps[src][dst] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(deps))
	for src, targets := range deps {
		list := make([]string, 0, len(targets))
		for dst := range targets {
			list = append(list, dst)
		}
		sort.Strings(list)
		result[src] = list
	}
	return result, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

// DefaultMaxTraversalDepth bounds reverse reachability traversals.
//
// The bound is a safety valve against pathological or cyclic call graphs.
// It is a tunable, not a hard-coded constant, so behavior stays
// reproducible and testable at smaller depths.
const DefaultMaxTraversalDepth = 15

// queueEntry is one BFS frontier element.
type queueEntry struct {
	method string
	depth  int
}

// FindAllCallers finds every method that transitively calls any seed.
//
// Description:
//
//	Multi-source breadth-first search over the reverse adjacency. Seeds
//	enter at distance 0. A node whose recorded distance has reached
//	maxDepth is not expanded further. The visited set is checked before
//	enqueue, so each node is processed at most once and cyclic graphs
//	terminate.
//
//	The traversal runs over the reverse graph because the question is
//	"which callers are affected by a change to this method" - forward
//	traversal would answer what the method affects downstream, which is
//	the wrong direction for test selection.
//
// Inputs:
//
//	seeds - Methods to start from (distance 0).
//	maxDepth - Maximum hop count; values <= 0 fall back to
//	  DefaultMaxTraversalDepth.
//
// Outputs:
//
//	visited - All reached methods, seeds included.
//	depths - Minimum hop count from any seed, per reached method.
func (g *CallGraph) FindAllCallers(seeds map[string]struct{}, maxDepth int) (map[string]struct{}, map[string]int) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxTraversalDepth
	}

	visited := make(map[string]struct{}, len(seeds))
	depths := make(map[string]int, len(seeds))
	queue := make([]queueEntry, 0, len(seeds))

	for method := range seeds {
		if _, ok := visited[method]; ok {
			continue
		}
		visited[method] = struct{}{}
		depths[method] = 0
		queue = append(queue, queueEntry{method: method, depth: 0})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for caller := range g.Callers(current.method) {
			if _, ok := visited[caller]; ok {
				continue
			}
			visited[caller] = struct{}{}
			depths[caller] = current.depth + 1
			queue = append(queue, queueEntry{method: caller, depth: current.depth + 1})
		}
	}

	return visited, depths
}

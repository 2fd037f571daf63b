// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the in-memory method call graph used by the
// selector service.
//
// The graph is built once per selection request from a flat edge list and
// is immutable afterwards. Node identifiers are plain strings of the form
// "TypeName#memberName"; the graph itself does not interpret them.
package graph

import (
	"log/slog"
)

// CallEdge is one directed "caller invokes callee" relationship.
//
// The raw input to a selection request is an ordered sequence of these.
// Duplicates are allowed and collapse to a single adjacency entry.
type CallEdge struct {
	// Caller is the invoking method identifier (e.g. "com.foo.Bar#doWork").
	Caller string `json:"caller"`

	// Callee is the invoked method identifier.
	Callee string `json:"callee"`
}

// CallGraph holds forward and reverse adjacency for a method call graph.
//
// Description:
//
//	Both directions are materialized at construction time so that
//	Callers and Callees are O(1) amortized map lookups. Adjacency is
//	stored as sets, so duplicate input edges are idempotent.
//
// Thread Safety:
//
//	Read-only after NewCallGraph returns; safe for concurrent use.
type CallGraph struct {
	// forward maps caller -> set of callees.
	forward map[string]map[string]struct{}

	// reverse maps callee -> set of callers.
	reverse map[string]map[string]struct{}

	// skipped counts input edges dropped for having an empty caller
	// or callee. Surfaced in selection metadata so partially built
	// graphs are never silent.
	skipped int
}

// NewCallGraph builds a CallGraph from an edge list.
//
// Description:
//
//	Construction never fails: an empty edge list yields a graph with no
//	nodes. Edges with an empty caller or callee field are skipped and
//	counted; the count is available via SkippedEdges.
//
// Inputs:
//
//	edges - Ordered sequence of call edges. Duplicates allowed.
//
// Outputs:
//
//	*CallGraph - The immutable graph.
func NewCallGraph(edges []CallEdge) *CallGraph {
	g := &CallGraph{
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}

	for _, e := range edges {
		if e.Caller == "" || e.Callee == "" {
			g.skipped++
			continue
		}
		addEdge(g.forward, e.Caller, e.Callee)
		addEdge(g.reverse, e.Callee, e.Caller)
	}

	if g.skipped > 0 {
		slog.Warn("Skipped malformed call graph edges",
			"skipped", g.skipped, "total", len(edges))
	}

	return g
}

// addEdge inserts to into the adjacency set of from.
func addEdge(adj map[string]map[string]struct{}, from, to string) {
	set, ok := adj[from]
	if !ok {
		set = make(map[string]struct{})
		adj[from] = set
	}
	set[to] = struct{}{}
}

// Callers returns the set of methods that call the given method.
//
// The returned map may be nil for unknown methods; callers must treat
// nil as empty and must not mutate the result.
func (g *CallGraph) Callers(method string) map[string]struct{} {
	return g.reverse[method]
}

// Callees returns the set of methods called by the given method.
//
// The returned map may be nil for unknown methods; callers must treat
// nil as empty and must not mutate the result.
func (g *CallGraph) Callees(method string) map[string]struct{} {
	return g.forward[method]
}

// SkippedEdges returns the number of malformed input edges dropped at
// construction time.
func (g *CallGraph) SkippedEdges() int {
	return g.skipped
}

// NodeCount returns the number of distinct methods appearing as a caller
// or a callee.
func (g *CallGraph) NodeCount() int {
	seen := make(map[string]struct{}, len(g.forward)+len(g.reverse))
	for n := range g.forward {
		seen[n] = struct{}{}
	}
	for n := range g.reverse {
		seen[n] = struct{}{}
	}
	return len(seen)
}

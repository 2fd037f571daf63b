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

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSet(methods ...string) map[string]struct{} {
	seeds := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		seeds[m] = struct{}{}
	}
	return seeds
}

func TestFindAllCallers_LinearChain(t *testing.T) {
	// test -> handler -> service -> repo
	g := NewCallGraph([]CallEdge{
		{Caller: "FooTest#testFlow", Callee: "Handler#handle"},
		{Caller: "Handler#handle", Callee: "Service#run"},
		{Caller: "Service#run", Callee: "Repo#load"},
	})

	visited, depths := g.FindAllCallers(seedSet("Repo#load"), DefaultMaxTraversalDepth)

	require.Len(t, visited, 4)
	assert.Equal(t, 0, depths["Repo#load"])
	assert.Equal(t, 1, depths["Service#run"])
	assert.Equal(t, 2, depths["Handler#handle"])
	assert.Equal(t, 3, depths["FooTest#testFlow"])
}

func TestFindAllCallers_SeedsIncludedAtDepthZero(t *testing.T) {
	g := NewCallGraph(nil)

	visited, depths := g.FindAllCallers(seedSet("Orphan#m"), 15)

	assert.Equal(t, map[string]struct{}{"Orphan#m": {}}, visited)
	assert.Equal(t, map[string]int{"Orphan#m": 0}, depths)
}

func TestFindAllCallers_MultiSourceMinDistance(t *testing.T) {
	// X calls both seeds; the recorded distance must be the minimum.
	g := NewCallGraph([]CallEdge{
		{Caller: "X#x", Callee: "A#a"},
		{Caller: "X#x", Callee: "Mid#m"},
		{Caller: "Mid#m", Callee: "B#b"},
	})

	_, depths := g.FindAllCallers(seedSet("A#a", "B#b"), 15)

	assert.Equal(t, 1, depths["X#x"])
	assert.Equal(t, 1, depths["Mid#m"])
}

func TestFindAllCallers_DepthBound(t *testing.T) {
	// Chain of 20 callers above the seed; a bound of 5 must stop there.
	edges := make([]CallEdge, 0, 20)
	prev := "seed#m"
	for i := 0; i < 20; i++ {
		caller := fmt.Sprintf("Level%d#m", i+1)
		edges = append(edges, CallEdge{Caller: caller, Callee: prev})
		prev = caller
	}
	g := NewCallGraph(edges)

	visited, depths := g.FindAllCallers(seedSet("seed#m"), 5)

	assert.Len(t, visited, 6) // seed + 5 levels
	for _, d := range depths {
		assert.LessOrEqual(t, d, 5)
	}
	assert.Contains(t, visited, "Level5#m")
	assert.NotContains(t, visited, "Level6#m")
}

func TestFindAllCallers_CyclicGraphTerminates(t *testing.T) {
	g := NewCallGraph([]CallEdge{
		{Caller: "A#a", Callee: "B#b"},
		{Caller: "B#b", Callee: "C#c"},
		{Caller: "C#c", Callee: "A#a"},
	})

	visited, depths := g.FindAllCallers(seedSet("A#a"), DefaultMaxTraversalDepth)

	assert.Len(t, visited, 3)
	assert.Equal(t, 0, depths["A#a"])
	assert.Equal(t, 1, depths["C#c"])
	assert.Equal(t, 2, depths["B#b"])
}

func TestFindAllCallers_NonPositiveDepthUsesDefault(t *testing.T) {
	g := NewCallGraph([]CallEdge{
		{Caller: "T#t", Callee: "S#s"},
	})

	visited, _ := g.FindAllCallers(seedSet("S#s"), 0)

	assert.Contains(t, visited, "T#t")
}

// Completeness within the bound: every node reachable over reverse edges
// in at most maxDepth hops is present, and nothing else is.
func TestFindAllCallers_CompletenessWithinBound(t *testing.T) {
	g := NewCallGraph([]CallEdge{
		{Caller: "d1#m", Callee: "seed#m"},
		{Caller: "d2#m", Callee: "d1#m"},
		{Caller: "d3#m", Callee: "d2#m"},
		{Caller: "other#m", Callee: "unrelated#m"},
	})

	visited, depths := g.FindAllCallers(seedSet("seed#m"), 2)

	want := map[string]int{"seed#m": 0, "d1#m": 1, "d2#m": 2}
	assert.Equal(t, want, depths)
	assert.Len(t, visited, len(want))
	assert.NotContains(t, visited, "other#m")
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallGraph_Empty(t *testing.T) {
	g := NewCallGraph(nil)
	require.NotNil(t, g)

	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.SkippedEdges())
	assert.Empty(t, g.Callers("com.foo.Bar#doWork"))
	assert.Empty(t, g.Callees("com.foo.Bar#doWork"))
}

func TestNewCallGraph_ForwardAndReverse(t *testing.T) {
	g := NewCallGraph([]CallEdge{
		{Caller: "A#a", Callee: "B#b"},
		{Caller: "A#a", Callee: "C#c"},
		{Caller: "D#d", Callee: "B#b"},
	})

	assert.Equal(t, map[string]struct{}{"B#b": {}, "C#c": {}}, g.Callees("A#a"))
	assert.Equal(t, map[string]struct{}{"A#a": {}, "D#d": {}}, g.Callers("B#b"))
	assert.Equal(t, 4, g.NodeCount())
}

func TestNewCallGraph_DuplicateEdgesIdempotent(t *testing.T) {
	g := NewCallGraph([]CallEdge{
		{Caller: "A#a", Callee: "B#b"},
		{Caller: "A#a", Callee: "B#b"},
		{Caller: "A#a", Callee: "B#b"},
	})

	assert.Len(t, g.Callees("A#a"), 1)
	assert.Len(t, g.Callers("B#b"), 1)
	assert.Equal(t, 0, g.SkippedEdges())
}

func TestNewCallGraph_SelfLoop(t *testing.T) {
	g := NewCallGraph([]CallEdge{
		{Caller: "A#recurse", Callee: "A#recurse"},
	})

	assert.Contains(t, g.Callers("A#recurse"), "A#recurse")
	assert.Equal(t, 1, g.NodeCount())
}

func TestNewCallGraph_SkipsMalformedEdges(t *testing.T) {
	g := NewCallGraph([]CallEdge{
		{Caller: "", Callee: "B#b"},
		{Caller: "A#a", Callee: ""},
		{Caller: "A#a", Callee: "B#b"},
	})

	assert.Equal(t, 2, g.SkippedEdges())
	assert.Equal(t, 2, g.NodeCount())
	assert.Len(t, g.Callers("B#b"), 1)
}

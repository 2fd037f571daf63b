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
	"log/slog"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/graph"
)

// legacyReasonEdgeCap bounds the explanation edge list of the legacy API.
const legacyReasonEdgeCap = 200

// ReasonEdge is one call edge retained as reachability evidence by the
// legacy API.
type ReasonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BuildReachability is the legacy reachability entry point.
//
// Deprecated: use FindAffectedTests. Kept because older consumers still
// expect the (reached set, reason edges) shape. The implementation
// delegates to the graph-based traversal and converts back to the old
// format; only edges with both endpoints in the reached set are kept,
// capped at 200.
func BuildReachability(changedFiles []datatypes.ChangedFile, callGraph []graph.CallEdge) (map[string]struct{}, []ReasonEdge) {
	slog.Warn("BuildReachability is deprecated, use FindAffectedTests instead")

	touched := ExtractTouchedMethods(changedFiles)
	g := graph.NewCallGraph(callGraph)
	allCallers, _ := g.FindAllCallers(touched, graph.DefaultMaxTraversalDepth)

	reasonEdges := make([]ReasonEdge, 0, legacyReasonEdgeCap)
	for _, e := range callGraph {
		if len(reasonEdges) == legacyReasonEdgeCap {
			break
		}
		_, callerIn := allCallers[e.Caller]
		_, calleeIn := allCallers[e.Callee]
		if callerIn && calleeIn {
			reasonEdges = append(reasonEdges, ReasonEdge{From: e.Caller, To: e.Callee})
		}
	}

	return allCallers, reasonEdges
}

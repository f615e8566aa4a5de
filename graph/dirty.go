package graph

import "github.com/wasmflow/wasmflow/types"

// MarkDirty resets nodeID to Idle and dirty, then recursively marks every
// downstream node dirty too. Cycles cannot occur (I4 acyclicity), so the
// recursion is guaranteed to terminate (§4.3 "Dirty propagation").
func MarkDirty(g *types.NodeGraph, nodeID string) {
	visited := make(map[string]bool)
	markDirtyRec(g, nodeID, visited)
}

func markDirtyRec(g *types.NodeGraph, nodeID string, visited map[string]bool) {
	if visited[nodeID] {
		return
	}
	visited[nodeID] = true

	n, ok := g.Nodes[nodeID]
	if !ok {
		return
	}
	n.Dirty = true
	n.State = types.StateIdle

	for _, c := range g.Connections {
		if c.FromNode == nodeID {
			markDirtyRec(g, c.ToNode, visited)
		}
	}
}

// MarkAllDirty marks every node in the graph dirty and Idle, used to force
// a full re-execution (e.g. after loading a persisted graph).
func MarkAllDirty(g *types.NodeGraph) {
	for _, n := range g.Nodes {
		n.Dirty = true
		n.State = types.StateIdle
	}
}

// MarkAllClean clears the dirty bit on every node, called after a
// successful full-graph execute.
func MarkAllClean(g *types.NodeGraph) {
	for _, n := range g.Nodes {
		n.Dirty = false
	}
}

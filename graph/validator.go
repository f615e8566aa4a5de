package graph

import (
	"fmt"
	"sort"

	"github.com/wasmflow/wasmflow/types"
)

// ValidationReport is the result of Validate: errors that make the graph
// unexecutable, and warnings that don't (§4.2 "validate").
type ValidationReport struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the graph has no validation errors (warnings are
// informational only).
func (r ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the graph for cycles (error), dangling connection
// endpoints (error), and unconnected non-optional inputs (warning).
func Validate(g *types.NodeGraph) ValidationReport {
	var report ValidationReport

	if _, _, err := computeTopoOrder(g); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}

	connectedInputs := make(map[string]bool)
	for _, c := range g.Connections {
		from, fromOK := g.Nodes[c.FromNode]
		to, toOK := g.Nodes[c.ToNode]
		if !fromOK || !toOK {
			report.Errors = append(report.Errors, fmt.Sprintf("connection %s references a missing node", c.ID))
			continue
		}
		if _, ok := from.OutputPort(c.FromPort); !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("connection %s references missing output port %s", c.ID, c.FromPort))
		}
		if _, ok := to.InputPort(c.ToPort); !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("connection %s references missing input port %s", c.ID, c.ToPort))
		}
		connectedInputs[c.ToNode+"/"+c.ToPort] = true
	}

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := g.Nodes[id]
		for _, p := range n.Inputs {
			if p.Optional {
				continue
			}
			if !connectedInputs[id+"/"+p.Name] {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("node %s: required input %q has no connection", id, p.Name))
			}
		}
	}

	return report
}

// IsConnectedSubgraph reports whether nodeIDs (at least two of them) forms a
// single weakly connected component within g, via one undirected DFS pass — used by
// the composer to validate a selection before link-fusing it (§4.6
// "Selection validation").
func IsConnectedSubgraph(g *types.NodeGraph, nodeIDs []string) bool {
	if len(nodeIDs) < 2 {
		return false
	}
	selected := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		selected[id] = true
	}

	undirected := make(map[string][]string, len(nodeIDs))
	for _, c := range g.Connections {
		if selected[c.FromNode] && selected[c.ToNode] {
			undirected[c.FromNode] = append(undirected[c.FromNode], c.ToNode)
			undirected[c.ToNode] = append(undirected[c.ToNode], c.FromNode)
		}
	}

	visited := make(map[string]bool, len(nodeIDs))
	var stack []string
	stack = append(stack, nodeIDs[0])
	visited[nodeIDs[0]] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range undirected[cur] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}

	return len(visited) == len(nodeIDs)
}

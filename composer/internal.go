package composer

import (
	"bytes"
	"fmt"
	"hash/crc64"
	"sort"

	"github.com/wasmflow/wasmflow/types"
)

var ecmaTable = crc64.MakeTable(crc64.ECMA)

// buildInternalGraph clones the selected nodes and the connections that run
// strictly between them into a standalone NodeGraph, preserved verbatim on
// the composite for drill-down inspection (§4.6 step 4).
func buildInternalGraph(g *types.NodeGraph, ids []string) *types.NodeGraph {
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}

	ig := types.NewNodeGraph(types.NewID(), "composite-internal")
	for _, id := range ids {
		ig.Nodes[id] = cloneNode(g.Nodes[id])
	}
	for _, c := range g.Connections {
		if member[c.FromNode] && member[c.ToNode] {
			ig.Connections = append(ig.Connections, c)
		}
	}
	for _, id := range ids {
		if grant, ok := g.Grants[id]; ok {
			ig.Grants[id] = grant
		}
	}
	return ig
}

func cloneNode(n *types.GraphNode) *types.GraphNode {
	clone := *n
	clone.Inputs = append([]types.Port(nil), n.Inputs...)
	clone.Outputs = append([]types.Port(nil), n.Outputs...)
	for i := range clone.Inputs {
		if clone.Inputs[i].CurrentValue != nil {
			v := *clone.Inputs[i].CurrentValue
			clone.Inputs[i].CurrentValue = &v
		}
	}
	for i := range clone.Outputs {
		if clone.Outputs[i].CurrentValue != nil {
			v := *clone.Outputs[i].CurrentValue
			clone.Outputs[i].CurrentValue = &v
		}
	}
	return &clone
}

// cloneGraphForCall produces a fresh working copy of a composite's internal
// graph for one Execute call, so concurrent invocations of the same
// composite never share port state.
func cloneGraphForCall(g *types.NodeGraph) *types.NodeGraph {
	clone := types.NewNodeGraph(g.ID, g.Name)
	for id, n := range g.Nodes {
		clone.Nodes[id] = cloneNode(n)
	}
	clone.Connections = append([]types.Connection(nil), g.Connections...)
	for id, grant := range g.Grants {
		clone.Grants[id] = grant
	}
	return clone
}

// aggregateBoundaryPorts implements §4.6 step 5: an input is exposed when
// it has an inbound connection from outside the selection; an output is
// exposed when it has no connection at all, or any connection leaving the
// selection.
func aggregateBoundaryPorts(g *types.NodeGraph, ids []string, nodes []*types.GraphNode) ([]types.PortMapping, []types.PortMapping) {
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}

	inboundExternal := make(map[string]map[string]bool)
	outboundAny := make(map[string]map[string]bool)
	outboundExternal := make(map[string]map[string]bool)

	for _, c := range g.Connections {
		if member[c.ToNode] && !member[c.FromNode] {
			markPort(inboundExternal, c.ToNode, c.ToPort)
		}
		if member[c.FromNode] {
			markPort(outboundAny, c.FromNode, c.FromPort)
			if !member[c.ToNode] {
				markPort(outboundExternal, c.FromNode, c.FromPort)
			}
		}
	}

	var exposedIn, exposedOut []types.PortMapping
	for _, n := range nodes {
		for _, p := range n.Inputs {
			if inboundExternal[n.ID][p.Name] {
				exposedIn = append(exposedIn, types.PortMapping{
					BoundaryName: n.DisplayName + "." + p.Name,
					InternalNode: n.ID,
					InternalPort: p.Name,
				})
			}
		}
		for _, p := range n.Outputs {
			if !outboundAny[n.ID][p.Name] || outboundExternal[n.ID][p.Name] {
				exposedOut = append(exposedOut, types.PortMapping{
					BoundaryName: n.DisplayName + "." + p.Name,
					InternalNode: n.ID,
					InternalPort: p.Name,
				})
			}
		}
	}
	return exposedIn, exposedOut
}

func markPort(m map[string]map[string]bool, nodeID, port string) {
	if m[nodeID] == nil {
		m[nodeID] = make(map[string]bool)
	}
	m[nodeID][port] = true
}

// centroid is the arithmetic mean position of the selected nodes, used to
// place the composite (§4.6 step 6).
func centroid(nodes []*types.GraphNode) types.Position {
	if len(nodes) == 0 {
		return types.Position{}
	}
	var x, y float64
	for _, n := range nodes {
		x += n.Position.X
		y += n.Position.Y
	}
	count := float64(len(nodes))
	return types.Position{X: x / count, Y: y / count}
}

// compositionHash is a CRC-64 (ECMA) digest over a deterministic text
// encoding of the internal graph and boundary mappings, used to detect a
// stale drill-down view (§4.6 "Metadata records ... a CRC-64 of the binary
// as a composition hash" — computed here over the preserved structure
// rather than a fused binary; see doc.go).
func compositionHash(internal *types.NodeGraph, exposedIn, exposedOut []types.PortMapping) uint64 {
	var buf bytes.Buffer

	ids := make([]string, 0, len(internal.Nodes))
	for id := range internal.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := internal.Nodes[id]
		fmt.Fprintf(&buf, "node:%s:%s\n", n.ID, n.ComponentID)
	}

	conns := append([]types.Connection(nil), internal.Connections...)
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].FromNode != conns[j].FromNode {
			return conns[i].FromNode < conns[j].FromNode
		}
		return conns[i].ToNode < conns[j].ToNode
	})
	for _, c := range conns {
		fmt.Fprintf(&buf, "conn:%s.%s->%s.%s\n", c.FromNode, c.FromPort, c.ToNode, c.ToPort)
	}

	for _, m := range exposedIn {
		fmt.Fprintf(&buf, "in:%s=%s.%s\n", m.BoundaryName, m.InternalNode, m.InternalPort)
	}
	for _, m := range exposedOut {
		fmt.Fprintf(&buf, "out:%s=%s.%s\n", m.BoundaryName, m.InternalNode, m.InternalPort)
	}

	return crc64.Checksum(buf.Bytes(), ecmaTable)
}

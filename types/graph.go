package types

import "time"

// GraphMetadata is free-form descriptive information about a NodeGraph,
// preserved across save/load but never consulted by the engine (§3).
type GraphMetadata struct {
	Author      string
	Created     time.Time
	Modified    time.Time
	Description string
}

// SchemaVersion is the current NodeGraph persistence schema version (§4.6).
const SchemaVersion uint32 = 1

// NodeGraph is the full data model for one visual composition: a set of
// nodes, the connections between their ports, capability grants, and the
// bookkeeping the engine and persistence layers need (§3).
type NodeGraph struct {
	ID       string
	Name     string
	Metadata GraphMetadata

	SchemaVersion uint32

	Nodes       map[string]*GraphNode
	Connections []Connection

	// Grants records the capability currently authorized for each node by
	// ID. Absence means CapabilityNone.
	Grants map[string]CapabilityGrant

	// cachedOrder is the last computed topological order, invalidated
	// whenever the node/connection set changes (see graph.ExecutionOrder).
	cachedOrder    []string
	cachedOrderSet bool
}

// NewNodeGraph constructs an empty graph ready to accept nodes.
func NewNodeGraph(id, name string) *NodeGraph {
	return &NodeGraph{
		ID:            id,
		Name:          name,
		SchemaVersion: SchemaVersion,
		Nodes:         make(map[string]*GraphNode),
		Grants:        make(map[string]CapabilityGrant),
		Metadata: GraphMetadata{
			Created:  time.Now().UTC(),
			Modified: time.Now().UTC(),
		},
	}
}

// InvalidateOrder clears the cached topological order. Any mutation to the
// node or connection set must call this.
func (g *NodeGraph) InvalidateOrder() {
	g.cachedOrder = nil
	g.cachedOrderSet = false
}

// CachedOrder returns the last computed topological order and whether one
// is currently cached.
func (g *NodeGraph) CachedOrder() ([]string, bool) {
	return g.cachedOrder, g.cachedOrderSet
}

// SetCachedOrder stores a freshly computed topological order.
func (g *NodeGraph) SetCachedOrder(order []string) {
	g.cachedOrder = order
	g.cachedOrderSet = true
}

// GrantFor returns the capability currently granted to nodeID, defaulting
// to CapabilityNone when absent.
func (g *NodeGraph) GrantFor(nodeID string) CapabilitySet {
	if grant, ok := g.Grants[nodeID]; ok {
		return grant.Set
	}
	return NoneCapability()
}

// Touch updates Metadata.Modified to now, called after any mutation that
// should be reflected in persisted metadata.
func (g *NodeGraph) Touch() {
	g.Metadata.Modified = time.Now().UTC()
}

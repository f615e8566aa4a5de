package composer

import (
	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/types"
)

// Compose link-fuses the nodes named by selected into a single composite
// GraphNode, registers its executor, and atomically mutates store: the
// composite is inserted and the selected nodes are removed, taking their
// internal connections and any now-dangling external connections with them
// (§4.6 step 7 — these are not remapped automatically).
func Compose(store *graph.Store, registry types.ComponentRegistry, selected []string, displayName string) (*types.GraphNode, error) {
	g := store.Graph()

	if len(selected) < 2 {
		return nil, types.NewError(types.ErrCompositionError, "composition requires at least 2 nodes")
	}
	// Preserve the caller's selection order: the socket is "the first node's
	// component" in that order (§4.6 step 2), not lexicographically first.
	ids := append([]string(nil), selected...)

	nodes := make([]*types.GraphNode, 0, len(ids))
	for _, id := range ids {
		n, ok := g.Nodes[id]
		if !ok {
			return nil, types.NewError(types.ErrCompositionError, "selected node not found: "+id)
		}
		nodes = append(nodes, n)
	}

	if !graph.IsConnectedSubgraph(g, ids) {
		return nil, types.NewError(types.ErrCompositionError, "selection is not a connected sub-graph")
	}

	for _, n := range nodes {
		spec, _, ok := registry.Get(n.ComponentID)
		if !ok {
			return nil, types.NewError(types.ErrCompositionError, "component not registered: "+n.ComponentID)
		}
		if spec.Kind.Tag != types.ComponentUserDefined {
			return nil, types.NewError(types.ErrCompositionError, "node "+n.ID+" is not a user-defined component (no WASM binary to link)")
		}
	}

	socketID := ids[0]
	plugIDs := ids[1:]

	internal := buildInternalGraph(g, ids)
	exposedIn, exposedOut := aggregateBoundaryPorts(g, ids, nodes)
	hash := compositionHash(internal, exposedIn, exposedOut)

	data := &types.CompositionData{
		InternalGraph:   internal,
		ExposedInputs:   exposedIn,
		ExposedOutputs:  exposedOut,
		SocketNodeID:    socketID,
		PlugNodeIDs:     plugIDs,
		CompositionHash: hash,
	}

	inputs := make([]types.PortSpec, 0, len(exposedIn))
	for _, m := range exposedIn {
		p, ok := internal.Nodes[m.InternalNode].InputPort(m.InternalPort)
		if !ok {
			continue
		}
		inputs = append(inputs, types.PortSpec{Name: m.BoundaryName, Type: p.Type, Direction: types.PortInput, Optional: p.Optional})
	}
	outputs := make([]types.PortSpec, 0, len(exposedOut))
	for _, m := range exposedOut {
		p, ok := internal.Nodes[m.InternalNode].OutputPort(m.InternalPort)
		if !ok {
			continue
		}
		outputs = append(outputs, types.PortSpec{Name: m.BoundaryName, Type: p.Type, Direction: types.PortOutput})
	}

	composite := types.NewGraphNode(types.NewID(), "", displayName, inputs, outputs, types.NoneCapability())
	// A shared literal "composite:generated" id (§4.6 step 6) cannot
	// distinguish one composite's registered executor from another's in a
	// registry keyed by component id, so each composite gets its own id
	// under that namespace instead — see DESIGN.md.
	composite.ComponentID = "composite:generated:" + composite.ID
	composite.Position = centroid(nodes)
	composite.Composition = data

	spec := types.ComponentSpec{
		ID:                   composite.ComponentID,
		Name:                 displayName,
		Kind:                 types.ComposedKind(socketID, plugIDs),
		Inputs:               inputs,
		Outputs:              outputs,
		RequiredCapabilities: types.NoneCapability(),
		Category:             "Composite",
	}
	executor := &compositeExecutor{registry: registry, data: data}
	if err := registry.Register(spec, executor); err != nil {
		return nil, types.WrapError(types.ErrCompositionError, "register composite executor", err)
	}

	if err := store.AddNode(composite); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := store.RemoveNode(id); err != nil {
			return nil, err
		}
	}

	return composite, nil
}

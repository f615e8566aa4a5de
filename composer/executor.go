package composer

import (
	"context"

	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/types"
)

// compositeExecutor runs a composite node's preserved internal sub-DAG as
// one logical call (§4.6 "Composite execution"): boundary inputs are
// written onto their mapped internal ports, every internal node executes
// once in topological order, and the mapped internal outputs become the
// composite's returned outputs.
type compositeExecutor struct {
	registry types.ComponentRegistry
	data     *types.CompositionData
}

var _ types.Executor = (*compositeExecutor)(nil)

func (c *compositeExecutor) Execute(ctx context.Context, inputs map[string]types.NodeValue, grant types.CapabilitySet) (map[string]types.NodeValue, error) {
	ig := cloneGraphForCall(c.data.InternalGraph)

	for _, m := range c.data.ExposedInputs {
		v, ok := inputs[m.BoundaryName]
		if !ok {
			continue
		}
		n, ok := ig.Nodes[m.InternalNode]
		if !ok {
			continue
		}
		if p, ok := n.InputPort(m.InternalPort); ok {
			value := v
			p.CurrentValue = &value
		}
	}

	order, err := graph.ExecutionOrder(ig)
	if err != nil {
		return nil, types.WrapError(types.ErrCompositionError, "internal execution order", err)
	}

	for _, id := range order {
		n := ig.Nodes[id]
		nodeInputs, missing := assembleInternalInputs(ig, n)
		if missing != "" {
			return nil, types.NewError(types.ErrMissingInput, "internal node "+id+": "+missing)
		}

		spec, executor, ok := c.registry.Get(n.ComponentID)
		if !ok {
			return nil, types.NewError(types.ErrInvalidComponent, "internal component not registered: "+n.ComponentID)
		}

		nodeGrant := ig.GrantFor(n.ID)
		if nodeGrant.Kind == types.CapabilityNone {
			nodeGrant = grant
		}
		if !nodeGrant.Satisfies(spec.RequiredCapabilities) {
			return nil, types.NewError(types.ErrCapabilityDenied, "internal node "+id+" lacks required capability")
		}

		outputs, err := executor.Execute(ctx, nodeInputs, nodeGrant)
		if err != nil {
			return nil, types.WrapError(types.ErrGuestFailure, "internal node "+id+" failed", err)
		}
		for name, val := range outputs {
			if p, ok := n.OutputPort(name); ok {
				v := val
				p.CurrentValue = &v
			}
		}
	}

	result := make(map[string]types.NodeValue, len(c.data.ExposedOutputs))
	for _, m := range c.data.ExposedOutputs {
		n, ok := ig.Nodes[m.InternalNode]
		if !ok {
			continue
		}
		p, ok := n.OutputPort(m.InternalPort)
		if !ok || p.CurrentValue == nil {
			continue
		}
		result[m.BoundaryName] = *p.CurrentValue
	}
	return result, nil
}

// assembleInternalInputs mirrors engine's input-assembly rule (§4.3) for a
// composite's internal nodes. composer does not import engine; this is a
// small, self-contained copy scoped to internal-graph dispatch only.
func assembleInternalInputs(g *types.NodeGraph, n *types.GraphNode) (map[string]types.NodeValue, string) {
	connectedBy := make(map[string]types.Connection, len(n.Inputs))
	for _, conn := range g.Connections {
		if conn.ToNode == n.ID {
			connectedBy[conn.ToPort] = conn
		}
	}

	inputs := make(map[string]types.NodeValue, len(n.Inputs))
	for _, p := range n.Inputs {
		if conn, ok := connectedBy[p.Name]; ok {
			from := g.Nodes[conn.FromNode]
			if from == nil {
				return nil, "connection references missing node " + conn.FromNode
			}
			outPort, ok := from.OutputPort(conn.FromPort)
			if !ok || outPort.CurrentValue == nil {
				if p.Optional {
					continue
				}
				return nil, "required input " + p.Name + " has no value yet"
			}
			inputs[p.Name] = *outPort.CurrentValue
			continue
		}
		if p.CurrentValue != nil {
			inputs[p.Name] = *p.CurrentValue
			continue
		}
		if p.Optional {
			continue
		}
		return nil, "required input " + p.Name + " is not connected"
	}
	return inputs, ""
}

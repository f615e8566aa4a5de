package persistence

import (
	"sort"
	"time"

	"github.com/wasmflow/wasmflow/types"
)

const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// encodeGraph converts a live NodeGraph to its wire shape. blankSourceCode
// controls whether creator nodes with SaveCode == false have their
// SourceCode dropped (§4.7 "Write").
func encodeGraph(g *types.NodeGraph, blankSourceCode bool) wireGraph {
	wg := wireGraph{
		ID:   g.ID,
		Name: g.Name,
		Metadata: wireGraphMetadata{
			Author:      g.Metadata.Author,
			Created:     encodeTime(g.Metadata.Created),
			Modified:    encodeTime(g.Metadata.Modified),
			Description: g.Metadata.Description,
		},
		SchemaVersion: g.SchemaVersion,
		Nodes:         make(map[string]wireNode, len(g.Nodes)),
	}

	for id, n := range g.Nodes {
		wg.Nodes[id] = encodeNode(n, blankSourceCode)
	}

	for _, c := range g.Connections {
		wg.Connections = append(wg.Connections, wireConnection{
			ID: c.ID, FromNode: c.FromNode, FromPort: c.FromPort, ToNode: c.ToNode, ToPort: c.ToPort,
		})
	}

	if len(g.Grants) > 0 {
		wg.Grants = make(map[string]wireGrant, len(g.Grants))
		for id, grant := range g.Grants {
			wg.Grants[id] = wireGrant{
				NodeID:    grant.NodeID,
				Set:       encodeCapabilitySet(grant.Set),
				GrantedAt: encodeTime(grant.GrantedAt),
				Scope:     grant.Scope,
			}
		}
	}

	return wg
}

func encodeNode(n *types.GraphNode, blankSourceCode bool) wireNode {
	wn := wireNode{
		ID:                   n.ID,
		ComponentID:          n.ComponentID,
		DisplayName:          n.DisplayName,
		Position:             wirePosition{X: n.Position.X, Y: n.Position.Y},
		RequiredCapabilities: encodeCapabilitySet(n.RequiredCapabilities),
		Configuration:        n.Configuration,
		State:                executionStateName(n.State),
		Dirty:                n.Dirty,
	}
	for _, p := range n.Inputs {
		wn.Inputs = append(wn.Inputs, encodePort(p))
	}
	for _, p := range n.Outputs {
		wn.Outputs = append(wn.Outputs, encodePort(p))
	}
	if n.Creator != nil {
		src := n.Creator.SourceCode
		if blankSourceCode && !n.Creator.SaveCode {
			src = ""
		}
		wn.Creator = &wireCreator{
			SourceCode:          src,
			SaveCode:            n.Creator.SaveCode,
			State:                n.Creator.State.String(),
			CompiledComponentID:  n.Creator.CompiledComponentID,
			CompileError:         n.Creator.CompileError,
		}
	}
	if n.Continuous != nil {
		wn.Continuous = &wireContinuous{IntervalMillis: n.Continuous.IntervalMillis, AutoStart: n.Continuous.AutoStart}
	}
	if n.Composition != nil {
		internal := encodeGraph(n.Composition.InternalGraph, blankSourceCode)
		wn.Composition = &wireComposition{
			InternalGraph:   &internal,
			ExposedInputs:   encodePortMappings(n.Composition.ExposedInputs),
			ExposedOutputs:  encodePortMappings(n.Composition.ExposedOutputs),
			SocketNodeID:    n.Composition.SocketNodeID,
			PlugNodeIDs:     n.Composition.PlugNodeIDs,
			CompositionHash: n.Composition.CompositionHash,
		}
	}
	return wn
}

func encodePortMappings(ms []types.PortMapping) []wirePortMapping {
	out := make([]wirePortMapping, 0, len(ms))
	for _, m := range ms {
		out = append(out, wirePortMapping{BoundaryName: m.BoundaryName, InternalNode: m.InternalNode, InternalPort: m.InternalPort})
	}
	return out
}

func decodePortMappings(ms []wirePortMapping) []types.PortMapping {
	out := make([]types.PortMapping, 0, len(ms))
	for _, m := range ms {
		out = append(out, types.PortMapping{BoundaryName: m.BoundaryName, InternalNode: m.InternalNode, InternalPort: m.InternalPort})
	}
	return out
}

func encodePort(p types.Port) wirePort {
	wp := wirePort{
		Name:      p.Name,
		Type:      encodeType(p.Type),
		Direction: portDirectionName(p.Direction),
		Optional:  p.Optional,
	}
	if p.CurrentValue != nil {
		v := encodeValue(*p.CurrentValue)
		wp.CurrentValue = &v
	}
	return wp
}

func decodePort(wp wirePort) (types.Port, error) {
	t, err := decodeType(wp.Type)
	if err != nil {
		return types.Port{}, err
	}
	p := types.Port{Name: wp.Name, Type: t, Direction: parsePortDirection(wp.Direction), Optional: wp.Optional}
	if wp.CurrentValue != nil {
		v, err := decodeValue(*wp.CurrentValue)
		if err != nil {
			return types.Port{}, err
		}
		p.CurrentValue = &v
	}
	return p, nil
}

// decodeGraph converts a wire graph back into a live NodeGraph. Every
// continuous node's runtime state is forced to defaults by construction:
// RuntimeState lives only in the continuous.Manager, never on GraphNode, so
// a freshly decoded graph has no runtime state to reset (§4.7 "force
// continuous runtime_state to defaults").
func decodeGraph(wg wireGraph) (*types.NodeGraph, error) {
	g := types.NewNodeGraph(wg.ID, wg.Name)
	g.Metadata = types.GraphMetadata{
		Author:      wg.Metadata.Author,
		Created:     decodeTime(wg.Metadata.Created),
		Modified:    decodeTime(wg.Metadata.Modified),
		Description: wg.Metadata.Description,
	}
	if wg.SchemaVersion != 0 {
		g.SchemaVersion = wg.SchemaVersion
	}

	ids := make([]string, 0, len(wg.Nodes))
	for id := range wg.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n, err := decodeNode(wg.Nodes[id])
		if err != nil {
			return nil, err
		}
		g.Nodes[id] = n
	}

	for _, c := range wg.Connections {
		g.Connections = append(g.Connections, types.Connection{
			ID: c.ID, FromNode: c.FromNode, FromPort: c.FromPort, ToNode: c.ToNode, ToPort: c.ToPort,
		})
	}

	for id, wgrant := range wg.Grants {
		set, err := decodeCapabilitySet(wgrant.Set)
		if err != nil {
			return nil, err
		}
		g.Grants[id] = types.CapabilityGrant{
			NodeID: wgrant.NodeID, Set: set, GrantedAt: decodeTime(wgrant.GrantedAt), Scope: wgrant.Scope,
		}
	}

	return g, nil
}

func decodeNode(wn wireNode) (*types.GraphNode, error) {
	required, err := decodeCapabilitySet(wn.RequiredCapabilities)
	if err != nil {
		return nil, err
	}
	state, err := parseExecutionState(wn.State)
	if err != nil {
		return nil, err
	}
	n := &types.GraphNode{
		ID:                   wn.ID,
		ComponentID:          wn.ComponentID,
		DisplayName:          wn.DisplayName,
		Position:             types.Position{X: wn.Position.X, Y: wn.Position.Y},
		RequiredCapabilities: required,
		Configuration:        wn.Configuration,
		State:                state,
		Dirty:                wn.Dirty,
	}
	for _, wp := range wn.Inputs {
		p, err := decodePort(wp)
		if err != nil {
			return nil, err
		}
		n.Inputs = append(n.Inputs, p)
	}
	for _, wp := range wn.Outputs {
		p, err := decodePort(wp)
		if err != nil {
			return nil, err
		}
		n.Outputs = append(n.Outputs, p)
	}
	if wn.Creator != nil {
		n.Creator = &types.CreatorData{
			SourceCode:           wn.Creator.SourceCode,
			SaveCode:             wn.Creator.SaveCode,
			State:                parseCompilationState(wn.Creator.State),
			CompiledComponentID:  wn.Creator.CompiledComponentID,
			CompileError:         wn.Creator.CompileError,
		}
	}
	if wn.Continuous != nil {
		n.Continuous = &types.ContinuousConfig{IntervalMillis: wn.Continuous.IntervalMillis, AutoStart: wn.Continuous.AutoStart}
	}
	if wn.Composition != nil {
		internal, err := decodeGraph(*wn.Composition.InternalGraph)
		if err != nil {
			return nil, err
		}
		n.Composition = &types.CompositionData{
			InternalGraph:   internal,
			ExposedInputs:   decodePortMappings(wn.Composition.ExposedInputs),
			ExposedOutputs:  decodePortMappings(wn.Composition.ExposedOutputs),
			SocketNodeID:    wn.Composition.SocketNodeID,
			PlugNodeIDs:     wn.Composition.PlugNodeIDs,
			CompositionHash: wn.Composition.CompositionHash,
		}
	}
	return n, nil
}

func parseCompilationState(s string) types.CompilationState {
	switch s {
	case "Compiling":
		return types.CompilationCompiling
	case "Compiled":
		return types.CompilationCompiled
	case "Failed":
		return types.CompilationFailed
	default:
		return types.CompilationNotCompiled
	}
}

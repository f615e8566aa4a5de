package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/wasmflow/wasmflow/builtin"
	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func constNode(id string, value float32) *types.GraphNode {
	n := types.NewGraphNode(id, "math.constant", id,
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortInput, Optional: true}},
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortOutput}},
		types.NoneCapability())
	v := types.NewF32(value)
	n.Inputs[0].CurrentValue = &v
	return n
}

func binNode(id, componentID string) *types.GraphNode {
	return types.NewGraphNode(id, componentID, id,
		[]types.PortSpec{
			{Name: "a", Type: types.F32(), Direction: types.PortInput},
			{Name: "b", Type: types.F32(), Direction: types.PortInput},
		},
		[]types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput}},
		types.NoneCapability())
}

func TestSimpleAdd(t *testing.T) {
	s := graph.NewStore(nil)
	require.NoError(t, s.AddNode(constNode("c1", 3)))
	require.NoError(t, s.AddNode(constNode("c2", 5)))
	require.NoError(t, s.AddNode(binNode("add", "math.adder")))
	_, err := s.AddConnection("c1", "value", "add", "a")
	require.NoError(t, err)
	_, err = s.AddConnection("c2", "value", "add", "b")
	require.NoError(t, err)

	e := New(registry.Default, types.Config{})
	report, err := e.Execute(context.Background(), s.Graph())
	require.NoError(t, err)
	assert.Empty(t, report.Failed)

	out := s.Graph().Nodes["add"]
	p, ok := out.OutputPort("out")
	require.True(t, ok)
	require.NotNil(t, p.CurrentValue)
	assert.InDelta(t, float32(8.0), p.CurrentValue.F32, 0.0001)
}

func TestDivisionByZeroFailsWithoutPropagatingNaN(t *testing.T) {
	s := graph.NewStore(nil)
	require.NoError(t, s.AddNode(constNode("c1", 10)))
	require.NoError(t, s.AddNode(constNode("c2", 0)))
	require.NoError(t, s.AddNode(binNode("div", "math.divider")))
	_, err := s.AddConnection("c1", "value", "div", "a")
	require.NoError(t, err)
	_, err = s.AddConnection("c2", "value", "div", "b")
	require.NoError(t, err)

	e := New(registry.Default, types.Config{})
	report, err := e.Execute(context.Background(), s.Graph())
	require.NoError(t, err)
	require.Contains(t, report.Failed, "div")

	kind, ok := types.KindOf(report.Failed["div"])
	require.True(t, ok)
	assert.Equal(t, types.ErrGuestFailure, kind)
}

func TestMemoizationSkipsUnchangedReexecution(t *testing.T) {
	s := graph.NewStore(nil)
	require.NoError(t, s.AddNode(constNode("c1", 1)))
	require.NoError(t, s.AddNode(constNode("c2", 1)))
	require.NoError(t, s.AddNode(binNode("add", "math.adder")))
	_, err := s.AddConnection("c1", "value", "add", "a")
	require.NoError(t, err)
	_, err = s.AddConnection("c2", "value", "add", "b")
	require.NoError(t, err)

	e := New(registry.Default, types.Config{})
	_, err = e.Execute(context.Background(), s.Graph())
	require.NoError(t, err)

	graph.MarkDirty(s.Graph(), "add")
	report, err := e.Execute(context.Background(), s.Graph())
	require.NoError(t, err)
	assert.Contains(t, report.Completed, "add")
	assert.NotContains(t, report.Completed, "c1")
	assert.NotContains(t, report.Completed, "c2")
}

func TestCapabilityDeniedForUngrantedNode(t *testing.T) {
	s := graph.NewStore(nil)
	n := types.NewGraphNode("pub", "network.mqtt-publish", "pub",
		[]types.PortSpec{
			{Name: "broker", Type: types.String(), Direction: types.PortInput},
			{Name: "topic", Type: types.String(), Direction: types.PortInput},
			{Name: "payload", Type: types.String(), Direction: types.PortInput},
		},
		[]types.PortSpec{{Name: "published", Type: types.Bool(), Direction: types.PortOutput}},
		types.NetworkCapability("example.com"))
	broker := types.NewString("tcp://example.com:1883")
	topic := types.NewString("t")
	payload := types.NewString("hi")
	n.Inputs[0].CurrentValue = &broker
	n.Inputs[1].CurrentValue = &topic
	n.Inputs[2].CurrentValue = &payload
	require.NoError(t, s.AddNode(n))

	e := New(registry.Default, types.Config{})
	report, err := e.Execute(context.Background(), s.Graph())
	require.NoError(t, err)
	require.Contains(t, report.Failed, "pub")
	kind, ok := types.KindOf(report.Failed["pub"])
	require.True(t, ok)
	assert.Equal(t, types.ErrCapabilityDenied, kind)
}

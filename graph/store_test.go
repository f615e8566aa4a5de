package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmflow/wasmflow/types"
)

func newTestNode(id string, inputs, outputs []types.PortSpec) *types.GraphNode {
	return types.NewGraphNode(id, "test.component", id, inputs, outputs, types.NoneCapability())
}

func f32Port(name string, dir types.PortDirection) types.PortSpec {
	return types.PortSpec{Name: name, Type: types.F32(), Direction: dir}
}

func TestAddConnectionValidatesAndLinks(t *testing.T) {
	s := NewStore(nil)
	a := newTestNode("a", nil, []types.PortSpec{f32Port("out", types.PortOutput)})
	b := newTestNode("b", []types.PortSpec{f32Port("in", types.PortInput)}, nil)
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))

	conn, err := s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)
	assert.Equal(t, "a", conn.FromNode)
	assert.Len(t, s.Graph().Connections, 1)
}

func TestAddConnectionRejectsCycleAndLeavesCountUnchanged(t *testing.T) {
	s := NewStore(nil)
	a := newTestNode("a", []types.PortSpec{f32Port("in", types.PortInput)}, []types.PortSpec{f32Port("out", types.PortOutput)})
	b := newTestNode("b", []types.PortSpec{f32Port("in", types.PortInput)}, []types.PortSpec{f32Port("out", types.PortOutput)})
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))

	_, err := s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)
	before := len(s.Graph().Connections)

	_, err = s.AddConnection("b", "out", "a", "in")
	require.Error(t, err)
	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrCycleDetected, kind)
	assert.Equal(t, before, len(s.Graph().Connections))
}

func TestAddConnectionRejectsTypeMismatch(t *testing.T) {
	s := NewStore(nil)
	a := newTestNode("a", nil, []types.PortSpec{{Name: "out", Type: types.String(), Direction: types.PortOutput}})
	b := newTestNode("b", []types.PortSpec{f32Port("in", types.PortInput)}, nil)
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))

	_, err := s.AddConnection("a", "out", "b", "in")
	require.Error(t, err)
	kind, _ := types.KindOf(err)
	assert.Equal(t, types.ErrTypeMismatch, kind)
}

func TestRemoveNodeRemovesIncidentConnections(t *testing.T) {
	s := NewStore(nil)
	a := newTestNode("a", nil, []types.PortSpec{f32Port("out", types.PortOutput)})
	b := newTestNode("b", []types.PortSpec{f32Port("in", types.PortInput)}, nil)
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))
	_, err := s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)

	require.NoError(t, s.RemoveNode("a"))
	assert.Empty(t, s.Graph().Connections)
	_, exists := s.Graph().Nodes["a"]
	assert.False(t, exists)
}

func TestExecutionOrderIsDeterministicallyTieBroken(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.AddNode(newTestNode("z", nil, []types.PortSpec{f32Port("out", types.PortOutput)})))
	require.NoError(t, s.AddNode(newTestNode("a", nil, []types.PortSpec{f32Port("out", types.PortOutput)})))

	order, err := ExecutionOrder(s.Graph())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, order)
}

func TestMarkDirtyPropagatesDownstream(t *testing.T) {
	s := NewStore(nil)
	a := newTestNode("a", nil, []types.PortSpec{f32Port("out", types.PortOutput)})
	b := newTestNode("b", []types.PortSpec{f32Port("in", types.PortInput)}, []types.PortSpec{f32Port("out", types.PortOutput)})
	c := newTestNode("c", []types.PortSpec{f32Port("in", types.PortInput)}, nil)
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))
	require.NoError(t, s.AddNode(c))
	_, err := s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)
	_, err = s.AddConnection("b", "out", "c", "in")
	require.NoError(t, err)

	MarkAllClean(s.Graph())
	MarkDirty(s.Graph(), "a")

	assert.True(t, s.Graph().Nodes["a"].Dirty)
	assert.True(t, s.Graph().Nodes["b"].Dirty)
	assert.True(t, s.Graph().Nodes["c"].Dirty)
}

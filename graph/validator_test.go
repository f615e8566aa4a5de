package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmflow/wasmflow/types"
)

func TestValidateWarnsOnUnconnectedRequiredInput(t *testing.T) {
	s := NewStore(nil)
	b := newTestNode("b", []types.PortSpec{f32Port("in", types.PortInput)}, nil)
	require.NoError(t, s.AddNode(b))

	report := Validate(s.Graph())
	assert.True(t, report.OK())
	assert.Len(t, report.Warnings, 1)
}

func TestIsConnectedSubgraph(t *testing.T) {
	s := NewStore(nil)
	a := newTestNode("a", nil, []types.PortSpec{f32Port("out", types.PortOutput)})
	b := newTestNode("b", []types.PortSpec{f32Port("in", types.PortInput)}, []types.PortSpec{f32Port("out", types.PortOutput)})
	c := newTestNode("c", []types.PortSpec{f32Port("in", types.PortInput)}, nil)
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))
	require.NoError(t, s.AddNode(c))
	_, err := s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)

	assert.True(t, IsConnectedSubgraph(s.Graph(), []string{"a", "b"}))
	assert.False(t, IsConnectedSubgraph(s.Graph(), []string{"a", "c"}))
}

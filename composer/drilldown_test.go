package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func TestInspectorDrillDownAndBack(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(fakeUserDefinedSpec("udf.add-one"), addDeltaExecutor(1)))
	require.NoError(t, reg.Register(fakeUserDefinedSpec("udf.add-two"), addDeltaExecutor(2)))

	s := graph.NewStore(nil)
	a := types.NewGraphNode("a", "udf.add-one", "stepA", f32In, f32Out, types.NoneCapability())
	b := types.NewGraphNode("b", "udf.add-two", "stepB", f32In, f32Out, types.NoneCapability())
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))
	_, err := s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)

	composite, err := Compose(s, reg, []string{"a", "b"}, "chain")
	require.NoError(t, err)

	insp := NewInspector(s.Graph())
	assert.True(t, insp.AtMain())
	assert.Equal(t, 0, insp.Depth())

	require.NoError(t, insp.DrillDown(composite.ID))
	assert.False(t, insp.AtMain())
	assert.Equal(t, 1, insp.Depth())
	_, hasA := insp.Current().Nodes["a"]
	_, hasB := insp.Current().Nodes["b"]
	assert.True(t, hasA)
	assert.True(t, hasB)

	assert.True(t, insp.GoBack())
	assert.True(t, insp.AtMain())
	assert.Same(t, s.Graph(), insp.Current())
}

func TestInspectorDrillDownRejectsNonComposite(t *testing.T) {
	g := types.NewNodeGraph(types.NewID(), "root")
	leaf := types.NewGraphNode("leaf", "udf.add-one", "leaf", f32In, f32Out, types.NoneCapability())
	g.Nodes["leaf"] = leaf

	insp := NewInspector(g)
	err := insp.DrillDown("leaf")
	require.Error(t, err)
	kind, _ := types.KindOf(err)
	assert.Equal(t, types.ErrCompositionError, kind)
}

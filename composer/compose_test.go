package composer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

var f32In = []types.PortSpec{{Name: "in", Type: types.F32(), Direction: types.PortInput}}
var f32Out = []types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput}}

func fakeUserDefinedSpec(id string) types.ComponentSpec {
	return types.ComponentSpec{
		ID:                   id,
		Name:                 id,
		Kind:                 types.UserDefinedKind("/fake/" + id + ".wasm"),
		Inputs:               f32In,
		Outputs:              f32Out,
		RequiredCapabilities: types.NoneCapability(),
	}
}

func addDeltaExecutor(delta float32) types.ExecutorFunc {
	return func(ctx context.Context, inputs map[string]types.NodeValue, grant types.CapabilitySet) (map[string]types.NodeValue, error) {
		return map[string]types.NodeValue{"out": types.NewF32(inputs["in"].F32 + delta)}, nil
	}
}

func TestComposeProducesEquivalentComposite(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(fakeUserDefinedSpec("udf.src"), addDeltaExecutor(0)))
	require.NoError(t, reg.Register(fakeUserDefinedSpec("udf.add-one"), addDeltaExecutor(1)))
	require.NoError(t, reg.Register(fakeUserDefinedSpec("udf.add-two"), addDeltaExecutor(2)))

	s := graph.NewStore(nil)
	src := types.NewGraphNode("src", "udf.src", "source", f32In, f32Out, types.NoneCapability())
	a := types.NewGraphNode("a", "udf.add-one", "stepA", f32In, f32Out, types.NoneCapability())
	b := types.NewGraphNode("b", "udf.add-two", "stepB", f32In, f32Out, types.NoneCapability())
	require.NoError(t, s.AddNode(src))
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))
	_, err := s.AddConnection("src", "out", "a", "in")
	require.NoError(t, err)
	_, err = s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)

	composite, err := Compose(s, reg, []string{"a", "b"}, "chain")
	require.NoError(t, err)
	require.NotNil(t, composite)

	_, exists := s.Graph().Nodes["a"]
	assert.False(t, exists)
	_, exists = s.Graph().Nodes["b"]
	assert.False(t, exists)
	_, exists = s.Graph().Nodes["src"]
	assert.True(t, exists, "node outside the selection must survive composition")
	_, exists = s.Graph().Nodes[composite.ID]
	assert.True(t, exists)

	_, executor, ok := reg.Get(composite.ComponentID)
	require.True(t, ok)

	out, err := executor.Execute(context.Background(), map[string]types.NodeValue{"stepA.in": types.NewF32(3)}, types.NoneCapability())
	require.NoError(t, err)
	assert.InDelta(t, float32(6.0), out["stepB.out"].F32, 0.0001)
}

func TestComposeRejectsFewerThanTwoNodes(t *testing.T) {
	reg := registry.New()
	s := graph.NewStore(nil)
	_, err := Compose(s, reg, []string{"a"}, "x")
	require.Error(t, err)
	kind, _ := types.KindOf(err)
	assert.Equal(t, types.ErrCompositionError, kind)
}

func TestComposeRejectsBuiltinMember(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(fakeUserDefinedSpec("udf.add-one"), addDeltaExecutor(1)))
	require.NoError(t, reg.Register(types.ComponentSpec{
		ID: "core.builtin-thing", Kind: types.BuiltinKind(), Inputs: f32In, Outputs: f32Out,
	}, addDeltaExecutor(1)))

	s := graph.NewStore(nil)
	a := types.NewGraphNode("a", "udf.add-one", "stepA", f32In, f32Out, types.NoneCapability())
	b := types.NewGraphNode("b", "core.builtin-thing", "stepB", f32In, f32Out, types.NoneCapability())
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))
	_, err := s.AddConnection("a", "out", "b", "in")
	require.NoError(t, err)

	_, err = Compose(s, reg, []string{"a", "b"}, "bad")
	require.Error(t, err)
	kind, _ := types.KindOf(err)
	assert.Equal(t, types.ErrCompositionError, kind)
}

func TestComposeRejectsDisconnectedSelection(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(fakeUserDefinedSpec("udf.add-one"), addDeltaExecutor(1)))

	s := graph.NewStore(nil)
	a := types.NewGraphNode("a", "udf.add-one", "stepA", f32In, f32Out, types.NoneCapability())
	b := types.NewGraphNode("b", "udf.add-one", "stepB", f32In, f32Out, types.NoneCapability())
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))

	_, err := Compose(s, reg, []string{"a", "b"}, "bad")
	require.Error(t, err)
	kind, _ := types.KindOf(err)
	assert.Equal(t, types.ErrCompositionError, kind)
}

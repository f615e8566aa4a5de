package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmflow/wasmflow/types"
)

func constExecutor(v types.NodeValue) types.Executor {
	return types.ExecutorFunc(func(_ context.Context, _ map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
		return map[string]types.NodeValue{"out": v}, nil
	})
}

func TestRegisterAndGet(t *testing.T) {
	r := New()
	spec := types.ComponentSpec{ID: "test.const", Name: "Const"}
	exec := constExecutor(types.NewI32(1))

	require.NoError(t, r.Register(spec, exec))

	gotSpec, gotExec, ok := r.Get("test.const")
	require.True(t, ok)
	assert.Equal(t, spec.ID, gotSpec.ID)
	assert.NotNil(t, gotExec)
}

func TestGetMissing(t *testing.T) {
	r := New()
	_, _, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(types.ComponentSpec{ID: "b"}, constExecutor(types.NewBool(true))))
	require.NoError(t, r.Register(types.ComponentSpec{ID: "a"}, constExecutor(types.NewBool(false))))

	ids := make([]string, 0, 2)
	for _, spec := range r.List() {
		ids = append(ids, spec.ID)
	}
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestRegisterRejectsEmptyID(t *testing.T) {
	r := New()
	err := r.Register(types.ComponentSpec{}, constExecutor(types.NewBool(false)))
	assert.Error(t, err)
}

func TestRegisterUserComponentAssignsConventionalID(t *testing.T) {
	r := New()
	id, wasReplaced, err := r.RegisterUserComponent("my-filter", types.ComponentSpec{Name: "My Filter"}, constExecutor(types.NewI32(1)))
	require.NoError(t, err)
	assert.Equal(t, "user:my-filter", id)
	assert.False(t, wasReplaced)

	gotSpec, _, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, gotSpec.ID)
}

func TestRegisterUserComponentReportsReplacementAndFlagsRefresh(t *testing.T) {
	r := New()
	id, wasReplaced, err := r.RegisterUserComponent("my-filter", types.ComponentSpec{Name: "v1"}, constExecutor(types.NewI32(1)))
	require.NoError(t, err)
	require.False(t, wasReplaced)
	assert.False(t, r.NeedsRefresh(id))

	id2, wasReplaced2, err := r.RegisterUserComponent("my-filter", types.ComponentSpec{Name: "v2"}, constExecutor(types.NewI32(2)))
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.True(t, wasReplaced2)
	assert.True(t, r.NeedsRefresh(id))

	gotSpec, _, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, "v2", gotSpec.Name)
}

func TestRegisterUserComponentRejectsEmptyName(t *testing.T) {
	r := New()
	_, _, err := r.RegisterUserComponent("", types.ComponentSpec{}, constExecutor(types.NewBool(false)))
	assert.Error(t, err)
}

func TestNeedsRefreshLifecycle(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(types.ComponentSpec{ID: "x"}, constExecutor(types.NewBool(false))))

	assert.False(t, r.NeedsRefresh("x"))
	r.MarkNeedsRefresh("x")
	assert.True(t, r.NeedsRefresh("x"))
	r.ClearNeedsRefresh("x")
	assert.False(t, r.NeedsRefresh("x"))
}

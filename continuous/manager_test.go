package continuous

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/wasmflow/wasmflow/builtin"
	"github.com/wasmflow/wasmflow/engine"
	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func continuousConstNode(id string, value float32, intervalMillis uint64) *types.GraphNode {
	n := types.NewGraphNode(id, "math.constant", id,
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortInput, Optional: true}},
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortOutput}},
		types.NoneCapability())
	v := types.NewF32(value)
	n.Inputs[0].CurrentValue = &v
	n.Continuous = &types.ContinuousConfig{IntervalMillis: intervalMillis}
	return n
}

func TestStartStopLifecycle(t *testing.T) {
	s := graph.NewStore(nil)
	require.NoError(t, s.AddNode(continuousConstNode("timer", 1, 50)))

	eng := engine.New(registry.Default, types.Config{})
	m := New(s, eng, nil)

	require.NoError(t, m.StartNode(context.Background(), "timer"))
	requireResultKind(t, m, types.ResultStarted, time.Second)
	assert.Equal(t, types.ContinuousRunning, m.State("timer"))

	res := requireResultKind(t, m, types.ResultIterationComplete, time.Second)
	assert.GreaterOrEqual(t, res.Iteration, uint64(1))

	require.NoError(t, m.StopNode("timer"))
	assert.Equal(t, types.ContinuousStopped, m.State("timer"))
}

func TestStartRejectsAlreadyRunning(t *testing.T) {
	s := graph.NewStore(nil)
	require.NoError(t, s.AddNode(continuousConstNode("timer", 1, 50)))
	eng := engine.New(registry.Default, types.Config{})
	m := New(s, eng, nil)

	require.NoError(t, m.StartNode(context.Background(), "timer"))
	err := m.StartNode(context.Background(), "timer")
	require.Error(t, err)
	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrStateTransition, kind)

	_ = m.StopNode("timer")
}

func TestShutdownAllStopsEveryWorker(t *testing.T) {
	s := graph.NewStore(nil)
	require.NoError(t, s.AddNode(continuousConstNode("a", 1, 50)))
	require.NoError(t, s.AddNode(continuousConstNode("b", 2, 50)))
	eng := engine.New(registry.Default, types.Config{})
	m := New(s, eng, nil)

	require.NoError(t, m.StartNode(context.Background(), "a"))
	require.NoError(t, m.StartNode(context.Background(), "b"))

	m.ShutdownAll()
	assert.Equal(t, types.ContinuousStopped, m.State("a"))
	assert.Equal(t, types.ContinuousStopped, m.State("b"))
}

func requireResultKind(t *testing.T, m *Manager, kind types.ExecutionResultKind, timeout time.Duration) types.ExecutionResult {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case res := <-m.Results():
			if res.Kind == kind {
				return res
			}
		case <-deadline:
			t.Fatalf("timed out waiting for result kind %s", kind)
		}
	}
}

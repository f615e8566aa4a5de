package continuous

import (
	"context"
	"time"

	"github.com/wasmflow/wasmflow/types"
)

// worker is the independent goroutine driving one continuous node. It owns
// a stop-signal channel (asserted by stop_node) and reports every lifecycle
// and iteration event as a typed types.ExecutionResult over results.
type worker struct {
	nodeID string
	stop   chan struct{}
	done   chan struct{}
}

// run is the worker body. Between iterations it checks stop; within an
// iteration it runs to completion with no preemption (§4.5 "Worker
// contract").
func (m *Manager) run(ctx context.Context, w *worker, cfg types.ContinuousConfig) {
	defer close(w.done)

	startedAt := time.Now().UTC()
	if err := m.transition(w.nodeID, types.ContinuousRunning, func(rs *types.RuntimeState) {
		rs.StartedAt = startedAt
		rs.Iterations = 0
		rs.LastError = ""
	}); err != nil {
		m.logger.Printf("continuous: %v", err)
	}
	m.emit(types.ExecutionResult{Kind: types.ResultStarted, NodeID: w.nodeID})

	interval := time.Duration(cfg.IntervalMillis) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var iterations uint64

	for {
		select {
		case <-w.stop:
			m.finishStopping(w.nodeID, iterations, startedAt)
			return
		case <-ctx.Done():
			m.finishStopping(w.nodeID, iterations, startedAt)
			return
		case <-ticker.C:
		}

		// Re-check the stop signal before starting a new iteration: a stop
		// requested mid-tick must not spawn another (possibly slow) run.
		select {
		case <-w.stop:
			m.finishStopping(w.nodeID, iterations, startedAt)
			return
		default:
		}

		outputs, err := m.runIteration(ctx, w.nodeID)
		iterations++

		if err != nil {
			if transErr := m.transition(w.nodeID, types.ContinuousError, func(rs *types.RuntimeState) {
				rs.Iterations = iterations
				rs.LastError = err.Error()
			}); transErr != nil {
				m.logger.Printf("continuous: %v", transErr)
			}
			m.emit(types.ExecutionResult{Kind: types.ResultError, NodeID: w.nodeID, Err: err, Iteration: iterations})
			return
		}

		m.emit(types.ExecutionResult{Kind: types.ResultIterationComplete, NodeID: w.nodeID, Iteration: iterations})
		if len(outputs) > 0 {
			m.emit(types.ExecutionResult{Kind: types.ResultOutputsUpdated, NodeID: w.nodeID, Outputs: outputs, Iteration: iterations})
		}
		m.touchIterations(w.nodeID, iterations)
	}
}

// runIteration reads inputs under a brief read lock, runs the executor with
// the lock released, then writes outputs back under a brief write lock —
// the store is never held across the (possibly slow) executor call.
func (m *Manager) runIteration(ctx context.Context, nodeID string) (map[string]types.NodeValue, error) {
	m.store.RLock()
	inputs, err := m.engine.AssembleInputs(m.store.Graph(), nodeID)
	m.store.RUnlock()
	if err != nil {
		return nil, err
	}

	outputs, err := m.engine.RunNode(ctx, m.store.Graph(), nodeID, inputs)
	if err != nil {
		return nil, err
	}

	m.store.Lock()
	n := m.store.Graph().Nodes[nodeID]
	if n != nil {
		for name, val := range outputs {
			if p, ok := n.OutputPort(name); ok {
				v := val
				p.CurrentValue = &v
			}
		}
	}
	m.store.Unlock()

	return outputs, nil
}

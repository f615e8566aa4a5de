package continuous

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wasmflow/wasmflow/engine"
	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/types"
)

// Manager owns one worker per running continuous node and the shared
// results channel every worker posts to (§4.5).
type Manager struct {
	store  *graph.Store
	engine *engine.Engine
	logger types.Logger

	mu      sync.Mutex
	workers map[string]*worker
	states  map[string]*types.RuntimeState

	results chan types.ExecutionResult
}

// New builds a Manager bound to a graph store and the engine used to
// assemble inputs and invoke executors.
func New(store *graph.Store, eng *engine.Engine, logger types.Logger) *Manager {
	if logger == nil {
		logger = types.DefaultLogger()
	}
	return &Manager{
		store:   store,
		engine:  eng,
		logger:  logger,
		workers: make(map[string]*worker),
		states:  make(map[string]*types.RuntimeState),
		results: make(chan types.ExecutionResult, 64),
	}
}

// Results is the channel every worker posts typed lifecycle and iteration
// events to. The main thread is expected to drain it continuously.
func (m *Manager) Results() <-chan types.ExecutionResult {
	return m.results
}

// State reports a node's current runtime state (Idle if never started).
func (m *Manager) State(nodeID string) types.ContinuousState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rs, ok := m.states[nodeID]; ok {
		return rs.State
	}
	return types.ContinuousIdle
}

func (m *Manager) stateOrNew(nodeID string) *types.RuntimeState {
	rs, ok := m.states[nodeID]
	if !ok {
		fresh := types.NewRuntimeState()
		rs = &fresh
		m.states[nodeID] = rs
	}
	return rs
}

// transition validates and applies a state change, taking the lock itself.
// Every real lifecycle move goes through this (or transitionLocked, for
// callers that already hold m.mu) so continuousTransitions is the single
// source of truth for what states a node may pass through — in particular,
// a node must land in ContinuousStopping before it can reach
// ContinuousStopped (§4.5).
func (m *Manager) transition(nodeID string, to types.ContinuousState, mutate func(*types.RuntimeState)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionLocked(nodeID, to); err != nil {
		return err
	}
	if mutate != nil {
		mutate(m.states[nodeID])
	}
	return nil
}

func (m *Manager) touchIterations(nodeID string, iterations uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateOrNew(nodeID).Iterations = iterations
}

func (m *Manager) emit(res types.ExecutionResult) {
	select {
	case m.results <- res:
	default:
		m.logger.Printf("continuous: results channel full, dropping %s for node %s", res.Kind, res.NodeID)
	}
}

func (m *Manager) finishStopping(nodeID string, iterations uint64, startedAt time.Time) {
	if err := m.transition(nodeID, types.ContinuousStopped, func(rs *types.RuntimeState) {
		rs.Iterations = iterations
		rs.LastStopDone = time.Now().UTC()
	}); err != nil {
		m.logger.Printf("continuous: %v", err)
	}
	m.emit(types.ExecutionResult{Kind: types.ResultStopped, NodeID: nodeID, Iteration: iterations})
}

// StartNode spawns a worker for nodeID, rejecting if one is already running
// (§4.5 "Rejects if already running").
func (m *Manager) StartNode(ctx context.Context, nodeID string) error {
	m.store.RLock()
	n, ok := m.store.Graph().Nodes[nodeID]
	m.store.RUnlock()
	if !ok {
		return types.NewError(types.ErrInvalidComponent, "unknown node "+nodeID)
	}
	if !n.IsContinuous() {
		return types.NewError(types.ErrInvalidComponent, "node "+nodeID+" is not continuous")
	}
	cfg := *n.Continuous

	m.mu.Lock()
	rs := m.stateOrNew(nodeID)
	if !types.CanStart(rs.State) {
		m.mu.Unlock()
		return types.NewError(types.ErrStateTransition, fmt.Sprintf("node %s cannot start from state %s", nodeID, rs.State))
	}
	if err := m.transitionLocked(nodeID, types.ContinuousStarting); err != nil {
		m.mu.Unlock()
		return err
	}
	w := &worker{nodeID: nodeID, stop: make(chan struct{}), done: make(chan struct{})}
	m.workers[nodeID] = w
	m.mu.Unlock()

	go m.run(ctx, w, cfg)
	return nil
}

// transitionLocked validates and applies a state change. Callers must hold
// m.mu.
func (m *Manager) transitionLocked(nodeID string, to types.ContinuousState) error {
	rs := m.stateOrNew(nodeID)
	if !types.CanTransition(rs.State, to) {
		return types.NewError(types.ErrStateTransition, fmt.Sprintf("node %s cannot move from %s to %s", nodeID, rs.State, to))
	}
	rs.State = to
	return nil
}

// StopNode asserts the stop signal and waits up to MaxGracefulStop for the
// worker to reach Stopped, per §4.5. Exceeding the bound forces Error
// instead of blocking forever.
func (m *Manager) StopNode(nodeID string) error {
	m.mu.Lock()
	rs := m.stateOrNew(nodeID)
	if !types.CanStop(rs.State) {
		m.mu.Unlock()
		return types.NewError(types.ErrStateTransition, fmt.Sprintf("node %s cannot stop from state %s", nodeID, rs.State))
	}
	if err := m.transitionLocked(nodeID, types.ContinuousStopping); err != nil {
		m.mu.Unlock()
		return err
	}
	w, ok := m.workers[nodeID]
	m.mu.Unlock()
	if !ok {
		return types.NewError(types.ErrInvalidComponent, "no worker running for node "+nodeID)
	}

	close(w.stop)

	select {
	case <-w.done:
		m.mu.Lock()
		delete(m.workers, nodeID)
		m.mu.Unlock()
		return nil
	case <-time.After(types.MaxGracefulStop):
		if err := m.transition(nodeID, types.ContinuousError, func(rs *types.RuntimeState) {
			rs.LastError = "shutdown exceeded graceful stop deadline"
		}); err != nil {
			m.logger.Printf("continuous: %v", err)
		}
		m.emit(types.ExecutionResult{
			Kind:   types.ResultError,
			NodeID: nodeID,
			Err:    types.NewError(types.ErrShutdownTimeout, "node "+nodeID+" did not stop within the graceful deadline"),
		})
		return types.NewError(types.ErrShutdownTimeout, "node "+nodeID+" did not stop within "+types.MaxGracefulStop.String())
	}
}

// ShutdownAll broadcasts stop to every running worker and waits for each.
func (m *Manager) ShutdownAll() {
	m.mu.Lock()
	nodeIDs := make([]string, 0, len(m.workers))
	for id := range m.workers {
		nodeIDs = append(nodeIDs, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range nodeIDs {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.StopNode(id)
		}()
	}
	wg.Wait()
}

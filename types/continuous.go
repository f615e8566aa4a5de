package types

import "time"

// ContinuousState is the worker lifecycle for a long-running continuous
// node, per §4.5.
type ContinuousState int

const (
	ContinuousIdle ContinuousState = iota
	ContinuousStarting
	ContinuousRunning
	ContinuousStopping
	ContinuousStopped
	ContinuousError
)

func (s ContinuousState) String() string {
	switch s {
	case ContinuousIdle:
		return "Idle"
	case ContinuousStarting:
		return "Starting"
	case ContinuousRunning:
		return "Running"
	case ContinuousStopping:
		return "Stopping"
	case ContinuousStopped:
		return "Stopped"
	case ContinuousError:
		return "Error"
	default:
		return "Unknown"
	}
}

// continuousTransitions is the exhaustive allowed-transition table from
// §4.5. Any pair absent from this table is rejected by CanTransition.
var continuousTransitions = map[ContinuousState]map[ContinuousState]bool{
	ContinuousIdle:     {ContinuousIdle: true, ContinuousStarting: true},
	ContinuousStarting: {ContinuousRunning: true, ContinuousStopping: true, ContinuousError: true},
	ContinuousRunning:  {ContinuousRunning: true, ContinuousStopping: true, ContinuousError: true},
	ContinuousStopping: {ContinuousStopped: true, ContinuousIdle: true, ContinuousError: true},
	ContinuousStopped:  {ContinuousIdle: true, ContinuousStarting: true},
	ContinuousError:    {ContinuousIdle: true, ContinuousStarting: true},
}

// CanStart reports whether a node in this state may accept start_node
// (§4.5 "can_start is true in {Idle, Stopped, Error}").
func CanStart(s ContinuousState) bool {
	return s == ContinuousIdle || s == ContinuousStopped || s == ContinuousError
}

// CanStop reports whether a node in this state may accept stop_node
// (§4.5 "can_stop in {Running, Starting}").
func CanStop(s ContinuousState) bool {
	return s == ContinuousRunning || s == ContinuousStarting
}

// CanTransition reports whether moving from -> to is a legal state change.
func CanTransition(from, to ContinuousState) bool {
	return continuousTransitions[from][to]
}

// MaxGracefulStop is the bound on how long a Stopping worker may take to
// reach Stopped before the manager forces it to Error (§4.5).
const MaxGracefulStop = 2 * time.Second

// ContinuousConfig marks a GraphNode as a continuous worker and holds its
// iteration policy (§4.5). IntervalMillis == 0 paces iterations on a 1 ms
// ticker, checking the stop signal between iterations.
type ContinuousConfig struct {
	IntervalMillis uint64
	AutoStart      bool
}

// RuntimeState is the live (non-persisted) worker state tracked by the
// continuous manager for a running node. It is always reset to its zero
// value on save/load (§4.7 "force continuous runtime_state to defaults").
type RuntimeState struct {
	State        ContinuousState
	StartedAt    time.Time
	Iterations   uint64
	LastError    string
	LastStopDone time.Time
}

// NewRuntimeState returns a freshly reset worker state.
func NewRuntimeState() RuntimeState {
	return RuntimeState{State: ContinuousIdle}
}

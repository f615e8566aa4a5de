package types

// ExecutionState tracks a node's most recent execution outcome, surfaced to
// the UI and used by the engine to decide whether downstream nodes may run.
type ExecutionState int

const (
	StateIdle ExecutionState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// CompilationState tracks a creator node's in-browser/in-editor source
// compile-to-component pipeline, per §4.7.
type CompilationState int

const (
	CompilationNotCompiled CompilationState = iota
	CompilationCompiling
	CompilationCompiled
	CompilationFailed
)

func (s CompilationState) String() string {
	switch s {
	case CompilationNotCompiled:
		return "NotCompiled"
	case CompilationCompiling:
		return "Compiling"
	case CompilationCompiled:
		return "Compiled"
	case CompilationFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// CreatorData holds a creator node's editable source and its compile state.
// SaveCode controls whether SourceCode round-trips through persistence
// (§4.7 "blank source_code when !save_code").
type CreatorData struct {
	SourceCode string
	SaveCode   bool
	State      CompilationState
	// CompiledComponentID is set once State == CompilationCompiled, naming
	// the synthesized ComponentSpec this node now executes as.
	CompiledComponentID string
	CompileError        string
}

// Position is a node's 2D canvas placement, preserved across save/load and
// used by the composer to centroid-place generated composite nodes.
type Position struct {
	X float64
	Y float64
}

// GraphNode is one instantiated node within a NodeGraph: a component
// reference plus its ports, placement, execution bookkeeping, and optional
// creator/continuous/composition extensions (§3, §4.7).
type GraphNode struct {
	ID          string
	ComponentID string
	DisplayName string
	Position    Position

	Inputs  []Port
	Outputs []Port

	RequiredCapabilities CapabilitySet

	// Configuration holds per-instance overrides of the component's declared
	// defaults, persisted verbatim (§4.7, §9 "supplemented features").
	Configuration Configuration

	// State and Dirty are the node's persisted execution state (§3: "a
	// dirty flag"); the save format carries them explicitly via wireNode's
	// own state/dirty fields rather than through struct-to-map flattening.
	State ExecutionState
	Dirty bool

	// LastInputHash is the memoization digest from the node's most recent
	// successful execution, compared against InputHash(current inputs) to
	// decide whether re-execution may be skipped (§4.3). Unlike State and
	// Dirty, it is genuinely non-essential runtime bookkeeping: it is never
	// part of the save format (§4.7 "no non-essential fields are emitted")
	// and is recomputed the next time the node runs. structs:"-" marks it
	// for persistence's struct-to-map configuration flattening to drop, on
	// the chance Flatten is ever called against a GraphNode value directly.
	LastInputHash    uint64 `structs:"-"`
	HasLastInputHash bool   `structs:"-"`

	Creator     *CreatorData
	Continuous  *ContinuousConfig
	Composition *CompositionData
}

// NewGraphNode constructs a node in its initial state: dirty, Idle, with
// ports built from the component's declared port specs.
func NewGraphNode(id, componentID, displayName string, inputs, outputs []PortSpec, required CapabilitySet) *GraphNode {
	n := &GraphNode{
		ID:                   id,
		ComponentID:          componentID,
		DisplayName:          displayName,
		RequiredCapabilities: required,
		State:                StateIdle,
		Dirty:                true,
	}
	for _, spec := range inputs {
		n.Inputs = append(n.Inputs, NewPort(spec))
	}
	for _, spec := range outputs {
		n.Outputs = append(n.Outputs, NewPort(spec))
	}
	return n
}

// InputPort returns the named input port, or false if no such port exists.
func (n *GraphNode) InputPort(name string) (*Port, bool) {
	for i := range n.Inputs {
		if n.Inputs[i].Name == name {
			return &n.Inputs[i], true
		}
	}
	return nil, false
}

// OutputPort returns the named output port, or false if no such port exists.
func (n *GraphNode) OutputPort(name string) (*Port, bool) {
	for i := range n.Outputs {
		if n.Outputs[i].Name == name {
			return &n.Outputs[i], true
		}
	}
	return nil, false
}

// IsContinuous reports whether this node runs as a long-lived worker rather
// than a one-shot executor (§4.5).
func (n *GraphNode) IsContinuous() bool {
	return n.Continuous != nil
}

// IsComposite reports whether this node is a link-fused composite produced
// by the composer (§4.6).
func (n *GraphNode) IsComposite() bool {
	return n.Composition != nil
}

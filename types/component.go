package types

import "context"

// ComponentKindTag is the discriminant of a ComponentKind sum type (§3).
type ComponentKindTag int

const (
	ComponentBuiltin ComponentKindTag = iota
	ComponentUserDefined
	ComponentComposed
)

func (t ComponentKindTag) String() string {
	switch t {
	case ComponentBuiltin:
		return "Builtin"
	case ComponentUserDefined:
		return "UserDefined"
	case ComponentComposed:
		return "Composed"
	default:
		return "Unknown"
	}
}

// ComponentKind is one of: Builtin (implemented in-process), UserDefined
// (path to a .wasm component binary), or Composed (a link-fusion of a
// socket component with one or more plugs), per §3.
type ComponentKind struct {
	Tag ComponentKindTag

	// Path is the filesystem path to the component binary, set when
	// Tag == ComponentUserDefined.
	Path string

	// Socket/Plugs identify the component IDs link-composed together, set
	// when Tag == ComponentComposed.
	Socket string
	Plugs  []string
}

func BuiltinKind() ComponentKind { return ComponentKind{Tag: ComponentBuiltin} }

func UserDefinedKind(path string) ComponentKind {
	return ComponentKind{Tag: ComponentUserDefined, Path: path}
}

func ComposedKind(socket string, plugs []string) ComponentKind {
	return ComponentKind{Tag: ComponentComposed, Socket: socket, Plugs: plugs}
}

// ComponentSpec is the immutable description of a component available for
// placement onto a graph: its identity, declared ports, required
// capabilities, and how it is implemented (§3, §4.1).
type ComponentSpec struct {
	ID          string
	Name        string
	Description string
	Author      string
	// Version is a semver string (e.g. "1.2.0"). The registry stores it as
	// given; Register does not check its format.
	Version string

	Kind ComponentKind

	Inputs  []PortSpec
	Outputs []PortSpec

	RequiredCapabilities CapabilitySet

	// Category groups related components for UI palette display; empty
	// means "Uncategorized".
	Category string

	// FooterView, when non-empty, names a footer-view handle this
	// component contributes to the canvas footer (§9 "supplemented
	// features").
	FooterView string

	// Configuration holds the component's declared configuration defaults.
	// host.LoadComponent does not fill it; the guest metadata it decodes
	// carries no configuration block.
	Configuration Configuration
}

// Configuration is a generic, JSON/mapstructure-friendly settings bag
// attached to a ComponentSpec (declared defaults) or a GraphNode
// (per-instance overrides), round-tripped by the persistence codec.
type Configuration map[string]any

// Executor performs one node's computation given its assembled inputs and
// the capability grant currently authorized for it. Implementations must be
// pure functions of (inputs, grant): the engine relies on that for
// memoization (§4.3) and on grant enforcement happening inside Execute for
// guest/composite executors (§6).
type Executor interface {
	Execute(ctx context.Context, inputs map[string]NodeValue, grant CapabilitySet) (map[string]NodeValue, error)
}

// ExecutorFunc adapts a plain function to the Executor interface, the way
// http.HandlerFunc adapts a function to http.Handler.
type ExecutorFunc func(ctx context.Context, inputs map[string]NodeValue, grant CapabilitySet) (map[string]NodeValue, error)

func (f ExecutorFunc) Execute(ctx context.Context, inputs map[string]NodeValue, grant CapabilitySet) (map[string]NodeValue, error) {
	return f(ctx, inputs, grant)
}

// ComponentRegistry is the catalog of components available for placement
// onto a graph: builtins registered at startup, and user-defined or
// composed components registered dynamically as they are loaded or
// created (§4.1).
type ComponentRegistry interface {
	// Register adds or replaces a component under spec.ID.
	Register(spec ComponentSpec, executor Executor) error
	// Get looks up a component by ID.
	Get(id string) (ComponentSpec, Executor, bool)
	// List returns every registered component, in registration order.
	List() []ComponentSpec
	// MarkNeedsRefresh flags that instances of id on existing graphs may
	// be stale relative to the registry's current spec for it (e.g. after
	// a user-defined component's binary is recompiled), per §4.1.
	MarkNeedsRefresh(id string)
	// NeedsRefresh reports whether id was flagged by MarkNeedsRefresh and
	// has not since been cleared by ClearNeedsRefresh.
	NeedsRefresh(id string) bool
	// ClearNeedsRefresh clears a previously set refresh flag, used once a
	// node placed from id has been reconciled against the current spec.
	ClearNeedsRefresh(id string)
}

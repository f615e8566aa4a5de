package types

// PortDirection distinguishes a node's input ports from its output ports.
type PortDirection int

const (
	PortInput PortDirection = iota
	PortOutput
)

func (d PortDirection) String() string {
	if d == PortOutput {
		return "output"
	}
	return "input"
}

// PortSpec describes one port of a ComponentSpec: its name, declared type,
// direction, and whether it may be left unconnected (§3).
type PortSpec struct {
	Name      string
	Type      DataType
	Direction PortDirection
	Optional  bool
}

// Port is an instantiated port on a GraphNode. Output ports carry the last
// value produced by execution; input ports carry a default used when no
// connection feeds them and Optional is true.
type Port struct {
	Name         string
	Type         DataType
	Direction    PortDirection
	Optional     bool
	CurrentValue *NodeValue
}

// NewPort instantiates a Port from its spec, with no current value.
func NewPort(spec PortSpec) Port {
	return Port{
		Name:      spec.Name,
		Type:      spec.Type,
		Direction: spec.Direction,
		Optional:  spec.Optional,
	}
}

package types

// PortMapping names a boundary port of a composite node back to the
// internal node/port it was aggregated from, using the naming scheme
// "{node.display_name}.{port.name}" for the exposed boundary port itself
// (§4.6 "boundary port aggregation").
type PortMapping struct {
	BoundaryName string
	InternalNode string
	InternalPort string
}

// CompositionData is attached to a GraphNode produced by link-fusing a
// selected sub-DAG into a single composite (§4.6). It preserves the
// internal structure so the UI can drill down into it via a ViewStack,
// without requiring the engine to re-derive it from the composed binary.
type CompositionData struct {
	// InternalGraph is the sub-DAG that was fused, kept verbatim for
	// drill-down inspection and for undoing the composition.
	InternalGraph *NodeGraph

	ExposedInputs  []PortMapping
	ExposedOutputs []PortMapping

	// SocketNodeID/PlugNodeIDs identify which internal nodes supplied the
	// component-model socket and which supplied plugs during link
	// composition, per §4.6.
	SocketNodeID string
	PlugNodeIDs  []string

	// CompositionHash is a CRC-64 digest over the internal graph's
	// deterministic encoding, used to detect whether a drill-down view is
	// stale relative to the composite's current composed binary.
	CompositionHash uint64
}

// Breadcrumb is one entry in a ViewStack's navigation trail.
type Breadcrumb struct {
	Name  string
	Depth int
}

// ViewStack tracks the UI's drill-down navigation into nested composites:
// MainCanvas is the root graph, and each PushView descends one level into a
// composite node's CompositionData.InternalGraph (§4.6).
type ViewStack struct {
	breadcrumbs []Breadcrumb
}

// NewViewStack returns a stack positioned at the main canvas.
func NewViewStack() *ViewStack {
	return &ViewStack{breadcrumbs: []Breadcrumb{{Name: "Main", Depth: 0}}}
}

// PushView descends into a composite node named name.
func (v *ViewStack) PushView(name string) {
	v.breadcrumbs = append(v.breadcrumbs, Breadcrumb{Name: name, Depth: len(v.breadcrumbs)})
}

// GoBack pops one level, returning false if already at the main canvas.
func (v *ViewStack) GoBack() bool {
	if len(v.breadcrumbs) <= 1 {
		return false
	}
	v.breadcrumbs = v.breadcrumbs[:len(v.breadcrumbs)-1]
	return true
}

// ResetToMain pops back to the root view.
func (v *ViewStack) ResetToMain() {
	v.breadcrumbs = v.breadcrumbs[:1]
}

// Breadcrumbs returns the current navigation trail, root first.
func (v *ViewStack) Breadcrumbs() []Breadcrumb {
	out := make([]Breadcrumb, len(v.breadcrumbs))
	copy(out, v.breadcrumbs)
	return out
}

// Depth returns how many levels deep the stack currently is (0 == main).
func (v *ViewStack) Depth() int {
	return len(v.breadcrumbs) - 1
}

// AtMain reports whether the stack is positioned at the root graph.
func (v *ViewStack) AtMain() bool {
	return len(v.breadcrumbs) == 1
}

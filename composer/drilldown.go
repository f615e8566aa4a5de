package composer

import "github.com/wasmflow/wasmflow/types"

// Inspector drives read-only drill-down navigation into nested composites
// (§4.6 "Drill-down (inspection)"). It pairs a ViewStack, which only tracks
// the breadcrumb trail, with the graph snapshot each breadcrumb refers to,
// so callers can ask "what is the current internal graph at this depth"
// without re-walking composite nodes themselves. Drill-down never mutates
// any graph it visits.
type Inspector struct {
	stack *types.ViewStack
	path  []*types.NodeGraph // path[0] is always the main canvas
}

// NewInspector starts an Inspector positioned at the main canvas.
func NewInspector(main *types.NodeGraph) *Inspector {
	return &Inspector{
		stack: types.NewViewStack(),
		path:  []*types.NodeGraph{main},
	}
}

// Current returns the graph currently in view.
func (i *Inspector) Current() *types.NodeGraph {
	return i.path[len(i.path)-1]
}

// DrillDown pushes a view into compositeNodeID's preserved internal graph.
// compositeNodeID is looked up in the graph currently in view.
func (i *Inspector) DrillDown(compositeNodeID string) error {
	cur := i.Current()
	n, ok := cur.Nodes[compositeNodeID]
	if !ok {
		return types.NewError(types.ErrInvalidComponent, "node not found: "+compositeNodeID)
	}
	if !n.IsComposite() {
		return types.NewError(types.ErrCompositionError, "node "+compositeNodeID+" is not a composite")
	}
	i.stack.PushView(n.DisplayName)
	i.path = append(i.path, n.Composition.InternalGraph)
	return nil
}

// GoBack pops one level, reporting false if already at the main canvas.
func (i *Inspector) GoBack() bool {
	if !i.stack.GoBack() {
		return false
	}
	i.path = i.path[:len(i.path)-1]
	return true
}

// ResetToMain pops back to the main canvas in one step.
func (i *Inspector) ResetToMain() {
	i.stack.ResetToMain()
	i.path = i.path[:1]
}

func (i *Inspector) Breadcrumbs() []types.Breadcrumb { return i.stack.Breadcrumbs() }
func (i *Inspector) Depth() int                      { return i.stack.Depth() }
func (i *Inspector) AtMain() bool                    { return i.stack.AtMain() }

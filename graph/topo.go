package graph

import (
	"container/heap"
	"sort"

	"github.com/wasmflow/wasmflow/types"
)

// ExecutionOrder returns a cached topological order, computing and caching
// it on a cache miss; the cache is invalidated by any structural mutation
// (§3 "execution_order").
func ExecutionOrder(g *types.NodeGraph) ([]string, error) {
	if order, ok := g.CachedOrder(); ok {
		return order, nil
	}
	order, _, err := computeTopoOrder(g)
	if err != nil {
		return nil, err
	}
	g.SetCachedOrder(order)
	return order, nil
}

// idHeap is a min-heap of node IDs, giving computeTopoOrder a
// deterministic, node-id tie-broken invocation order among nodes whose
// dependencies are simultaneously satisfied (§4.3 "Ordering guarantees").
type idHeap []string

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x interface{}) { *h = append(*h, x.(string)) }
func (h *idHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// computeTopoOrder performs a Kahn's-algorithm topological sort over the
// node/connection adjacency, breaking ties deterministically by node ID. It
// also returns the adjacency (node -> direct successors); its current
// callers discard it.
func computeTopoOrder(g *types.NodeGraph) ([]string, map[string][]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	adjacency := make(map[string][]string, len(g.Nodes))
	for id := range g.Nodes {
		inDegree[id] = 0
		adjacency[id] = nil
	}
	for _, c := range g.Connections {
		if _, ok := g.Nodes[c.FromNode]; !ok {
			continue
		}
		if _, ok := g.Nodes[c.ToNode]; !ok {
			continue
		}
		adjacency[c.FromNode] = append(adjacency[c.FromNode], c.ToNode)
		inDegree[c.ToNode]++
	}

	h := &idHeap{}
	for id, deg := range inDegree {
		if deg == 0 {
			*h = append(*h, id)
		}
	}
	heap.Init(h)

	order := make([]string, 0, len(g.Nodes))
	remaining := make(map[string]int, len(inDegree))
	for id, deg := range inDegree {
		remaining[id] = deg
	}

	for h.Len() > 0 {
		id := heap.Pop(h).(string)
		order = append(order, id)
		successors := append([]string(nil), adjacency[id]...)
		sort.Strings(successors)
		for _, next := range successors {
			remaining[next]--
			if remaining[next] == 0 {
				heap.Push(h, next)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, nil, types.NewError(types.ErrCycleDetected, "graph contains a cycle")
	}
	return order, adjacency, nil
}

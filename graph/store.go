/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package graph implements the NodeGraph mutation surface: adding and
// removing nodes and connections, cached topological ordering, cycle
// detection, structural validation, and dirty-bit propagation (§4.2).
package graph

import (
	"fmt"
	"sync"

	"github.com/wasmflow/wasmflow/types"
)

// Store wraps a *types.NodeGraph with the concurrency-safe mutation
// operations the engine, composer, and persistence packages all rely on.
type Store struct {
	mu sync.RWMutex
	g  *types.NodeGraph
}

// NewStore wraps an existing graph, or a new empty one if g is nil.
func NewStore(g *types.NodeGraph) *Store {
	if g == nil {
		g = types.NewNodeGraph(types.NewID(), "untitled")
	}
	return &Store{g: g}
}

// Graph returns the underlying NodeGraph. Callers must not mutate node or
// connection sets directly; use Store's methods so the cached order and
// dirty bits stay consistent.
func (s *Store) Graph() *types.NodeGraph {
	return s.g
}

// RLock/RUnlock/Lock/Unlock expose the store's mutex directly for callers
// that need to read or write node/port state outside of Store's own
// mutation methods — namely the continuous manager (§4.5 "the main thread
// and workers share the graph via a single mutex or equivalent; workers
// hold it only briefly to read inputs and never across iteration bodies").
func (s *Store) RLock()   { s.mu.RLock() }
func (s *Store) RUnlock() { s.mu.RUnlock() }
func (s *Store) Lock()    { s.mu.Lock() }
func (s *Store) Unlock()  { s.mu.Unlock() }

// AddNode inserts a fully constructed node, failing if its ID collides.
func (s *Store) AddNode(n *types.GraphNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.g.Nodes[n.ID]; exists {
		return types.NewError(types.ErrInvalidComponent, fmt.Sprintf("node %s already exists", n.ID))
	}
	s.g.Nodes[n.ID] = n
	s.g.InvalidateOrder()
	s.g.Touch()
	return nil
}

// RemoveNode deletes a node, every connection touching it, and its
// capability grant, then invalidates the cached topological order (§3
// "Lifecycle").
func (s *Store) RemoveNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.g.Nodes[nodeID]; !ok {
		return types.NewError(types.ErrInvalidComponent, "node "+nodeID+" not found")
	}
	delete(s.g.Nodes, nodeID)
	delete(s.g.Grants, nodeID)

	kept := s.g.Connections[:0:0]
	for _, c := range s.g.Connections {
		if c.FromNode != nodeID && c.ToNode != nodeID {
			kept = append(kept, c)
		}
	}
	s.g.Connections = kept
	s.g.InvalidateOrder()
	s.g.Touch()
	return nil
}

// AddConnection validates and appends a connection atomically: it
// tentatively inserts the edge, re-checks acyclicity, and rolls back on
// failure, per §3's add_connection contract.
func (s *Store) AddConnection(fromNode, fromPort, toNode, toPort string) (types.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.g.Nodes[fromNode]
	if !ok {
		return types.Connection{}, types.NewError(types.ErrInvalidConnection, "from_node not found: "+fromNode)
	}
	to, ok := s.g.Nodes[toNode]
	if !ok {
		return types.Connection{}, types.NewError(types.ErrInvalidConnection, "to_node not found: "+toNode)
	}
	if fromNode == toNode {
		return types.Connection{}, types.NewError(types.ErrInvalidConnection, "from_node and to_node must differ")
	}
	outPort, ok := from.OutputPort(fromPort)
	if !ok {
		return types.Connection{}, types.NewError(types.ErrInvalidConnection, "from_port is not an output of from_node: "+fromPort)
	}
	inPort, ok := to.InputPort(toPort)
	if !ok {
		return types.Connection{}, types.NewError(types.ErrInvalidConnection, "to_port is not an input of to_node: "+toPort)
	}
	if !outPort.Type.IsCompatible(inPort.Type) {
		return types.Connection{}, types.NewError(types.ErrTypeMismatch,
			fmt.Sprintf("%s is %s, %s is %s", fromPort, outPort.Type, toPort, inPort.Type))
	}
	for _, c := range s.g.Connections {
		if c.ToNode == toNode && c.ToPort == toPort {
			return types.Connection{}, types.NewError(types.ErrInvalidConnection,
				"to_port already has an incoming connection: "+toPort)
		}
	}

	conn := types.Connection{ID: types.NewID(), FromNode: fromNode, FromPort: fromPort, ToNode: toNode, ToPort: toPort}
	s.g.Connections = append(s.g.Connections, conn)

	if _, _, err := computeTopoOrder(s.g); err != nil {
		// Roll back: the tentative edge introduced a cycle.
		s.g.Connections = s.g.Connections[:len(s.g.Connections)-1]
		return types.Connection{}, err
	}

	s.g.InvalidateOrder()
	s.g.Touch()
	MarkDirty(s.g, toNode)
	return conn, nil
}

// RemoveConnection deletes one connection by ID.
func (s *Store) RemoveConnection(connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.g.Connections {
		if c.ID == connectionID {
			toNode := c.ToNode
			s.g.Connections = append(s.g.Connections[:i], s.g.Connections[i+1:]...)
			s.g.InvalidateOrder()
			s.g.Touch()
			MarkDirty(s.g, toNode)
			return nil
		}
	}
	return types.NewError(types.ErrInvalidConnection, "connection "+connectionID+" not found")
}

// GrantCapability records grant for nodeID, invalidating the cached order
// (a capability change can affect whether a node is runnable at all).
func (s *Store) GrantCapability(nodeID string, set types.CapabilitySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.g.Nodes[nodeID]; !ok {
		return types.NewError(types.ErrInvalidComponent, "node "+nodeID+" not found")
	}
	s.g.Grants[nodeID] = types.NewCapabilityGrant(nodeID, set)
	s.g.InvalidateOrder()
	s.g.Touch()
	return nil
}

// RevokeCapability removes any grant recorded for nodeID.
func (s *Store) RevokeCapability(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.g.Grants, nodeID)
	s.g.InvalidateOrder()
	s.g.Touch()
}

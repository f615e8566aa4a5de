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

// Package engine implements the DAG execution contract (§4.3): topological
// dispatch respecting the per-node dirty bit, input-hash memoization, and
// partial-failure tolerance. Builtin, user-defined (WASM guest), and
// composite components are dispatched identically here — each is just a
// types.Executor obtained from the registry; a loaded guest's Executor
// (from host.LoadComponent) is registered through
// registry.RegisterUserComponent, and composer.Compose registers each
// composite's Executor,
// keeping dispatch uniform regardless of which package implements a node.
package engine

import (
	"context"
	"time"

	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/types"
)

// Engine runs a NodeGraph against a component registry, applying the
// configured aspects and debug callback around every node execution.
type Engine struct {
	registry types.ComponentRegistry
	config   types.Config
}

// New builds an Engine bound to a component registry and configuration.
func New(registry types.ComponentRegistry, config types.Config) *Engine {
	return &Engine{registry: registry, config: config}
}

// Report summarizes one Execute call's outcome across the graph (§4.3
// "A full-graph report lists (completed, failed, skipped)").
type Report struct {
	Completed []string
	Failed    map[string]error
	Skipped   []string
}

// Execute runs every dirty node in topological order, propagating outputs
// along connections as it goes. On return, each executed node carries
// either updated outputs and StateCompleted, or StateFailed with its error
// preserved; nodes downstream of a failure are left Idle and dirty.
func (e *Engine) Execute(ctx context.Context, g *types.NodeGraph) (Report, error) {
	report := Report{Failed: make(map[string]error)}

	order, err := graph.ExecutionOrder(g)
	if err != nil {
		graphExecutionsTotal.WithLabelValues("error").Inc()
		return report, err
	}

	before, after := e.config.Aspects.GraphAspects()
	for _, a := range before {
		if err := a.BeforeGraph(g.ID); err != nil {
			graphExecutionsTotal.WithLabelValues("error").Inc()
			return report, err
		}
	}

	upstreamFailed := make(map[string]bool)

	for _, id := range order {
		n := g.Nodes[id]
		if !n.Dirty {
			continue
		}

		if e.anyUpstreamFailed(g, id, upstreamFailed) {
			upstreamFailed[id] = true
			n.State = types.StateIdle
			report.Skipped = append(report.Skipped, id)
			continue
		}

		inputs, missing := e.assembleInputs(g, n)
		if missing != "" {
			err := types.NewError(types.ErrMissingInput, "node "+id+": "+missing)
			n.State = types.StateFailed
			report.Failed[id] = err
			upstreamFailed[id] = true
			continue
		}

		hash := types.InputHash(inputs)
		if n.HasLastInputHash && n.LastInputHash == hash && n.State == types.StateCompleted {
			n.Dirty = false
			report.Completed = append(report.Completed, id)
			continue
		}

		outputs, execErr := e.runNode(ctx, g, n, inputs)
		n.LastInputHash = hash
		n.HasLastInputHash = true
		n.Dirty = false

		if execErr != nil {
			n.State = types.StateFailed
			report.Failed[id] = execErr
			upstreamFailed[id] = true
			if e.config.OnDebug != nil {
				e.config.OnDebug(id, inputs, nil, execErr)
			}
			continue
		}

		for name, val := range outputs {
			if p, ok := n.OutputPort(name); ok {
				v := val
				p.CurrentValue = &v
			}
		}
		n.State = types.StateCompleted
		report.Completed = append(report.Completed, id)
		if e.config.OnDebug != nil {
			e.config.OnDebug(id, inputs, outputs, nil)
		}
	}

	for _, a := range after {
		a.AfterGraph(g.ID, report.Failed)
	}

	outcome := "ok"
	if len(report.Failed) > 0 {
		outcome = "partial_failure"
	}
	graphExecutionsTotal.WithLabelValues(outcome).Inc()

	return report, nil
}

// AssembleInputs exposes the per-node input assembly step (§4.3) to callers
// — namely the continuous manager — that drive node execution outside
// full-graph dispatch and need to read the graph under a brief lock, then
// release it before invoking a possibly slow executor (§4.5 "workers hold
// it only briefly to read inputs and never across iteration bodies").
func (e *Engine) AssembleInputs(g *types.NodeGraph, nodeID string) (map[string]types.NodeValue, error) {
	n, ok := g.Nodes[nodeID]
	if !ok {
		return nil, types.NewError(types.ErrInvalidComponent, "unknown node "+nodeID)
	}
	inputs, missing := e.assembleInputs(g, n)
	if missing != "" {
		return nil, types.NewError(types.ErrMissingInput, "node "+nodeID+": "+missing)
	}
	return inputs, nil
}

// RunNode invokes a node's executor given already-assembled inputs, without
// touching the dirty bit or memoization hash — the counterpart to
// AssembleInputs once the caller has released the graph lock.
func (e *Engine) RunNode(ctx context.Context, g *types.NodeGraph, nodeID string, inputs map[string]types.NodeValue) (map[string]types.NodeValue, error) {
	n, ok := g.Nodes[nodeID]
	if !ok {
		return nil, types.NewError(types.ErrInvalidComponent, "unknown node "+nodeID)
	}
	return e.runNode(ctx, g, n, inputs)
}

// ExecuteNode runs a single node once, outside of full-graph dispatch,
// assembling inputs and invoking its executor in one call. Callers that
// need to release the graph lock between those two steps (the continuous
// manager) should call AssembleInputs and RunNode directly instead.
func (e *Engine) ExecuteNode(ctx context.Context, g *types.NodeGraph, nodeID string) (map[string]types.NodeValue, error) {
	inputs, err := e.AssembleInputs(g, nodeID)
	if err != nil {
		return nil, err
	}
	return e.RunNode(ctx, g, nodeID, inputs)
}

func (e *Engine) anyUpstreamFailed(g *types.NodeGraph, nodeID string, upstreamFailed map[string]bool) bool {
	for _, c := range g.Connections {
		if c.ToNode == nodeID && upstreamFailed[c.FromNode] {
			return true
		}
	}
	return false
}

// assembleInputs builds a node's input map: a connected port takes its
// upstream's current output value; an unconnected port falls back to its
// own CurrentValue; an optional port with no value is left out of the map;
// a required port with no value reports a missing-input detail string
// (§4.3 "input assembly").
func (e *Engine) assembleInputs(g *types.NodeGraph, n *types.GraphNode) (map[string]types.NodeValue, string) {
	inputs := make(map[string]types.NodeValue, len(n.Inputs))
	connectedBy := make(map[string]types.Connection, len(n.Inputs))
	for _, c := range g.Connections {
		if c.ToNode == n.ID {
			connectedBy[c.ToPort] = c
		}
	}

	for _, p := range n.Inputs {
		if c, ok := connectedBy[p.Name]; ok {
			from := g.Nodes[c.FromNode]
			if from == nil {
				return nil, "connection references missing node " + c.FromNode
			}
			outPort, ok := from.OutputPort(c.FromPort)
			if !ok || outPort.CurrentValue == nil {
				if p.Optional {
					continue
				}
				return nil, "required input " + p.Name + " has no value yet"
			}
			inputs[p.Name] = *outPort.CurrentValue
			continue
		}
		if p.CurrentValue != nil {
			inputs[p.Name] = *p.CurrentValue
			continue
		}
		if p.Optional {
			continue
		}
		return nil, "required input " + p.Name + " is not connected"
	}
	return inputs, ""
}

// runNode resolves the node's executor and invokes it, applying node-level
// aspects before/after and recording metrics.
func (e *Engine) runNode(ctx context.Context, g *types.NodeGraph, n *types.GraphNode, inputs map[string]types.NodeValue) (map[string]types.NodeValue, error) {
	before, after := e.config.Aspects.NodeAspects()
	for _, a := range before {
		adjusted, err := a.Before(n.ID, inputs)
		if err != nil {
			return nil, err
		}
		inputs = adjusted
	}

	spec, executor, ok := e.registry.Get(n.ComponentID)
	if !ok {
		return nil, types.NewError(types.ErrInvalidComponent, "unknown component "+n.ComponentID)
	}

	grant := g.GrantFor(n.ID)
	if !grant.Satisfies(spec.RequiredCapabilities) {
		return nil, types.NewError(types.ErrCapabilityDenied, "node "+n.ID+" lacks required capability for "+n.ComponentID)
	}

	start := time.Now()
	outputs, err := executor.Execute(ctx, inputs, grant)
	nodeExecutionDuration.WithLabelValues(n.ComponentID).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	nodeExecutionsTotal.WithLabelValues(n.ComponentID, outcome).Inc()

	for _, a := range after {
		outputs, err = a.After(n.ID, outputs, err)
	}

	return outputs, err
}

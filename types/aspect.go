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

package types

import "sort"

// Aspect is the base interface for cross-cutting hooks into graph and node
// execution: validation, debug tracing, and metrics collection are all
// implemented as aspects rather than being wired directly into the engine.
type Aspect interface {
	// Order controls execution priority; lower values run first.
	Order() int
	// New returns a fresh instance for one engine, so aspects with
	// per-run state (e.g. a debug trace buffer) don't leak across runs.
	New() Aspect
}

// NodeBeforeAspect runs before a node's Executor.Execute, with the chance to
// replace the assembled input set (e.g. a validation aspect rejecting a
// malformed value) or short-circuit with an error.
type NodeBeforeAspect interface {
	Aspect
	Before(nodeID string, inputs map[string]NodeValue) (map[string]NodeValue, error)
}

// NodeAfterAspect runs after a node's Executor.Execute completes, with the
// chance to observe or rewrite its outputs and the execution error.
type NodeAfterAspect interface {
	Aspect
	After(nodeID string, outputs map[string]NodeValue, execErr error) (map[string]NodeValue, error)
}

// GraphBeforeAspect runs once before a full graph execution begins.
type GraphBeforeAspect interface {
	Aspect
	BeforeGraph(graphID string) error
}

// GraphAfterAspect runs once after a full graph execution completes,
// observing the final per-node error set.
type GraphAfterAspect interface {
	Aspect
	AfterGraph(graphID string, nodeErrors map[string]error)
}

// AspectList is a Config's registered aspects, with typed accessors that
// sort by Order before filtering to the requested hook interface.
type AspectList []Aspect

func (list AspectList) sorted() []Aspect {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Order() < list[j].Order() })
	return list
}

// NodeAspects returns the before/after node hooks, ordered by priority.
func (list AspectList) NodeAspects() ([]NodeBeforeAspect, []NodeAfterAspect) {
	var before []NodeBeforeAspect
	var after []NodeAfterAspect
	for _, a := range list.sorted() {
		if b, ok := a.(NodeBeforeAspect); ok {
			before = append(before, b)
		}
		if af, ok := a.(NodeAfterAspect); ok {
			after = append(after, af)
		}
	}
	return before, after
}

// GraphAspects returns the before/after graph hooks, ordered by priority.
func (list AspectList) GraphAspects() ([]GraphBeforeAspect, []GraphAfterAspect) {
	var before []GraphBeforeAspect
	var after []GraphAfterAspect
	for _, a := range list.sorted() {
		if b, ok := a.(GraphBeforeAspect); ok {
			before = append(before, b)
		}
		if af, ok := a.(GraphAfterAspect); ok {
			after = append(after, af)
		}
	}
	return before, after
}

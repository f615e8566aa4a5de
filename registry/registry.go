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

// Package registry implements the component catalog (types.ComponentRegistry):
// an in-memory, concurrency-safe map from component ID to its ComponentSpec
// and Executor, with builtin components self-registering via package init().
package registry

import (
	"fmt"
	"sync"

	"github.com/wasmflow/wasmflow/types"
)

// entry pairs a component's spec with the Executor that runs it.
type entry struct {
	spec     types.ComponentSpec
	executor types.Executor
}

// Registry is the default in-memory types.ComponentRegistry implementation.
type Registry struct {
	mu           sync.RWMutex
	components   map[string]entry
	order        []string
	needsRefresh map[string]bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		components:   make(map[string]entry),
		needsRefresh: make(map[string]bool),
	}
}

// Register adds or replaces a component under spec.ID. A replace does not
// automatically mark existing node instances for refresh — callers that
// recompile/reload a user-defined component must call MarkNeedsRefresh
// explicitly (§4.1).
func (r *Registry) Register(spec types.ComponentSpec, executor types.Executor) error {
	if spec.ID == "" {
		return fmt.Errorf("registry: component spec has empty ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[spec.ID]; !exists {
		r.order = append(r.order, spec.ID)
	}
	r.components[spec.ID] = entry{spec: spec, executor: executor}
	return nil
}

// Get looks up a component by ID.
func (r *Registry) Get(id string) (types.ComponentSpec, types.Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.components[id]
	if !ok {
		return types.ComponentSpec{}, nil, false
	}
	return e.spec, e.executor, true
}

// List returns every registered component, in registration order.
func (r *Registry) List() []types.ComponentSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ComponentSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.components[id].spec)
	}
	return out
}

// RegisterUserComponent registers a dynamically loaded component under the
// user:{name} id convention (§4.1 "Dynamic registration"). The caller
// supplies the decoded (wasm-path, metadata-block) as spec/executor — typically
// host.Host.LoadComponent's result — and RegisterUserComponent assigns
// componentID = "user:"+name, replacing any existing registration under that
// id in place. It reports was_replaced so the caller can mark every
// GraphNode referencing componentID as needs_component_refresh; when
// was_replaced is true, RegisterUserComponent also flags componentID itself
// via MarkNeedsRefresh so a fresh Get against the registry is self-describing
// even before callers finish walking the graph. Replacement never silently
// widens capabilities: the registered RequiredCapabilities are always
// whatever the fresh spec declares, exactly as on first registration.
func (r *Registry) RegisterUserComponent(name string, spec types.ComponentSpec, executor types.Executor) (string, bool, error) {
	if name == "" {
		return "", false, fmt.Errorf("registry: user component name is empty")
	}
	componentID := "user:" + name
	spec.ID = componentID

	r.mu.Lock()
	_, wasReplaced := r.components[componentID]
	if !wasReplaced {
		r.order = append(r.order, componentID)
	}
	r.components[componentID] = entry{spec: spec, executor: executor}
	r.mu.Unlock()

	if wasReplaced {
		r.MarkNeedsRefresh(componentID)
	}
	return componentID, wasReplaced, nil
}

// MarkNeedsRefresh flags id as potentially stale on existing graphs.
func (r *Registry) MarkNeedsRefresh(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.needsRefresh[id] = true
}

// NeedsRefresh reports whether id is currently flagged.
func (r *Registry) NeedsRefresh(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.needsRefresh[id]
}

// ClearNeedsRefresh clears id's refresh flag.
func (r *Registry) ClearNeedsRefresh(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.needsRefresh, id)
}

var _ types.ComponentRegistry = (*Registry)(nil)

// Default is the process-wide registry that builtin component packages
// register themselves into via init().
var Default = New()

// registerBuiltin is a helper builtin subpackages call from their own
// init() functions to add themselves to Default.
func registerBuiltin(spec types.ComponentSpec, executor types.Executor) {
	spec.Kind = types.BuiltinKind()
	if err := Default.Register(spec, executor); err != nil {
		panic(fmt.Sprintf("registry: builtin %q: %v", spec.ID, err))
	}
}

// RegisterBuiltin exposes registerBuiltin to other packages (builtin/*),
// which cannot call the unexported helper directly.
func RegisterBuiltin(spec types.ComponentSpec, executor types.Executor) {
	registerBuiltin(spec, executor)
}

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

// Command wasmflow-demo builds a small graph entirely out of builtin
// components, runs it through the engine twice (showing memoization skip
// the second time), composes a chain of user-defined nodes into a
// composite, and round-trips the result through the persistence codec. It
// exists to exercise the wiring between packages end to end.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "github.com/wasmflow/wasmflow/builtin"

	"github.com/wasmflow/wasmflow/composer"
	"github.com/wasmflow/wasmflow/engine"
	"github.com/wasmflow/wasmflow/graph"
	"github.com/wasmflow/wasmflow/persistence"
	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func buildGraph() *types.NodeGraph {
	g := types.NewNodeGraph("demo", "adder chain")

	a := types.NewGraphNode("const-a", "math.constant", "A",
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortInput, Optional: true}},
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortOutput}},
		types.NoneCapability())
	one := types.NewF32(2)
	if p, ok := a.InputPort("value"); ok {
		p.CurrentValue = &one
	}

	b := types.NewGraphNode("const-b", "math.constant", "B",
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortInput, Optional: true}},
		[]types.PortSpec{{Name: "value", Type: types.F32(), Direction: types.PortOutput}},
		types.NoneCapability())
	three := types.NewF32(3)
	if p, ok := b.InputPort("value"); ok {
		p.CurrentValue = &three
	}

	adder := types.NewGraphNode("adder", "math.adder", "Adder",
		[]types.PortSpec{
			{Name: "a", Type: types.F32(), Direction: types.PortInput},
			{Name: "b", Type: types.F32(), Direction: types.PortInput},
		},
		[]types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput}},
		types.NoneCapability())

	sqrt := types.NewGraphNode("sqrt", "math.sqrt", "Sqrt",
		[]types.PortSpec{{Name: "a", Type: types.F32(), Direction: types.PortInput}},
		[]types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput}},
		types.NoneCapability())

	g.Nodes[a.ID] = a
	g.Nodes[b.ID] = b
	g.Nodes[adder.ID] = adder
	g.Nodes[sqrt.ID] = sqrt

	g.Connections = append(g.Connections,
		types.Connection{ID: "c1", FromNode: a.ID, FromPort: "value", ToNode: adder.ID, ToPort: "a"},
		types.Connection{ID: "c2", FromNode: b.ID, FromPort: "value", ToNode: adder.ID, ToPort: "b"},
		types.Connection{ID: "c3", FromNode: adder.ID, FromPort: "out", ToNode: sqrt.ID, ToPort: "a"},
	)
	return g
}

func main() {
	g := buildGraph()
	store := graph.NewStore(g)

	config, err := types.NewConfig(types.WithComponentsRegistry(registry.Default))
	if err != nil {
		log.Fatalf("build config: %v", err)
	}
	eng := engine.New(registry.Default, config)

	now := time.Now()
	report, err := eng.Execute(context.Background(), store.Graph())
	if err != nil {
		log.Fatalf("execute: %v", err)
	}
	fmt.Println("first run cost:", time.Since(now))
	fmt.Println("completed:", report.Completed, "failed:", report.Failed)

	if p, ok := store.Graph().Nodes["sqrt"].OutputPort("out"); ok && p.CurrentValue != nil {
		fmt.Println("sqrt(2+3) =", p.CurrentValue.F32)
	}

	// Second run: every node's inputs are unchanged, so memoization skips
	// re-execution entirely (no node is left Dirty after the first run).
	report2, err := eng.Execute(context.Background(), store.Graph())
	if err != nil {
		log.Fatalf("re-execute: %v", err)
	}
	fmt.Println("second run completed (should be empty, all memoized):", report2.Completed)

	// Composition only fuses user-defined (WASM guest) nodes, never
	// builtins (§4.6 step 1), so a separate small graph stands in for two
	// guests here — a real deployment would have loaded these via
	// host.LoadComponent from actual component binaries.
	composed := composeDemo()

	// Round-trip the composed graph through the persistence codec.
	data, err := persistence.Write(composed)
	if err != nil {
		log.Fatalf("write: %v", err)
	}
	loaded, readReport, err := persistence.Read(data)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	fmt.Println("reloaded graph has", len(loaded.Nodes), "nodes, legacy:", readReport.Legacy,
		"checksum mismatch:", readReport.ChecksumMismatch, "structurally valid:", readReport.Structure.OK())
}

var demoF32In = []types.PortSpec{{Name: "in", Type: types.F32(), Direction: types.PortInput}}
var demoF32Out = []types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput}}

func addDeltaExecutor(delta float32) types.ExecutorFunc {
	return func(ctx context.Context, inputs map[string]types.NodeValue, grant types.CapabilitySet) (map[string]types.NodeValue, error) {
		return map[string]types.NodeValue{"out": types.NewF32(inputs["in"].F32 + delta)}, nil
	}
}

// composeDemo builds a tiny 3-node chain of standalone user-defined
// components, fuses the middle two into a composite, and returns the
// resulting graph for the persistence round-trip.
func composeDemo() *types.NodeGraph {
	reg := registry.New()
	mustRegister(reg, "udf.src", types.UserDefinedKind("/fake/src.wasm"), addDeltaExecutor(0))
	mustRegister(reg, "udf.add-one", types.UserDefinedKind("/fake/add-one.wasm"), addDeltaExecutor(1))
	mustRegister(reg, "udf.add-two", types.UserDefinedKind("/fake/add-two.wasm"), addDeltaExecutor(2))

	store := graph.NewStore(nil)
	src := types.NewGraphNode("src", "udf.src", "source", demoF32In, demoF32Out, types.NoneCapability())
	a := types.NewGraphNode("a", "udf.add-one", "stepA", demoF32In, demoF32Out, types.NoneCapability())
	b := types.NewGraphNode("b", "udf.add-two", "stepB", demoF32In, demoF32Out, types.NoneCapability())
	for _, n := range []*types.GraphNode{src, a, b} {
		if err := store.AddNode(n); err != nil {
			log.Fatalf("add node %s: %v", n.ID, err)
		}
	}
	if _, err := store.AddConnection("src", "out", "a", "in"); err != nil {
		log.Fatalf("connect src->a: %v", err)
	}
	if _, err := store.AddConnection("a", "out", "b", "in"); err != nil {
		log.Fatalf("connect a->b: %v", err)
	}

	composite, err := composer.Compose(store, reg, []string{"a", "b"}, "chain")
	if err != nil {
		log.Fatalf("compose: %v", err)
	}
	fmt.Println("composite:", composite.ID, "component:", composite.ComponentID)
	return store.Graph()
}

func mustRegister(reg *registry.Registry, id string, kind types.ComponentKind, executor types.Executor) {
	spec := types.ComponentSpec{
		ID: id, Name: id, Kind: kind,
		Inputs: demoF32In, Outputs: demoF32Out,
		RequiredCapabilities: types.NoneCapability(),
	}
	if err := reg.Register(spec, executor); err != nil {
		log.Fatalf("register %s: %v", id, err)
	}
}

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

package builtin

import (
	"context"

	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(boolOrSpec(), types.ExecutorFunc(boolOrExecute))
	registry.RegisterBuiltin(boolXorSpec(), types.ExecutorFunc(boolXorExecute))
	registry.RegisterBuiltin(compareSpec(), types.ExecutorFunc(compareExecute))
	registry.RegisterBuiltin(isEmptySpec(), types.ExecutorFunc(isEmptyExecute))
}

func binaryBoolSpec(id, name string) types.ComponentSpec {
	return types.ComponentSpec{
		ID:       id,
		Name:     name,
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "a", Type: types.Bool(), Direction: types.PortInput},
			{Name: "b", Type: types.Bool(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.Bool(), Direction: types.PortOutput},
		},
	}
}

func boolInputs(inputs map[string]types.NodeValue, names ...string) ([]bool, error) {
	out := make([]bool, len(names))
	for i, name := range names {
		v, ok := inputs[name]
		if !ok {
			return nil, types.NewError(types.ErrMissingInput, "missing input "+name)
		}
		out[i] = v.Bool
	}
	return out, nil
}

func boolOrSpec() types.ComponentSpec { return binaryBoolSpec("core.boolean-or", "Boolean Or") }

func boolOrExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := boolInputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewBool(vals[0] || vals[1])}, nil
}

func boolXorSpec() types.ComponentSpec { return binaryBoolSpec("core.boolean-xor", "Boolean Xor") }

func boolXorExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := boolInputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewBool(vals[0] != vals[1])}, nil
}

func compareSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.compare",
		Name:     "Compare",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "a", Type: types.F32(), Direction: types.PortInput},
			{Name: "b", Type: types.F32(), Direction: types.PortInput},
			{Name: "operator", Type: types.String(), Direction: types.PortInput, Optional: true},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.Bool(), Direction: types.PortOutput},
		},
	}
}

// compareExecute dispatches on "operator" (one of eq/ne/lt/le/gt/ge),
// defaulting to eq.
func compareExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	op := "eq"
	if o, ok := inputs["operator"]; ok {
		op = o.Str
	}
	var out bool
	switch op {
	case "eq":
		out = vals[0] == vals[1]
	case "ne":
		out = vals[0] != vals[1]
	case "lt":
		out = vals[0] < vals[1]
	case "le":
		out = vals[0] <= vals[1]
	case "gt":
		out = vals[0] > vals[1]
	case "ge":
		out = vals[0] >= vals[1]
	default:
		return nil, types.NewError(types.ErrInvalidComponent, "unknown comparison operator "+op)
	}
	return map[string]types.NodeValue{"out": types.NewBool(out)}, nil
}

func isEmptySpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.is-empty",
		Name:     "Is Empty",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.Bool(), Direction: types.PortOutput},
		},
	}
}

func isEmptyExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, ok := inputs["value"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input value")
	}
	return map[string]types.NodeValue{"out": types.NewBool(v.Str == "")}, nil
}

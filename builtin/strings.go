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
	"strings"

	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(stringCaseSpec(), types.ExecutorFunc(stringCaseExecute))
	registry.RegisterBuiltin(stringContainsSpec(), types.ExecutorFunc(stringContainsExecute))
	registry.RegisterBuiltin(stringLengthSpec(), types.ExecutorFunc(stringLengthExecute))
	registry.RegisterBuiltin(stringSplitSpec(), types.ExecutorFunc(stringSplitExecute))
	registry.RegisterBuiltin(stringSubstringSpec(), types.ExecutorFunc(stringSubstringExecute))
	registry.RegisterBuiltin(stringTrimSpec(), types.ExecutorFunc(stringTrimExecute))
}

func stringInput(inputs map[string]types.NodeValue, name string) (string, error) {
	v, ok := inputs[name]
	if !ok {
		return "", types.NewError(types.ErrMissingInput, "missing input "+name)
	}
	return v.Str, nil
}

func stringCaseSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.string-case",
		Name:     "String Case",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
			{Name: "mode", Type: types.String(), Direction: types.PortInput, Optional: true},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

// stringCaseExecute converts to "upper" or "lower" case, defaulting to
// lower when "mode" is omitted.
func stringCaseExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	mode := "lower"
	if m, ok := inputs["mode"]; ok {
		mode = m.Str
	}
	var out string
	switch mode {
	case "upper":
		out = strings.ToUpper(v)
	case "lower":
		out = strings.ToLower(v)
	default:
		return nil, types.NewError(types.ErrInvalidComponent, "unknown case mode "+mode)
	}
	return map[string]types.NodeValue{"out": types.NewString(out)}, nil
}

func stringContainsSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.string-contains",
		Name:     "String Contains",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
			{Name: "substring", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.Bool(), Direction: types.PortOutput},
		},
	}
}

func stringContainsExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	sub, err := stringInput(inputs, "substring")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewBool(strings.Contains(v, sub))}, nil
}

func stringLengthSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.string-length",
		Name:     "String Length",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.U32(), Direction: types.PortOutput},
		},
	}
}

func stringLengthExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewU32(uint32(len(v)))}, nil
}

func stringSplitSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.string-split",
		Name:     "String Split",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
			{Name: "separator", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.List(types.String()), Direction: types.PortOutput},
		},
	}
}

func stringSplitExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	sep, err := stringInput(inputs, "separator")
	if err != nil {
		return nil, err
	}
	parts := strings.Split(v, sep)
	out := make([]types.NodeValue, len(parts))
	for i, p := range parts {
		out[i] = types.NewString(p)
	}
	return map[string]types.NodeValue{"out": types.NewList(out)}, nil
}

func stringSubstringSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.string-substring",
		Name:     "Substring",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
			{Name: "start", Type: types.U32(), Direction: types.PortInput},
			{Name: "end", Type: types.U32(), Direction: types.PortInput, Optional: true},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

func stringSubstringExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	start, ok := inputs["start"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input start")
	}
	end := uint32(len(v))
	if e, ok := inputs["end"]; ok {
		end = e.U32
	}
	if int(start.U32) > len(v) || int(end) > len(v) || start.U32 > end {
		return nil, types.NewError(types.ErrGuestFailure, "substring bounds out of range")
	}
	return map[string]types.NodeValue{"out": types.NewString(v[start.U32:end])}, nil
}

func stringTrimSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "core.string-trim",
		Name:     "Trim",
		Category: "Core",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

func stringTrimExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewString(strings.TrimSpace(v))}, nil
}

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

// Package builtin registers the in-process components that ship with
// wasmflow: components that need no guest sandbox because they perform
// pure, trusted computation directly in the host process (§4.1, §9
// supplemented features pulled from the original Rust math/core/data
// component set).
package builtin

import (
	"context"
	"math"

	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(constantSpec(), constantExecutor{})
	registry.RegisterBuiltin(adderSpec(), types.ExecutorFunc(adderExecute))
	registry.RegisterBuiltin(subtractorSpec(), types.ExecutorFunc(subtractorExecute))
	registry.RegisterBuiltin(multiplierSpec(), types.ExecutorFunc(multiplierExecute))
	registry.RegisterBuiltin(dividerSpec(), types.ExecutorFunc(dividerExecute))
	registry.RegisterBuiltin(powerSpec(), types.ExecutorFunc(powerExecute))
	registry.RegisterBuiltin(sqrtSpec(), types.ExecutorFunc(sqrtExecute))
	registry.RegisterBuiltin(minSpec(), types.ExecutorFunc(minExecute))
	registry.RegisterBuiltin(trigSpec(), types.ExecutorFunc(trigExecute))
}

func binaryF32Spec(id, name, category string) types.ComponentSpec {
	return types.ComponentSpec{
		ID:       id,
		Name:     name,
		Category: category,
		Inputs: []types.PortSpec{
			{Name: "a", Type: types.F32(), Direction: types.PortInput},
			{Name: "b", Type: types.F32(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.F32(), Direction: types.PortOutput},
		},
	}
}

func f32Inputs(inputs map[string]types.NodeValue, names ...string) ([]float32, error) {
	out := make([]float32, len(names))
	for i, name := range names {
		v, ok := inputs[name]
		if !ok {
			return nil, types.NewError(types.ErrMissingInput, "missing input "+name)
		}
		out[i] = v.F32
	}
	return out, nil
}

func constantSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "math.constant",
		Name:     "Constant",
		Category: "Math",
		Inputs: []types.PortSpec{
			// Never connected in practice: its CurrentValue is set
			// directly by the UI and fed in as the node's configured
			// literal (the engine assembles an unconnected, optional
			// input from the port's own CurrentValue).
			{Name: "value", Type: types.F32(), Direction: types.PortInput, Optional: true},
		},
		Outputs: []types.PortSpec{
			{Name: "value", Type: types.F32(), Direction: types.PortOutput},
		},
	}
}

// constantExecutor echoes its configured "value" input straight through.
type constantExecutor struct{}

func (c constantExecutor) Execute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, ok := inputs["value"]
	if !ok {
		v = types.NewF32(0)
	}
	return map[string]types.NodeValue{"value": v}, nil
}

func adderSpec() types.ComponentSpec {
	s := binaryF32Spec("math.adder", "Adder", "Math")
	return s
}

func adderExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewF32(vals[0] + vals[1])}, nil
}

func subtractorSpec() types.ComponentSpec {
	return binaryF32Spec("math.subtractor", "Subtractor", "Math")
}

func subtractorExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewF32(vals[0] - vals[1])}, nil
}

func multiplierSpec() types.ComponentSpec {
	return binaryF32Spec("math.multiplier", "Multiplier", "Math")
}

func multiplierExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewF32(vals[0] * vals[1])}, nil
}

func dividerSpec() types.ComponentSpec {
	return binaryF32Spec("math.divider", "Divider", "Math")
}

// dividerExecute fails with ErrGuestFailure on division by zero rather than
// producing Inf/NaN silently, matching the division-by-zero scenario in §8
// (the node fails with a "Division by zero" message).
func dividerExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	if vals[1] == 0 {
		return nil, types.NewError(types.ErrGuestFailure, "Division by zero")
	}
	return map[string]types.NodeValue{"out": types.NewF32(vals[0] / vals[1])}, nil
}

func powerSpec() types.ComponentSpec {
	return binaryF32Spec("math.power", "Power", "Math")
}

func powerExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewF32(float32(math.Pow(float64(vals[0]), float64(vals[1]))))}, nil
}

func sqrtSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "math.sqrt",
		Name:     "Square Root",
		Category: "Math",
		Inputs: []types.PortSpec{
			{Name: "a", Type: types.F32(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.F32(), Direction: types.PortOutput},
		},
	}
}

func sqrtExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a")
	if err != nil {
		return nil, err
	}
	if vals[0] < 0 {
		return nil, types.NewError(types.ErrGuestFailure, "sqrt of negative number")
	}
	return map[string]types.NodeValue{"out": types.NewF32(float32(math.Sqrt(float64(vals[0]))))}, nil
}

func minSpec() types.ComponentSpec {
	return binaryF32Spec("math.min", "Min", "Math")
}

func minExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	vals, err := f32Inputs(inputs, "a", "b")
	if err != nil {
		return nil, err
	}
	out := vals[0]
	if vals[1] < out {
		out = vals[1]
	}
	return map[string]types.NodeValue{"out": types.NewF32(out)}, nil
}

func trigSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "math.trig",
		Name:     "Trig",
		Category: "Math",
		Inputs: []types.PortSpec{
			{Name: "a", Type: types.F32(), Direction: types.PortInput},
			{Name: "function", Type: types.String(), Direction: types.PortInput, Optional: true},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.F32(), Direction: types.PortOutput},
		},
	}
}

// trigExecute dispatches on the "function" input (sin/cos/tan), defaulting
// to sin when omitted.
func trigExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	a, ok := inputs["a"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input a")
	}
	fn := "sin"
	if f, ok := inputs["function"]; ok {
		fn = f.Str
	}
	var out float64
	switch fn {
	case "sin":
		out = math.Sin(float64(a.F32))
	case "cos":
		out = math.Cos(float64(a.F32))
	case "tan":
		out = math.Tan(float64(a.F32))
	default:
		return nil, types.NewError(types.ErrInvalidComponent, "unknown trig function "+fn)
	}
	return map[string]types.NodeValue{"out": types.NewF32(float32(out))}, nil
}

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

package js

import (
	"context"

	"github.com/wasmflow/wasmflow/internal/mapcopy"
	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(transformSpec(), types.ExecutorFunc(transformExecute))
	registry.RegisterBuiltin(filterSpec(), types.ExecutorFunc(filterExecute))
}

func transformSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "script.js-transform",
		Name:     "JS Transform",
		Category: "Script",
		Inputs: []types.PortSpec{
			{Name: "script", Type: types.String(), Direction: types.PortInput},
			{Name: "data", Type: types.Any(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "result", Type: types.Any(), Direction: types.PortOutput},
		},
	}
}

func transformExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	script, ok := inputs["script"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input script")
	}
	data, ok := inputs["data"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input data")
	}
	result, err := RunTransform(script.Str, mapcopy.ToAny(data))
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "js-transform failed", err)
	}
	return map[string]types.NodeValue{"result": mapcopy.FromAny(result)}, nil
}

func filterSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "script.js-filter",
		Name:     "JS Filter",
		Category: "Script",
		Inputs: []types.PortSpec{
			{Name: "script", Type: types.String(), Direction: types.PortInput},
			{Name: "data", Type: types.Any(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "pass", Type: types.Bool(), Direction: types.PortOutput},
		},
	}
}

func filterExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	script, ok := inputs["script"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input script")
	}
	data, ok := inputs["data"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input data")
	}
	pass, err := RunPredicate(script.Str, mapcopy.ToAny(data))
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "js-filter failed", err)
	}
	return map[string]types.NodeValue{"pass": types.NewBool(pass)}, nil
}

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

// Package exprutil provides expr-lang/expr-backed filter and assignment
// components: a lighter-weight alternative to the goja-based script
// components for simple boolean predicates and field projections that
// don't need full JavaScript.
package exprutil

import (
	"context"

	"github.com/expr-lang/expr"

	"github.com/wasmflow/wasmflow/internal/mapcopy"
	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(exprFilterSpec(), types.ExecutorFunc(exprFilterExecute))
	registry.RegisterBuiltin(exprAssignSpec(), types.ExecutorFunc(exprAssignExecute))
}

func exprFilterSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "script.expr-filter",
		Name:     "Expr Filter",
		Category: "Script",
		Inputs: []types.PortSpec{
			{Name: "expression", Type: types.String(), Direction: types.PortInput},
			{Name: "data", Type: types.Any(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "pass", Type: types.Bool(), Direction: types.PortOutput},
		},
	}
}

// exprFilterExecute compiles and runs expression against data's fields (a
// non-Record data value is exposed as "value", see recordEnv) and requires
// the result to be a bool.
func exprFilterExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	exprStr, ok := inputs["expression"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input expression")
	}
	data, ok := inputs["data"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input data")
	}
	env := recordEnv(data)
	program, err := expr.Compile(exprStr.Str, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "expr-filter compile failed", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "expr-filter eval failed", err)
	}
	b, ok := out.(bool)
	if !ok {
		return nil, types.NewError(types.ErrGuestFailure, "expr-filter did not evaluate to a boolean")
	}
	return map[string]types.NodeValue{"pass": types.NewBool(b)}, nil
}

func exprAssignSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "script.expr-assign",
		Name:     "Expr Assign",
		Category: "Script",
		Inputs: []types.PortSpec{
			{Name: "expression", Type: types.String(), Direction: types.PortInput},
			{Name: "data", Type: types.Any(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "result", Type: types.Any(), Direction: types.PortOutput},
		},
	}
}

func exprAssignExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	exprStr, ok := inputs["expression"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input expression")
	}
	data, ok := inputs["data"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input data")
	}
	env := recordEnv(data)
	program, err := expr.Compile(exprStr.Str, expr.Env(env))
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "expr-assign compile failed", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "expr-assign eval failed", err)
	}
	return map[string]types.NodeValue{"result": mapcopy.FromAny(out)}, nil
}

// recordEnv converts a Record NodeValue into a map[string]any expr
// environment; non-Record values are exposed under a single "value" key so
// scalar data can still be referenced from the expression.
func recordEnv(data types.NodeValue) map[string]any {
	if data.Kind == types.KindRecord {
		return mapcopy.InputsToEnv(fieldsToMap(data))
	}
	return map[string]any{"value": mapcopy.ToAny(data)}
}

func fieldsToMap(data types.NodeValue) map[string]types.NodeValue {
	out := make(map[string]types.NodeValue, len(data.Record))
	for _, f := range data.Record {
		out[f.Name] = f.Value
	}
	return out
}

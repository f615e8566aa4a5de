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

// Package js provides a goja-backed JavaScript transform component: a
// script reading a "data" input and returning a value becomes a pure,
// trusted node executor.
package js

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// RunTransform evaluates script, which must define a top-level "transform"
// function, and calls it with data. A fresh goja.Runtime is created per
// call: Executors must be pure functions of their inputs (§4.3 memoization
// relies on this), so no VM or compiled-program state is cached across
// node executions.
func RunTransform(script string, data any) (any, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("js: compile/eval script: %w", err)
	}
	fn, ok := goja.AssertFunction(vm.Get("transform"))
	if !ok {
		return nil, errors.New("js: script does not define a transform(data) function")
	}
	result, err := fn(goja.Undefined(), vm.ToValue(data))
	if err != nil {
		return nil, fmt.Errorf("js: transform() threw: %w", err)
	}
	return result.Export(), nil
}

// RunPredicate evaluates script's top-level "filter" function and requires
// it to return a boolean, for the js-filter component.
func RunPredicate(script string, data any) (bool, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return false, fmt.Errorf("js: compile/eval script: %w", err)
	}
	fn, ok := goja.AssertFunction(vm.Get("filter"))
	if !ok {
		return false, errors.New("js: script does not define a filter(data) function")
	}
	result, err := fn(goja.Undefined(), vm.ToValue(data))
	if err != nil {
		return false, fmt.Errorf("js: filter() threw: %w", err)
	}
	b, ok := result.Export().(bool)
	if !ok {
		return false, errors.New("js: filter() did not return a boolean")
	}
	return b, nil
}

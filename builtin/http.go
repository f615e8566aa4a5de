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
	"net/http"
	"strings"

	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(httpCookieParserSpec(), types.ExecutorFunc(httpCookieParserExecute))
	registry.RegisterBuiltin(httpSetCookieBuilderSpec(), types.ExecutorFunc(httpSetCookieBuilderExecute))
}

func httpCookieParserSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "http.http-cookie-parser",
		Name:     "HTTP Cookie Parser",
		Category: "HTTP",
		Inputs: []types.PortSpec{
			{Name: "header", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "names", Type: types.List(types.String()), Direction: types.PortOutput},
			{Name: "values", Type: types.List(types.String()), Direction: types.PortOutput},
		},
	}
}

// httpCookieParserExecute parses a "Cookie" request header's value via
// net/http's cookie-pair reader, exposed as parallel name/value lists since
// NodeValue has no map variant.
func httpCookieParserExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	header, err := stringInput(inputs, "header")
	if err != nil {
		return nil, err
	}
	req := &http.Request{Header: http.Header{"Cookie": {header}}}
	cookies := req.Cookies()
	names := make([]types.NodeValue, len(cookies))
	values := make([]types.NodeValue, len(cookies))
	for i, c := range cookies {
		names[i] = types.NewString(c.Name)
		values[i] = types.NewString(c.Value)
	}
	return map[string]types.NodeValue{
		"names":  types.NewList(names),
		"values": types.NewList(values),
	}, nil
}

func httpSetCookieBuilderSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "http.http-set-cookie-builder",
		Name:     "HTTP Set-Cookie Builder",
		Category: "HTTP",
		Inputs: []types.PortSpec{
			{Name: "name", Type: types.String(), Direction: types.PortInput},
			{Name: "value", Type: types.String(), Direction: types.PortInput},
			{Name: "path", Type: types.String(), Direction: types.PortInput, Optional: true},
			{Name: "http-only", Type: types.Bool(), Direction: types.PortInput, Optional: true},
		},
		Outputs: []types.PortSpec{
			{Name: "header", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

func httpSetCookieBuilderExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	name, err := stringInput(inputs, "name")
	if err != nil {
		return nil, err
	}
	value, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	cookie := &http.Cookie{Name: name, Value: value}
	if p, ok := inputs["path"]; ok {
		cookie.Path = p.Str
	}
	if ho, ok := inputs["http-only"]; ok {
		cookie.HttpOnly = ho.Bool
	}
	header := cookie.String()
	return map[string]types.NodeValue{"header": types.NewString(strings.TrimSpace(header))}, nil
}

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
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(jsonBuildObjectSpec(), types.ExecutorFunc(jsonBuildObjectExecute))
	registry.RegisterBuiltin(jsonEscapeStringSpec(), types.ExecutorFunc(jsonEscapeStringExecute))
	registry.RegisterBuiltin(jsonParseFlatObjectSpec(), types.ExecutorFunc(jsonParseFlatObjectExecute))
	registry.RegisterBuiltin(parseKeyValuePairsSpec(), types.ExecutorFunc(parseKeyValuePairsExecute))
	registry.RegisterBuiltin(urlDecodeSpec(), types.ExecutorFunc(urlDecodeExecute))
	registry.RegisterBuiltin(urlEncodeSpec(), types.ExecutorFunc(urlEncodeExecute))
}

func jsonBuildObjectSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "data.json-build-object",
		Name:     "JSON Build Object",
		Category: "Data",
		Inputs: []types.PortSpec{
			{Name: "keys", Type: types.List(types.String()), Direction: types.PortInput},
			{Name: "values", Type: types.List(types.String()), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

func jsonBuildObjectExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	keys, ok := inputs["keys"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input keys")
	}
	values, ok := inputs["values"]
	if !ok {
		return nil, types.NewError(types.ErrMissingInput, "missing input values")
	}
	if len(keys.List) != len(values.List) {
		return nil, types.NewError(types.ErrGuestFailure, "keys and values length mismatch")
	}
	obj := make(map[string]string, len(keys.List))
	for i, k := range keys.List {
		obj[k.Str] = values.List[i].Str
	}
	buf, err := json.Marshal(obj)
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "json marshal failed", err)
	}
	return map[string]types.NodeValue{"out": types.NewString(string(buf))}, nil
}

func jsonEscapeStringSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "data.json-escape-string",
		Name:     "JSON Escape String",
		Category: "Data",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

func jsonEscapeStringExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "json escape failed", err)
	}
	s := string(buf)
	return map[string]types.NodeValue{"out": types.NewString(strings.Trim(s, `"`))}, nil
}

func jsonParseFlatObjectSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "data.json-parse-flat-object",
		Name:     "JSON Parse Flat Object",
		Category: "Data",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "keys", Type: types.List(types.String()), Direction: types.PortOutput},
			{Name: "values", Type: types.List(types.String()), Direction: types.PortOutput},
		},
	}
}

// jsonParseFlatObjectExecute only supports a flat (non-nested) object of
// string-keyed scalar values, matching its name; nested structures fail
// with ErrGuestFailure rather than silently stringifying.
func jsonParseFlatObjectExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(v), &obj); err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "invalid json object", err)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyVals := make([]types.NodeValue, len(keys))
	valVals := make([]types.NodeValue, len(keys))
	for i, k := range keys {
		keyVals[i] = types.NewString(k)
		switch val := obj[k].(type) {
		case string:
			valVals[i] = types.NewString(val)
		case bool:
			valVals[i] = types.NewString(boolString(val))
		case float64, nil:
			buf, _ := json.Marshal(val)
			valVals[i] = types.NewString(string(buf))
		default:
			return nil, types.NewError(types.ErrGuestFailure, "non-flat value at key "+k)
		}
	}
	return map[string]types.NodeValue{
		"keys":   types.NewList(keyVals),
		"values": types.NewList(valVals),
	}, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseKeyValuePairsSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "data.parse-key-value-pairs",
		Name:     "Parse Key Value Pairs",
		Category: "Data",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
			{Name: "pair-separator", Type: types.String(), Direction: types.PortInput, Optional: true},
			{Name: "kv-separator", Type: types.String(), Direction: types.PortInput, Optional: true},
		},
		Outputs: []types.PortSpec{
			{Name: "keys", Type: types.List(types.String()), Direction: types.PortOutput},
			{Name: "values", Type: types.List(types.String()), Direction: types.PortOutput},
		},
	}
}

func parseKeyValuePairsExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	pairSep := ";"
	if s, ok := inputs["pair-separator"]; ok {
		pairSep = s.Str
	}
	kvSep := "="
	if s, ok := inputs["kv-separator"]; ok {
		kvSep = s.Str
	}
	var keys, values []types.NodeValue
	for _, pair := range strings.Split(v, pairSep) {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, kvSep, 2)
		if len(kv) != 2 {
			return nil, types.NewError(types.ErrGuestFailure, "malformed pair "+pair)
		}
		keys = append(keys, types.NewString(kv[0]))
		values = append(values, types.NewString(kv[1]))
	}
	return map[string]types.NodeValue{
		"keys":   types.NewList(keys),
		"values": types.NewList(values),
	}, nil
}

func urlDecodeSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "data.url-decode",
		Name:     "URL Decode",
		Category: "Data",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

func urlDecodeExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	decoded, decodeErr := url.QueryUnescape(v)
	if decodeErr != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "invalid percent-encoding", decodeErr)
	}
	return map[string]types.NodeValue{"out": types.NewString(decoded)}, nil
}

func urlEncodeSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "data.url-encode",
		Name:     "URL Encode",
		Category: "Data",
		Inputs: []types.PortSpec{
			{Name: "value", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "out", Type: types.String(), Direction: types.PortOutput},
		},
	}
}

func urlEncodeExecute(_ context.Context, inputs map[string]types.NodeValue, _ types.CapabilitySet) (map[string]types.NodeValue, error) {
	v, err := stringInput(inputs, "value")
	if err != nil {
		return nil, err
	}
	return map[string]types.NodeValue{"out": types.NewString(url.QueryEscape(v))}, nil
}

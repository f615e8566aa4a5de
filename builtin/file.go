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
	"os"

	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(fileReaderSpec(), types.ExecutorFunc(fileReaderExecute))
}

func fileReaderSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "file.file-reader",
		Name:     "File Reader",
		Category: "File",
		Inputs: []types.PortSpec{
			{Name: "path", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "contents", Type: types.String(), Direction: types.PortOutput},
		},
		RequiredCapabilities: types.FileReadCapability(),
	}
}

// fileReaderExecute enforces the node's FileRead grant against path before
// ever opening it, the filesystem analogue of mqttPublishExecute's host
// check (§6).
func fileReaderExecute(_ context.Context, inputs map[string]types.NodeValue, grant types.CapabilitySet) (map[string]types.NodeValue, error) {
	path, err := stringInput(inputs, "path")
	if err != nil {
		return nil, err
	}
	if !grant.AllowsPath(path, false) {
		return nil, types.NewError(types.ErrCapabilityDenied, "file-read access to "+path+" not granted")
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "read failed", readErr)
	}
	return map[string]types.NodeValue{"contents": types.NewString(string(data))}, nil
}

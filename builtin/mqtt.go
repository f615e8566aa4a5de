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
	"fmt"
	"net/url"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/wasmflow/wasmflow/registry"
	"github.com/wasmflow/wasmflow/types"
)

func init() {
	registry.RegisterBuiltin(mqttPublishSpec(), types.ExecutorFunc(mqttPublishExecute))
}

func mqttPublishSpec() types.ComponentSpec {
	return types.ComponentSpec{
		ID:       "network.mqtt-publish",
		Name:     "MQTT Publish",
		Category: "Network",
		Inputs: []types.PortSpec{
			{Name: "broker", Type: types.String(), Direction: types.PortInput},
			{Name: "topic", Type: types.String(), Direction: types.PortInput},
			{Name: "payload", Type: types.String(), Direction: types.PortInput},
		},
		Outputs: []types.PortSpec{
			{Name: "published", Type: types.Bool(), Direction: types.PortOutput},
		},
		RequiredCapabilities: types.NetworkCapability(),
	}
}

// mqttClients caches one connected client per broker URL for the process
// lifetime, so repeated executions of the same node don't reconnect on
// every graph run; keyed by broker since a capability-gated node may only
// ever address brokers its grant's host patterns allow.
var (
	mqttClientsMu sync.Mutex
	mqttClients   = map[string]mqtt.Client{}
)

// mqttPublishExecute enforces the node's Network grant against the broker's
// host before ever dialing it, per §6 "capability enforcement happens at
// the point of the privileged call, not just at placement time".
func mqttPublishExecute(ctx context.Context, inputs map[string]types.NodeValue, grant types.CapabilitySet) (map[string]types.NodeValue, error) {
	broker, err := stringInput(inputs, "broker")
	if err != nil {
		return nil, err
	}
	topic, err := stringInput(inputs, "topic")
	if err != nil {
		return nil, err
	}
	payload, err := stringInput(inputs, "payload")
	if err != nil {
		return nil, err
	}

	host, err := brokerHost(broker)
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "invalid broker url", err)
	}
	if !grant.AllowsHost(host) {
		return nil, types.NewError(types.ErrCapabilityDenied, fmt.Sprintf("network access to %q not granted", host))
	}

	client, err := mqttClient(broker)
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "mqtt connect failed", err)
	}

	token := client.Publish(topic, 0, false, payload)
	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, types.WrapError(types.ErrGuestFailure, "mqtt publish canceled", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "mqtt publish failed", err)
	}
	return map[string]types.NodeValue{"published": types.NewBool(true)}, nil
}

func brokerHost(broker string) (string, error) {
	u, err := url.Parse(broker)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("broker url %q has no host", broker)
	}
	return u.Hostname(), nil
}

func mqttClient(broker string) (mqtt.Client, error) {
	mqttClientsMu.Lock()
	defer mqttClientsMu.Unlock()
	if c, ok := mqttClients[broker]; ok && c.IsConnected() {
		return c, nil
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	mqttClients[broker] = client
	return client, nil
}

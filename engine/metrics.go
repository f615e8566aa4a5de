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

package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	nodeExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wasmflow",
			Subsystem: "engine",
			Name:      "node_executions_total",
			Help:      "Total node executions by outcome.",
		},
		[]string{"component_id", "outcome"},
	)

	nodeExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wasmflow",
			Subsystem: "engine",
			Name:      "node_execution_duration_seconds",
			Help:      "Node execution latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"component_id"},
	)

	graphExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wasmflow",
			Subsystem: "engine",
			Name:      "graph_executions_total",
			Help:      "Total full-graph execute() calls.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(nodeExecutionsTotal, nodeExecutionDuration, graphExecutionsTotal)
}

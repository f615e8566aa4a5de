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

// Package types defines the core interfaces, data structures, and contracts
// shared by every wasmflow package: the graph data model (nodes, ports,
// connections, graphs), the component and capability model, the execution
// error taxonomy, engine configuration, and the aspect hooks used to extend
// graph and node execution with cross-cutting concerns.
//
// This package sits at the bottom of the dependency graph (alongside
// persistence): graph, registry, host, composer, engine, and continuous all
// depend on it, and it depends on none of them. That keeps the domain model
// free of import cycles the same way RuleGo's types package anchors its
// engine, registry, and component packages.
package types

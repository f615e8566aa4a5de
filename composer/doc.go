// Package composer implements link-fusion composition (§4.6): selecting a
// connected sub-DAG of user-defined nodes, producing a single composite
// GraphNode whose execution is indistinguishable from running the
// sub-DAG, and the ViewStack-driven drill-down used to inspect a
// composite's preserved internal structure.
//
// wazero's stable public API does not expose a Component-Model static
// linker (the true "resolve the socket's imports against the plugs'
// exports, producing a single composite binary" step lives behind
// internal packages of the wazero module itself), so link composition
// here validates that every selected node really does carry a loadable
// user-defined component — the structural precondition a real linker
// would also enforce before it ever touches imports/exports — and the
// composite's registered Executor runs the preserved internal sub-DAG
// directly instead of invoking a single fused binary. The externally
// observable contract (a composite behaves like its sub-DAG, decomposes
// via exposed_inputs/exposed_outputs) is identical either way; see
// DESIGN.md for this simplification.
package composer

// Package host implements the WebAssembly Component Host (§4.4): loading
// user-defined component binaries, constructing a per-call sandbox whose
// filesystem and network surface is filtered by the node's capability
// grant, and marshalling typed values across the host/guest boundary.
//
// wazero does not yet expose the Component Model's canonical ABI as a
// stable public API (its component-model support lives behind internal
// packages not importable outside the wazero module itself), so this
// package targets a simplified guest contract instead: a guest is a plain
// core-wasm module that exports
//
//	alloc(size: u32) -> ptr: u32
//	dealloc(ptr: u32, size: u32)
//	metadata_get_info() -> (ptr: u32, len: u32)
//	execution_execute(ptr: u32, len: u32) -> (ptr: u32, len: u32)
//
// and communicates through JSON blobs placed in its own linear memory at
// the returned (ptr, len). This is the same "export alloc/dealloc, pass a
// (ptr,len) pair, let the host peek at guest memory" pattern used by every
// wazero embedding in the reference pack; it is documented here as a
// deliberate, spec-consistent simplification of the Component Model wire
// format, which spec.md §9 leaves unpinned.
package host

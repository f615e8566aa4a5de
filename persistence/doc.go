// Package persistence implements the graph save format (§4.7): a
// deterministic, versioned, checksummed encoding with structural
// re-validation on load.
//
// The current format frames a deterministic JSON body (map keys sorted,
// slices order-preserving — encoding/json's own guarantees for
// map[string]V already satisfy "maps iterate in key order") behind a
// fixed magic/version/checksum header. Graphs saved by a version of this
// codec that predates the framing are recognized by the absence of the
// magic prefix and decoded as a bare JSON document (the "legacy" path);
// this is the one prior format §4.7 promises forward-compatibility for.
package persistence

package persistence

import (
	"fmt"

	"github.com/wasmflow/wasmflow/types"
)

// StructureReport is the result of validateStructure: a save file that
// decodes successfully may still reference missing nodes/ports or mismatch
// directions if it was hand-edited or corrupted in a way JSON decoding
// alone can't catch.
type StructureReport struct {
	Errors []string
}

// OK reports whether the decoded graph passed structural validation.
func (r StructureReport) OK() bool { return len(r.Errors) == 0 }

// validateStructure implements §4.7's post-load check: I2 (connections
// reference existing nodes/ports with matching directions), I3 (type
// compatibility), and port existence. persistence cannot import graph (the
// package dependency order runs persistence -> typesys only), so this is a
// narrow, load-time-only duplicate of the relevant slice of
// graph.Validate — acyclicity is deliberately not re-checked here, per
// §4.7's "guaranteed by save-time invariants" note.
func validateStructure(g *types.NodeGraph) StructureReport {
	var report StructureReport
	for _, c := range g.Connections {
		from, fromOK := g.Nodes[c.FromNode]
		to, toOK := g.Nodes[c.ToNode]
		if !fromOK || !toOK {
			report.Errors = append(report.Errors, fmt.Sprintf("connection %s references a missing node", c.ID))
			continue
		}
		fromPort, ok := from.OutputPort(c.FromPort)
		if !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("connection %s references missing output port %s", c.ID, c.FromPort))
			continue
		}
		toPort, ok := to.InputPort(c.ToPort)
		if !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("connection %s references missing input port %s", c.ID, c.ToPort))
			continue
		}
		if !fromPort.Type.IsCompatible(toPort.Type) {
			report.Errors = append(report.Errors, fmt.Sprintf("connection %s: type mismatch %s -> %s", c.ID, fromPort.Type, toPort.Type))
		}
	}
	return report
}

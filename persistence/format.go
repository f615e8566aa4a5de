package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"hash/crc64"

	"github.com/wasmflow/wasmflow/types"
)

// Magic identifies a current-format save file (§4.7 "GraphSaveFormat").
var Magic = [8]byte{'W', 'A', 'S', 'M', 'F', 'L', 'O', 'W'}

// CurrentVersion is the save format version this codec writes.
const CurrentVersion uint32 = 1

var ecmaTable = crc64.MakeTable(crc64.ECMA)

// ReadReport carries the non-fatal conditions Read detected while loading a
// graph: a checksum mismatch (warn, not fail, per §4.7) and any structural
// validation findings from validateStructure.
type ReadReport struct {
	Legacy           bool
	ChecksumMismatch bool
	Structure        StructureReport
}

// Write serializes g into the current binary-framed format: magic, a
// little-endian u32 version, the deterministic JSON encoding of the graph,
// and a little-endian u64 CRC-64 (ECMA) checksum over that JSON body alone.
// Creator nodes with SaveCode == false have their source blanked, per
// §4.7's write-time contract.
func Write(g *types.NodeGraph) ([]byte, error) {
	body, err := json.Marshal(encodeGraph(g, true))
	if err != nil {
		return nil, types.WrapError(types.ErrInvalidFormat, "encode graph", err)
	}
	checksum := crc64.Checksum(body, ecmaTable)

	var buf bytes.Buffer
	buf.Write(Magic[:])
	_ = binary.Write(&buf, binary.LittleEndian, CurrentVersion)
	buf.Write(body)
	_ = binary.Write(&buf, binary.LittleEndian, checksum)
	return buf.Bytes(), nil
}

// Read decodes a save file produced by Write, or — if the magic prefix is
// absent — falls back to treating the entire byte stream as a bare JSON
// graph document from the one prior format (§4.7 "Read"). It validates the
// version, recomputes and warns (never fails) on checksum mismatch, and
// runs validateStructure against the decoded structure.
func Read(data []byte) (*types.NodeGraph, ReadReport, error) {
	if len(data) >= len(Magic) && bytes.Equal(data[:len(Magic)], Magic[:]) {
		return readCurrent(data)
	}
	return readLegacy(data)
}

func readCurrent(data []byte) (*types.NodeGraph, ReadReport, error) {
	rest := data[len(Magic):]
	if len(rest) < 4+8 {
		return nil, ReadReport{}, types.NewError(types.ErrInvalidFormat, "truncated save file")
	}
	version := binary.LittleEndian.Uint32(rest[:4])
	if version > CurrentVersion {
		return nil, ReadReport{}, types.NewError(types.ErrVersionIncompatible, "save file version is newer than this codec supports")
	}

	body := rest[4 : len(rest)-8]
	checksumBytes := rest[len(rest)-8:]
	wantChecksum := binary.LittleEndian.Uint64(checksumBytes)
	gotChecksum := crc64.Checksum(body, ecmaTable)

	var wg wireGraph
	if err := json.Unmarshal(body, &wg); err != nil {
		return nil, ReadReport{}, types.WrapError(types.ErrInvalidFormat, "decode graph body", err)
	}

	g, err := decodeGraph(wg)
	if err != nil {
		return nil, ReadReport{}, types.WrapError(types.ErrInvalidFormat, "reconstruct graph", err)
	}

	report := ReadReport{ChecksumMismatch: gotChecksum != wantChecksum}
	report.Structure = validateStructure(g)
	return g, report, nil
}

func readLegacy(data []byte) (*types.NodeGraph, ReadReport, error) {
	var wg wireGraph
	if err := json.Unmarshal(data, &wg); err != nil {
		return nil, ReadReport{}, types.WrapError(types.ErrInvalidFormat, "decode legacy graph", err)
	}
	g, err := decodeGraph(wg)
	if err != nil {
		return nil, ReadReport{}, types.WrapError(types.ErrInvalidFormat, "reconstruct legacy graph", err)
	}
	report := ReadReport{Legacy: true}
	report.Structure = validateStructure(g)
	return g, report, nil
}

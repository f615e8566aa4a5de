package persistence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmflow/wasmflow/types"
)

func sampleGraph() *types.NodeGraph {
	g := types.NewNodeGraph("g1", "sample")
	a := types.NewGraphNode("a", "udf.src", "source",
		nil, []types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput}}, types.NoneCapability())
	b := types.NewGraphNode("b", "udf.sink", "sink",
		[]types.PortSpec{{Name: "in", Type: types.F32(), Direction: types.PortInput}}, nil, types.NoneCapability())
	a.Creator = &types.CreatorData{SourceCode: "secret source", SaveCode: false, State: types.CompilationCompiled}
	a.State = types.StateCompleted
	a.Dirty = false
	g.Nodes["a"] = a
	g.Nodes["b"] = b
	g.Connections = append(g.Connections, types.Connection{ID: "c1", FromNode: "a", FromPort: "out", ToNode: "b", ToPort: "in"})
	return g
}

func TestWriteReadRoundTrip(t *testing.T) {
	g := sampleGraph()
	data, err := Write(g)
	require.NoError(t, err)

	loaded, report, err := Read(data)
	require.NoError(t, err)
	assert.False(t, report.Legacy)
	assert.False(t, report.ChecksumMismatch)

	assert.Equal(t, g.ID, loaded.ID)
	assert.Len(t, loaded.Nodes, 2)
	assert.Len(t, loaded.Connections, 1)

	// save_code == false blanks source_code on write.
	assert.Empty(t, loaded.Nodes["a"].Creator.SourceCode)

	// State and Dirty are persisted execution state (§3), not continuous
	// runtime_state, so they round-trip rather than reset.
	assert.Equal(t, types.StateCompleted, loaded.Nodes["a"].State)
	assert.False(t, loaded.Nodes["a"].Dirty)
	assert.Equal(t, types.StateIdle, loaded.Nodes["b"].State)
	assert.True(t, loaded.Nodes["b"].Dirty)
}

func TestWriteIsDeterministic(t *testing.T) {
	g := sampleGraph()
	first, err := Write(g)
	require.NoError(t, err)
	second, err := Write(g)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReadDetectsChecksumMismatch(t *testing.T) {
	g := sampleGraph()
	data, err := Write(g)
	require.NoError(t, err)

	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-1] ^= 0xFF

	loaded, report, err := Read(corrupted)
	require.NoError(t, err, "checksum mismatch is a warning, not a failure")
	assert.True(t, report.ChecksumMismatch)
	assert.NotNil(t, loaded)
}

func TestReadFallsBackToLegacyJSON(t *testing.T) {
	g := sampleGraph()
	legacyBody, err := json.Marshal(encodeGraph(g, true))
	require.NoError(t, err)

	loaded, report, err := Read(legacyBody)
	require.NoError(t, err)
	assert.True(t, report.Legacy)
	assert.Equal(t, g.ID, loaded.ID)
}

func TestReadRejectsTruncatedCurrentFormat(t *testing.T) {
	_, _, err := Read(append(Magic[:], 0x01))
	require.Error(t, err)
	kind, _ := types.KindOf(err)
	assert.Equal(t, types.ErrInvalidFormat, kind)
}

func TestFlattenAndDecodeConfiguration(t *testing.T) {
	type settings struct {
		Threshold float64 `json:"threshold" structs:"threshold"`
		Label     string  `json:"label" structs:"label"`
	}
	cfg := Flatten(settings{Threshold: 0.5, Label: "x"})
	require.NotNil(t, cfg)

	var out settings
	require.NoError(t, DecodeConfiguration(cfg, &out))
	assert.Equal(t, 0.5, out.Threshold)
	assert.Equal(t, "x", out.Label)
}

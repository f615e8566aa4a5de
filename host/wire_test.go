package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmflow/wasmflow/types"
)

func TestValueRoundTrip(t *testing.T) {
	values := []types.NodeValue{
		types.NewU32(7),
		types.NewI32(-3),
		types.NewF32(2.5),
		types.NewString("hello"),
		types.NewBool(true),
		types.NewBinary([]byte{1, 2, 3}),
		types.NewList([]types.NodeValue{types.NewU32(1), types.NewU32(2)}),
		types.NewRecord(types.NodeValueField{Name: "x", Value: types.NewF32(1.5)}),
	}
	for _, v := range values {
		got, err := decodeValue(encodeValue(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestTypeRoundTrip(t *testing.T) {
	dts := []types.DataType{
		types.U32(), types.String(), types.Any(),
		types.List(types.F32()),
		types.Record(types.RecordField{Name: "a", Type: types.Bool()}),
	}
	for _, dt := range dts {
		got, err := decodeType(encodeType(dt))
		require.NoError(t, err)
		assert.Equal(t, dt.String(), got.String())
	}
}

func TestDecodeOutputsSurfacesGuestError(t *testing.T) {
	raw := []byte(`{"error":{"message":"boom","input_name":"a"}}`)
	_, err := decodeOutputs(raw)
	require.Error(t, err)
	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrGuestFailure, kind)
}

func TestValidateOutputsRejectsTypeMismatch(t *testing.T) {
	spec := types.ComponentSpec{
		Outputs: []types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput}},
	}
	_, err := validateOutputs(spec, map[string]types.NodeValue{"out": types.NewString("nope")})
	require.Error(t, err)
	kind, _ := types.KindOf(err)
	assert.Equal(t, types.ErrTypeMismatch, kind)
}

func TestValidateOutputsAllowsMissingOptional(t *testing.T) {
	spec := types.ComponentSpec{
		Outputs: []types.PortSpec{{Name: "out", Type: types.F32(), Direction: types.PortOutput, Optional: true}},
	}
	out, err := validateOutputs(spec, map[string]types.NodeValue{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestModuleConfigForGrantDoesNotPanic(t *testing.T) {
	grants := []types.CapabilitySet{
		types.NoneCapability(),
		types.FileReadCapability("/tmp"),
		types.FileWriteCapability("/tmp"),
		types.NetworkCapability("example.com"),
		types.FullCapability(),
	}
	for _, g := range grants {
		assert.NotNil(t, moduleConfigForGrant("test", g))
	}
}

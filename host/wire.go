package host

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/wasmflow/wasmflow/types"
)

// wireValue is the JSON-over-linear-memory encoding of a types.NodeValue
// crossing the guest boundary (§6, value representation). Binary data is
// base64-encoded since JSON has no byte-string type.
type wireValue struct {
	Kind   string      `json:"kind"`
	U32    uint32      `json:"u32,omitempty"`
	I32    int32       `json:"i32,omitempty"`
	F32    float32     `json:"f32,omitempty"`
	Str    string      `json:"str,omitempty"`
	Bool   bool        `json:"bool,omitempty"`
	Binary string      `json:"binary,omitempty"`
	List   []wireValue `json:"list,omitempty"`
	Record []wireField `json:"record,omitempty"`
}

type wireField struct {
	Name  string    `json:"name"`
	Value wireValue `json:"value"`
}

func encodeValue(v types.NodeValue) wireValue {
	switch v.Kind {
	case types.KindU32:
		return wireValue{Kind: "u32", U32: v.U32}
	case types.KindI32:
		return wireValue{Kind: "i32", I32: v.I32}
	case types.KindF32:
		return wireValue{Kind: "f32", F32: v.F32}
	case types.KindString:
		return wireValue{Kind: "string", Str: v.Str}
	case types.KindBool:
		return wireValue{Kind: "bool", Bool: v.Bool}
	case types.KindBinary:
		return wireValue{Kind: "binary", Binary: base64.StdEncoding.EncodeToString(v.Binary)}
	case types.KindList:
		items := make([]wireValue, len(v.List))
		for i, e := range v.List {
			items[i] = encodeValue(e)
		}
		return wireValue{Kind: "list", List: items}
	case types.KindRecord:
		fields := make([]wireField, len(v.Record))
		for i, f := range v.Record {
			fields[i] = wireField{Name: f.Name, Value: encodeValue(f.Value)}
		}
		return wireValue{Kind: "record", Record: fields}
	default:
		return wireValue{Kind: "string", Str: v.Display()}
	}
}

func decodeValue(w wireValue) (types.NodeValue, error) {
	switch w.Kind {
	case "u32":
		return types.NewU32(w.U32), nil
	case "i32":
		return types.NewI32(w.I32), nil
	case "f32":
		return types.NewF32(w.F32), nil
	case "string":
		return types.NewString(w.Str), nil
	case "bool":
		return types.NewBool(w.Bool), nil
	case "binary":
		raw, err := base64.StdEncoding.DecodeString(w.Binary)
		if err != nil {
			return types.NodeValue{}, fmt.Errorf("decode binary value: %w", err)
		}
		return types.NewBinary(raw), nil
	case "list":
		items := make([]types.NodeValue, len(w.List))
		for i, e := range w.List {
			v, err := decodeValue(e)
			if err != nil {
				return types.NodeValue{}, err
			}
			items[i] = v
		}
		return types.NewList(items), nil
	case "record":
		fields := make([]types.NodeValueField, len(w.Record))
		for i, f := range w.Record {
			v, err := decodeValue(f.Value)
			if err != nil {
				return types.NodeValue{}, err
			}
			fields[i] = types.NodeValueField{Name: f.Name, Value: v}
		}
		return types.NewRecord(fields...), nil
	default:
		return types.NodeValue{}, fmt.Errorf("unknown wire value kind %q", w.Kind)
	}
}

// wireType is the JSON encoding of a types.DataType, used only inside
// wireMetadata's port declarations.
type wireType struct {
	Kind   string        `json:"kind"`
	Elem   *wireType     `json:"elem,omitempty"`
	Fields []wireTypeFld `json:"fields,omitempty"`
}

type wireTypeFld struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
}

func encodeType(t types.DataType) wireType {
	switch t.Kind {
	case types.KindList:
		elem := encodeType(*t.Elem)
		return wireType{Kind: "list", Elem: &elem}
	case types.KindRecord:
		fields := make([]wireTypeFld, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = wireTypeFld{Name: f.Name, Type: encodeType(f.Type)}
		}
		return wireType{Kind: "record", Fields: fields}
	default:
		return wireType{Kind: t.Kind.String()}
	}
}

func decodeType(w wireType) (types.DataType, error) {
	switch w.Kind {
	case "U32":
		return types.U32(), nil
	case "I32":
		return types.I32(), nil
	case "F32":
		return types.F32(), nil
	case "String":
		return types.String(), nil
	case "Bool":
		return types.Bool(), nil
	case "Binary":
		return types.Binary(), nil
	case "Any":
		return types.Any(), nil
	case "list":
		if w.Elem == nil {
			return types.DataType{}, fmt.Errorf("list type missing elem")
		}
		elem, err := decodeType(*w.Elem)
		if err != nil {
			return types.DataType{}, err
		}
		return types.List(elem), nil
	case "record":
		fields := make([]types.RecordField, len(w.Fields))
		for i, f := range w.Fields {
			ft, err := decodeType(f.Type)
			if err != nil {
				return types.DataType{}, err
			}
			fields[i] = types.RecordField{Name: f.Name, Type: ft}
		}
		return types.Record(fields...), nil
	default:
		return types.DataType{}, fmt.Errorf("unknown wire type kind %q", w.Kind)
	}
}

// wirePortSpec is the JSON encoding of one declared port in a guest's
// metadata_get_info() response.
type wirePortSpec struct {
	Name     string   `json:"name"`
	Type     wireType `json:"type"`
	Optional bool     `json:"optional,omitempty"`
}

// wireMetadata is the JSON shape returned by a guest's metadata_get_info()
// export (§4.4 "extracts declared metadata via the component's metadata
// interface").
type wireMetadata struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Description  string         `json:"description"`
	Author       string         `json:"author"`
	Category     string         `json:"category"`
	Inputs       []wirePortSpec `json:"inputs"`
	Outputs      []wirePortSpec `json:"outputs"`
	Capabilities []string       `json:"capabilities"`
}

func decodeMetadata(raw []byte) (wireMetadata, error) {
	var m wireMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return wireMetadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

func portSpecsFrom(wps []wirePortSpec, dir types.PortDirection) ([]types.PortSpec, error) {
	specs := make([]types.PortSpec, len(wps))
	for i, wp := range wps {
		t, err := decodeType(wp.Type)
		if err != nil {
			return nil, fmt.Errorf("port %q: %w", wp.Name, err)
		}
		specs[i] = types.PortSpec{Name: wp.Name, Type: t, Direction: dir, Optional: wp.Optional}
	}
	return specs, nil
}

// wireExecuteRequest is the JSON payload written into guest memory before
// calling execution_execute.
type wireExecuteRequest struct {
	Inputs map[string]wireValue `json:"inputs"`
}

// wireExecuteResponse is the JSON payload a guest writes back: either
// Outputs or Error is populated, never both.
type wireExecuteResponse struct {
	Outputs map[string]wireValue  `json:"outputs,omitempty"`
	Error   *wireExecutionFailure `json:"error,omitempty"`
}

// wireExecutionFailure mirrors the guest's typed ExecutionError (§4.4 step
// 3: "guest returns either an ordered (name, Value) list or a typed
// ExecutionError{message, input_name?, recovery_hint?}").
type wireExecutionFailure struct {
	Message      string `json:"message"`
	InputName    string `json:"input_name,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func encodeInputs(inputs map[string]types.NodeValue) ([]byte, error) {
	wired := make(map[string]wireValue, len(inputs))
	for name, v := range inputs {
		wired[name] = encodeValue(v)
	}
	return json.Marshal(wireExecuteRequest{Inputs: wired})
}

func decodeOutputs(raw []byte) (map[string]types.NodeValue, error) {
	var resp wireExecuteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode execute response: %w", err)
	}
	if resp.Error != nil {
		detail := resp.Error.Message
		if resp.Error.RecoveryHint != "" {
			detail += " (hint: " + resp.Error.RecoveryHint + ")"
		}
		we := types.NewError(types.ErrGuestFailure, detail)
		we.PortName = resp.Error.InputName
		return nil, we
	}
	outputs := make(map[string]types.NodeValue, len(resp.Outputs))
	for name, w := range resp.Outputs {
		v, err := decodeValue(w)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}
		outputs[name] = v
	}
	return outputs, nil
}

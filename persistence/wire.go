package persistence

import (
	"fmt"

	"github.com/wasmflow/wasmflow/types"
)

// wireGraph is the JSON-shaped mirror of types.NodeGraph. persistence
// cannot import host (dependency order: persistence depends only on
// typesys), so this is a self-contained copy of the value/type wire
// encoding host/wire.go also defines, scoped to the save-format boundary.
type wireGraph struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	Metadata      wireGraphMetadata         `json:"metadata"`
	SchemaVersion uint32                    `json:"schema_version"`
	Nodes         map[string]wireNode       `json:"nodes"`
	Connections   []wireConnection          `json:"connections"`
	Grants        map[string]wireGrant      `json:"grants,omitempty"`
}

type wireGraphMetadata struct {
	Author      string `json:"author,omitempty"`
	Created     string `json:"created,omitempty"`
	Modified    string `json:"modified,omitempty"`
	Description string `json:"description,omitempty"`
}

type wireConnection struct {
	ID       string `json:"id"`
	FromNode string `json:"from_node"`
	FromPort string `json:"from_port"`
	ToNode   string `json:"to_node"`
	ToPort   string `json:"to_port"`
}

type wireGrant struct {
	NodeID    string `json:"node_id"`
	Set       wireCapabilitySet `json:"set"`
	GrantedAt string `json:"granted_at,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

type wireCapabilitySet struct {
	Kind  string   `json:"kind"`
	Paths []string `json:"paths,omitempty"`
	Hosts []string `json:"hosts,omitempty"`
}

type wireNode struct {
	ID                   string              `json:"id"`
	ComponentID          string              `json:"component_id"`
	DisplayName          string              `json:"display_name"`
	Position             wirePosition        `json:"position"`
	Inputs               []wirePort          `json:"inputs"`
	Outputs              []wirePort          `json:"outputs"`
	RequiredCapabilities wireCapabilitySet   `json:"required_capabilities"`
	Configuration        types.Configuration `json:"configuration,omitempty"`
	// State and Dirty are the node's persisted execution state (§3: "a
	// dirty flag"), not the continuous-worker runtime_state that §4.7/§8
	// reset on load — those live only in continuous.Manager and never touch
	// GraphNode at all.
	State        string           `json:"state"`
	Dirty        bool             `json:"dirty"`
	Creator      *wireCreator     `json:"creator,omitempty"`
	Continuous   *wireContinuous  `json:"continuous,omitempty"`
	Composition  *wireComposition `json:"composition,omitempty"`
}

type wirePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wirePort struct {
	Name         string     `json:"name"`
	Type         wireType   `json:"type"`
	Direction    string     `json:"direction"`
	Optional     bool       `json:"optional,omitempty"`
	CurrentValue *wireValue `json:"current_value,omitempty"`
}

type wireCreator struct {
	SourceCode           string `json:"source_code,omitempty"`
	SaveCode             bool   `json:"save_code"`
	State                string `json:"state"`
	CompiledComponentID  string `json:"compiled_component_id,omitempty"`
	CompileError         string `json:"compile_error,omitempty"`
}

type wireContinuous struct {
	IntervalMillis uint64 `json:"interval_millis"`
	AutoStart      bool   `json:"auto_start"`
}

// wireComposition mirrors types.CompositionData. InternalGraph is encoded
// recursively through the same wireGraph shape.
type wireComposition struct {
	InternalGraph   *wireGraph        `json:"internal_graph"`
	ExposedInputs   []wirePortMapping `json:"exposed_inputs"`
	ExposedOutputs  []wirePortMapping `json:"exposed_outputs"`
	SocketNodeID    string            `json:"socket_node_id"`
	PlugNodeIDs     []string          `json:"plug_node_ids"`
	CompositionHash uint64            `json:"composition_hash"`
}

type wirePortMapping struct {
	BoundaryName string `json:"boundary_name"`
	InternalNode string `json:"internal_node"`
	InternalPort string `json:"internal_port"`
}

// wireValue/wireType mirror types.NodeValue/types.DataType's tagged-union
// shape as explicit JSON objects rather than relying on interface{}
// round-tripping, so a corrupted or hand-edited save file fails decoding
// predictably instead of silently losing the discriminant.
type wireValue struct {
	Kind   string          `json:"kind"`
	U32    uint32          `json:"u32,omitempty"`
	I32    int32           `json:"i32,omitempty"`
	F32    float32         `json:"f32,omitempty"`
	Str    string          `json:"str,omitempty"`
	Bool   bool            `json:"bool,omitempty"`
	Binary []byte          `json:"binary,omitempty"`
	List   []wireValue     `json:"list,omitempty"`
	Record []wireValueField `json:"record,omitempty"`
}

type wireValueField struct {
	Name  string    `json:"name"`
	Value wireValue `json:"value"`
}

type wireType struct {
	Kind   string         `json:"kind"`
	Elem   *wireType      `json:"elem,omitempty"`
	Fields []wireTypeField `json:"fields,omitempty"`
}

type wireTypeField struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
}

func dataKindName(k types.DataKind) string {
	return k.String()
}

func parseDataKind(s string) (types.DataKind, error) {
	switch s {
	case "U32":
		return types.KindU32, nil
	case "I32":
		return types.KindI32, nil
	case "F32":
		return types.KindF32, nil
	case "String":
		return types.KindString, nil
	case "Bool":
		return types.KindBool, nil
	case "Binary":
		return types.KindBinary, nil
	case "List":
		return types.KindList, nil
	case "Record":
		return types.KindRecord, nil
	case "Any":
		return types.KindAny, nil
	default:
		return 0, fmt.Errorf("persistence: unknown data kind %q", s)
	}
}

func encodeType(t types.DataType) wireType {
	wt := wireType{Kind: dataKindName(t.Kind)}
	if t.Elem != nil {
		e := encodeType(*t.Elem)
		wt.Elem = &e
	}
	for _, f := range t.Fields {
		wt.Fields = append(wt.Fields, wireTypeField{Name: f.Name, Type: encodeType(f.Type)})
	}
	return wt
}

func decodeType(wt wireType) (types.DataType, error) {
	kind, err := parseDataKind(wt.Kind)
	if err != nil {
		return types.DataType{}, err
	}
	dt := types.DataType{Kind: kind}
	if wt.Elem != nil {
		elem, err := decodeType(*wt.Elem)
		if err != nil {
			return types.DataType{}, err
		}
		dt.Elem = &elem
	}
	for _, f := range wt.Fields {
		ft, err := decodeType(f.Type)
		if err != nil {
			return types.DataType{}, err
		}
		dt.Fields = append(dt.Fields, types.RecordField{Name: f.Name, Type: ft})
	}
	return dt, nil
}

func encodeValue(v types.NodeValue) wireValue {
	wv := wireValue{
		Kind: dataKindName(v.Kind),
		U32:  v.U32,
		I32:  v.I32,
		F32:  v.F32,
		Str:  v.Str,
		Bool: v.Bool,
	}
	if len(v.Binary) > 0 {
		wv.Binary = append([]byte(nil), v.Binary...)
	}
	for _, e := range v.List {
		wv.List = append(wv.List, encodeValue(e))
	}
	for _, f := range v.Record {
		wv.Record = append(wv.Record, wireValueField{Name: f.Name, Value: encodeValue(f.Value)})
	}
	return wv
}

func decodeValue(wv wireValue) (types.NodeValue, error) {
	kind, err := parseDataKind(wv.Kind)
	if err != nil {
		return types.NodeValue{}, err
	}
	v := types.NodeValue{Kind: kind, U32: wv.U32, I32: wv.I32, F32: wv.F32, Str: wv.Str, Bool: wv.Bool, Binary: wv.Binary}
	for _, e := range wv.List {
		dv, err := decodeValue(e)
		if err != nil {
			return types.NodeValue{}, err
		}
		v.List = append(v.List, dv)
	}
	for _, f := range wv.Record {
		dv, err := decodeValue(f.Value)
		if err != nil {
			return types.NodeValue{}, err
		}
		v.Record = append(v.Record, types.NodeValueField{Name: f.Name, Value: dv})
	}
	return v, nil
}

func executionStateName(s types.ExecutionState) string {
	return s.String()
}

// parseExecutionState defaults an absent state (the empty string — e.g. a
// legacy save from before this field existed) to Idle, the same default
// NewGraphNode gives an unexecuted node, rather than rejecting the file.
func parseExecutionState(s string) (types.ExecutionState, error) {
	switch s {
	case "", "Idle":
		return types.StateIdle, nil
	case "Running":
		return types.StateRunning, nil
	case "Completed":
		return types.StateCompleted, nil
	case "Failed":
		return types.StateFailed, nil
	default:
		return 0, fmt.Errorf("persistence: unknown execution state %q", s)
	}
}

func portDirectionName(d types.PortDirection) string {
	if d == types.PortOutput {
		return "output"
	}
	return "input"
}

func parsePortDirection(s string) types.PortDirection {
	if s == "output" {
		return types.PortOutput
	}
	return types.PortInput
}

func capabilityKindName(k types.CapabilityKind) string {
	return k.String()
}

func parseCapabilityKind(s string) (types.CapabilityKind, error) {
	switch s {
	case "None":
		return types.CapabilityNone, nil
	case "FileRead":
		return types.CapabilityFileRead, nil
	case "FileWrite":
		return types.CapabilityFileWrite, nil
	case "Network":
		return types.CapabilityNetwork, nil
	case "Full":
		return types.CapabilityFull, nil
	default:
		return 0, fmt.Errorf("persistence: unknown capability kind %q", s)
	}
}

func encodeCapabilitySet(c types.CapabilitySet) wireCapabilitySet {
	return wireCapabilitySet{Kind: capabilityKindName(c.Kind), Paths: c.Paths, Hosts: c.Hosts}
}

func decodeCapabilitySet(w wireCapabilitySet) (types.CapabilitySet, error) {
	kind, err := parseCapabilityKind(w.Kind)
	if err != nil {
		return types.CapabilitySet{}, err
	}
	return types.CapabilitySet{Kind: kind, Paths: w.Paths, Hosts: w.Hosts}, nil
}

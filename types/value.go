package types

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// NodeValue is a tagged value drawn from the same variant set as DataType.
// It is the runtime counterpart of DataType: every port's current_value and
// every value crossing the guest ABI (§6) is one of these.
type NodeValue struct {
	Kind DataKind

	U32    uint32
	I32    int32
	F32    float32
	Str    string
	Bool   bool
	Binary []byte
	List   []NodeValue
	Record []NodeValueField
}

// NodeValueField is one named slot of a Record NodeValue.
type NodeValueField struct {
	Name  string
	Value NodeValue
}

func NewU32(v uint32) NodeValue    { return NodeValue{Kind: KindU32, U32: v} }
func NewI32(v int32) NodeValue     { return NodeValue{Kind: KindI32, I32: v} }
func NewF32(v float32) NodeValue   { return NodeValue{Kind: KindF32, F32: v} }
func NewString(v string) NodeValue { return NodeValue{Kind: KindString, Str: v} }
func NewBool(v bool) NodeValue     { return NodeValue{Kind: KindBool, Bool: v} }
func NewBinary(v []byte) NodeValue { return NodeValue{Kind: KindBinary, Binary: v} }
func NewList(v []NodeValue) NodeValue {
	return NodeValue{Kind: KindList, List: v}
}
func NewRecord(fields ...NodeValueField) NodeValue {
	return NodeValue{Kind: KindRecord, Record: fields}
}

// Type returns the DataType this value was produced as, used by the host and
// engine to validate guest outputs against a component's declared port types.
func (v NodeValue) Type() DataType {
	switch v.Kind {
	case KindList:
		if len(v.List) == 0 {
			return List(Any())
		}
		elem := v.List[0].Type()
		return List(elem)
	case KindRecord:
		fields := make([]RecordField, len(v.Record))
		for i, f := range v.Record {
			fields[i] = RecordField{Name: f.Name, Type: f.Value.Type()}
		}
		return Record(fields...)
	default:
		return DataType{Kind: v.Kind}
	}
}

// Display formats the value for UI/logging purposes.
func (v NodeValue) Display() string {
	switch v.Kind {
	case KindU32:
		return fmt.Sprintf("%d", v.U32)
	case KindI32:
		return fmt.Sprintf("%d", v.I32)
	case KindF32:
		return fmt.Sprintf("%g", v.F32)
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindBinary:
		return fmt.Sprintf("<%d bytes>", len(v.Binary))
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.Display()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindRecord:
		parts := make([]string, len(v.Record))
		for i, f := range v.Record {
			parts[i] = f.Name + "=" + f.Value.Display()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<any>"
	}
}

// hashValue deterministically mixes v into h. F32 is hashed via its raw bit
// pattern (math.Float32bits) rather than its textual or floating
// representation, so memoization is sensitive to the exact bits produced
// upstream — a NaN payload difference invalidates the cache deterministically
// per §9 "Floating-point determinism".
func hashValue(h *uint64, v NodeValue) {
	mix := func(x uint64) {
		// FNV-1a style mix, 64-bit.
		*h ^= x
		*h *= 1099511628211
	}
	mix(uint64(v.Kind))
	switch v.Kind {
	case KindU32:
		mix(uint64(v.U32))
	case KindI32:
		mix(uint64(uint32(v.I32)))
	case KindF32:
		mix(uint64(math.Float32bits(v.F32)))
	case KindString:
		mixString(mix, v.Str)
	case KindBool:
		if v.Bool {
			mix(1)
		} else {
			mix(0)
		}
	case KindBinary:
		for _, b := range v.Binary {
			mix(uint64(b))
		}
	case KindList:
		mix(uint64(len(v.List)))
		for _, e := range v.List {
			hashValue(h, e)
		}
	case KindRecord:
		mix(uint64(len(v.Record)))
		for _, f := range v.Record {
			mixString(mix, f.Name)
			hashValue(h, f.Value)
		}
	}
}

func mixString(mix func(uint64), s string) {
	mix(uint64(len(s)))
	for i := 0; i < len(s); i++ {
		mix(uint64(s[i]))
	}
}

// InputHash computes a deterministic digest over a node's assembled input
// port values, sorted by port name, per the memoization contract in §4.3:
// "a deterministic hash over (input-port-name, value) pairs sorted by name".
func InputHash(inputs map[string]NodeValue) uint64 {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	var h uint64 = 1469598103934665603 // FNV-1a 64-bit offset basis
	for _, name := range names {
		mixString(func(x uint64) {
			h ^= x
			h *= 1099511628211
		}, name)
		hashValue(&h, inputs[name])
	}
	return h
}

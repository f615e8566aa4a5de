package types

import "fmt"

// DataType is the closed set of port types a connection may carry. It is a
// sum type encoded as a tagged struct rather than a Go interface so that
// equality and structural compatibility checks (List<T>, Record fields)
// don't require type assertions at every call site.
type DataType struct {
	Kind DataKind
	// Elem is the element type for Kind == KindList.
	Elem *DataType
	// Fields is the ordered field list for Kind == KindRecord.
	Fields []RecordField
}

// DataKind enumerates the primitive and compound shapes a DataType may take.
type DataKind int

const (
	KindU32 DataKind = iota
	KindI32
	KindF32
	KindString
	KindBool
	KindBinary
	KindList
	KindRecord
	KindAny
)

func (k DataKind) String() string {
	switch k {
	case KindU32:
		return "U32"
	case KindI32:
		return "I32"
	case KindF32:
		return "F32"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindBinary:
		return "Binary"
	case KindList:
		return "List"
	case KindRecord:
		return "Record"
	case KindAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// RecordField is one (name, type) pair of a Record<(Name, DataType)*>.
type RecordField struct {
	Name string
	Type DataType
}

// Convenience constructors for the primitive kinds.
func U32() DataType    { return DataType{Kind: KindU32} }
func I32() DataType    { return DataType{Kind: KindI32} }
func F32() DataType    { return DataType{Kind: KindF32} }
func String() DataType { return DataType{Kind: KindString} }
func Bool() DataType   { return DataType{Kind: KindBool} }
func Binary() DataType { return DataType{Kind: KindBinary} }
func Any() DataType    { return DataType{Kind: KindAny} }

// List builds a List<elem> DataType.
func List(elem DataType) DataType {
	e := elem
	return DataType{Kind: KindList, Elem: &e}
}

// Record builds a Record<(Name, DataType)*> DataType. Field order is
// significant for structural comparison, matching a connection's type
// compatibility rule for records (§3).
func Record(fields ...RecordField) DataType {
	return DataType{Kind: KindRecord, Fields: fields}
}

// String renders the DataType for diagnostics and UI display.
func (t DataType) String() string {
	switch t.Kind {
	case KindList:
		if t.Elem == nil {
			return "List<?>"
		}
		return fmt.Sprintf("List<%s>", t.Elem.String())
	case KindRecord:
		s := "Record<"
		for i, f := range t.Fields {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%s:%s", f.Name, f.Type.String())
		}
		return s + ">"
	default:
		return t.Kind.String()
	}
}

// IsCompatible reports whether a value of type src may be connected to a
// port of type dst, per the compatibility rule in §3:
//   - Any on either side is compatible with anything.
//   - Primitives match by identity.
//   - List<T> matches List<U> iff T is compatible with U.
//   - Records match structurally: same ordered (name, compatible-type) pairs.
func (src DataType) IsCompatible(dst DataType) bool {
	if src.Kind == KindAny || dst.Kind == KindAny {
		return true
	}
	if src.Kind != dst.Kind {
		return false
	}
	switch src.Kind {
	case KindList:
		if src.Elem == nil || dst.Elem == nil {
			return false
		}
		return src.Elem.IsCompatible(*dst.Elem)
	case KindRecord:
		if len(src.Fields) != len(dst.Fields) {
			return false
		}
		for i := range src.Fields {
			if src.Fields[i].Name != dst.Fields[i].Name {
				return false
			}
			if !src.Fields[i].Type.IsCompatible(dst.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

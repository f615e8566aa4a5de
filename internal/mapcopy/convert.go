// Package mapcopy converts between types.NodeValue and plain Go values
// (map[string]any, []any, scalars), the shape goja and expr-lang both want
// for their environments. It is kept internal since the conversion is an
// implementation detail of the builtin script components, not part of the
// public domain model.
package mapcopy

import "github.com/wasmflow/wasmflow/types"

// ToAny converts a NodeValue into a plain Go value suitable for handing to
// a goja or expr-lang environment.
func ToAny(v types.NodeValue) any {
	switch v.Kind {
	case types.KindU32:
		return v.U32
	case types.KindI32:
		return v.I32
	case types.KindF32:
		return float64(v.F32)
	case types.KindString:
		return v.Str
	case types.KindBool:
		return v.Bool
	case types.KindBinary:
		return v.Binary
	case types.KindList:
		out := make([]any, len(v.List))
		for i, e := range v.List {
			out[i] = ToAny(e)
		}
		return out
	case types.KindRecord:
		out := make(map[string]any, len(v.Record))
		for _, f := range v.Record {
			out[f.Name] = ToAny(f.Value)
		}
		return out
	default:
		return nil
	}
}

// InputsToEnv converts a full input map into a map[string]any environment,
// the shape expr-lang's vm.Run and a goja script's "data" parameter expect.
func InputsToEnv(inputs map[string]types.NodeValue) map[string]any {
	env := make(map[string]any, len(inputs))
	for k, v := range inputs {
		env[k] = ToAny(v)
	}
	return env
}

// FromAny converts a plain Go value back into a NodeValue, inferring the
// closest DataKind. Integers decode as I32, floating-point as F32 (through
// a float32 narrowing — scripts dealing in wider precision should stay
// within float32's range, since F32 is the only floating port type in the
// graph's type system per §3).
func FromAny(v any) types.NodeValue {
	switch val := v.(type) {
	case nil:
		return types.NewString("")
	case bool:
		return types.NewBool(val)
	case string:
		return types.NewString(val)
	case int:
		return types.NewI32(int32(val))
	case int32:
		return types.NewI32(val)
	case int64:
		return types.NewI32(int32(val))
	case uint32:
		return types.NewU32(val)
	case float32:
		return types.NewF32(val)
	case float64:
		return types.NewF32(float32(val))
	case []byte:
		return types.NewBinary(val)
	case []any:
		out := make([]types.NodeValue, len(val))
		for i, e := range val {
			out[i] = FromAny(e)
		}
		return types.NewList(out)
	case map[string]any:
		fields := make([]types.NodeValueField, 0, len(val))
		for k, fv := range val {
			fields = append(fields, types.NodeValueField{Name: k, Value: FromAny(fv)})
		}
		return types.NewRecord(fields...)
	default:
		return types.NewString("")
	}
}

package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasmflow/wasmflow/types"
)

// guestExecutor is the types.Executor the engine calls for a UserDefined
// node. Every call gets its own instance (§4.4 "Resource table. Owned by
// the call. The table is dropped at call end") so guests cannot leak state
// between unrelated nodes or graph executions.
type guestExecutor struct {
	host     *Host
	compiled wazero.CompiledModule
	spec     types.ComponentSpec
}

var _ types.Executor = (*guestExecutor)(nil)

func (g *guestExecutor) Execute(ctx context.Context, inputs map[string]types.NodeValue, grant types.CapabilitySet) (map[string]types.NodeValue, error) {
	if !grant.Satisfies(g.spec.RequiredCapabilities) {
		return nil, types.NewError(types.ErrCapabilityDenied, "grant does not satisfy "+g.spec.ID+"'s required capabilities")
	}

	name := g.host.nextInstanceName()
	g.host.grants.Store(name, grant)
	defer g.host.grants.Delete(name)

	inst, err := g.host.runtime.InstantiateModule(ctx, g.compiled, moduleConfigForGrant(name, grant))
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "instantiate guest", err)
	}
	defer inst.Close(ctx)

	payload, err := encodeInputs(inputs)
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "encode inputs", err)
	}

	alloc := inst.ExportedFunction("alloc")
	if alloc == nil {
		return nil, types.NewError(types.ErrInvalidComponent, "missing alloc export")
	}
	allocRes, err := alloc.Call(ctx, uint64(len(payload)))
	if err != nil || len(allocRes) == 0 {
		return nil, types.WrapError(types.ErrGuestFailure, "alloc input buffer", err)
	}
	inPtr := uint32(allocRes[0])
	if !inst.Memory().Write(inPtr, payload) {
		return nil, types.NewError(types.ErrGuestFailure, "write input buffer out of bounds")
	}

	execute := inst.ExportedFunction("execution_execute")
	if execute == nil {
		return nil, types.NewError(types.ErrInvalidComponent, "missing execution_execute export")
	}
	res, err := execute.Call(ctx, uint64(inPtr), uint64(len(payload)))
	freeGuestBytes(ctx, inst, inPtr, uint32(len(payload)))
	if err != nil {
		return nil, types.WrapError(types.ErrGuestFailure, "call execution_execute", err)
	}
	if len(res) < 2 {
		return nil, types.NewError(types.ErrInvalidComponent, "execution_execute must return (ptr, len)")
	}

	outPtr, outLen := uint32(res[0]), uint32(res[1])
	raw, ok := readGuestBytes(inst, outPtr, outLen)
	if !ok {
		return nil, types.NewError(types.ErrGuestFailure, "execution_execute returned an out-of-bounds region")
	}
	freeGuestBytes(ctx, inst, outPtr, outLen)

	outputs, err := decodeOutputs(raw)
	if err != nil {
		return nil, err
	}
	return validateOutputs(g.spec, outputs)
}

// validateOutputs enforces §4.4 step 4: "Demarshal outputs, validate names
// and types against the component spec, and return."
func validateOutputs(spec types.ComponentSpec, outputs map[string]types.NodeValue) (map[string]types.NodeValue, error) {
	for _, p := range spec.Outputs {
		v, ok := outputs[p.Name]
		if !ok {
			if p.Optional {
				continue
			}
			return nil, types.NewError(types.ErrInvalidComponent, "guest did not return declared output "+p.Name)
		}
		if !v.Type().IsCompatible(p.Type) {
			return nil, types.NewError(types.ErrTypeMismatch, "guest output "+p.Name+" has type "+v.Type().String()+", declared "+p.Type.String())
		}
	}
	return outputs, nil
}

func readGuestBytes(mod api.Module, ptr, length uint32) ([]byte, bool) {
	buf, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, true
}

func freeGuestBytes(ctx context.Context, mod api.Module, ptr, length uint32) {
	dealloc := mod.ExportedFunction("dealloc")
	if dealloc == nil {
		return
	}
	_, _ = dealloc.Call(ctx, uint64(ptr), uint64(length))
}

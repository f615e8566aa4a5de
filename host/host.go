package host

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wasmflow/wasmflow/types"
)

// Host owns the wazero runtime shared by every loaded component, plus the
// host-importable modules ("host", "wasmflow") guests link against.
type Host struct {
	runtime wazero.Runtime
	logger  types.Logger

	grants  sync.Map // instance name (string) -> types.CapabilitySet
	callSeq uint64
}

// New constructs a Host with a fresh wazero runtime, WASI preview1 wired in,
// and the host-importable modules registered.
func New(ctx context.Context, logger types.Logger) (*Host, error) {
	if logger == nil {
		logger = types.DefaultLogger()
	}
	r := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi_snapshot_preview1: %w", err)
	}

	h := &Host{runtime: r, logger: logger}
	if err := h.buildHostModules(ctx); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate host modules: %w", err)
	}
	return h, nil
}

// Close releases the underlying wazero runtime and every compiled module
// cached against it.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

func (h *Host) grantFor(instanceName string) types.CapabilitySet {
	v, ok := h.grants.Load(instanceName)
	if !ok {
		return types.NoneCapability()
	}
	return v.(types.CapabilitySet)
}

func (h *Host) nextInstanceName() string {
	n := atomic.AddUint64(&h.callSeq, 1)
	return fmt.Sprintf("wasmflow-guest-%d", n)
}

// LoadComponent parses a component binary's declared metadata and returns
// a ComponentSpec plus an Executor bound to it, per §4.4 "load_component(path)
// -> ComponentSpec". The returned ComponentSpec's Kind is always
// UserDefined(path); malformed binaries or missing required exports fail
// with ErrInvalidComponent.
//
// The returned spec's ID is left unset: LoadComponent only decodes the
// binary, it does not register it. Per §4.1 "Dynamic registration", turning
// this into a live catalog entry — assigning the user:{name} id, detecting
// replacement, flagging needs_component_refresh — is
// registry.Registry.RegisterUserComponent's job, called with meta.Name (here
// surfaced as spec.Name) and this spec/executor pair.
func (h *Host) LoadComponent(ctx context.Context, path string) (types.ComponentSpec, types.Executor, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return types.ComponentSpec{}, nil, types.WrapError(types.ErrInvalidComponent, "read component binary", err)
	}

	compiled, err := h.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return types.ComponentSpec{}, nil, types.WrapError(types.ErrInvalidComponent, "compile component binary", err)
	}

	meta, err := h.readMetadata(ctx, compiled)
	if err != nil {
		return types.ComponentSpec{}, nil, err
	}

	inputs, err := portSpecsFrom(meta.Inputs, types.PortInput)
	if err != nil {
		return types.ComponentSpec{}, nil, types.WrapError(types.ErrInvalidComponent, "decode declared inputs", err)
	}
	outputs, err := portSpecsFrom(meta.Outputs, types.PortOutput)
	if err != nil {
		return types.ComponentSpec{}, nil, types.WrapError(types.ErrInvalidComponent, "decode declared outputs", err)
	}

	spec := types.ComponentSpec{
		Name:                 meta.Name,
		Description:          meta.Description,
		Author:               meta.Author,
		Version:              meta.Version,
		Kind:                 types.UserDefinedKind(path),
		Inputs:               inputs,
		Outputs:              outputs,
		RequiredCapabilities: types.MergeCapabilityTokens(meta.Capabilities),
		Category:             meta.Category,
	}

	return spec, &guestExecutor{host: h, compiled: compiled, spec: spec}, nil
}

// readMetadata spins up a throwaway, capability-less instance of the
// compiled module solely to call its metadata_get_info export.
func (h *Host) readMetadata(ctx context.Context, compiled wazero.CompiledModule) (wireMetadata, error) {
	name := h.nextInstanceName()
	cfg := moduleConfigForGrant(name, types.NoneCapability())
	inst, err := h.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return wireMetadata{}, types.WrapError(types.ErrInvalidComponent, "instantiate for metadata", err)
	}
	defer inst.Close(ctx)

	fn := inst.ExportedFunction("metadata_get_info")
	if fn == nil {
		return wireMetadata{}, types.NewError(types.ErrInvalidComponent, "missing metadata_get_info export")
	}
	res, err := fn.Call(ctx)
	if err != nil {
		return wireMetadata{}, types.WrapError(types.ErrInvalidComponent, "call metadata_get_info", err)
	}
	if len(res) < 2 {
		return wireMetadata{}, types.NewError(types.ErrInvalidComponent, "metadata_get_info must return (ptr, len)")
	}

	raw, ok := readGuestBytes(inst, uint32(res[0]), uint32(res[1]))
	if !ok {
		return wireMetadata{}, types.NewError(types.ErrInvalidComponent, "metadata_get_info returned an out-of-bounds region")
	}
	freeGuestBytes(ctx, inst, uint32(res[0]), uint32(res[1]))

	meta, err := decodeMetadata(raw)
	if err != nil {
		return wireMetadata{}, types.WrapError(types.ErrInvalidComponent, "decode metadata", err)
	}
	return meta, nil
}

package host

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasmflow/wasmflow/types"
)

// buildHostModules registers the two host-importable modules every guest
// may link against: "host" (the thin host.log surface from §4.4) and
// "wasmflow" (a capability-gated outgoing-HTTP surface standing in for the
// Component Model's WASI-HTTP-outgoing import, which wazero's stable public
// API does not yet expose — see doc.go).
func (h *Host) buildHostModules(ctx context.Context) error {
	if _, err := h.runtime.NewHostModuleBuilder("host").
		NewFunctionBuilder().
		WithFunc(h.hostLog).
		Export("log").
		Instantiate(ctx); err != nil {
		return err
	}

	_, err := h.runtime.NewHostModuleBuilder("wasmflow").
		NewFunctionBuilder().
		WithFunc(h.netHTTPFetch).
		Export("net_http_fetch").
		Instantiate(ctx)
	return err
}

// hostLog backs host.log(level, msgPtr, msgLen): a guest writes its message
// into its own memory and passes the pointer/length here.
func (h *Host) hostLog(ctx context.Context, mod api.Module, level uint32, msgPtr, msgLen uint32) {
	buf, ok := mod.Memory().Read(msgPtr, msgLen)
	if !ok {
		return
	}
	h.logger.Printf("guest[level=%d]: %s", level, string(buf))
}

// netHTTPFetch backs wasmflow.net_http_fetch(hostPtr, hostLen, pathPtr,
// pathLen) -> (ptr, len): an outgoing GET gated by the calling instance's
// granted CapabilitySet, per §4.4 "Capability enforcement ... A network
// request is permitted iff the request's host matches at least one
// host-pattern in the grant". Denials and transport failures both come
// back as a JSON error body so the guest can surface a normal
// ExecutionError rather than trapping.
func (h *Host) netHTTPFetch(ctx context.Context, mod api.Module, hostPtr, hostLen, pathPtr, pathLen uint32) (uint32, uint32) {
	hostBytes, ok := mod.Memory().Read(hostPtr, hostLen)
	if !ok {
		return h.writeErrorToGuest(ctx, mod, "invalid host buffer")
	}
	pathBytes, ok := mod.Memory().Read(pathPtr, pathLen)
	if !ok {
		return h.writeErrorToGuest(ctx, mod, "invalid path buffer")
	}
	targetHost := string(hostBytes)

	grant := h.grantFor(mod.Name())
	if !grant.AllowsHost(targetHost) {
		return h.writeErrorToGuest(ctx, mod, "capability denied for host "+targetHost)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+targetHost+string(pathBytes), nil)
	if err != nil {
		return h.writeErrorToGuest(ctx, mod, "build request: "+err.Error())
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return h.writeErrorToGuest(ctx, mod, "fetch failed: "+err.Error())
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return h.writeErrorToGuest(ctx, mod, "read response: "+err.Error())
	}
	return h.writeToGuest(ctx, mod, body)
}

func (h *Host) writeErrorToGuest(ctx context.Context, mod api.Module, msg string) (uint32, uint32) {
	return h.writeToGuest(ctx, mod, []byte(`{"error":"`+msg+`"}`))
}

func (h *Host) writeToGuest(ctx context.Context, mod api.Module, data []byte) (uint32, uint32) {
	alloc := mod.ExportedFunction("alloc")
	if alloc == nil {
		return 0, 0
	}
	res, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil || len(res) == 0 {
		return 0, 0
	}
	ptr := uint32(res[0])
	if !mod.Memory().Write(ptr, data) {
		return 0, 0
	}
	return ptr, uint32(len(data))
}

// moduleConfigForGrant builds the per-call sandbox (§4.4 "Construct a
// per-call component state holding ... a WASI context configured from
// grant: empty pre-opens for None/pure; restricted pre-opens for
// FileRead/FileWrite; host filter for Network; unrestricted for Full").
// The network host filter itself lives in netHTTPFetch, keyed by instance
// name via grantFor; this only handles the filesystem pre-opens WASI
// actually supports.
func moduleConfigForGrant(name string, grant types.CapabilitySet) wazero.ModuleConfig {
	cfg := wazero.NewModuleConfig().
		WithName(name).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithSysNanotime().
		WithSysWalltime()

	switch grant.Kind {
	case types.CapabilityFileRead:
		fsCfg := wazero.NewFSConfig()
		for _, p := range grant.Paths {
			fsCfg = fsCfg.WithReadOnlyDirMount(p, p)
		}
		cfg = cfg.WithFSConfig(fsCfg)
	case types.CapabilityFileWrite:
		fsCfg := wazero.NewFSConfig()
		for _, p := range grant.Paths {
			fsCfg = fsCfg.WithDirMount(p, p)
		}
		cfg = cfg.WithFSConfig(fsCfg)
	case types.CapabilityFull:
		cfg = cfg.WithFSConfig(wazero.NewFSConfig().WithDirMount("/", "/"))
	}
	return cfg
}

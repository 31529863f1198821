package host

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/reglet-dev/reglet-demo-actions/actions"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/tetratelabs/wazero/api"
)

// PluginInstance represents an instantiated WASM plugin. Calls are
// serialized; a guest instance is single threaded.
type PluginInstance struct {
	module api.Module
	mu     sync.Mutex
	closed bool
}

// Info returns the module descriptor.
func (p *PluginInstance) Info(ctx context.Context) (*descriptor.ModuleDescriptor, error) {
	var m descriptor.ModuleDescriptor
	if err := p.call(ctx, abi.ExportInfo, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Post executes an action.
func (p *PluginInstance) Post(ctx context.Context, action, params, network, memo string) (*actions.ActionResult, error) {
	var res actions.ActionResult
	if err := p.call(ctx, abi.ExportPost, &res, action, params, network, memo); err != nil {
		return nil, err
	}
	return &res, nil
}

// Get returns the input form for an action.
func (p *PluginInstance) Get(ctx context.Context, action, params, network string) (*actions.FormDescriptor, error) {
	var f actions.FormDescriptor
	if err := p.call(ctx, abi.ExportGet, &f, action, params, network); err != nil {
		return nil, err
	}
	return &f, nil
}

// Close releases the guest instance.
func (p *PluginInstance) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.module.Close(ctx)
}

// call invokes export with string arguments and decodes its JSON result into v.
func (p *PluginInstance) call(ctx context.Context, export string, v any, args ...string) error {
	data, err := p.callRaw(ctx, export, args...)
	if err != nil {
		return &CallError{Export: export, Err: err}
	}

	var probe struct {
		Error string `json:"error"`
		Fatal bool   `json:"fatal"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return &CallError{Export: export, Err: fmt.Errorf("decode result: %w", err)}
	}
	if probe.Fatal {
		return &CallError{Export: export, Err: fmt.Errorf("%w: %s", ErrPluginFailure, probe.Error)}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &CallError{Export: export, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

// callRaw writes args into guest memory, calls export and copies out the result.
func (p *PluginInstance) callRaw(ctx context.Context, export string, args ...string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}

	fn := p.module.ExportedFunction(export)
	if fn == nil {
		return nil, ErrExportMissing
	}

	packed := make([]uint64, len(args))
	defer func() {
		for _, a := range packed {
			p.free(ctx, a)
		}
	}()
	for i, a := range args {
		ptr, err := p.write(ctx, a)
		if err != nil {
			return nil, err
		}
		packed[i] = ptr
	}

	res, err := fn.Call(ctx, packed...)
	if err != nil {
		return nil, fmt.Errorf("call failed: %w", err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no result returned")
	}
	defer p.free(ctx, res[0])

	ptr, length := abi.UnpackPtrLen(res[0])
	if length == 0 {
		return nil, fmt.Errorf("empty result")
	}
	data, ok := p.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read result from memory at ptr=%d len=%d", ptr, length)
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

func (p *PluginInstance) write(ctx context.Context, s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	allocate := p.module.ExportedFunction(abi.ExportAllocate)
	if allocate == nil {
		return 0, ErrExportMissing
	}
	res, err := allocate.Call(ctx, uint64(len(s)))
	if err != nil {
		return 0, fmt.Errorf("allocate failed: %w", err)
	}
	//nolint:gosec // WASM pointers are 32-bit
	ptr := uint32(res[0])
	if !p.module.Memory().Write(ptr, []byte(s)) {
		return 0, fmt.Errorf("failed to write input to memory")
	}
	//nolint:gosec // lengths are bounded by guest memory
	return abi.PackPtrLen(ptr, uint32(len(s))), nil
}

func (p *PluginInstance) free(ctx context.Context, packed uint64) {
	ptr, length := abi.UnpackPtrLen(packed)
	if length == 0 {
		return
	}
	if dealloc := p.module.ExportedFunction(abi.ExportDeallocate); dealloc != nil {
		_, _ = dealloc.Call(ctx, uint64(ptr), uint64(length))
	}
}

// Package host loads a demo-actions WASM module into wazero and calls its
// INFO, POST and GET exports.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/reglet-dev/reglet-demo-actions/wazero"
	t_wazero "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// requiredExports must all be present for a module to load.
var requiredExports = []string{
	abi.ExportInfo,
	abi.ExportPost,
	abi.ExportGet,
	abi.ExportAllocate,
	abi.ExportDeallocate,
}

// Executor manages the lifecycle of a WASM plugin.
type Executor struct {
	runtime          t_wazero.Runtime
	cache            t_wazero.CompilationCache
	logger           *slog.Logger
	expected         Digest
	custom           []wazero.CustomHandler
	memoryLimitPages uint32
	instances        atomic.Uint64
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	cfg := t_wazero.NewRuntimeConfig()
	if e.cache != nil {
		cfg = cfg.WithCompilationCache(e.cache)
	}
	if e.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(e.memoryLimitPages)
	}

	rt := t_wazero.NewRuntimeWithConfig(ctx, cfg)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate wasi: %w", err)
	}
	e.runtime = rt

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// registerHostFunctions registers the host functions with the runtime.
func (e *Executor) registerHostFunctions(ctx context.Context) error {
	opts := []wazero.Option{wazero.WithLogger(e.logger)}
	for _, h := range e.custom {
		opts = append(opts, wazero.WithCustomHandler(h))
	}
	return wazero.RegisterWithRuntime(ctx, e.runtime, opts...)
}

// Close releases resources held by the executor and every plugin it loaded.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadPlugin verifies and instantiates a WASM module.
func (e *Executor) LoadPlugin(ctx context.Context, wasmBytes []byte) (*PluginInstance, error) {
	if !e.expected.IsZero() {
		if err := e.expected.Verify(wasmBytes); err != nil {
			return nil, err
		}
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	exports := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		if _, ok := exports[name]; !ok {
			_ = compiled.Close(ctx)
			return nil, &CallError{Export: name, Err: ErrExportMissing}
		}
	}

	name := fmt.Sprintf("%s-%d", abi.DefaultPluginName, e.instances.Add(1))
	mod, err := e.runtime.InstantiateModule(ctx, compiled, t_wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions().
		WithStderr(os.Stderr))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction(abi.ExportInitialize); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call %s: %w", abi.ExportInitialize, err)
		}
	}

	e.logger.Debug("plugin loaded", "module", name, "digest", ComputeDigest(wasmBytes).String())
	return &PluginInstance{module: mod}, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	demoactions "github.com/reglet-dev/reglet-demo-actions"
	"github.com/reglet-dev/reglet-demo-actions/actions"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/host"
)

// backend runs boundary operations against one module instance.
type backend interface {
	Descriptor(ctx context.Context) (*descriptor.ModuleDescriptor, error)
	Invoke(ctx context.Context, call demoactions.Call) (string, error)
	Close(ctx context.Context) error
}

func (o *rootOptions) openBackend(ctx context.Context, logger *slog.Logger) (backend, error) {
	if o.wasm == "" {
		opts := []demoactions.Option{demoactions.WithLogger(logger)}
		if o.enforceRanges {
			opts = append(opts, demoactions.WithRangeEnforcement())
		}
		return &inProcessBackend{module: demoactions.New(opts...)}, nil
	}

	wasmBytes, err := host.ReadFileLimited(o.wasm, host.DefaultMaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}

	hostOpts := []host.Option{host.WithLogger(logger)}
	if o.digest != "" {
		d, err := host.ParseDigest(o.digest)
		if err != nil {
			return nil, fmt.Errorf("invalid --digest: %w", err)
		}
		hostOpts = append(hostOpts, host.WithExpectedDigest(d))
	}

	exec, err := host.NewExecutor(ctx, hostOpts...)
	if err != nil {
		return nil, err
	}
	plugin, err := exec.LoadPlugin(ctx, wasmBytes)
	if err != nil {
		_ = exec.Close(ctx)
		return nil, err
	}
	return &wasmBackend{exec: exec, plugin: plugin}, nil
}

type inProcessBackend struct {
	module *demoactions.Module
}

func (b *inProcessBackend) Descriptor(context.Context) (*descriptor.ModuleDescriptor, error) {
	return actions.Descriptor(), nil
}

func (b *inProcessBackend) Invoke(ctx context.Context, call demoactions.Call) (string, error) {
	return b.module.Invoke(ctx, call)
}

func (b *inProcessBackend) Close(context.Context) error { return nil }

type wasmBackend struct {
	exec   *host.Executor
	plugin *host.PluginInstance
}

func (b *wasmBackend) Descriptor(ctx context.Context) (*descriptor.ModuleDescriptor, error) {
	return b.plugin.Info(ctx)
}

func (b *wasmBackend) Invoke(ctx context.Context, call demoactions.Call) (string, error) {
	var (
		v   any
		err error
	)
	switch call.Operation {
	case demoactions.OpInfo:
		v, err = b.plugin.Info(ctx)
	case demoactions.OpPost:
		v, err = b.plugin.Post(ctx, call.Action, call.Params, call.Network, call.Memo)
	case demoactions.OpGet:
		v, err = b.plugin.Get(ctx, call.Action, call.Params, call.Network)
	default:
		return "", fmt.Errorf("unsupported operation %q", call.Operation)
	}
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s result: %w", call.Operation, err)
	}
	return string(raw), nil
}

func (b *wasmBackend) Close(ctx context.Context) error {
	perr := b.plugin.Close(ctx)
	if err := b.exec.Close(ctx); err != nil {
		return err
	}
	return perr
}

// Package wazero registers the demo-actions host functions with a wazero runtime.
package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// CustomHandler is an extra host function exported from the host module.
type CustomHandler struct {
	Handler     api.GoModuleFunc
	Name        string
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// Option configures RegisterWithRuntime.
type Option func(*registerConfig)

type registerConfig struct {
	logger     *slog.Logger
	moduleName string
	custom     []CustomHandler
}

// WithCustomHandler adds a host function next to log_message.
func WithCustomHandler(h CustomHandler) Option {
	return func(c *registerConfig) {
		c.custom = append(c.custom, h)
	}
}

// WithLogger routes guest log messages to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *registerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithModuleName overrides the host module name guests import from.
func WithModuleName(name string) Option {
	return func(c *registerConfig) {
		if name != "" {
			c.moduleName = name
		}
	}
}

// RegisterWithRuntime instantiates the host module exporting log_message
// and every custom handler.
func RegisterWithRuntime(ctx context.Context, rt wazero.Runtime, opts ...Option) error {
	cfg := registerConfig{
		logger:     slog.Default(),
		moduleName: abi.HostModule,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := rt.NewHostModuleBuilder(cfg.moduleName)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(LogHandler(cfg.logger), []api.ValueType{api.ValueTypeI64}, []api.ValueType{}).
		WithParameterNames("message").
		Export(abi.HostLogMessage)

	seen := map[string]bool{abi.HostLogMessage: true}
	for _, h := range cfg.custom {
		if h.Name == "" || h.Handler == nil {
			return fmt.Errorf("custom host function needs a name and a handler")
		}
		if seen[h.Name] {
			return fmt.Errorf("duplicate host function %q", h.Name)
		}
		seen[h.Name] = true
		builder.NewFunctionBuilder().
			WithGoModuleFunction(h.Handler, h.ParamTypes, h.ResultTypes).
			Export(h.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate %s: %w", cfg.moduleName, err)
	}
	return nil
}

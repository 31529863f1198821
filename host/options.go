package host

import (
	"log/slog"

	"github.com/reglet-dev/reglet-demo-actions/wazero"
	t_wazero "github.com/tetratelabs/wazero"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithCompilationCache configures the executor with a compilation cache.
func WithCompilationCache(cache t_wazero.CompilationCache) Option {
	return func(e *Executor) {
		e.cache = cache
	}
}

// WithMemoryLimitPages caps guest memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(e *Executor) {
		e.memoryLimitPages = pages
	}
}

// WithLogger sets the logger for host diagnostics and guest log messages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithExpectedDigest makes LoadPlugin reject modules with a different digest.
func WithExpectedDigest(d Digest) Option {
	return func(e *Executor) {
		e.expected = d
	}
}

// WithHostFunctions exports extra host functions next to log_message.
func WithHostFunctions(handlers ...wazero.CustomHandler) Option {
	return func(e *Executor) {
		e.custom = append(e.custom, handlers...)
	}
}

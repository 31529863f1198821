package policy

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Ensure implementations satisfy the interface.
var (
	_ DenialHandler = (*StderrDenialHandler)(nil)
	_ DenialHandler = (*NopDenialHandler)(nil)
	_ DenialHandler = (*LogDenialHandler)(nil)
)

// StderrDenialHandler logs denials to stderr.
type StderrDenialHandler struct {
	// Out overrides the destination; nil means os.Stderr.
	Out io.Writer
}

func (h *StderrDenialHandler) OnDenial(kind string, request any, reason string) {
	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "Permission Denied [%s]: %+v (Reason: %s)\n", kind, request, reason)
}

// LogDenialHandler records denials as structured warnings.
type LogDenialHandler struct {
	Logger *slog.Logger
}

func (h *LogDenialHandler) OnDenial(kind string, request any, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("capability denied", "kind", kind, "request", fmt.Sprintf("%+v", request), "reason", reason)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(kind string, request any, reason string) {}

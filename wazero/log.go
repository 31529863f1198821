package wazero

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/tetratelabs/wazero/api"
)

// LogMessage implements the `log_message` host function with slog.Default().
// It receives a packed uint64 (ptr+len) pointing to a JSON-encoded abi.LogMessage.
// It does not return any value.
func LogMessage(ctx context.Context, mod api.Module, stack []uint64) {
	LogHandler(slog.Default())(ctx, mod, stack)
}

// LogHandler returns a `log_message` implementation that writes to logger.
func LogHandler(logger *slog.Logger) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		logMsg, ok := readLogMessage(ctx, logger, mod, stack[0])
		if !ok {
			return
		}

		level := parseLogLevel(logger, logMsg.Level)
		attrs := convertLogAttrs(logMsg.Attrs)
		if logMsg.Context.RequestID != "" {
			attrs = append(attrs, slog.String("request_id", logMsg.Context.RequestID))
		}
		if name := mod.Name(); name != "" {
			attrs = append(attrs, slog.String("plugin", name))
		}

		logger.LogAttrs(ctx, level, logMsg.Message, attrs...)
	}
}

// readLogMessage reads and unmarshals the log message from guest memory.
func readLogMessage(ctx context.Context, logger *slog.Logger, mod api.Module, messagePacked uint64) (*abi.LogMessage, bool) {
	ptr, length := abi.UnpackPtrLen(messagePacked)

	messageBytes, ok := mod.Memory().Read(ptr, length)
	if !ok {
		logger.ErrorContext(ctx, "wazero: failed to read log message from guest memory", "ptr", ptr, "len", length)
		return nil, false
	}

	var logMsg abi.LogMessage
	if err := json.Unmarshal(messageBytes, &logMsg); err != nil {
		logger.ErrorContext(ctx, "wazero: failed to unmarshal log message", "error", err)
		return nil, false
	}

	return &logMsg, true
}

// parseLogLevel converts a string level to slog.Level.
func parseLogLevel(logger *slog.Logger, levelStr string) slog.Level {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		logger.Warn("wazero: unknown log level from plugin", "level", levelStr)
	}
	return level
}

// convertLogAttrs converts wire attributes to slog.Attr slice.
func convertLogAttrs(wireAttrs []abi.LogAttr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(wireAttrs))
	for _, attr := range wireAttrs {
		attrs = append(attrs, convertSingleAttr(attr))
	}
	return attrs
}

// convertSingleAttr converts a single wire attribute to slog.Attr.
func convertSingleAttr(attr abi.LogAttr) slog.Attr {
	switch attr.Type {
	case "string":
		return slog.String(attr.Key, attr.Value)
	case "int64":
		if v, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
			return slog.Int64(attr.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(attr.Value); err == nil {
			return slog.Bool(attr.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
			return slog.Float64(attr.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, attr.Value); err == nil {
			return slog.Time(attr.Key, v)
		}
	case "error":
		return slog.Any(attr.Key, fmt.Errorf("%s", attr.Value))
	}
	// Default: return as Any (fallback for unknown types or parse failures)
	return slog.Any(attr.Key, attr.Value)
}

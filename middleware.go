package demoactions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/reglet-demo-actions/actions"
)

// Middleware is a function that wraps a Handler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	tracing := func(next Handler) Handler {
//	    return func(ctx context.Context, call Call) (string, error) {
//	        slog.InfoContext(ctx, "calling", "op", call.Operation)
//	        return next(ctx, call)
//	    }
//	}
type Middleware func(next Handler) Handler

// Chain composes middleware so that the first argument is the outermost layer.
func Chain(mw ...Middleware) Middleware {
	return func(final Handler) Handler {
		h := final
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		return h
	}
}

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to a failure document for the operation instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) (resp string, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = panicDocument(call, r)
				}
			}()
			return next(ctx, call)
		}
	}
}

func panicDocument(call Call, r any) (string, error) {
	msg := fmt.Sprintf("internal error: %v", r)
	var doc any
	switch call.Operation {
	case OpPost:
		doc = actions.ActionResult{Success: false, Error: msg}
	case OpGet:
		doc = actions.FormDescriptor{Error: msg}
	default:
		return "", fmt.Errorf("%s: %s", call.Operation, msg)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return string(data), nil
}

// LoggingMiddleware returns a middleware that logs every operation with its
// outcome and latency.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) (string, error) {
			start := time.Now()
			resp, err := next(ctx, call)

			attrs := []slog.Attr{
				slog.String("operation", call.Operation),
				slog.Duration("latency", time.Since(start)),
			}
			if call.Action != "" {
				attrs = append(attrs, slog.String("action", call.Action))
			}
			if call.Network != "" {
				attrs = append(attrs, slog.String("network", call.Network))
			}
			if call.Memo != "" {
				attrs = append(attrs, slog.String("memo", call.Memo))
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
				logger.LogAttrs(ctx, slog.LevelWarn, "operation failed", attrs...)
				return resp, err
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "operation completed", attrs...)
			return resp, nil
		}
	}
}

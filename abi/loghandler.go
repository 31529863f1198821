package abi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

type requestIDKey struct{}

// WithRequestID tags ctx so that log records carry the request id to the host.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LogHandler is a slog.Handler that encodes each record as a LogMessage and
// passes it to sink. Guests use it with a sink that calls log_message.
type LogHandler struct {
	sink   func([]byte)
	level  slog.Leveler
	attrs  []LogAttr
	prefix string
}

var _ slog.Handler = (*LogHandler)(nil)

// NewLogHandler creates a LogHandler. A nil level means slog.LevelInfo.
func NewLogHandler(sink func([]byte), level slog.Leveler) *LogHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LogHandler{sink: sink, level: level}
}

func (h *LogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	msg := LogMessage{
		Level:   r.Level.String(),
		Message: r.Message,
		Attrs:   append([]LogAttr{}, h.attrs...),
		Context: WireContext{RequestID: RequestID(ctx)},
	}
	r.Attrs(func(a slog.Attr) bool {
		msg.Attrs = appendAttr(msg.Attrs, h.prefix, a)
		return true
	})
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode log message: %w", err)
	}
	h.sink(data)
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = append([]LogAttr{}, h.attrs...)
	for _, a := range attrs {
		out.attrs = appendAttr(out.attrs, h.prefix, a)
	}
	return &out
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := *h
	out.prefix = h.prefix + name + "."
	return &out
}

func appendAttr(dst []LogAttr, prefix string, a slog.Attr) []LogAttr {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range v.Group() {
			dst = appendAttr(dst, p, ga)
		}
		return dst
	}
	if a.Equal(slog.Attr{}) {
		return dst
	}
	return append(dst, wireAttr(prefix+a.Key, v))
}

func wireAttr(key string, v slog.Value) LogAttr {
	switch v.Kind() {
	case slog.KindString:
		return LogAttr{Key: key, Type: "string", Value: v.String()}
	case slog.KindInt64:
		return LogAttr{Key: key, Type: "int64", Value: strconv.FormatInt(v.Int64(), 10)}
	case slog.KindUint64:
		return LogAttr{Key: key, Type: "int64", Value: strconv.FormatUint(v.Uint64(), 10)}
	case slog.KindBool:
		return LogAttr{Key: key, Type: "bool", Value: strconv.FormatBool(v.Bool())}
	case slog.KindFloat64:
		return LogAttr{Key: key, Type: "float64", Value: strconv.FormatFloat(v.Float64(), 'g', -1, 64)}
	case slog.KindTime:
		return LogAttr{Key: key, Type: "time", Value: v.Time().Format(time.RFC3339Nano)}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return LogAttr{Key: key, Type: "error", Value: err.Error()}
		}
	}
	return LogAttr{Key: key, Type: "any", Value: strings.TrimSpace(v.String())}
}

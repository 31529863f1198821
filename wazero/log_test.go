package wazero

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// fakeMemory serves reads from a byte slice; other methods are unused.
type fakeMemory struct {
	api.Memory
	data []byte
}

func (m *fakeMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.data)) {
		return nil, false
	}
	return m.data[offset:end], true
}

type fakeModule struct {
	api.Module
	mem *fakeMemory
}

func (m *fakeModule) Memory() api.Memory { return m.mem }
func (m *fakeModule) Name() string       { return "demo-actions" }

func moduleWith(t *testing.T, msg any) (*fakeModule, uint64) {
	t.Helper()
	payload, ok := msg.([]byte)
	if !ok {
		var err error
		payload, err = json.Marshal(msg)
		require.NoError(t, err)
	}
	// Put the payload at a non-zero offset.
	data := append(make([]byte, 16), payload...)
	return &fakeModule{mem: &fakeMemory{data: data}}, abi.PackPtrLen(16, uint32(len(payload)))
}

func TestLogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mod, packed := moduleWith(t, abi.LogMessage{
		Level:   "WARN",
		Message: "counter changed",
		Attrs: []abi.LogAttr{
			{Key: "count", Type: "int64", Value: "42"},
			{Key: "visible", Type: "bool", Value: "true"},
			{Key: "ratio", Type: "float64", Value: "0.5"},
			{Key: "cause", Type: "error", Value: "boom"},
			{Key: "odd", Type: "int64", Value: "not-a-number"},
		},
		Context: abi.WireContext{RequestID: "req-1"},
	})

	LogHandler(logger)(context.Background(), mod, []uint64{packed})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="counter changed"`)
	assert.Contains(t, out, "count=42")
	assert.Contains(t, out, "visible=true")
	assert.Contains(t, out, "ratio=0.5")
	assert.Contains(t, out, "cause=boom")
	assert.Contains(t, out, "odd=not-a-number")
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "plugin=demo-actions")
}

func TestLogHandler_BadPayloads(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	mod, _ := moduleWith(t, []byte("{not json"))
	LogHandler(logger)(context.Background(), mod, []uint64{abi.PackPtrLen(16, 9)})
	assert.Contains(t, buf.String(), "failed to unmarshal log message")

	buf.Reset()
	LogHandler(logger)(context.Background(), mod, []uint64{abi.PackPtrLen(1000, 10)})
	assert.Contains(t, buf.String(), "failed to read log message")
}

func TestParseLogLevel_Unknown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(logger, "LOUD"))
	assert.Equal(t, slog.LevelDebug, parseLogLevel(logger, "debug"))
	assert.Contains(t, buf.String(), "unknown log level")
}

func TestRegisterWithRuntime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	noop := CustomHandler{
		Name:        "now_ms",
		Handler:     func(context.Context, api.Module, []uint64) {},
		ResultTypes: []api.ValueType{api.ValueTypeI64},
	}
	require.NoError(t, RegisterWithRuntime(ctx, rt, WithCustomHandler(noop)))

	mod := rt.Module(abi.HostModule)
	require.NotNil(t, mod)
	defs := mod.ExportedFunctionDefinitions()
	assert.Contains(t, defs, abi.HostLogMessage)
	assert.Contains(t, defs, "now_ms")
	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, defs[abi.HostLogMessage].ParamTypes())
}

func TestRegisterWithRuntime_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	dup := CustomHandler{Name: abi.HostLogMessage, Handler: func(context.Context, api.Module, []uint64) {}}
	require.Error(t, RegisterWithRuntime(ctx, rt, WithCustomHandler(dup)))
	require.Error(t, RegisterWithRuntime(ctx, rt, WithCustomHandler(CustomHandler{Name: "x"})))

	require.NoError(t, RegisterWithRuntime(ctx, rt))
	require.Error(t, RegisterWithRuntime(ctx, rt), "module names are unique per runtime")
}

package demoactions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietModule(opts ...Option) *Module {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func TestModule_Info(t *testing.T) {
	t.Parallel()

	m := quietModule()
	first, err := m.Info()
	require.NoError(t, err)
	second, err := m.Info()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var doc struct {
		Name    string `json:"name"`
		Actions []struct {
			Name string `json:"name"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &doc))
	assert.Equal(t, "Demo Actions Module", doc.Name)
	require.Len(t, doc.Actions, 5)
	assert.Equal(t, "increment", doc.Actions[0].Name)
}

func TestModule_Post(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		action  string
		params  string
		want    string
		wantErr bool
	}{
		{
			name:   "increment default amount",
			action: "increment",
			params: `{"count":5}`,
			want:   `{"success":true,"data":{"count":6},"message":"Counter incremented by 1 to 6"}`,
		},
		{
			name:   "increment explicit amount",
			action: "increment",
			params: `{"count":5,"amount":10}`,
			want:   `{"success":true,"data":{"count":15},"message":"Counter incremented by 10 to 15"}`,
		},
		{
			name:   "decrement below zero",
			action: "decrement",
			params: `{"count":0,"amount":3}`,
			want:   `{"success":true,"data":{"count":-3},"message":"Counter decremented by 3 to -3"}`,
		},
		{
			name:   "reset ignores params",
			action: "reset",
			params: `{}`,
			want:   `{"success":true,"data":{"count":0},"message":"Counter reset to 0"}`,
		},
		{
			name:   "toggle counter",
			action: "toggleCounter",
			params: `{"showCounter":true}`,
			want:   `{"success":true,"data":{"showCounter":false},"message":"Counter visibility toggled to false"}`,
		},
		{
			name:   "toggle stats",
			action: "toggleStats",
			params: `{"showStats":false}`,
			want:   `{"success":true,"data":{"showStats":true},"message":"Stats visibility toggled to true"}`,
		},
		{
			name:   "missing count",
			action: "increment",
			params: `{}`,
			want:   `{"success":false,"error":"Missing required parameter: count"}`,
		},
		{
			name:   "unknown action",
			action: "launchRocket",
			params: `{}`,
			want:   `{"success":false,"error":"Unknown action: launchRocket"}`,
		},
		{
			name:    "malformed params",
			action:  "increment",
			params:  `{"count":`,
			wantErr: true,
		},
	}

	m := quietModule()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := m.Post(tt.action, tt.params, "testnet", "")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDecodeParams)

				var de *DecodeError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, OpPost, de.Operation)
				assert.Equal(t, tt.action, de.Action)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestModule_Post_NetworkAndMemoIgnored(t *testing.T) {
	t.Parallel()

	m := quietModule()
	a, err := m.Post("increment", `{"count":1}`, "mainnet", "hello")
	require.NoError(t, err)
	b, err := m.Post("increment", `{"count":1}`, "", "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestModule_Get(t *testing.T) {
	t.Parallel()

	m := quietModule()

	got, err := m.Get("reset", "not json at all", "testnet")
	require.NoError(t, err, "GET never reads params")
	assert.JSONEq(t, `{"title":"Reset Counter","description":"Reset the counter to zero","label":"Reset","parameters":[]}`, got)

	got, err = m.Get("nope", "", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Unknown action: nope"}`, got)
}

func TestModule_RangeEnforcement(t *testing.T) {
	t.Parallel()

	lenient := quietModule()
	got, err := lenient.Post("increment", `{"count":0,"amount":500}`, "", "")
	require.NoError(t, err)
	assert.Contains(t, got, `"success":true`)

	strict := quietModule(WithRangeEnforcement())
	got, err = strict.Post("increment", `{"count":0,"amount":500}`, "", "")
	require.NoError(t, err)
	assert.Contains(t, got, `"success":false`)
	assert.Contains(t, got, "Invalid parameters")
}

func TestModule_UnsupportedOperation(t *testing.T) {
	t.Parallel()

	_, err := quietModule().Invoke(context.Background(), Call{Operation: "DELETE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operation")
}

func TestModule_CustomMiddleware(t *testing.T) {
	t.Parallel()

	var seen []string
	var mu sync.Mutex
	record := func(next Handler) Handler {
		return func(ctx context.Context, call Call) (string, error) {
			mu.Lock()
			seen = append(seen, call.Operation)
			mu.Unlock()
			return next(ctx, call)
		}
	}

	m := quietModule(WithMiddleware(record))
	_, _ = m.Info()
	_, _ = m.Get("reset", "", "")
	_, _ = m.Post("reset", "{}", "", "")

	assert.Equal(t, []string{OpInfo, OpGet, OpPost}, seen)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	boom := func(context.Context, Call) (string, error) { panic("boom") }
	h := PanicRecoveryMiddleware()(boom)

	got, err := h(context.Background(), Call{Operation: OpPost, Action: "increment"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"internal error: boom"}`, got)

	got, err = h(context.Background(), Call{Operation: OpGet, Action: "increment"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"internal error: boom"}`, got)

	_, err = h(context.Background(), Call{Operation: OpInfo})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := New(WithLogger(logger))
	_, err := m.Post("increment", `{"count":1}`, "testnet", "memo-1")
	require.NoError(t, err)
	_, err = m.Post("increment", `nope`, "testnet", "")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "operation completed")
	assert.Contains(t, out, "action=increment")
	assert.Contains(t, out, "memo=memo-1")
	assert.Contains(t, out, "operation failed")
	assert.Equal(t, 1, strings.Count(out, "operation failed"))
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mk := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, call Call) (string, error) {
				order = append(order, name)
				return next(ctx, call)
			}
		}
	}
	h := Chain(mk("a"), mk("b"), mk("c"))(func(context.Context, Call) (string, error) {
		order = append(order, "handler")
		return "", nil
	})
	_, _ = h(context.Background(), Call{})
	assert.Equal(t, []string{"a", "b", "c", "handler"}, order)
}

func TestModule_ConcurrentPosts(t *testing.T) {
	t.Parallel()

	m := quietModule()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := m.Post("increment", `{"count":41}`, "", "")
			assert.NoError(t, err)
			assert.JSONEq(t, `{"success":true,"data":{"count":42},"message":"Counter incremented by 1 to 42"}`, got)
		}()
	}
	wg.Wait()
}

// Package demoactions exposes the demo counter module through the three
// operations a host runtime calls: INFO, POST and GET. Every operation
// exchanges JSON strings; only a malformed POST parameter document or an
// encoding failure is reported as an error; semantic failures travel inside
// the returned document.
package demoactions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-demo-actions/actions"
)

// Operation names.
const (
	OpInfo = "INFO"
	OpPost = "POST"
	OpGet  = "GET"
)

// Call is one invocation of a boundary operation.
type Call struct {
	Operation string
	Action    string
	Params    string
	Network   string
	Memo      string
}

// Handler serves a Call and returns the serialized response document.
type Handler func(ctx context.Context, call Call) (string, error)

// Module is the host-facing surface of the plugin. It is safe for concurrent use.
type Module struct {
	executor *actions.Executor
	logger   *slog.Logger
	handler  Handler
}

// Option configures a Module.
type Option func(*moduleConfig)

type moduleConfig struct {
	logger          *slog.Logger
	middleware      []Middleware
	executorOptions []actions.Option
}

// WithLogger sets the logger for the module and its executor.
func WithLogger(logger *slog.Logger) Option {
	return func(c *moduleConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMiddleware appends middleware to the chain, after the built-in
// panic recovery and logging middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *moduleConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithRangeEnforcement makes POST enforce declared parameter bounds.
func WithRangeEnforcement() Option {
	return func(c *moduleConfig) {
		c.executorOptions = append(c.executorOptions, actions.WithRangeEnforcement())
	}
}

// New creates a Module.
func New(opts ...Option) *Module {
	cfg := moduleConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Module{
		logger:   cfg.logger,
		executor: actions.NewExecutor(append([]actions.Option{actions.WithLogger(cfg.logger)}, cfg.executorOptions...)...),
	}

	chain := append([]Middleware{
		PanicRecoveryMiddleware(),
		LoggingMiddleware(cfg.logger),
	}, cfg.middleware...)
	m.handler = Chain(chain...)(m.dispatch)
	return m
}

// Info returns the serialized module descriptor.
func (m *Module) Info() (string, error) {
	return m.Invoke(context.Background(), Call{Operation: OpInfo})
}

// Post executes an action. network and memo are accepted for the host
// contract but do not influence any action.
func (m *Module) Post(action, params, network, memo string) (string, error) {
	return m.Invoke(context.Background(), Call{
		Operation: OpPost,
		Action:    action,
		Params:    params,
		Network:   network,
		Memo:      memo,
	})
}

// Get returns the serialized input form for an action. params is not read.
func (m *Module) Get(action, params, network string) (string, error) {
	return m.Invoke(context.Background(), Call{
		Operation: OpGet,
		Action:    action,
		Params:    params,
		Network:   network,
	})
}

// Invoke runs a call through the middleware chain.
func (m *Module) Invoke(ctx context.Context, call Call) (string, error) {
	return m.handler(ctx, call)
}

func (m *Module) dispatch(_ context.Context, call Call) (string, error) {
	switch call.Operation {
	case OpInfo:
		return encode(actions.Descriptor())
	case OpPost:
		params, err := actions.DecodeParams([]byte(call.Params))
		if err != nil {
			return "", &DecodeError{Operation: call.Operation, Action: call.Action, Err: err}
		}
		return encode(m.executor.Execute(call.Action, params))
	case OpGet:
		return encode(actions.FormFor(call.Action))
	}
	return "", fmt.Errorf("unsupported operation %q", call.Operation)
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return string(data), nil
}

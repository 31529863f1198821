package actions

import (
	"log/slog"
	"strings"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/validation"
)

// Executor dispatches actions by name. It holds no per-invocation state and
// is safe for concurrent use.
type Executor struct {
	logger    *slog.Logger
	validator validation.ParamsValidator
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for execution traces.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRangeEnforcement validates every parameter document against the
// schema derived from the action's inputs, so declared min/max bounds are
// enforced server-side instead of only by the host's form.
func WithRangeEnforcement() Option {
	return func(e *Executor) {
		e.validator = validation.NewParamValidator()
	}
}

// WithParamsValidator installs a custom validator; nil disables validation.
func WithParamsValidator(v validation.ParamsValidator) Option {
	return func(e *Executor) {
		e.validator = v
	}
}

// NewExecutor creates an executor over the module catalog.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the named action. Every outcome, including unknown actions
// and missing parameters, is reported in the returned result.
func (e *Executor) Execute(name string, params Params) ActionResult {
	en, ok := lookup(name)
	if !ok {
		e.logger.Debug("unknown action", "action", name)
		return UnknownAction(name)
	}

	if res, ok := checkRequired(en.desc, params); !ok {
		e.logger.Debug("action rejected", "action", name, "error", res.Error)
		return res
	}

	if e.validator != nil {
		vr, err := e.validator.ValidateParams(en.desc, params.Raw())
		if err != nil {
			e.logger.Error("parameter validation failed", "action", name, "error", err)
			return Fail("Parameter validation failed: %v", err)
		}
		if !vr.Valid {
			e.logger.Debug("action rejected", "action", name, "errors", vr.Errors)
			return Fail("Invalid parameters: %s", strings.Join(vr.Errors, "; "))
		}
	}

	res := en.handler(params)
	e.logger.Debug("action executed", "action", name, "params", params.String(), "success", res.Success)
	return res
}

// checkRequired verifies every required input is present with its declared type.
func checkRequired(action descriptor.ActionDescriptor, params Params) (ActionResult, bool) {
	for _, in := range action.Inputs {
		if !in.Required {
			continue
		}
		var present bool
		switch in.Type {
		case descriptor.ParamNumber:
			_, present = params.Int(in.Name)
		case descriptor.ParamBoolean:
			_, present = params.Bool(in.Name)
		}
		if !present {
			return MissingParameter(in.Name), false
		}
	}
	return ActionResult{}, true
}

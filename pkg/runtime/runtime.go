// Package runtime provides the top-level pseudocode runtime orchestrator.
package runtime

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cielang/cie/pkg/ast"
	"github.com/cielang/cie/pkg/diagnostics"
	"github.com/cielang/cie/pkg/interp"
	"github.com/cielang/cie/pkg/parser"
	"github.com/cielang/cie/pkg/validator"
)

// Runtime wires together all interpreter components for program execution.
type Runtime struct {
	input    func(prompt string) (string, error)
	output   func(values ...string)
	trace    func(event interp.TraceEvent)
	env      *interp.Env
	logger   *slog.Logger
	validate bool
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithInput sets the input collaborator.
func WithInput(fn func(prompt string) (string, error)) Option {
	return func(rt *Runtime) {
		rt.input = fn
	}
}

// WithOutput sets the output collaborator.
func WithOutput(fn func(values ...string)) Option {
	return func(rt *Runtime) {
		rt.output = fn
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event interp.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithEnv sets the environment programs execute in. Successive Run calls
// then accumulate state, which is what the REPL needs.
func WithEnv(env *interp.Env) Option {
	return func(rt *Runtime) {
		rt.env = env
	}
}

// WithLogger sets the structured logger for run lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithoutValidation skips the static validation pass before execution.
// The REPL uses this so a line can reference bindings made by earlier
// lines, which the validator cannot see.
func WithoutValidation() Option {
	return func(rt *Runtime) {
		rt.validate = false
	}
}

// New creates a new Runtime with the given options.
// By default I/O goes to the console, validation runs before execution,
// and each Run gets a fresh environment.
func New(opts ...Option) *Runtime {
	rt := &Runtime{validate: true}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Env returns the runtime's persistent environment, creating one on
// first use.
func (rt *Runtime) Env() *interp.Env {
	if rt.env == nil {
		rt.env = interp.NewEnv(nil)
	}
	return rt.env
}

// Run parses, validates, and executes a pseudocode program, returning
// the final environment.
func (rt *Runtime) Run(source, filename string) (*interp.Env, error) {
	program, err := rt.parse(source, filename)
	if err != nil {
		return nil, err
	}

	if rt.logger != nil {
		rt.logger.Info("run start", "file", filename, "statements", len(program.Statements))
	}

	env, runErr := interp.Run(program, interp.Options{
		Input:  rt.input,
		Output: rt.output,
		Trace:  rt.trace,
		Env:    rt.env,
	})
	rt.env = env

	if rt.logger != nil {
		if runErr != nil {
			rt.logger.Error("run failed", "file", filename, "error", runErr)
		} else {
			rt.logger.Info("run end", "file", filename)
		}
	}
	return env, runErr
}

// Check parses and validates a program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program)
}

// Tree parses a program and renders its syntax tree as an indented
// outline.
func (rt *Runtime) Tree(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return ast.Print(program), nil
}

func (rt *Runtime) parse(source, filename string) (*ast.Program, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if rt.validate {
		if vDiags := validator.Validate(program); len(vDiags) > 0 {
			return nil, &DiagnosticError{Diagnostics: vDiags}
		}
	}
	return program, nil
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

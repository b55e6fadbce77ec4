package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cielang/cie/internal/testutil"
	"github.com/cielang/cie/pkg/interp"
	"github.com/cielang/cie/pkg/runtime"
)

// TestConformance runs every program under examples/ against its
// scenario.json expectations: scripted stdin, exact stdout lines, the
// error code on failure, and selected final environment bindings.
func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios("examples")
	if err != nil {
		t.Fatalf("listing scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found under examples/")
	}

	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}
			source, err := testutil.ReadProgram(dir)
			if err != nil {
				t.Fatalf("failed to read program: %v", err)
			}

			var lines []string
			next := 0
			rt := runtime.New(
				runtime.WithInput(func(prompt string) (string, error) {
					if next >= len(scenario.Stdin) {
						return "", errors.New("scenario stdin exhausted")
					}
					line := scenario.Stdin[next]
					next++
					return line, nil
				}),
				runtime.WithOutput(func(values ...string) {
					lines = append(lines, strings.Join(values, " "))
				}),
			)

			env, runErr := rt.Run(source, filepath.Base(dir)+".cie")

			if scenario.Expect.ErrorCode != "" {
				code := errorCode(runErr)
				if code != scenario.Expect.ErrorCode {
					t.Fatalf("error code = %q, want %q (err: %v)", code, scenario.Expect.ErrorCode, runErr)
				}
				return
			}
			if runErr != nil {
				t.Fatalf("unexpected error: %v", runErr)
			}

			if len(lines) != len(scenario.Expect.Output) {
				t.Fatalf("output = %q, want %q", lines, scenario.Expect.Output)
			}
			for i, want := range scenario.Expect.Output {
				if lines[i] != want {
					t.Errorf("output[%d] = %q, want %q", i, lines[i], want)
				}
			}

			for _, pair := range scenario.Expect.Env {
				name, want, ok := strings.Cut(pair, "=")
				if !ok {
					t.Fatalf("malformed env expectation %q", pair)
				}
				val, err := env.Lookup(name)
				if err != nil {
					t.Errorf("env %s: %v", name, err)
					continue
				}
				if got := interp.FormatValue(val); got != want {
					t.Errorf("env %s = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) && len(diagErr.Diagnostics) > 0 {
		return diagErr.Diagnostics[0].Code
	}
	var rtErr *interp.RuntimeError
	if errors.As(err, &rtErr) {
		return rtErr.Code
	}
	return fmt.Sprintf("unexpected:%T", err)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cielang/cie/pkg/diagnostics"
	"github.com/cielang/cie/pkg/interp"
	"github.com/cielang/cie/pkg/runtime"
)

// cmdRepl runs an interactive session. Every line executes against one
// persistent environment; static validation is skipped so a line may use
// bindings made by earlier lines.
func cmdRepl(args []string) int {
	f := parseArgs(args)
	cfg, code := loadConfig(f)
	if code != 0 {
		return code
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      cfg.Repl.Prompt,
		HistoryFile: cfg.Repl.HistoryFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer rl.Close()

	rt := runtime.New(runtime.WithoutValidation())
	fmt.Println(headerStyle("cie repl"))
	fmt.Println(statusStyle.Render("type :help for commands, Ctrl-D to exit"))

	lineNo := 0
	for {
		line, err := rl.Readline()
		if err != nil { // Ctrl-C or Ctrl-D
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if replCommand(rt, line) {
				break
			}
			continue
		}

		lineNo++
		if _, err := rt.Run(line, fmt.Sprintf("<repl:%d>", lineNo)); err != nil {
			printReplError(err)
		}
	}
	return 0
}

// replCommand handles : commands and reports whether the session should end.
func replCommand(rt *runtime.Runtime, line string) bool {
	switch line {
	case ":quit", ":q", ":exit":
		return true
	case ":env", ":e":
		fmt.Print(rt.Env().Dump())
	case ":help", ":h":
		fmt.Println(":env   show variables and constants")
		fmt.Println(":quit  leave the session")
	default:
		fmt.Println(errorStyle.Render(fmt.Sprintf("unknown command %s", line)))
	}
	return false
}

func printReplError(err error) {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Println(errorStyle.Render(diagnostics.FormatDiagnostics(diagErr.Diagnostics, true)))
		return
	}
	var rtErr *interp.RuntimeError
	if errors.As(err, &rtErr) {
		diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.Span, "")
		fmt.Println(errorStyle.Render(diagnostics.FormatDiagnostic(diag, true)))
		return
	}
	fmt.Println(errorStyle.Render(err.Error()))
}

// Command cie is the pseudocode interpreter CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cielang/cie/internal/logs"
	"github.com/cielang/cie/pkg/config"
	"github.com/cielang/cie/pkg/diagnostics"
	"github.com/cielang/cie/pkg/interp"
	"github.com/cielang/cie/pkg/runtime"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: cie <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: run, check, tree, repl, watch, help")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "tree":
		os.Exit(cmdTree(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "watch":
		os.Exit(cmdWatch(os.Args[2:]))
	case "help", "--help", "-h":
		printHelp()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(headerStyle("cie - pseudocode interpreter"))
	fmt.Println()
	fmt.Println("usage: cie <command> [options]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  run <file>    parse, check and execute a program")
	fmt.Println("  check <file>  report diagnostics without executing")
	fmt.Println("  tree <file>   print the syntax tree")
	fmt.Println("  repl          interactive session")
	fmt.Println("  watch <file>  re-run the program when it changes")
	fmt.Println()
	fmt.Println("common options:")
	fmt.Println("  --config <path>  TOML configuration file (default cie.toml)")
	fmt.Println("  --json           machine-readable diagnostics")
	fmt.Println("  --env, -e        dump the final environment after a run")
	fmt.Println("  --tree, -t       print the syntax tree before running")
	fmt.Println("  --dump-tree, -d  print the syntax tree and exit")
	fmt.Println("  --trace <path>   append trace events to a JSON log file")
}

// commonFlags holds the options shared by every subcommand.
type commonFlags struct {
	file       string
	configPath string
	outPath    string
	tracePath  string
	json       bool
	pretty     bool
	dumpEnv    bool
	showTree   bool
	dumpTree   bool
}

func parseArgs(args []string) commonFlags {
	f := commonFlags{configPath: "cie.toml"}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			f.json = true
		case "--pretty":
			f.pretty = true
		case "--env", "-e":
			f.dumpEnv = true
		case "--tree", "-t":
			f.showTree = true
		case "--dump-tree", "-d":
			f.dumpTree = true
		case "--config":
			if i+1 < len(args) {
				i++
				f.configPath = args[i]
			}
		case "--out":
			if i+1 < len(args) {
				i++
				f.outPath = args[i]
			}
		case "--trace":
			if i+1 < len(args) {
				i++
				f.tracePath = args[i]
			}
		default:
			if !strings.HasPrefix(args[i], "-") || args[i] == "-" {
				f.file = args[i]
			}
		}
	}
	return f
}

// usePretty decides the diagnostic rendering: --pretty forces the human
// format, --json or the config's json_errors pick JSON, and pretty is the
// default otherwise.
func usePretty(f commonFlags, cfg *config.Config) bool {
	if f.pretty {
		return true
	}
	return !f.json && !cfg.Run.JSONErrors
}

func loadConfig(f commonFlags) (*config.Config, int) {
	cfg, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %s\n", err)
		return nil, 1
	}
	logs.SetLevel(cfg.Log.Level)
	return cfg, 0
}

func cmdRun(args []string) int {
	f := parseArgs(args)
	if f.file == "" {
		fmt.Fprintln(os.Stderr, "usage: cie run <file> [--tree] [--dump-tree] [--env] [--json] [--trace <path>] [--config <path>]")
		return 1
	}

	cfg, code := loadConfig(f)
	if code != 0 {
		return code
	}
	pretty := usePretty(f, cfg)

	source, filename, code := readSource(f.file, pretty)
	if code != 0 {
		return code
	}

	traceFile := cfg.Log.TraceFile
	if f.tracePath != "" {
		traceFile = f.tracePath
	}
	logger, closer, err := logs.New(os.Stderr, traceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening trace file: %s\n", err)
		return 1
	}
	if closer != nil {
		defer closer.Close()
	}

	var opts []runtime.Option
	opts = append(opts, runtime.WithLogger(logger))
	if traceFile != "" {
		opts = append(opts, runtime.WithTrace(func(ev interp.TraceEvent) {
			logger.Debug("trace", "event", ev.Event, "detail", ev.Detail)
		}))
	}
	rt := runtime.New(opts...)

	if f.showTree || f.dumpTree {
		tree, terr := rt.Tree(source, filename)
		if terr != nil {
			return reportError(terr, pretty)
		}
		fmt.Print(tree)
		if f.dumpTree {
			return 0
		}
	}

	env, runErr := rt.Run(source, filename)
	if runErr != nil {
		return reportError(runErr, pretty)
	}

	if f.dumpEnv || cfg.Run.DumpEnv {
		fmt.Print(env.Dump())
	}
	return 0
}

func cmdCheck(args []string) int {
	f := parseArgs(args)
	if f.file == "" {
		fmt.Fprintln(os.Stderr, "usage: cie check <file> [--json] [--config <path>]")
		return 1
	}

	cfg, code := loadConfig(f)
	if code != 0 {
		return code
	}
	pretty := usePretty(f, cfg)

	source, filename, code := readSource(f.file, pretty)
	if code != 0 {
		return code
	}

	diags := runtime.New().Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}
	if pretty {
		fmt.Println(successStyle.Render(fmt.Sprintf("%s: no problems found", filename)))
	}
	return 0
}

func cmdTree(args []string) int {
	f := parseArgs(args)
	if f.file == "" {
		fmt.Fprintln(os.Stderr, "usage: cie tree <file> [--out <path>] [--json] [--config <path>]")
		return 1
	}

	cfg, code := loadConfig(f)
	if code != 0 {
		return code
	}
	pretty := usePretty(f, cfg)

	source, filename, code := readSource(f.file, pretty)
	if code != 0 {
		return code
	}

	tree, err := runtime.New().Tree(source, filename)
	if err != nil {
		return reportError(err, pretty)
	}
	if f.outPath != "" {
		if werr := os.WriteFile(f.outPath, []byte(tree), 0o644); werr != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %s\n", f.outPath, werr)
			return 1
		}
		return 0
	}
	fmt.Print(tree)
	return 0
}

// reportError prints a diagnostic for any runtime failure and maps it to
// an exit code: 2 for compile-time diagnostics, 4 for runtime errors.
func reportError(err error, pretty bool) int {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		return 2
	}
	var rtErr *interp.RuntimeError
	if errors.As(err, &rtErr) {
		diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.Span, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return 4
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 4
}

func readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %s\n", err)
			return "", "", 1
		}
		return string(data), "<stdin>", 0
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", "", 1
	}
	return string(source), file, 0
}

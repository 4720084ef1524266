package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/midlang/midlang/midlang"
)

const scriptExt = ".mscpt"

var (
	diagnosticStyle = lipgloss.NewStyle().Foreground(errorColor)
	locationStyle   = lipgloss.NewStyle().Foreground(highlightColor).Bold(true)
	frameStyle      = lipgloss.NewStyle().Foreground(mutedColor)
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "repl":
		return runREPL()
	case "fmt":
		return fmtCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	configPath := fs.String("config", "", "load run settings from a YAML file")
	stepQuota := fs.Int("step-quota", 0, "maximum number of dispatched lines")
	recursionLimit := fs.Int("recursion-limit", 0, "maximum nesting of if/loop/call bodies")
	checkOnly := fs.Bool("check", false, "only analyze the script without executing")
	strict := fs.Bool("strict", false, "fail if any diagnostic is reported")
	trace := fs.Bool("trace", false, "log every dispatched line to stderr")
	var vars varList
	fs.Var(&vars, "var", "bind a variable before the run, as name=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("midlang run: script path required")
	}
	scriptPath := remaining[0]
	if filepath.Ext(scriptPath) != scriptExt {
		return fmt.Errorf("midlang run: %s is not a %s script", scriptPath, scriptExt)
	}
	absScriptPath, err := filepath.Abs(scriptPath)
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(absScriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	var settings runSettings
	if *configPath != "" {
		if settings, err = loadConfig(*configPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "step-quota":
			settings.StepQuota = *stepQuota
		case "recursion-limit":
			settings.RecursionLimit = *recursionLimit
		case "strict":
			settings.Strict = *strict
		case "trace":
			settings.Trace = *trace
		}
	})
	vars.apply(&settings)
	if err := settings.validate(); err != nil {
		return fmt.Errorf("midlang run: %w", err)
	}

	if *checkOnly {
		diags := midlang.Check(string(input))
		for _, diag := range diags {
			fmt.Fprintln(os.Stderr, renderDiagnostic(absScriptPath, diag))
		}
		if len(diags) > 0 {
			return fmt.Errorf("check found %d issue(s)", len(diags))
		}
		return nil
	}

	cfg := midlang.Config{
		StepQuota:      settings.StepQuota,
		RecursionLimit: settings.RecursionLimit,
	}
	if settings.Trace {
		logger := newTraceLogger(os.Stderr).With().Str("script", absScriptPath).Logger()
		cfg.Logger = &logger
	}
	engine, err := midlang.NewEngine(cfg)
	if err != nil {
		return err
	}
	globals := evaluateVars(engine, settings)

	stderr := os.Stderr
	interp := engine.NewInterpreter(midlang.Options{
		Stdout:  os.Stdout,
		Stderr:  stderr,
		Globals: globals,
		OnDiagnostic: func(diag *midlang.Diagnostic) {
			fmt.Fprintln(stderr, renderDiagnostic(absScriptPath, diag))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := interp.Run(ctx, string(input)); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if count := len(interp.Diagnostics()); settings.Strict && count > 0 {
		return fmt.Errorf("midlang run: %d diagnostic(s) reported", count)
	}
	return nil
}

// evaluateVars resolves -var and config values. Literals and arithmetic are
// evaluated; bare words and anything that fails to evaluate bind as strings.
func evaluateVars(engine *midlang.Engine, settings runSettings) map[string]midlang.Value {
	if len(settings.Vars) == 0 {
		return nil
	}
	scratch := engine.NewInterpreter(midlang.Options{Stdout: io.Discard, Stderr: io.Discard})
	globals := make(map[string]midlang.Value, len(settings.Vars))
	for _, name := range settings.varNames() {
		raw := settings.Vars[name]
		globals[name] = midlang.NewString(raw)
		expr, err := midlang.ParseExpression(raw)
		if err != nil {
			continue
		}
		switch expr.(type) {
		case *midlang.VariableRef, *midlang.InterpolatedExpr:
			continue
		}
		if val, err := scratch.Evaluate(raw); err == nil {
			globals[name] = val
		}
	}
	return globals
}

func newTraceLogger(w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()
}

// renderDiagnostic formats a diagnostic as path:line:col followed by the
// code frame and the enclosing bodies.
func renderDiagnostic(path string, diag *midlang.Diagnostic) string {
	var b strings.Builder
	location := fmt.Sprintf("%s:%d:%d:", path, max(diag.Pos.Line, 1), max(diag.Pos.Column, 1))
	b.WriteString(locationStyle.Render(location))
	b.WriteString(" ")
	message := diag.Message
	if diag.Cause != nil {
		message += " (" + diag.Cause.Error() + ")"
	}
	b.WriteString(diagnosticStyle.Render(message))
	if frame := diag.CodeFrame(); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	for i := len(diag.Frames) - 1; i >= 0; i-- {
		f := diag.Frames[i]
		b.WriteString("\n")
		b.WriteString(frameStyle.Render(fmt.Sprintf("  in %s (line %d)", f.Command, f.Line)))
	}
	return b.String()
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintf(os.Stderr, "  run [flags] <script%s>   execute a script\n", scriptExt)
	fmt.Fprintln(os.Stderr, "  repl                      start an interactive session")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] <paths> format scripts")
	fmt.Fprintln(os.Stderr, "  analyze <script>          report problems without running")
	fmt.Fprintln(os.Stderr, "  lsp                       serve the language server over stdio")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  -config <file>")
	fmt.Fprintln(os.Stderr, "    load step_quota, recursion_limit, strict, trace and vars from YAML")
	fmt.Fprintln(os.Stderr, "  -step-quota int")
	fmt.Fprintln(os.Stderr, "    maximum number of dispatched lines (default 100000)")
	fmt.Fprintln(os.Stderr, "  -recursion-limit int")
	fmt.Fprintln(os.Stderr, "    maximum nesting of if/loop/call bodies (default 64)")
	fmt.Fprintln(os.Stderr, "  -var name=value")
	fmt.Fprintln(os.Stderr, "    bind a variable before the run (repeatable)")
	fmt.Fprintln(os.Stderr, "  -check")
	fmt.Fprintln(os.Stderr, "    only analyze the script without executing")
	fmt.Fprintln(os.Stderr, "  -strict")
	fmt.Fprintln(os.Stderr, "    fail if any diagnostic is reported")
	fmt.Fprintln(os.Stderr, "  -trace")
	fmt.Fprintln(os.Stderr, "    log every dispatched line to stderr")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

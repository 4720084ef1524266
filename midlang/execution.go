package midlang

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Interpreter executes MidLang lines against one persistent environment.
// It is not safe for concurrent use.
type Interpreter struct {
	engine       *Engine
	env          *Env
	stdout       io.Writer
	stderr       io.Writer
	onDiagnostic func(*Diagnostic)
	diagnostics  []*Diagnostic
	runID        uuid.UUID
	logger       zerolog.Logger
}

// execution carries the bounded state of one Run or Execute call.
type execution struct {
	interp *Interpreter
	ctx    context.Context
	steps  int
	depth  int
	line   int
	source string
	frames []StackFrame
}

// Env returns the interpreter's global bindings.
func (in *Interpreter) Env() *Env { return in.env }

// RunID identifies this interpreter in trace log events.
func (in *Interpreter) RunID() uuid.UUID { return in.runID }

// Diagnostics returns every diagnostic reported so far.
func (in *Interpreter) Diagnostics() []*Diagnostic {
	return append([]*Diagnostic(nil), in.diagnostics...)
}

// Run splits script on newlines and executes each line in order. Diagnostics
// do not stop the run; an exhausted step quota, recursion limit or a
// cancelled context does.
func (in *Interpreter) Run(ctx context.Context, script string) error {
	exec := in.newExecution(ctx)
	script = strings.ReplaceAll(script, "\r\n", "\n")
	lines := strings.Split(script, "\n")
	in.logger.Debug().Int("lines", len(lines)).Msg("run started")
	for i, line := range lines {
		exec.line = i + 1
		exec.source = line
		if err := exec.dispatch(line); err != nil {
			in.logger.Debug().Err(err).Int("line", exec.line).Msg("run aborted")
			return fmt.Errorf("line %d: %w", exec.line, err)
		}
	}
	in.logger.Debug().Int("steps", exec.steps).Int("diagnostics", len(in.diagnostics)).Msg("run finished")
	return nil
}

// Execute runs a single line outside a script, as the REPL does.
func (in *Interpreter) Execute(ctx context.Context, line string) error {
	exec := in.newExecution(ctx)
	exec.source = line
	return exec.dispatch(line)
}

// Evaluate resolves an expression against the current environment. Failures
// return NaN with the error; nothing is reported.
func (in *Interpreter) Evaluate(expr string) (Value, error) {
	return evaluate(in.env, expr)
}

func (in *Interpreter) newExecution(ctx context.Context) *execution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &execution{interp: in, ctx: ctx}
}

func (exec *execution) step() error {
	exec.steps++
	quota := exec.interp.engine.config.StepQuota
	if quota > 0 && exec.steps > quota {
		return fmt.Errorf("%w (%d)", ErrStepQuotaExceeded, quota)
	}
	select {
	case <-exec.ctx.Done():
		return exec.ctx.Err()
	default:
	}
	return nil
}

// dispatch runs one line of text. Only fatal errors are returned.
func (exec *execution) dispatch(text string) error {
	if err := exec.step(); err != nil {
		return err
	}
	cmd, ok := ParseLine(text)
	if !ok {
		return nil
	}

	exec.interp.logger.Trace().
		Int("line", exec.line).
		Int("depth", exec.depth).
		Str("command", cmd.Keyword).
		Strs("args", cmd.Args).
		Msg("dispatch")

	switch cmd.Keyword {
	case CmdLet:
		exec.execLet(cmd)
	case CmdPrint:
		exec.execPrint(cmd)
	case CmdIf:
		return exec.execIf(cmd)
	case CmdFunc:
		exec.execFunc(cmd)
	case CmdCall:
		return exec.execCall(cmd)
	case CmdLoop:
		return exec.execLoop(cmd)
	default:
		exec.report(UnknownCommand, fmt.Sprintf("Unknown command: %s", cmd.Keyword), cmd.Keyword, nil)
	}
	return nil
}

// nested dispatches body on behalf of an enclosing construct.
func (exec *execution) nested(frame string, body string) error {
	limit := exec.interp.engine.config.RecursionLimit
	if exec.depth >= limit {
		return fmt.Errorf("%w (limit %d)", ErrRecursionLimit, limit)
	}
	exec.depth++
	exec.frames = append(exec.frames, StackFrame{Command: frame, Line: exec.line})
	defer func() {
		exec.depth--
		exec.frames = exec.frames[:len(exec.frames)-1]
	}()
	return exec.dispatch(body)
}

// evaluate resolves expr, reporting a diagnostic and returning NaN on failure.
func (exec *execution) evaluate(expr string) Value {
	val, err := evaluate(exec.interp.env, expr)
	if err != nil {
		exec.report(EvaluationFailure, fmt.Sprintf("Error evaluating expression: %s", expr), expr, err)
		return NaN()
	}
	return val
}

func (exec *execution) report(kind DiagnosticKind, message, near string, cause error) {
	diag := &Diagnostic{
		Kind:    kind,
		Message: message,
		Pos:     Position{Line: exec.line, Column: exec.column(near, cause)},
		Source:  exec.source,
		Frames:  append([]StackFrame(nil), exec.frames...),
		Cause:   cause,
	}
	in := exec.interp
	in.diagnostics = append(in.diagnostics, diag)
	in.logger.Debug().
		Str("kind", string(kind)).
		Int("line", exec.line).
		Msg(message)
	if in.onDiagnostic != nil {
		in.onDiagnostic(diag)
		return
	}
	fmt.Fprintln(in.stderr, diag.Error())
}

// column locates near within the current source line. Parse errors shift the
// caret to the offending token.
func (exec *execution) column(near string, cause error) int {
	idx := strings.Index(exec.source, near)
	if near == "" || idx < 0 {
		idx = len(exec.source) - len(strings.TrimLeft(exec.source, " \t"))
		return idx + 1
	}
	if perr, ok := cause.(*parseError); ok {
		trimmed := strings.TrimLeft(near, " \t")
		idx += len(near) - len(trimmed) + perr.offset
	}
	return idx + 1
}

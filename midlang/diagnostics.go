package midlang

import (
	"errors"
	"fmt"
	"strings"
)

// DiagnosticKind classifies a non-fatal problem reported while running a line.
type DiagnosticKind string

const (
	UnknownCommand    DiagnosticKind = "UnknownCommand"
	UndefinedFunction DiagnosticKind = "UndefinedFunction"
	EvaluationFailure DiagnosticKind = "ExpressionEvaluationFailure"
)

var (
	ErrStepQuotaExceeded = errors.New("step quota exceeded")
	ErrRecursionLimit    = errors.New("recursion depth exceeded")
)

// Position identifies a 1-based line and column in a script. Line is zero for
// lines executed outside a script run.
type Position struct {
	Line   int
	Column int
}

// StackFrame records an enclosing construct that re-dispatched a body.
type StackFrame struct {
	Command string
	Line    int
}

// Diagnostic describes one reported problem. The run continues after it.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Pos     Position
	Source  string
	Frames  []StackFrame
	Cause   error
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Pos.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", d.Pos.Line)
	}
	b.WriteString(d.Message)
	if d.Cause != nil {
		fmt.Fprintf(&b, " (%v)", d.Cause)
	}
	for i := len(d.Frames) - 1; i >= 0; i-- {
		frame := d.Frames[i]
		if frame.Line > 0 {
			fmt.Fprintf(&b, "\n  in %s (line %d)", frame.Command, frame.Line)
		} else {
			fmt.Fprintf(&b, "\n  in %s", frame.Command)
		}
	}
	return b.String()
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

// CodeFrame renders the offending line with a caret, or "" when the
// diagnostic has no line.
func (d *Diagnostic) CodeFrame() string {
	return formatCodeFrame(d.Source, d.Pos)
}

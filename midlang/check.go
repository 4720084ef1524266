package midlang

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Check reports the problems a run of source would report, without running
// it. Calls are checked against every function defined anywhere in the
// script, since definitions may follow their first use inside a body.
func Check(source string) []*Diagnostic {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	c := &checker{
		functions: make(map[string]struct{}),
		variables: make(map[string]struct{}),
	}
	for _, line := range lines {
		if cmd, ok := ParseLine(line); ok {
			c.collect(cmd)
		}
	}
	for i, line := range lines {
		cmd, ok := ParseLine(line)
		if !ok {
			continue
		}
		c.line = i + 1
		c.source = line
		c.check(cmd, nil)
	}
	sort.SliceStable(c.diagnostics, func(i, j int) bool {
		a, b := c.diagnostics[i].Pos, c.diagnostics[j].Pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return c.diagnostics
}

type checker struct {
	functions   map[string]struct{}
	variables   map[string]struct{}
	line        int
	source      string
	diagnostics []*Diagnostic
}

// collect records names bound by func and let, including inside bodies.
func (c *checker) collect(cmd Command) {
	switch cmd.Keyword {
	case CmdFunc:
		if len(cmd.Args) > 0 {
			c.functions[cmd.Args[0]] = struct{}{}
		}
		c.collectBody(cmd.Rest(1))
	case CmdLet:
		if len(cmd.Args) > 0 {
			c.variables[cmd.Args[0]] = struct{}{}
		}
	case CmdLoop:
		c.collectBody(cmd.Rest(1))
	case CmdIf:
		if _, action, ok := SplitConditional(cmd.Args); ok {
			c.collectBody(strings.Join(action, " "))
		}
	}
}

func (c *checker) collectBody(body string) {
	if cmd, ok := ParseLine(body); ok {
		c.collect(cmd)
	}
}

func (c *checker) check(cmd Command, frames []StackFrame) {
	switch cmd.Keyword {
	case CmdLet:
		if len(cmd.Args) > 1 {
			c.checkExpression(cmd.Rest(1), frames)
		}
	case CmdPrint:
		if len(cmd.Args) > 0 {
			c.checkExpression(cmd.Rest(0), frames)
		}
	case CmdIf:
		condition, action, ok := SplitConditional(cmd.Args)
		if !ok {
			c.add(EvaluationFailure, fmt.Sprintf("Error evaluating expression: %s", cmd.Rest(0)), cmd.Keyword, frames,
				errors.New("if requires a condition and an action"))
			return
		}
		c.checkExpression(strings.Join(condition, " "), frames)
		c.checkBody(strings.Join(action, " "), CmdIf, frames)
	case CmdFunc:
		if len(cmd.Args) > 0 {
			c.checkBody(cmd.Rest(1), CmdFunc+" "+cmd.Args[0], frames)
		}
	case CmdCall:
		if len(cmd.Args) == 0 {
			c.add(UndefinedFunction, "call requires a function name", cmd.Keyword, frames, nil)
			return
		}
		if _, ok := c.functions[cmd.Args[0]]; !ok {
			c.add(UndefinedFunction, fmt.Sprintf("Function %s not defined", cmd.Args[0]), cmd.Args[0], frames, nil)
		}
	case CmdLoop:
		if len(cmd.Args) == 0 {
			c.add(EvaluationFailure, "Error evaluating expression: loop count", cmd.Keyword, frames,
				errors.New("loop requires a count"))
			return
		}
		if _, err := strconv.ParseInt(cmd.Args[0], 10, 64); err != nil {
			c.checkExpression(cmd.Args[0], frames)
		}
		c.checkBody(cmd.Rest(1), CmdLoop+" "+cmd.Args[0], frames)
	default:
		c.add(UnknownCommand, fmt.Sprintf("Unknown command: %s", cmd.Keyword), cmd.Keyword, frames, nil)
	}
}

func (c *checker) checkBody(body, frame string, frames []StackFrame) {
	cmd, ok := ParseLine(body)
	if !ok {
		return
	}
	nested := append(append([]StackFrame(nil), frames...), StackFrame{Command: frame, Line: c.line})
	c.check(cmd, nested)
}

func (c *checker) checkExpression(expr string, frames []StackFrame) {
	if _, ok := c.variables[strings.TrimSpace(expr)]; ok {
		return
	}
	if _, err := ParseExpression(expr); err != nil {
		c.add(EvaluationFailure, fmt.Sprintf("Error evaluating expression: %s", expr), expr, frames, err)
	}
}

func (c *checker) add(kind DiagnosticKind, message, near string, frames []StackFrame, cause error) {
	column := strings.Index(c.source, near) + 1
	if column <= 0 {
		column = len(c.source) - len(strings.TrimLeft(c.source, " \t")) + 1
	}
	if perr, ok := cause.(*parseError); ok {
		column += perr.offset
	}
	c.diagnostics = append(c.diagnostics, &Diagnostic{
		Kind:    kind,
		Message: message,
		Pos:     Position{Line: c.line, Column: column},
		Source:  c.source,
		Frames:  frames,
		Cause:   cause,
	})
}

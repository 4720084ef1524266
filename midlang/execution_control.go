package midlang

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// execLet binds a name to the value of the rest of the line. A missing name
// is ignored; a missing expression binds undefined.
func (exec *execution) execLet(cmd Command) {
	if len(cmd.Args) == 0 {
		return
	}
	name := cmd.Args[0]
	if len(cmd.Args) == 1 {
		exec.interp.env.Assign(name, NewUndefined())
		return
	}
	exec.interp.env.Assign(name, exec.evaluate(cmd.Rest(1)))
}

func (exec *execution) execPrint(cmd Command) {
	if len(cmd.Args) == 0 {
		fmt.Fprintln(exec.interp.stdout)
		return
	}
	val := exec.evaluate(cmd.Rest(0))
	fmt.Fprintln(exec.interp.stdout, val.String())
}

func (exec *execution) execIf(cmd Command) error {
	condition, action, ok := SplitConditional(cmd.Args)
	if !ok {
		exec.report(EvaluationFailure, fmt.Sprintf("Error evaluating expression: %s", cmd.Rest(0)), cmd.Rest(0),
			errors.New("if requires a condition and an action"))
		return nil
	}
	if !exec.evaluate(strings.Join(condition, " ")).Truthy() {
		return nil
	}
	return exec.nested(CmdIf, strings.Join(action, " "))
}

// execFunc stores the body text as written; it is tokenized again on every
// call so names in it resolve at call time.
func (exec *execution) execFunc(cmd Command) {
	if len(cmd.Args) == 0 {
		return
	}
	exec.interp.env.DefineFunction(cmd.Args[0], cmd.Rest(1))
}

func (exec *execution) execCall(cmd Command) error {
	if len(cmd.Args) == 0 {
		exec.report(UndefinedFunction, "call requires a function name", "", nil)
		return nil
	}
	name := cmd.Args[0]
	body, ok := exec.interp.env.Function(name)
	if !ok {
		exec.report(UndefinedFunction, fmt.Sprintf("Function %s not defined", name), name, nil)
		return nil
	}
	return exec.nested(CmdCall+" "+name, body)
}

func (exec *execution) execLoop(cmd Command) error {
	if len(cmd.Args) == 0 {
		exec.report(EvaluationFailure, "Error evaluating expression: loop count", "",
			errors.New("loop requires a count"))
		return nil
	}
	count := exec.loopCount(cmd.Args[0])
	body := cmd.Rest(1)
	frame := CmdLoop + " " + cmd.Args[0]
	for i := int64(0); i < count; i++ {
		if err := exec.nested(frame, body); err != nil {
			return err
		}
	}
	return nil
}

// loopCount accepts an integer literal or any expression yielding a finite
// number. Everything else is reported and counts as zero iterations, as do
// negative counts.
func (exec *execution) loopCount(token string) int64 {
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return max(n, 0)
	}
	val, err := evaluate(exec.interp.env, token)
	if err == nil && (!val.IsNumber() || val.IsNaN() || math.IsInf(val.Float(), 0)) {
		err = fmt.Errorf("loop count is %s, not a number", val)
	}
	if err != nil {
		exec.report(EvaluationFailure, fmt.Sprintf("Error evaluating expression: %s", token), token, err)
		return 0
	}
	return max(val.Int(), 0)
}

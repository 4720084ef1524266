package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/midlang/midlang/midlang"
)

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("midlang analyze: script path required")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	diags := midlang.Check(string(input))
	if len(diags) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, diag := range diags {
		line := max(diag.Pos.Line, 1)
		column := max(diag.Pos.Column, 1)
		message := diag.Message
		if diag.Cause != nil {
			message = fmt.Sprintf("%s (%v)", message, diag.Cause)
		}
		if len(diag.Frames) > 0 {
			message = fmt.Sprintf("%s [in %s]", message, diag.Frames[len(diag.Frames)-1].Command)
		}
		fmt.Printf("%s:%d:%d: %s\n", scriptPath, line, column, message)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(diags))
}

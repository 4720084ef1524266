package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/midlang/midlang/midlang"
)

type fmtMode int

const (
	fmtPrint fmtMode = iota
	fmtWrite
	fmtCheck
)

func fmtCommand(args []string) error {
	flags := flag.NewFlagSet("fmt", flag.ContinueOnError)
	flags.SetOutput(new(flagErrorSink))
	write := flags.Bool("w", false, "write result to source files instead of stdout")
	check := flags.Bool("check", false, "fail if any source file needs formatting")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return errors.New("midlang fmt: path required")
	}

	mode := fmtPrint
	switch {
	case *check:
		mode = fmtCheck
	case *write:
		mode = fmtWrite
	}

	files, err := collectScriptFiles(flags.Args())
	if err != nil {
		return err
	}
	pending := 0
	for _, path := range files {
		changed, err := formatFile(path, mode)
		if err != nil {
			return err
		}
		if changed && mode == fmtCheck {
			fmt.Println(path)
			pending++
		}
	}
	if pending > 0 {
		return fmt.Errorf("midlang fmt: %d file(s) need formatting", pending)
	}
	return nil
}

// formatFile formats one script according to mode and reports whether its
// contents differ from the canonical layout.
func formatFile(path string, mode fmtMode) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	formatted := midlang.Format(string(original))
	changed := formatted != string(original)

	switch mode {
	case fmtPrint:
		fmt.Print(formatted)
	case fmtWrite:
		if changed {
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return changed, fmt.Errorf("write %s: %w", path, err)
			}
		}
	}
	return changed, nil
}

// collectScriptFiles expands targets into the sorted, de-duplicated list of
// .mscpt files they name. Directories are walked recursively; explicitly
// named files with another extension are skipped.
func collectScriptFiles(targets []string) ([]string, error) {
	var files []string
	add := func(path string) error {
		if filepath.Ext(path) != scriptExt {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		files = append(files, abs)
		return nil
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			if err := add(target); err != nil {
				return nil, err
			}
			continue
		}
		walkErr := filepath.WalkDir(target, func(path string, entry fs.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return err
			}
			return add(path)
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", target, walkErr)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

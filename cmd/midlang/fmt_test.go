package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const unformattedScript = "  let   x   1  \n\tprint  \"x is\"\t x\n\n\n"

func TestFmtCommandRequiresPath(t *testing.T) {
	err := fmtCommand(nil)
	if err == nil {
		t.Fatalf("expected path required error")
	}
	if !strings.Contains(err.Error(), "path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandCheckDetectsUnformattedFiles(t *testing.T) {
	path := writeScript(t, unformattedScript)
	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{"-check", path})
	})
	if err == nil {
		t.Fatalf("expected formatting check failure")
	}
	if !strings.Contains(err.Error(), "need formatting") {
		t.Fatalf("unexpected check error: %v", err)
	}
	if !strings.Contains(out, "script.mscpt") {
		t.Fatalf("expected unformatted path in output, got %q", out)
	}
}

func TestFmtCommandWriteFormatsFileInPlace(t *testing.T) {
	path := writeScript(t, unformattedScript)
	if err := fmtCommand([]string{"-w", path}); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read formatted file: %v", err)
	}
	if got := string(updated); got != "let x 1\nprint \"x is\" x\n" {
		t.Fatalf("unexpected formatted output: %q", got)
	}
}

func TestFmtCommandPrintsFormattedOutput(t *testing.T) {
	path := writeScript(t, unformattedScript)
	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{path})
	})
	if err != nil {
		t.Fatalf("fmt command failed: %v", err)
	}
	if out != "let x 1\nprint \"x is\" x\n" {
		t.Fatalf("unexpected stdout output: %q", out)
	}
}

func TestFmtCommandFormatsDirectories(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a.mscpt")
	second := filepath.Join(root, "nested", "b.mscpt")
	ignored := filepath.Join(root, "notes.txt")
	if err := os.MkdirAll(filepath.Dir(second), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	if err := os.WriteFile(first, []byte("print   1  \n"), 0o644); err != nil {
		t.Fatalf("write first file: %v", err)
	}
	if err := os.WriteFile(second, []byte("loop 2\tprint 2\r\n"), 0o644); err != nil {
		t.Fatalf("write second file: %v", err)
	}
	if err := os.WriteFile(ignored, []byte("not   a   script  "), 0o644); err != nil {
		t.Fatalf("write ignored file: %v", err)
	}

	if err := fmtCommand([]string{"-w", root}); err != nil {
		t.Fatalf("fmt directory failed: %v", err)
	}
	if err := fmtCommand([]string{"-check", root}); err != nil {
		t.Fatalf("expected no formatting diffs after write, got %v", err)
	}

	untouched, err := os.ReadFile(ignored)
	if err != nil {
		t.Fatalf("read ignored file: %v", err)
	}
	if string(untouched) != "not   a   script  " {
		t.Fatalf("non-script file was modified: %q", untouched)
	}
}

func TestCollectScriptFilesDedupesAndSorts(t *testing.T) {
	root := t.TempDir()
	b := filepath.Join(root, "b.mscpt")
	a := filepath.Join(root, "a.mscpt")
	for _, path := range []string{a, b} {
		if err := os.WriteFile(path, []byte("print 1\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	files, err := collectScriptFiles([]string{b, root, a})
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.mscpt" || filepath.Base(files[1]) != "b.mscpt" {
		t.Fatalf("expected sorted files, got %v", files)
	}
}

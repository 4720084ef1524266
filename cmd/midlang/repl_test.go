package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/midlang/midlang/midlang"
)

func submit(t *testing.T, m replModel, input string) replModel {
	t.Helper()
	m.input.SetValue(input)
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}
	return rm
}

func lastEntry(t *testing.T, m replModel) transcriptEntry {
	t.Helper()
	if len(m.transcript) == 0 {
		t.Fatalf("expected history entries")
	}
	return m.transcript[len(m.transcript)-1]
}

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newREPLModel()
	m.input.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.input.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateNonQuitCommandDoesNotReturnCmd(t *testing.T) {
	m := newREPLModel()
	m.input.SetValue(":help")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if cmd != nil {
		t.Fatalf("expected no command for non-quit input")
	}
	if rm.quitting {
		t.Fatalf("quitting should remain false")
	}
	if !rm.help.ShowAll {
		t.Fatalf("help toggle should be enabled")
	}
	if rm.input.Value() != "" {
		t.Fatalf("input not cleared after command")
	}
}

func TestREPLStatePersistsAcrossLines(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, "let x 41")
	if entry := lastEntry(t, m); entry.output != "x = 41" || entry.isErr {
		t.Fatalf("unexpected let entry: %#v", entry)
	}

	m = submit(t, m, "let x x + 1")
	m = submit(t, m, "print \"x is\" x")
	entry := lastEntry(t, m)
	if entry.isErr {
		t.Fatalf("unexpected error entry: %#v", entry)
	}
	if entry.output != "x is 42" {
		t.Fatalf("unexpected print output: %q", entry.output)
	}

	x, ok := m.interp.Env().Get("x")
	if !ok || x.Kind() != midlang.KindInt || x.Int() != 42 {
		t.Fatalf("unexpected x binding: %#v", x)
	}
	if len(m.lines.lines) != 3 {
		t.Fatalf("expected 3 commands in history, got %d", len(m.lines.lines))
	}
}

func TestREPLReportsDiagnostics(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, "frobnicate x")
	entry := lastEntry(t, m)
	if !entry.isErr {
		t.Fatalf("expected error entry, got %#v", entry)
	}
	if !strings.Contains(entry.output, "Unknown command: frobnicate") {
		t.Fatalf("unexpected diagnostic output: %q", entry.output)
	}

	m = submit(t, m, "print 1")
	if entry := lastEntry(t, m); entry.isErr || entry.output != "1" {
		t.Fatalf("earlier diagnostics leaked into a later entry: %#v", entry)
	}
}

func TestREPLFunctionsAndLoops(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, "func hi print \"hi\"")
	if entry := lastEntry(t, m); entry.output != "defined hi" {
		t.Fatalf("unexpected func entry: %#v", entry)
	}
	m = submit(t, m, "loop 2 call hi")
	if entry := lastEntry(t, m); entry.output != "hi\nhi" {
		t.Fatalf("unexpected loop output: %q", entry.output)
	}
}

func TestREPLEvalCommand(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, "let a 7")
	m = submit(t, m, ":eval a / 2")
	entry := lastEntry(t, m)
	if entry.isErr || entry.output != "3.5 (float)" {
		t.Fatalf("unexpected eval entry: %#v", entry)
	}

	m = submit(t, m, ":eval 1 +")
	if entry := lastEntry(t, m); !entry.isErr {
		t.Fatalf("expected eval error, got %#v", entry)
	}
}

func TestREPLResetClearsEnvironment(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, "let a 1")
	m = submit(t, m, "func f print a")
	m = submit(t, m, ":reset")

	if vars := m.interp.Env().Variables(); len(vars) != 0 {
		t.Fatalf("expected no variables after reset, got %v", vars)
	}
	if funcs := m.interp.Env().Functions(); len(funcs) != 0 {
		t.Fatalf("expected no functions after reset, got %v", funcs)
	}
	if entry := lastEntry(t, m); entry.output != "Environment reset" {
		t.Fatalf("unexpected reset entry: %#v", entry)
	}
}

func TestREPLUnknownMetaCommand(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, ":frob")
	if entry := lastEntry(t, m); !entry.isErr || !strings.Contains(entry.output, ":frob") {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestREPLAutocomplete(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, "func greet print \"hi\"")
	m = submit(t, m, "let total 3")

	m.input.SetValue("pr")
	m = m.complete()
	if got := m.input.Value(); got != "print" {
		t.Fatalf("expected command completion, got %q", got)
	}

	m.input.SetValue("call gr")
	m = m.complete()
	if got := m.input.Value(); got != "call greet" {
		t.Fatalf("expected function completion, got %q", got)
	}

	m.input.SetValue("print to")
	m = m.complete()
	if got := m.input.Value(); got != "print total" {
		t.Fatalf("expected variable completion, got %q", got)
	}

	m.input.SetValue("l")
	m = m.complete()
	if got := lastEntry(t, m).output; got != "Completions: let, loop" {
		t.Fatalf("unexpected completions: %q", got)
	}
}

func TestREPLHistoryNavigation(t *testing.T) {
	m := newREPLModel()
	m = submit(t, m, "let a 1")
	m = submit(t, m, "print a")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = model.(replModel)
	if got := m.input.Value(); got != "print a" {
		t.Fatalf("expected most recent command, got %q", got)
	}
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = model.(replModel)
	if got := m.input.Value(); got != "let a 1" {
		t.Fatalf("expected first command, got %q", got)
	}
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = model.(replModel)
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = model.(replModel)
	if got := m.input.Value(); got != "" {
		t.Fatalf("expected empty input past the newest command, got %q", got)
	}
}

func TestREPLViewShowsVariablesPanel(t *testing.T) {
	m := newREPLModel()
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = model.(replModel)
	m = submit(t, m, "let answer 42")
	m = submit(t, m, "func f print answer")
	m = submit(t, m, ":vars")

	view := m.View()
	for _, want := range []string{"MidLang REPL", "Variables", "answer", "42", "Functions", "print answer"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

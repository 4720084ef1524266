package midlang

import (
	"testing"
)

func TestCheckReportsStaticProblems(t *testing.T) {
	source := `let x 1
frobnicate
call nope
func later print x
call later
loop abc+ print x
if x print
print "unterminated
loop 2 call ghost`

	diags := Check(source)
	want := []struct {
		kind DiagnosticKind
		line int
	}{
		{UnknownCommand, 2},
		{UndefinedFunction, 3},
		{EvaluationFailure, 6},
		{EvaluationFailure, 8},
		{UndefinedFunction, 9},
	}
	if len(diags) != len(want) {
		for _, d := range diags {
			t.Logf("diagnostic: %v", d)
		}
		t.Fatalf("expected %d diagnostics, got %d", len(want), len(diags))
	}
	for i, w := range want {
		if diags[i].Kind != w.kind || diags[i].Pos.Line != w.line {
			t.Fatalf("diagnostic %d: expected %s on line %d, got %s on line %d", i, w.kind, w.line, diags[i].Kind, diags[i].Pos.Line)
		}
	}
	if len(diags[4].Frames) != 1 || diags[4].Frames[0].Command != "loop 2" {
		t.Fatalf("expected loop frame on nested diagnostic, got %+v", diags[4].Frames)
	}
}

func TestCheckAcceptsFunctionsDefinedInBodies(t *testing.T) {
	source := "loop 1 func greet print \"hi\"\ncall greet\nif 1 func other call greet\ncall other"
	if diags := Check(source); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestCheckAllowsOddVariableNames(t *testing.T) {
	if diags := Check("let a=b 1\nprint a=b"); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestCheckColumnsPointAtOffendingText(t *testing.T) {
	diags := Check("  print 1 +")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if diags[0].Pos.Column != 12 {
		t.Fatalf("expected column 12, got %d", diags[0].Pos.Column)
	}
	frame := diags[0].CodeFrame()
	if frame != "  --> line 1, column 12\n 1 |   print 1 +\n   |            ^" {
		t.Fatalf("unexpected code frame:\n%s", frame)
	}
}

package midlang

import (
	"errors"
	"strings"
	"testing"
)

func TestRecursionLimitExceeded(t *testing.T) {
	_, _, _, err := runScript(t, Config{RecursionLimit: 3}, "func recurse call recurse\ncall recurse\nprint \"unreachable\"")
	if err == nil {
		t.Fatalf("expected recursion depth error")
	}
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected ErrRecursionLimit, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2: recursion depth exceeded (limit 3)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecursionLimitAllowsWithinBound(t *testing.T) {
	source := "func a print \"deep\"\nfunc b call a\nfunc c call b\ncall c"
	_, out, _, err := runScript(t, Config{RecursionLimit: 3}, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "deep\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRecursionLimitDefaultApplies(t *testing.T) {
	_, _, _, err := runScript(t, Config{}, "func forever call forever\ncall forever")
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected ErrRecursionLimit, got %v", err)
	}
	if !strings.Contains(err.Error(), "(limit 64)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStepQuotaStopsLongLoops(t *testing.T) {
	_, out, _, err := runScript(t, Config{StepQuota: 10}, "loop 100 print 1")
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected ErrStepQuotaExceeded, got %v", err)
	}
	if got := strings.Count(out, "\n"); got != 9 {
		t.Fatalf("expected 9 iterations before the quota, got %d", got)
	}
}

func TestStepQuotaCountsEveryLine(t *testing.T) {
	source := strings.Repeat("// filler\n", 5) + "print 1"
	_, _, _, err := runScript(t, Config{StepQuota: 5}, source)
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected ErrStepQuotaExceeded, got %v", err)
	}
}

func TestNewEngineRejectsExcessiveRecursionLimit(t *testing.T) {
	_, err := NewEngine(Config{RecursionLimit: maxRecursionLimit + 1})
	if err == nil {
		t.Fatalf("expected config error")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigSummaryReportsDefaults(t *testing.T) {
	engine := MustNewEngine(Config{})
	if got := engine.ConfigSummary(); got != "steps=100000 recursion=64" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "midlang.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `step_quota: 500
recursion_limit: 12
strict: true
trace: false
vars:
  greeting: "\"hello\""
  count: "3"
`)

	settings, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if settings.StepQuota != 500 || settings.RecursionLimit != 12 {
		t.Fatalf("unexpected limits: %+v", settings)
	}
	if !settings.Strict || settings.Trace {
		t.Fatalf("unexpected flags: %+v", settings)
	}
	if got := settings.Vars["greeting"]; got != `"hello"` {
		t.Fatalf("unexpected greeting: %q", got)
	}
	if names := settings.varNames(); len(names) != 2 || names[0] != "count" || names[1] != "greeting" {
		t.Fatalf("unexpected var names: %v", names)
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	settings, err := loadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load empty config: %v", err)
	}
	if settings.StepQuota != 0 || len(settings.Vars) != 0 {
		t.Fatalf("expected zero settings, got %+v", settings)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown field", content: "steps: 10\n", want: "field steps not found"},
		{name: "negative quota", content: "step_quota: -1\n", want: "step_quota must not be negative"},
		{name: "negative recursion", content: "recursion_limit: -2\n", want: "recursion_limit must not be negative"},
		{name: "bad var name", content: "vars:\n  \"two words\": 1\n", want: "invalid name"},
		{name: "wrong type", content: "step_quota: lots\n", want: "config: parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config: open") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestVarListApplyOverridesConfig(t *testing.T) {
	settings := runSettings{Vars: map[string]string{"who": "Grace", "n": "1"}}
	var vars varList
	for _, raw := range []string{"who=Ada", "extra=a=b"} {
		if err := vars.Set(raw); err != nil {
			t.Fatalf("set %q: %v", raw, err)
		}
	}
	vars.apply(&settings)

	if settings.Vars["who"] != "Ada" {
		t.Fatalf("expected flag to override config, got %q", settings.Vars["who"])
	}
	if settings.Vars["n"] != "1" {
		t.Fatalf("config var lost: %v", settings.Vars)
	}
	if settings.Vars["extra"] != "a=b" {
		t.Fatalf("expected value to keep later equals signs, got %q", settings.Vars["extra"])
	}
}

func TestVarListRejectsMissingName(t *testing.T) {
	var vars varList
	for _, raw := range []string{"noequals", "=value"} {
		if err := vars.Set(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

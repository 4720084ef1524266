package midlang

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInterpreterLogsCarryRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	engine := MustNewEngine(Config{Logger: &logger})
	interp := engine.NewInterpreter(Options{Stdout: io.Discard, Stderr: io.Discard})

	if err := interp.Run(context.Background(), "let x 1\nfrobnicate\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected start, diagnostic and finish events, got %q", buf.String())
	}
	var messages []string
	for _, line := range lines {
		var event map[string]any
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if event["run_id"] != interp.RunID().String() {
			t.Fatalf("expected run_id %s, got %v", interp.RunID(), event["run_id"])
		}
		messages = append(messages, event["message"].(string))
	}
	if messages[0] != "run started" || messages[len(messages)-1] != "run finished" {
		t.Fatalf("unexpected event order: %v", messages)
	}
	if !strings.Contains(strings.Join(messages, "|"), "Unknown command: frobnicate") {
		t.Fatalf("expected diagnostic event, got %v", messages)
	}
}

func TestInterpretersHaveDistinctRunIDs(t *testing.T) {
	engine := MustNewEngine(Config{})
	a := engine.NewInterpreter(Options{Stdout: io.Discard, Stderr: io.Discard})
	b := engine.NewInterpreter(Options{Stdout: io.Discard, Stderr: io.Discard})
	if a.RunID() == b.RunID() {
		t.Fatalf("expected distinct run ids, both %s", a.RunID())
	}
}

func TestInterpretersFromOneEngineAreIndependent(t *testing.T) {
	engine := MustNewEngine(Config{})
	a := engine.NewInterpreter(Options{Stdout: io.Discard, Stderr: io.Discard})
	b := engine.NewInterpreter(Options{Stdout: io.Discard, Stderr: io.Discard})

	if err := a.Run(context.Background(), "let shared 1\nfunc f print 1"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, ok := b.Env().Get("shared"); ok {
		t.Fatalf("variable leaked between interpreters")
	}
	if _, ok := b.Env().Function("f"); ok {
		t.Fatalf("function leaked between interpreters")
	}
}

func TestMustNewEnginePanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustNewEngine(Config{RecursionLimit: maxRecursionLimit + 1})
}

package midlang

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultStepQuota      = 100000
	defaultRecursionLimit = 64
	maxRecursionLimit     = 10000
)

// Config controls interpreter execution bounds and tracing.
type Config struct {
	StepQuota      int
	RecursionLimit int
	Logger         *zerolog.Logger
}

// Engine creates interpreters that share one configuration.
type Engine struct {
	config Config
	logger zerolog.Logger
}

// NewEngine constructs an Engine, filling unset limits with defaults.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.StepQuota <= 0 {
		cfg.StepQuota = defaultStepQuota
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = defaultRecursionLimit
	}
	if cfg.RecursionLimit > maxRecursionLimit {
		return nil, fmt.Errorf("midlang: recursion limit %d exceeds maximum %d", cfg.RecursionLimit, maxRecursionLimit)
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Engine{config: cfg, logger: logger}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Options configures the sinks and initial bindings of one interpreter.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Globals are bound as variables before the first line runs.
	Globals map[string]Value
	// OnDiagnostic, when set, receives diagnostics instead of Stderr.
	OnDiagnostic func(*Diagnostic)
}

// NewInterpreter returns an interpreter with a fresh environment.
func (e *Engine) NewInterpreter(opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	env := newEnv()
	for name, val := range opts.Globals {
		env.Assign(name, val)
	}
	runID := uuid.New()
	return &Interpreter{
		engine:       e,
		env:          env,
		stdout:       opts.Stdout,
		stderr:       opts.Stderr,
		onDiagnostic: opts.OnDiagnostic,
		runID:        runID,
		logger:       e.logger.With().Str("run_id", runID.String()).Logger(),
	}
}

// ConfigSummary provides a human-readable description of the interpreter limits.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("steps=%d recursion=%d", e.config.StepQuota, e.config.RecursionLimit)
}

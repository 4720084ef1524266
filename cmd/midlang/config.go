package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// runSettings holds the options of one `run` invocation after the config
// file and command-line flags have been merged.
type runSettings struct {
	StepQuota      int               `yaml:"step_quota"`
	RecursionLimit int               `yaml:"recursion_limit"`
	Strict         bool              `yaml:"strict"`
	Trace          bool              `yaml:"trace"`
	Vars           map[string]string `yaml:"vars"`
}

func loadConfig(path string) (runSettings, error) {
	var settings runSettings
	if strings.TrimSpace(path) == "" {
		return settings, errors.New("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return settings, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return settings, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil {
		if errors.Is(err, io.EOF) {
			return runSettings{}, nil
		}
		return runSettings{}, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	if err := settings.validate(); err != nil {
		return runSettings{}, fmt.Errorf("config: %s: %w", absPath, err)
	}
	return settings, nil
}

func (s runSettings) validate() error {
	var issues []string
	if s.StepQuota < 0 {
		issues = append(issues, "step_quota must not be negative")
	}
	if s.RecursionLimit < 0 {
		issues = append(issues, "recursion_limit must not be negative")
	}
	for _, name := range s.varNames() {
		if name == "" || strings.ContainsAny(name, " \t") {
			issues = append(issues, fmt.Sprintf("vars: invalid name %q", name))
		}
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

// varNames lists the configured variable names in a stable order.
func (s runSettings) varNames() []string {
	names := make([]string, 0, len(s.Vars))
	for name := range s.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// varList collects repeated -var name=value flags.
type varList []string

func (l *varList) String() string {
	return strings.Join(*l, ",")
}

func (l *varList) Set(value string) error {
	name, _, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid -var %q: expected name=value", value)
	}
	*l = append(*l, value)
	return nil
}

// apply merges the flags into the settings; later flags win.
func (l varList) apply(s *runSettings) {
	if len(l) == 0 {
		return
	}
	if s.Vars == nil {
		s.Vars = make(map[string]string, len(l))
	}
	for _, entry := range l {
		name, value, _ := strings.Cut(entry, "=")
		s.Vars[strings.TrimSpace(name)] = value
	}
}

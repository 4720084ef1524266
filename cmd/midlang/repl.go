package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/midlang/midlang/midlang"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")
)

type replTheme struct {
	prompt lipgloss.Style
	result lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
	title  lipgloss.Style
	name   lipgloss.Style
	panel  lipgloss.Style
}

func newReplTheme() replTheme {
	return replTheme{
		prompt: lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		result: lipgloss.NewStyle().Foreground(successColor),
		err:    lipgloss.NewStyle().Foreground(errorColor),
		muted:  lipgloss.NewStyle().Foreground(mutedColor),
		header: lipgloss.NewStyle().Foreground(accentColor).Bold(true).Padding(0, 1),
		title:  lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		name:   lipgloss.NewStyle().Foreground(highlightColor),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1),
	}
}

var theme = newReplTheme()

// replKeys implements help.KeyMap so the footer and the full help panel are
// rendered from the same bindings.
type replKeys struct {
	Prev     key.Binding
	Next     key.Binding
	Run      key.Binding
	Complete key.Binding
	Vars     key.Binding
	Help     key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

func (k replKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Vars, k.Clear, k.Quit}
}

func (k replKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.Prev, k.Next, k.Complete},
		{k.Vars, k.Help, k.Clear, k.Quit},
	}
}

var replKeyMap = replKeys{
	Prev:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous line")),
	Next:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next line")),
	Run:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "execute line")),
	Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	Vars:     key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "vars")),
	Help:     key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "help")),
	Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
}

var metaCommands = []struct {
	name string
	desc string
}{
	{":eval <expr>", "show the value of an expression"},
	{":vars", "toggle the variables panel"},
	{":help", "toggle this help"},
	{":clear", "clear the transcript"},
	{":reset", "start over with an empty environment"},
	{":quit", "exit"},
}

type transcriptEntry struct {
	input  string
	output string
	isErr  bool
}

// lineHistory is the list of submitted lines walked with the arrow keys.
// cursor is len(lines) when no recalled line is selected.
type lineHistory struct {
	lines  []string
	cursor int
}

func (h *lineHistory) add(line string) {
	h.lines = append(h.lines, line)
	h.cursor = len(h.lines)
}

func (h *lineHistory) prev() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	h.cursor = max(h.cursor-1, 0)
	return h.lines[h.cursor], true
}

func (h *lineHistory) next() (string, bool) {
	if h.cursor >= len(h.lines) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.lines) {
		return "", true
	}
	return h.lines[h.cursor], true
}

type replModel struct {
	input       textinput.Model
	help        help.Model
	engine      *midlang.Engine
	interp      *midlang.Interpreter
	out         *bytes.Buffer
	transcript  []transcriptEntry
	lines       *lineHistory
	width       int
	height      int
	showVars    bool
	quitting    bool
	initialized bool
}

func newREPLModel() replModel {
	ti := textinput.New()
	ti.Placeholder = "let, print, if, func, call or loop..."
	ti.Prompt = "midlang> "
	ti.PromptStyle = theme.prompt
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	h := help.New()
	h.Styles.ShortKey = theme.name
	h.Styles.FullKey = theme.name
	h.Styles.ShortDesc = theme.muted
	h.Styles.FullDesc = theme.muted

	m := replModel{
		input:  ti,
		help:   h,
		engine: midlang.MustNewEngine(midlang.Config{}),
		out:    new(bytes.Buffer),
		lines:  &lineHistory{},
	}
	m.interp = m.newInterpreter()
	return m
}

func (m replModel) newInterpreter() *midlang.Interpreter {
	return m.engine.NewInterpreter(midlang.Options{
		Stdout: m.out,
		Stderr: io.Discard,
	})
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-10, 10)
		m.help.Width = msg.Width
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, replKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, replKeyMap.Clear):
			m.transcript = nil
			return m, nil
		case key.Matches(msg, replKeyMap.Vars):
			m.showVars = !m.showVars
			return m, nil
		case key.Matches(msg, replKeyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, replKeyMap.Prev):
			if line, ok := m.lines.prev(); ok {
				m.input.SetValue(line)
				m.input.CursorEnd()
			}
			return m, nil
		case key.Matches(msg, replKeyMap.Next):
			if line, ok := m.lines.next(); ok {
				m.input.SetValue(line)
				m.input.CursorEnd()
			}
			return m, nil
		case key.Matches(msg, replKeyMap.Complete):
			return m.complete(), nil
		case key.Matches(msg, replKeyMap.Run):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m replModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if line == "" {
		return m, nil
	}
	if strings.HasPrefix(line, ":") {
		return m.meta(line)
	}

	output, isErr := m.execute(line)
	m.record(line, output, isErr)
	m.lines.add(line)
	return m, nil
}

func (m *replModel) record(input, output string, isErr bool) {
	m.transcript = append(m.transcript, transcriptEntry{input: input, output: output, isErr: isErr})
}

// meta handles the colon-prefixed REPL commands.
func (m replModel) meta(line string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	case ":help", ":h":
		m.help.ShowAll = !m.help.ShowAll
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":clear", ":c":
		m.transcript = nil
	case ":reset", ":r":
		m.interp = m.newInterpreter()
		m.record(line, "Environment reset", false)
	case ":eval", ":e":
		output, isErr := m.eval(strings.TrimSpace(arg))
		m.record(line, output, isErr)
		m.lines.add(line)
	default:
		m.record(line, fmt.Sprintf("Unknown REPL command: %s", name), true)
	}
	return m, nil
}

// complete finishes the word under the cursor: command keywords first, then
// function names after call/func, then variables anywhere else.
func (m replModel) complete() replModel {
	value := m.input.Value()
	words := strings.Fields(value)
	if len(words) == 0 || strings.HasSuffix(value, " ") {
		return m
	}
	partial := words[len(words)-1]

	env := m.interp.Env()
	var pool []string
	switch {
	case len(words) == 1:
		pool = midlang.Commands
	case words[0] == midlang.CmdCall || words[0] == midlang.CmdFunc:
		pool = env.Functions()
	default:
		pool = append(env.Variables(), midlang.Commands...)
	}

	var matches []string
	for _, candidate := range pool {
		if strings.HasPrefix(candidate, partial) && !slices.Contains(matches, candidate) {
			matches = append(matches, candidate)
		}
	}
	slices.Sort(matches)

	switch len(matches) {
	case 0:
	case 1:
		m.input.SetValue(strings.TrimSuffix(value, partial) + matches[0])
		m.input.CursorEnd()
	default:
		m.record("", "Completions: "+strings.Join(matches, ", "), false)
	}
	return m
}

// execute runs one line against the session interpreter and summarizes what
// it printed or reported.
func (m replModel) execute(line string) (string, bool) {
	m.out.Reset()
	seen := len(m.interp.Diagnostics())

	if err := m.interp.Execute(context.Background(), line); err != nil {
		return err.Error(), true
	}

	var parts []string
	if m.out.Len() > 0 {
		parts = append(parts, strings.TrimSuffix(m.out.String(), "\n"))
	}
	reported := m.interp.Diagnostics()[seen:]
	for _, diag := range reported {
		parts = append(parts, diag.Error())
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n"), len(reported) > 0
	}

	cmd, _ := midlang.ParseLine(line)
	if len(cmd.Args) > 0 {
		switch cmd.Keyword {
		case midlang.CmdLet:
			val, _ := m.interp.Env().Get(cmd.Args[0])
			return fmt.Sprintf("%s = %s", cmd.Args[0], val), false
		case midlang.CmdFunc:
			return fmt.Sprintf("defined %s", cmd.Args[0]), false
		}
	}
	return "ok", false
}

func (m replModel) eval(expr string) (string, bool) {
	if expr == "" {
		return "usage: :eval <expression>", true
	}
	val, err := m.interp.Evaluate(expr)
	if err != nil {
		return err.Error(), true
	}
	return fmt.Sprintf("%s (%s)", val, val.Kind()), false
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return theme.muted.Render("Goodbye!\n")
	}

	var panels []string
	if m.showVars {
		panels = append(panels, renderEnvPanel(m.interp.Env()))
	}
	if m.help.ShowAll {
		panels = append(panels, renderMetaPanel())
	}
	footer := m.help.View(replKeyMap)

	var b strings.Builder
	b.WriteString(theme.header.Render("MidLang REPL") + " " + theme.muted.Render(m.engine.ConfigSummary()) + "\n")
	b.WriteString(theme.muted.Render(strings.Repeat("─", max(min(m.width-2, 60), 0))) + "\n\n")

	used := 6 + lipgloss.Height(footer)
	for _, panel := range panels {
		used += lipgloss.Height(panel) + 1
	}
	b.WriteString(m.renderTranscript(m.height - used))

	for _, panel := range panels {
		b.WriteString(panel + "\n")
	}
	b.WriteString(m.input.View() + "\n\n")
	b.WriteString(footer)
	return b.String()
}

// renderTranscript renders the newest entries that fit in budget lines. A
// budget of zero or less shows everything.
func (m replModel) renderTranscript(budget int) string {
	var blocks []string
	limited := budget > 0
	for i := len(m.transcript) - 1; i >= 0; i-- {
		entry := m.transcript[i]
		var b strings.Builder
		if entry.input != "" {
			b.WriteString(theme.muted.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + theme.err.Render("✗ "+entry.output) + "\n")
		} else {
			b.WriteString("  " + theme.result.Render("→ "+entry.output) + "\n")
		}
		block := b.String() + "\n"
		height := strings.Count(block, "\n")
		if limited && height > budget && len(blocks) > 0 {
			break
		}
		budget -= height
		blocks = append(blocks, block)
	}
	slices.Reverse(blocks)
	return strings.Join(blocks, "")
}

func renderEnvPanel(env *midlang.Env) string {
	variables := env.Variables()
	functions := env.Functions()
	if len(variables) == 0 && len(functions) == 0 {
		return theme.panel.Render(theme.muted.Render("No variables or functions defined"))
	}

	var lines []string
	if len(variables) > 0 {
		lines = append(lines, theme.title.Render("Variables"))
		for _, name := range variables {
			val, _ := env.Get(name)
			lines = append(lines, fmt.Sprintf("  %s = %s", theme.name.Render(name), val))
		}
	}
	if len(functions) > 0 {
		lines = append(lines, theme.title.Render("Functions"))
		for _, name := range functions {
			body, _ := env.Function(name)
			lines = append(lines, fmt.Sprintf("  %s: %s", theme.name.Render(name), body))
		}
	}
	return theme.panel.Render(strings.Join(lines, "\n"))
}

func renderMetaPanel() string {
	lines := []string{theme.title.Render("REPL commands")}
	for _, c := range metaCommands {
		lines = append(lines, fmt.Sprintf("  %s  %s", theme.name.Render(fmt.Sprintf("%-13s", c.name)), theme.muted.Render(c.desc)))
	}
	return theme.panel.Render(strings.Join(lines, "\n"))
}

func runREPL() error {
	_, err := tea.NewProgram(newREPLModel(), tea.WithAltScreen()).Run()
	return err
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/qxrlabs/qxr-bridge/bridge"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// fieldSpec describes one editable record field in input order.
type fieldSpec struct {
	key         string
	placeholder string
	parse       func(string) (any, error)
}

var fieldSpecs = []fieldSpec{
	{"strategy", "string", parseString},
	{"timeframe", "string", parseString},
	{"signals", "s32", parseInt},
	{"opportunities", "s32", parseInt},
	{"signal_strength", "f64", parseFloat},
	{"price_min", "f64", parseFloat},
	{"price_max", "f64", parseFloat},
	{"max_liquidity", "s64", parseInt},
	{"platform", "linkedin | twitter | ...", parseString},
}

func parseString(s string) (any, error) { return s, nil }

func parseInt(s string) (any, error) {
	if s == "" {
		return int64(0), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err
}

func parseFloat(s string) (any, error) {
	if s == "" {
		return 0.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err
}

type modelState int

const (
	stateInputFields modelState = iota
	stateShowResult
)

type interactiveModel struct {
	err      error
	host     *bridge.Host
	score    float64
	content  string
	platform string
	inputs   []textinput.Model
	focusIdx int
	state    modelState
}

type scoreResultMsg struct {
	err      error
	score    float64
	content  string
	platform string
}

func newInteractiveModel(log *zap.Logger) *interactiveModel {
	m := &interactiveModel{
		host:   bridge.NewHost(bridge.Config{Logger: log}),
		inputs: make([]textinput.Model, len(fieldSpecs)),
	}
	for i, spec := range fieldSpecs {
		ti := textinput.New()
		ti.Placeholder = spec.placeholder
		ti.Prompt = fmt.Sprintf("%-16s ", spec.key+":")
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.host.Close()
			return m, tea.Quit

		case "q":
			if m.state == stateShowResult {
				m.host.Close()
				return m, tea.Quit
			}

		case "tab", "down":
			if m.state == stateInputFields {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "shift+tab", "up":
			if m.state == stateInputFields {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + len(m.inputs) - 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateInputFields:
				return m, m.scoreRecord
			case stateShowResult:
				m.state = stateInputFields
				m.err = nil
				m.content = ""
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateInputFields
				m.err = nil
				m.content = ""
			}
		}

	case scoreResultMsg:
		m.err = msg.err
		m.score = msg.score
		m.content = msg.content
		m.platform = msg.platform
		m.state = stateShowResult
	}

	if m.state == stateInputFields {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) scoreRecord() tea.Msg {
	ctx := context.Background()

	fields := make(map[string]any)
	var platform string
	for i, spec := range fieldSpecs {
		raw := m.inputs[i].Value()
		value, err := spec.parse(raw)
		if err != nil {
			return scoreResultMsg{err: fmt.Errorf("%s: %w", spec.key, err)}
		}
		if spec.key == "platform" {
			platform, _ = value.(string)
			continue
		}
		if raw != "" {
			fields[spec.key] = value
		}
	}

	handle, err := m.host.NewRecord(fields)
	if err != nil {
		return scoreResultMsg{err: err}
	}
	defer m.host.DropRecord(handle)

	score, err := m.host.Process(ctx, handle)
	if err != nil {
		return scoreResultMsg{err: err}
	}

	var content string
	if platform != "" {
		content, err = m.host.GenerateContent(ctx, handle, platform)
		if err != nil {
			return scoreResultMsg{err: err}
		}
	}

	return scoreResultMsg{score: score, content: content, platform: platform}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("QXR Bridge"))
	b.WriteString(" ")
	b.WriteString(m.host.Version())
	b.WriteString("\n\n")

	switch m.state {
	case stateInputFields:
		b.WriteString("Describe a research record:\n\n")
		for i := range m.inputs {
			b.WriteString(m.inputs[i].View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter score • ctrl+c quit"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(fieldStyle.Render("Score: "))
			b.WriteString(resultStyle.Render(fmt.Sprintf("%.4f", m.score)))
			if m.content != "" {
				b.WriteString(fmt.Sprintf("\n\n--- %s ---\n", m.platform))
				b.WriteString(m.content)
			}
			stats := m.host.MemoryStats()
			b.WriteString(fmt.Sprintf("\n\n%s %d bytes live, %d allocations",
				fieldStyle.Render("Memory:"),
				stats["total_allocated"],
				stats["allocation_count"]))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter edit • q quit"))
	}

	return b.String()
}

func runInteractive(log *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

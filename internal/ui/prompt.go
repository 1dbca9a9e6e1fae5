package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentwt/agentwt/internal/infra/output"
)

var ErrPromptCanceled = errors.New("prompt canceled")

type WorktreeChoice struct {
	Name   string
	Branch string
	Agent  string
}

// PromptWorktree lets the user pick one tracked worktree with incremental
// filtering on name and branch.
func PromptWorktree(title string, choices []WorktreeChoice, theme Theme, useColor bool) (string, error) {
	model := newWorktreeSelectModel(title, choices, theme, useColor)
	prog := tea.NewProgram(model)
	out, err := prog.Run()
	if err != nil {
		return "", err
	}
	final := out.(worktreeSelectModel)
	if final.err != nil {
		return "", final.err
	}
	return strings.TrimSpace(final.selected), nil
}

func PromptConfirmInline(label string, theme Theme, useColor bool) (bool, error) {
	model := newConfirmInlineModel(label, theme, useColor)
	prog := tea.NewProgram(model)
	out, err := prog.Run()
	if err != nil {
		return false, err
	}
	final := out.(confirmInlineModel)
	if final.err != nil {
		return false, final.err
	}
	return final.value, nil
}

type worktreeSelectModel struct {
	title    string
	choices  []WorktreeChoice
	theme    Theme
	useColor bool

	input    textinput.Model
	filtered []WorktreeChoice
	cursor   int
	selected string
	err      error
}

func newWorktreeSelectModel(title string, choices []WorktreeChoice, theme Theme, useColor bool) worktreeSelectModel {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "search"
	input.Focus()
	if useColor {
		input.PlaceholderStyle = theme.Muted
	}
	m := worktreeSelectModel{
		title:    title,
		choices:  choices,
		theme:    theme,
		useColor: useColor,
		input:    input,
	}
	m.filtered = filterWorktreeChoices(m.choices, "")
	return m
}

func (m worktreeSelectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m worktreeSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = ErrPromptCanceled
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.filtered) == 0 {
				return m, nil
			}
			m.selected = m.filtered[m.cursor].Name
			return m, tea.Quit
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filtered = filterWorktreeChoices(m.choices, m.input.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	return m, cmd
}

func (m worktreeSelectModel) View() string {
	var b strings.Builder
	header := m.title
	if m.useColor {
		header = m.theme.Header.Render(header)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	prefix := promptPrefix(m.theme, m.useColor)
	label := promptLabel(m.theme, m.useColor, "worktree")
	b.WriteString(fmt.Sprintf("%s%s %s: %s\n", output.Indent, prefix, label, m.input.View()))

	if len(m.filtered) == 0 {
		msg := "no matches"
		if m.useColor {
			msg = m.theme.Muted.Render(msg)
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", output.Indent+output.Indent, mutedToken(m.theme, m.useColor, output.LogConnector), msg))
		return b.String()
	}
	for i, choice := range m.filtered {
		display := choice.Name
		if i == m.cursor && m.useColor {
			display = lipgloss.NewStyle().Bold(true).Render(display)
		}
		detail := worktreeChoiceDetail(choice)
		if detail != "" {
			if m.useColor {
				detail = m.theme.Muted.Render(detail)
			}
			display += " " + detail
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", output.Indent+output.Indent, mutedToken(m.theme, m.useColor, output.LogConnector), display))
	}
	return b.String()
}

func worktreeChoiceDetail(choice WorktreeChoice) string {
	var parts []string
	if strings.TrimSpace(choice.Branch) != "" {
		parts = append(parts, fmt.Sprintf("branch: %s", choice.Branch))
	}
	if strings.TrimSpace(choice.Agent) != "" {
		parts = append(parts, fmt.Sprintf("agent: %s", choice.Agent))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func filterWorktreeChoices(choices []WorktreeChoice, query string) []WorktreeChoice {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]WorktreeChoice(nil), choices...)
	}
	var out []WorktreeChoice
	for _, choice := range choices {
		if strings.Contains(strings.ToLower(choice.Name), q) || strings.Contains(strings.ToLower(choice.Branch), q) {
			out = append(out, choice)
		}
	}
	return out
}

type confirmInlineModel struct {
	label    string
	theme    Theme
	useColor bool
	input    textinput.Model
	value    bool
	err      error
}

func newConfirmInlineModel(label string, theme Theme, useColor bool) confirmInlineModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "y/n"
	ti.Focus()
	if useColor {
		ti.PlaceholderStyle = theme.Muted
	}
	return confirmInlineModel{
		label:    label,
		theme:    theme,
		useColor: useColor,
		input:    ti,
	}
}

func (m confirmInlineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m confirmInlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = ErrPromptCanceled
			return m, tea.Quit
		case tea.KeyEnter:
			value := strings.ToLower(strings.TrimSpace(m.input.Value()))
			switch value {
			case "y", "yes":
				m.value = true
				return m, tea.Quit
			case "n", "no":
				m.value = false
				return m, tea.Quit
			default:
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m confirmInlineModel) View() string {
	prefix := promptPrefix(m.theme, m.useColor)
	label := promptLabel(m.theme, m.useColor, m.label)
	return fmt.Sprintf("%s%s %s (y/n): %s\n", output.Indent, prefix, label, m.input.View())
}

func promptPrefix(theme Theme, useColor bool) string {
	prefix := output.StepPrefix
	if useColor {
		return theme.Accent.Render(prefix)
	}
	return prefix
}

func promptLabel(theme Theme, useColor bool, label string) string {
	if useColor {
		return theme.Accent.Render(label)
	}
	return label
}

func mutedToken(theme Theme, useColor bool, token string) string {
	if useColor {
		return theme.Muted.Render(token)
	}
	return token
}

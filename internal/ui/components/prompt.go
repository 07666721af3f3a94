package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"watchless/internal/ui/theme"
)

// PromptAction says how the user closed the prompt.
type PromptAction string

const (
	PromptSave    PromptAction = "save"
	PromptSkip    PromptAction = "skip"
	PromptDismiss PromptAction = "dismiss"
)

// PromptClosedMsg is emitted once per Open, whatever key closed the prompt.
// Value is trimmed and only meaningful for PromptSave.
type PromptClosedMsg struct {
	Action PromptAction
	Value  string
}

var (
	promptStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(1, 2)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Prompt is a modal single-line text input backed by bubbles/textinput.
type Prompt struct {
	input   textinput.Model
	title   string
	detail  string
	visible bool
	width   int
}

func NewPrompt(title string) Prompt {
	ti := textinput.New()
	ti.Placeholder = "show or movie name"
	ti.CharLimit = 200
	ti.Cursor.SetMode(cursor.CursorStatic)
	return Prompt{input: ti, title: title}
}

func (p Prompt) Visible() bool { return p.visible }

func (p Prompt) Value() string { return p.input.Value() }

// Open shows the prompt with an empty input and returns the focus command.
func (p *Prompt) Open(detail string) tea.Cmd {
	p.visible = true
	p.detail = detail
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Prompt) SetWidth(w int) { p.width = w }

// Close hides the prompt without emitting PromptClosedMsg.
func (p *Prompt) Close() {
	p.visible = false
	p.input.Blur()
}

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			return p.close(PromptSave, strings.TrimSpace(p.input.Value()))
		case "tab":
			return p.close(PromptSkip, "")
		case "esc":
			return p.close(PromptDismiss, "")
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Prompt) close(action PromptAction, value string) (Prompt, tea.Cmd) {
	p.visible = false
	p.input.Blur()
	return p, func() tea.Msg { return PromptClosedMsg{Action: action, Value: value} }
}

func (p Prompt) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(p.title) + "\n")
	if p.detail != "" {
		sb.WriteString(theme.Muted.Render(p.detail) + "\n")
	}
	sb.WriteString("\n" + p.input.View() + "\n\n")
	sb.WriteString(hintStyle.Render("enter save · tab skip · esc dismiss"))

	w := p.width
	if w < 20 {
		w = 56
	}
	return promptStyle.Width(w - 2).Render(sb.String())
}

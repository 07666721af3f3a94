package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	timerdomain "watchless/internal/modules/timer/domain"
	timerdto "watchless/internal/modules/timer/dto"
	"watchless/internal/ui/components"
	"watchless/internal/ui/theme"
)

// timerPort is the slice of the timer usecase the screen drives.
type timerPort interface {
	Start(ctx context.Context) (timerdto.StartOutput, error)
	Stop(ctx context.Context) (timerdto.StopOutput, error)
	Reset(ctx context.Context) error
	Status(ctx context.Context) (timerdto.StatusOutput, error)
	Record(ctx context.Context, input timerdto.RecordInput) (timerdto.RecordOutput, error)
	Summary(ctx context.Context, input timerdto.SummaryInput) (timerdto.SummaryOutput, error)
}

// StatusMsg carries a timer state change pushed from outside the program
// (ticks, or a snapshot rewritten by another process).
type StatusMsg timerdto.StatusOutput

type startedMsg struct {
	out timerdto.StartOutput
	err error
}

type stoppedMsg struct {
	out timerdto.StopOutput
	err error
}

type recordedMsg struct {
	out     timerdto.RecordOutput
	outcome components.PromptAction
	err     error
}

type summaryMsg struct {
	out timerdto.SummaryOutput
	err error
}

type resetMsg struct{ err error }

type errMsg struct {
	op  string
	err error
}

type keyMap struct {
	Toggle key.Binding
	Reset  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset},
		{k.Help, k.Quit},
	}
}

// Model is the root Bubble Tea model: the running clock, today's and this
// week's totals, and the show-name prompt shown after every stop.
type Model struct {
	timer timerPort

	keys    keyMap
	help    help.Model
	prompt  components.Prompt
	current timerdto.StatusOutput
	summary timerdto.SummaryOutput
	pending *timerdto.SessionOutput
	busy    bool
	status  string
	width   int
	height  int

	quitting bool
}

func NewModel(timer timerPort) Model {
	return Model{
		timer:  timer,
		keys:   defaultKeys(),
		help:   help.New(),
		prompt: components.NewPrompt("What did you watch?"),
		status: "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.loadSummaryCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.prompt.SetWidth(min(msg.Width-4, 64))
		return m, nil

	case StatusMsg:
		m.current = timerdto.StatusOutput(msg)
		return m, nil

	case startedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "start failed: " + msg.err.Error()
			return m, nil
		}
		if !msg.out.Started {
			m.status = "already watching"
		} else {
			m.status = "watching"
		}
		return m, m.loadStatusCmd()

	case stoppedMsg:
		if msg.err != nil {
			m.busy = false
			m.status = "stop failed: " + msg.err.Error()
			return m, nil
		}
		if !msg.out.Stopped {
			m.busy = false
			m.status = "nothing to stop"
			return m, m.loadStatusCmd()
		}
		session := msg.out.Session
		m.pending = &session
		open := m.prompt.Open(minutesLabel(session.Duration) + " watched")
		return m, tea.Batch(m.loadStatusCmd(), open)

	case components.PromptClosedMsg:
		if m.pending == nil {
			return m, nil
		}
		session := *m.pending
		m.pending = nil
		return m, m.recordCmd(session, msg)

	case recordedMsg:
		m.busy = false
		if m.quitting {
			return m, tea.Quit
		}
		if msg.err != nil {
			m.status = "record failed: " + msg.err.Error()
			return m, nil
		}
		m.status = recordedLabel(msg.out.Session, msg.outcome)
		return m, m.loadSummaryCmd()

	case resetMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "reset failed: " + msg.err.Error()
		} else {
			m.status = "timer reset"
		}
		return m, m.loadStatusCmd()

	case errMsg:
		m.status = msg.op + " failed: " + msg.err.Error()
		return m, nil

	case summaryMsg:
		if msg.err != nil {
			m.status = "summary unavailable: " + msg.err.Error()
			return m, nil
		}
		m.summary = msg.out
		return m, nil
	}

	if m.prompt.Visible() {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+c" && m.pending != nil {
			session := *m.pending
			m.pending = nil
			m.prompt.Close()
			m.quitting = true
			closed := components.PromptClosedMsg{Action: components.PromptDismiss}
			return m, m.recordCmd(session, closed)
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Toggle):
			if m.busy {
				return m, nil
			}
			m.busy = true
			if m.current.State == timerdomain.StateRunning {
				return m, m.stopCmd()
			}
			return m, m.startCmd()
		case key.Matches(msg, m.keys.Reset):
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.resetCmd()
		}
	}
	return m, nil
}

// Pending is the stopped session still waiting for its show name, if any.
// Callers record it as dismissed when the program exits early.
func (m Model) Pending() (timerdto.SessionOutput, bool) {
	if m.pending == nil {
		return timerdto.SessionOutput{}, false
	}
	return *m.pending, true
}

func (m Model) View() string {
	clock := m.current.Clock
	if clock == "" {
		clock = "0:00"
	}
	pane := theme.Pane
	state := theme.Muted.Render("○ idle")
	if m.current.State == timerdomain.StateRunning {
		pane = theme.PaneActive
		state = theme.Good.Render("● watching")
	}
	timerBox := pane.Render(lipgloss.JoinVertical(lipgloss.Center,
		theme.Clock.Render(clock),
		state,
	))

	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Render("WatchLess"),
		"",
		timerBox,
		"",
		m.renderSummary(),
		"",
		m.renderStatus(),
		"",
		m.help.View(m.keys),
	)
	if m.prompt.Visible() {
		body = m.prompt.View()
	}
	if m.width == 0 || m.height == 0 {
		return theme.App.Render(body)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.App.Render(body))
}

func (m Model) renderStatus() string {
	if strings.Contains(m.status, "failed") {
		return theme.Hot.Render(m.status)
	}
	return theme.Muted.Render(m.status)
}

func (m Model) renderSummary() string {
	goal := m.summary.DailyGoal
	today := fmt.Sprintf("Today %s", minutesLabel(m.summary.TodayMin))
	if goal > 0 {
		style := theme.Good
		if m.summary.TodayMin > goal {
			style = theme.Bad
		}
		today = style.Render(today) + theme.Muted.Render(fmt.Sprintf(" / %d min goal", goal)) + "  " + goalBar(m.summary.TodayMin, goal, 20)
	}
	week := theme.Muted.Render(fmt.Sprintf("This week %s", minutesLabel(m.summary.WeekMin)))
	return lipgloss.JoinVertical(lipgloss.Left, today, week)
}

func goalBar(value, goal, width int) string {
	filled := 0
	if goal > 0 {
		filled = min(value*width/goal, width)
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if value > goal {
		return theme.Bad.Render(bar)
	}
	return theme.Good.Render(bar)
}

func minutesLabel(minutes int) string {
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func recordedLabel(session timerdto.SessionOutput, action components.PromptAction) string {
	switch action {
	case components.PromptSave:
		if session.ShowName != "" {
			return fmt.Sprintf("saved %s of %s", minutesLabel(session.Duration), session.ShowName)
		}
		return "saved " + minutesLabel(session.Duration)
	case components.PromptSkip:
		return "recorded " + minutesLabel(session.Duration) + " without a name"
	default:
		return "recorded " + minutesLabel(session.Duration)
	}
}

func outcomeFor(action components.PromptAction) timerdto.RecordInput {
	switch action {
	case components.PromptSave:
		return timerdto.RecordInput{Outcome: timerdto.OutcomeSaved}
	case components.PromptSkip:
		return timerdto.RecordInput{Outcome: timerdto.OutcomeSkipped}
	default:
		return timerdto.RecordInput{Outcome: timerdto.OutcomeDismissed}
	}
}

func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.timer.Status(context.Background())
		if err != nil {
			return errMsg{op: "status", err: err}
		}
		return StatusMsg(out)
	}
}

func (m Model) loadSummaryCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.timer.Summary(context.Background(), timerdto.SummaryInput{})
		return summaryMsg{out: out, err: err}
	}
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.timer.Start(context.Background())
		return startedMsg{out: out, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.timer.Stop(context.Background())
		return stoppedMsg{out: out, err: err}
	}
}

func (m Model) resetCmd() tea.Cmd {
	return func() tea.Msg {
		return resetMsg{err: m.timer.Reset(context.Background())}
	}
}

func (m Model) recordCmd(session timerdto.SessionOutput, closed components.PromptClosedMsg) tea.Cmd {
	return func() tea.Msg {
		input := outcomeFor(closed.Action)
		input.Session = session
		input.ShowName = closed.Value
		out, err := m.timer.Record(context.Background(), input)
		return recordedMsg{out: out, outcome: closed.Action, err: err}
	}
}

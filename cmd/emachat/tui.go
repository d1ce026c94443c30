package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/koscakluka/ema-chat/core"
	events "github.com/koscakluka/ema-chat/core/events"
)

var (
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	playingStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	recordingStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	inputBorderStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
)

const footerHeight = 5

// coreEventMsg wakes the UI after the core changed state.
type coreEventMsg struct{ event events.Event }

// actionDoneMsg carries the result of a blocking core call.
type actionDoneMsg struct {
	action string
	err    error
}

// chatModel renders the orchestrator's state. It keeps no conversation state
// of its own: every redraw reads snapshots from the core.
type chatModel struct {
	ctx          context.Context
	orchestrator *orchestration.Orchestrator
	events       <-chan events.Event

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool
	notice string
}

func newChatModel(ctx context.Context, o *orchestration.Orchestrator, eventsCh <-chan events.Event) chatModel {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = "› "
	input.CharLimit = 0
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return chatModel{
		ctx:          ctx,
		orchestrator: o,
		events:       eventsCh,
		input:        input,
		spinner:      s,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return coreEventMsg{event: event}
	}
}

func (m chatModel) run(action string, call func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: call(m.ctx)}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-footerHeight, 1))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-footerHeight, 1)
		}
		m.input.Width = max(msg.Width-6, 10)
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			m.notice = ""
			m.orchestrator.SetInput(m.input.Value())
			return m, m.run("send", m.orchestrator.SendPending)

		case "ctrl+r":
			m.notice = ""
			if m.orchestrator.IsCapturing() {
				return m, m.run("stop recording", m.orchestrator.StopRecording)
			}
			return m, m.run("start recording", m.orchestrator.StartRecording)

		case "ctrl+p":
			m.notice = ""
			id := latestAssistantMessageID(m.orchestrator.Messages())
			if id == "" {
				return m, nil
			}
			return m, m.run("playback", func(ctx context.Context) error {
				return m.orchestrator.TogglePlayback(ctx, id)
			})

		case "ctrl+t":
			m.orchestrator.SetModel(m.orchestrator.Model().Next())
			return m, nil
		}

	case coreEventMsg:
		if _, ok := msg.event.(events.InputUpdated); ok {
			m.syncInput()
		}
		m.refreshTranscript()
		return m, waitForEvent(m.events)

	case actionDoneMsg:
		// The action's own events may have been dropped.
		m.notice = describeActionError(msg.action, msg.err)
		m.syncInput()
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if after := m.input.Value(); after != before {
		m.orchestrator.SetInput(after)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// syncInput copies the core's input into the text field.
func (m *chatModel) syncInput() {
	if value := m.orchestrator.Input(); value != m.input.Value() {
		m.input.SetValue(value)
		m.input.CursorEnd()
	}
}

func (m *chatModel) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.orchestrator.Messages(), m.orchestrator.PlayingMessageID(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "Connecting…"
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(inputBorderStyle.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m chatModel) statusLine() string {
	parts := []string{string(m.orchestrator.Model())}

	if m.orchestrator.IsBusy() {
		parts = append(parts, m.spinner.View()+" thinking")
	}
	switch m.orchestrator.CaptureState() {
	case orchestration.CaptureRecording:
		parts = append(parts, recordingStyle.Render("● recording"))
	case orchestration.CaptureFinalizing:
		parts = append(parts, m.spinner.View()+" transcribing")
	}
	if m.orchestrator.PlayingMessageID() != "" {
		parts = append(parts, playingStyle.Render("♪ speaking"))
	}

	line := statusStyle.Render(strings.Join(parts, " · "))
	if m.notice != "" {
		line += "  " + noticeStyle.Render(m.notice)
	}
	return line
}

func renderTranscript(messages []orchestration.Message, playingID string, width int) string {
	wrapWidth := max(width-2, 20)

	var b strings.Builder
	for i, message := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}

		label := assistantLabelStyle.Render("Assistant")
		if message.IsUser {
			label = userLabelStyle.Render("You")
		}
		b.WriteString(label)
		if message.ID == playingID {
			b.WriteString(" " + playingStyle.Render("♪"))
		}
		b.WriteString("\n")
		b.WriteString(wordwrap.String(message.Text, wrapWidth))
	}
	return b.String()
}

func latestAssistantMessageID(messages []orchestration.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if !messages[i].IsUser {
			return messages[i].ID
		}
	}
	return ""
}

// describeActionError turns a failed key action into a one-line notice.
// Refused sends are expected and stay quiet.
func describeActionError(action string, err error) string {
	switch {
	case err == nil,
		errors.Is(err, orchestration.ErrEmptyInput),
		errors.Is(err, orchestration.ErrBusy):
		return ""
	default:
		return fmt.Sprintf("%s failed: %v", action, err)
	}
}

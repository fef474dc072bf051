// Package tui is the interactive chat surface: a conversation with a single
// document, plus speech playback of model replies.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"docent/internal/audio"
	"docent/internal/chat"
	"docent/internal/speech"
)

// Speaker synthesizes text and plays it. Nil disables speech output.
type Speaker struct {
	Synthesizer *speech.Synthesizer
	Player      *audio.Player
}

// Model is the bubbletea model for the chat surface.
type Model struct {
	session *chat.Session
	history []chat.Message
	speaker *Speaker

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width   int
	height  int
	waiting bool
	ready   bool
	err     error
}

// responseMsg carries a completed chat turn back into the event loop.
type responseMsg struct {
	text string
	ok   bool
}

// spokenMsg reports the outcome of speaking a reply.
type spokenMsg struct {
	err error
}

// NewModel creates the chat model for an established session.
func NewModel(session *chat.Session, speaker *Speaker) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about the document..."
	ta.Focus()
	ta.Prompt = "│ "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		session:  session,
		speaker:  speaker,
		textarea: ta,
		spinner:  sp,
		renderer: renderer,
	}
}

// Init starts the blink cycle for the input area.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// sendTurn issues the chat turn off the event loop. The session absorbs
// failures into an apology reply, so the command always yields a response.
func (m Model) sendTurn(history []chat.Message, text string) tea.Cmd {
	return func() tea.Msg {
		reply, ok := m.session.SendTurn(context.Background(), history, text)
		return responseMsg{text: reply, ok: ok}
	}
}

// speak synthesizes and plays text in the background.
func (m Model) speak(text string) tea.Cmd {
	speaker := m.speaker
	return func() tea.Msg {
		pcm, err := speaker.Synthesizer.Synthesize(context.Background(), text)
		if err != nil {
			return spokenMsg{err: err}
		}
		return spokenMsg{err: speaker.Player.Play(pcm)}
	}
}

// lastModelReply returns the latest non-error model message, or "".
func (m Model) lastModelReply() string {
	for i := len(m.history) - 1; i >= 0; i-- {
		msg := m.history[i]
		if msg.Role == chat.RoleModel && !msg.IsError {
			return msg.Text
		}
	}
	return ""
}

// Run starts the interactive chat program.
func Run(session *chat.Session, speaker *Speaker) error {
	p := tea.NewProgram(NewModel(session, speaker), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

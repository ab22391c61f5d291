// Package tui implements the interactive chat terminal for biblica.
package tui

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/biblica-labs/biblica-go/internal/store"
)

// AnswerStreamer is the TUI-facing subset of the answer engine.
type AnswerStreamer interface {
	AnswerStream(ctx context.Context, question string, w io.Writer) error
}

const statusHint = "Enter to ask, ctrl+r to clear, esc to quit."

// Model is the Bubble Tea model for the chat session. Each submitted
// question streams its answer into the transcript one increment at a
// time; completed exchanges are appended to the history store when one
// is configured.
type Model struct {
	engine  AnswerStreamer
	history store.ConversationStore
	ctx     context.Context

	input    textinput.Model
	viewport viewport.Model

	transcript []string
	question   string
	answer     string
	msgs       chan tea.Msg

	streaming bool
	ready     bool
	status    string
}

// answerChunkMsg carries one increment of a streaming answer.
type answerChunkMsg struct {
	text string
}

// answerDoneMsg signals that the stream finished, successfully or not.
type answerDoneMsg struct {
	err error
}

// New creates a chat model. history may be nil to disable persistence.
func New(ctx context.Context, engine AnswerStreamer, history store.ConversationStore) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the Scriptures"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		engine:   engine,
		history:  history,
		ctx:      ctx,
		input:    ti,
		viewport: vp,
		status:   statusHint,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and stream events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + subtitle, status, input frame, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh)
		m.input.Width = max(20, msg.Width-4)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.transcript = nil
			m.status = statusHint
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		case tea.KeyEnter:
			if m.streaming {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			return m.submit(q)
		}

	case answerChunkMsg:
		m.answer += msg.text
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, waitForChunk(m.msgs)

	case answerDoneMsg:
		return m.finishExchange(msg.err), nil
	}

	var inputCmd, vpCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

// submit starts streaming an answer for question. The stream goroutine
// feeds m.msgs; waitForChunk delivers one message per tea cycle.
func (m Model) submit(question string) (tea.Model, tea.Cmd) {
	m.question = question
	m.answer = ""
	m.streaming = true
	m.status = "Thinking..."
	m.input.SetValue("")

	ch := make(chan tea.Msg, 8)
	m.msgs = ch
	go streamAnswer(m.ctx, m.engine, question, ch)

	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	return m, waitForChunk(ch)
}

// finishExchange folds the in-flight exchange into the transcript.
// Failures render in-band so the session itself never dies.
func (m Model) finishExchange(err error) Model {
	answer := m.answer
	if err != nil {
		answer = errorStyle.Render("Error generating response: " + err.Error())
	}
	m.transcript = append(m.transcript, renderExchange(m.question, answer))
	m.status = statusHint
	if err == nil {
		m.persistExchange(m.question, m.answer)
	}
	m.question = ""
	m.answer = ""
	m.msgs = nil
	m.streaming = false
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	return m
}

// persistExchange records a completed exchange in the history store.
// Persistence failures surface on the status line, nothing more.
func (m *Model) persistExchange(question, answer string) {
	if m.history == nil {
		return
	}
	if err := m.history.Append(m.ctx, store.RoleUser, question); err != nil {
		m.status = "history: " + err.Error()
		return
	}
	if err := m.history.Append(m.ctx, store.RoleAssistant, answer); err != nil {
		m.status = "history: " + err.Error()
	}
}

// streamAnswer runs one generation and feeds each increment, then the
// terminal done message, into ch. Sends yield to ctx so a quit mid-stream
// does not leak the goroutine.
func streamAnswer(ctx context.Context, engine AnswerStreamer, question string, ch chan<- tea.Msg) {
	err := engine.AnswerStream(ctx, question, chunkWriter{ctx: ctx, ch: ch})
	select {
	case ch <- answerDoneMsg{err: err}:
	case <-ctx.Done():
	}
	close(ch)
}

// waitForChunk delivers the next stream message to Update.
func waitForChunk(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// chunkWriter adapts the engine's io.Writer streaming surface to the
// message channel.
type chunkWriter struct {
	ctx context.Context
	ch  chan<- tea.Msg
}

func (w chunkWriter) Write(p []byte) (int, error) {
	select {
	case w.ch <- answerChunkMsg{text: string(p)}:
		return len(p), nil
	case <-w.ctx.Done():
		return 0, w.ctx.Err()
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Biblica")
	subtitle := mutedStyle.Render("Scripture study assistant (King James Version)")
	input := inputBoxStyle.Render(m.input.View())
	status := mutedStyle.Render(m.status)
	return header + "\n" + subtitle + "\n" + m.viewport.View() + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	blocks := make([]string, 0, len(m.transcript)+1)
	blocks = append(blocks, m.transcript...)
	if m.streaming {
		answer := m.answer
		if answer == "" {
			answer = "..."
		}
		blocks = append(blocks, renderExchange(m.question, answer))
	}
	if len(blocks) == 0 {
		return mutedStyle.Render("No questions yet.")
	}
	body := strings.Join(blocks, "\n\n")
	if m.viewport.Width > 0 {
		body = lipgloss.NewStyle().Width(m.viewport.Width).Render(body)
	}
	return body
}

func renderExchange(question, answer string) string {
	return questionStyle.Render("You: ") + question + "\n" + answerStyle.Render("Biblica: ") + answer
}

// Run starts the chat program on the terminal and blocks until the user
// quits or ctx is canceled.
func Run(ctx context.Context, engine AnswerStreamer, history store.ConversationStore) error {
	p := tea.NewProgram(New(ctx, engine, history), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/biblica-labs/biblica-go/internal/store"
)

type fakeEngine struct {
	chunks      []string
	err         error
	gotQuestion string
}

func (f *fakeEngine) AnswerStream(_ context.Context, question string, w io.Writer) error {
	f.gotQuestion = question
	for _, c := range f.chunks {
		if _, err := io.WriteString(w, c); err != nil {
			return err
		}
	}
	return f.err
}

type fakeHistory struct {
	appendErr error
	messages  []store.Message
}

func (f *fakeHistory) Append(_ context.Context, role store.Role, content string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages = append(f.messages, store.Message{Role: role, Content: content})
	return nil
}

func (f *fakeHistory) Recent(context.Context, int) ([]store.Message, error) {
	return f.messages, nil
}

func (f *fakeHistory) Clear(context.Context) (int64, error) {
	n := int64(len(f.messages))
	f.messages = nil
	return n, nil
}

func (f *fakeHistory) Count(context.Context) (int, error) { return len(f.messages), nil }

func (f *fakeHistory) Close() error { return nil }

// driveStream pumps the stream message loop the way the tea runtime
// would, until the terminal done message has been applied.
func driveStream(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for range 64 {
		if cmd == nil {
			t.Fatal("stream ended without a done message")
		}
		msg := cmd()
		next, nextCmd := m.Update(msg)
		m = next.(Model)
		if _, ok := msg.(answerDoneMsg); ok {
			return m
		}
		cmd = nextCmd
	}
	t.Fatal("stream produced no done message after 64 increments")
	return m
}

func sizedModel(ctx context.Context, engine AnswerStreamer, history store.ConversationStore) Model {
	m := New(ctx, engine, history)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func Test_New_Defaults(t *testing.T) {
	m := New(t.Context(), &fakeEngine{}, nil)

	if !m.input.Focused() {
		t.Error("input should start focused")
	}
	if m.status != statusHint {
		t.Errorf("status = %q, want %q", m.status, statusHint)
	}
	if m.ready {
		t.Error("model should not be ready before the first window size message")
	}
	if m.streaming {
		t.Error("model should not start streaming")
	}
}

func Test_Model_SubmitStreamsAnswer(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"In the beginning ", "God created ", "the heaven and the earth [Genesis 1:1]."}}
	m := sizedModel(t.Context(), engine, nil)
	m.input.SetValue("  How does the Bible begin?  ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if !m.streaming {
		t.Fatal("enter should start streaming")
	}
	if m.status != "Thinking..." {
		t.Errorf("status = %q, want Thinking...", m.status)
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared after submit, got %q", m.input.Value())
	}

	m = driveStream(t, m, cmd)

	if m.streaming {
		t.Error("streaming should stop after the done message")
	}
	if m.status != statusHint {
		t.Errorf("status = %q, want %q", m.status, statusHint)
	}
	if engine.gotQuestion != "How does the Bible begin?" {
		t.Errorf("engine question = %q, want trimmed question", engine.gotQuestion)
	}
	if len(m.transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(m.transcript))
	}
	if !strings.Contains(m.transcript[0], "How does the Bible begin?") {
		t.Error("transcript should contain the question")
	}
	if !strings.Contains(m.transcript[0], "In the beginning God created the heaven and the earth [Genesis 1:1].") {
		t.Errorf("transcript should contain the assembled answer, got %q", m.transcript[0])
	}
}

func Test_Model_EmptyQuestionIgnored(t *testing.T) {
	m := sizedModel(t.Context(), &fakeEngine{}, nil)
	m.input.SetValue("   ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if cmd != nil {
		t.Error("blank question should not produce a command")
	}
	if m.streaming {
		t.Error("blank question should not start streaming")
	}
	if len(m.transcript) != 0 {
		t.Errorf("transcript length = %d, want 0", len(m.transcript))
	}
}

func Test_Model_EnterWhileStreamingIgnored(t *testing.T) {
	m := sizedModel(t.Context(), &fakeEngine{chunks: []string{"Amen."}}, nil)
	m.input.SetValue("first question")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	m.input.SetValue("second question")
	next, second := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if second != nil {
		t.Error("enter during streaming should be ignored")
	}
	if m.question != "first question" {
		t.Errorf("in-flight question = %q, want the first question", m.question)
	}

	driveStream(t, m, cmd)
}

func Test_Model_StreamErrorRendersInBand(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"For God so "}, err: errors.New("model unavailable")}
	history := &fakeHistory{}
	m := sizedModel(t.Context(), engine, history)
	m.input.SetValue("What does John 3:16 say?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = driveStream(t, next.(Model), cmd)

	if len(m.transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(m.transcript))
	}
	if !strings.Contains(m.transcript[0], "Error generating response: model unavailable") {
		t.Errorf("transcript should render the failure in-band, got %q", m.transcript[0])
	}
	if len(history.messages) != 0 {
		t.Errorf("failed exchange should not be persisted, got %d messages", len(history.messages))
	}
}

func Test_Model_HistoryRecordsExchange(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"The Lord is my shepherd [Psalms 23:1]."}}
	history := &fakeHistory{}
	m := sizedModel(t.Context(), engine, history)
	m.input.SetValue("Who is my shepherd?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	driveStream(t, next.(Model), cmd)

	if len(history.messages) != 2 {
		t.Fatalf("history length = %d, want 2", len(history.messages))
	}
	if history.messages[0].Role != store.RoleUser || history.messages[0].Content != "Who is my shepherd?" {
		t.Errorf("first message = %+v, want the user question", history.messages[0])
	}
	if history.messages[1].Role != store.RoleAssistant || history.messages[1].Content != "The Lord is my shepherd [Psalms 23:1]." {
		t.Errorf("second message = %+v, want the assistant answer", history.messages[1])
	}
}

func Test_Model_HistoryFailureSurfacesInStatus(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"Amen."}}
	history := &fakeHistory{appendErr: errors.New("disk full")}
	m := sizedModel(t.Context(), engine, history)
	m.input.SetValue("a question")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = driveStream(t, next.(Model), cmd)

	if !strings.Contains(m.status, "history: disk full") {
		t.Errorf("status = %q, want the history failure", m.status)
	}
	if len(m.transcript) != 1 {
		t.Errorf("transcript length = %d, want 1; persistence failures must not drop the exchange", len(m.transcript))
	}
}

func Test_Model_CtrlRClearsTranscript(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"Jesus wept [John 11:35]."}}
	m := sizedModel(t.Context(), engine, nil)
	m.input.SetValue("Shortest verse?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = driveStream(t, next.(Model), cmd)
	if len(m.transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1 before clearing", len(m.transcript))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)

	if len(m.transcript) != 0 {
		t.Errorf("transcript length = %d, want 0 after ctrl+r", len(m.transcript))
	}
	if !strings.Contains(m.renderTranscript(), "No questions yet.") {
		t.Error("cleared transcript should show the empty hint")
	}
}

func Test_Model_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := sizedModel(t.Context(), &fakeEngine{}, nil)
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("%v should produce a quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v produced %T, want tea.QuitMsg", key, cmd())
		}
	}
}

func Test_ChunkWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	w := chunkWriter{ctx: ctx, ch: make(chan tea.Msg)}

	_, err := w.Write([]byte("never delivered"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Write on canceled context = %v, want context.Canceled", err)
	}
}

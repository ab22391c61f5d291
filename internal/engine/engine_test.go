package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/biblica-labs/biblica-go/internal/rag"
)

// fakeChatModel implements model.BaseChatModel for tests. Generate returns
// response as a single message; Stream replays streamParts as separate
// chunks. The message slice from the last call is recorded for inspection.
type fakeChatModel struct {
	response    string
	streamParts []string
	err         error
	gotMessages []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.gotMessages = in
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.response, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.gotMessages = in
	if f.err != nil {
		return nil, f.err
	}
	parts := make([]*schema.Message, len(f.streamParts))
	for i, p := range f.streamParts {
		parts[i] = schema.AssistantMessage(p, nil)
	}
	return schema.StreamReaderFromArray(parts), nil
}

// fakeEmbedder returns a fixed vector per text and records batch sizes.
type fakeEmbedder struct {
	vector     []float32
	err        error
	batchSizes []int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.batchSizes = append(f.batchSizes, len(texts))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

// newTestEngine builds an Engine over a fresh on-disk index with the given
// chat model fake.
func newTestEngine(t *testing.T, chat *fakeChatModel) *Engine {
	t.Helper()
	index, err := rag.NewSQLiteStore(&rag.SQLiteConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })

	e, err := New(&Config{
		ChatModel: chat,
		Embedder:  &fakeEmbedder{vector: []float32{1, 0, 0}},
		Index:     index,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

// verseDocs returns two indexed verses for answer tests.
func verseDocs() []rag.Document {
	return []rag.Document{
		{
			ID:      "genesis-1-1",
			Content: "In the beginning God created the heaven and the earth.",
			Metadata: map[string]string{
				"reference": "Genesis 1:1",
			},
		},
		{
			ID:      "john-3-16",
			Content: "For God so loved the world, that he gave his only begotten Son.",
			Metadata: map[string]string{
				"reference": "John 3:16",
			},
		},
	}
}

func Test_New_Validation(t *testing.T) {
	t.Parallel()

	index, err := rag.NewSQLiteStore(&rag.SQLiteConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })

	chat := &fakeChatModel{}
	emb := &fakeEmbedder{vector: []float32{1}}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"nil chat model", &Config{Embedder: emb, Index: index}},
		{"nil embedder", &Config{ChatModel: chat, Index: index}},
		{"nil index", &Config{ChatModel: chat, Embedder: emb}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tc.cfg); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func Test_New_Defaults(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &fakeChatModel{})
	if e.topK != 5 {
		t.Errorf("want default topK 5, got %d", e.topK)
	}
	if e.maxContextTokens <= 0 {
		t.Errorf("want positive default maxContextTokens, got %d", e.maxContextTokens)
	}
}

func Test_Engine_BuildAndReady(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	e := newTestEngine(t, &fakeChatModel{})

	var progress []string
	n, err := e.Build(ctx, verseDocs(), func(msg string) { progress = append(progress, msg) })
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n != 2 {
		t.Errorf("want 2 fragments indexed, got %d", n)
	}
	if len(progress) == 0 {
		t.Fatal("want progress messages, got none")
	}
	if last := progress[len(progress)-1]; last != "indexed 2 fragments" {
		t.Errorf("want final progress %q, got %q", "indexed 2 fragments", last)
	}

	got, err := e.Ready(ctx)
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if got != 2 {
		t.Errorf("want ready count 2, got %d", got)
	}
}

func Test_Engine_Build_EmptyDocs(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &fakeChatModel{})
	if _, err := e.Build(context.Background(), nil, nil); !errors.Is(err, rag.ErrEmptyInput) {
		t.Errorf("want ErrEmptyInput, got %v", err)
	}
}

func Test_Engine_Build_BatchesEmbedCalls(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	emb := &fakeEmbedder{vector: []float32{1, 0, 0}}
	index, err := rag.NewSQLiteStore(&rag.SQLiteConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })

	e, err := New(&Config{ChatModel: &fakeChatModel{}, Embedder: emb, Index: index})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	docs := make([]rag.Document, 150)
	for i := range docs {
		docs[i] = rag.Document{
			ID:      fmt.Sprintf("verse-%d", i),
			Content: fmt.Sprintf("verse text %d", i),
		}
	}

	n, err := e.Build(ctx, docs, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n != 150 {
		t.Errorf("want 150 fragments indexed, got %d", n)
	}
	if len(emb.batchSizes) != 3 {
		t.Fatalf("want 3 embed batches for 150 fragments, got %d", len(emb.batchSizes))
	}
	for i, size := range emb.batchSizes {
		if size > indexBatchSize {
			t.Errorf("batch %d exceeds limit: %d > %d", i, size, indexBatchSize)
		}
	}
}

func Test_Engine_Ready_EmptyIndex(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &fakeChatModel{})
	if _, err := e.Ready(context.Background()); !errors.Is(err, rag.ErrUninitialized) {
		t.Errorf("want ErrUninitialized, got %v", err)
	}
}

func Test_Engine_Answer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	chat := &fakeChatModel{response: "God created them; see Genesis 1:1."}
	e := newTestEngine(t, chat)
	if _, err := e.Build(ctx, verseDocs(), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	answer, err := e.Answer(ctx, "Who created the heaven and the earth?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != chat.response {
		t.Errorf("want answer %q, got %q", chat.response, answer)
	}

	// Message shape: [system prompt, passages, question].
	msgs := chat.gotMessages
	if len(msgs) != 3 {
		t.Fatalf("want 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != schema.System || !strings.Contains(msgs[0].Content, "Biblica") {
		t.Errorf("want system prompt first, got role %s content %q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != schema.System || !strings.Contains(msgs[1].Content, "[Genesis 1:1]") {
		t.Errorf("want passages with [Genesis 1:1], got %q", msgs[1].Content)
	}
	if msgs[2].Role != schema.User || msgs[2].Content != "Who created the heaven and the earth?" {
		t.Errorf("want user question last, got role %s content %q", msgs[2].Role, msgs[2].Content)
	}
}

func Test_Engine_Answer_EmptyIndexOmitsPassages(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{response: "The provided passages do not cover this."}
	e := newTestEngine(t, chat)

	if _, err := e.Answer(context.Background(), "What is love?"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	// No passages retrieved: [system prompt, question] only.
	if len(chat.gotMessages) != 2 {
		t.Fatalf("want 2 messages for empty index, got %d", len(chat.gotMessages))
	}
	if chat.gotMessages[1].Role != schema.User {
		t.Errorf("want user question last, got role %s", chat.gotMessages[1].Role)
	}
}

func Test_Engine_Answer_ProviderError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &fakeChatModel{err: fmt.Errorf("quota exceeded")})
	if _, err := e.Answer(context.Background(), "q"); !errors.Is(err, rag.ErrProvider) {
		t.Errorf("want ErrProvider, got %v", err)
	}
}

func Test_Engine_AnswerStream(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	chat := &fakeChatModel{streamParts: []string{"And God said, ", "Let there be light: ", "Genesis 1:3."}}
	e := newTestEngine(t, chat)
	if _, err := e.Build(ctx, verseDocs(), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if err := e.AnswerStream(ctx, "What did God say?", &buf); err != nil {
		t.Fatalf("answer stream: %v", err)
	}
	want := "And God said, Let there be light: Genesis 1:3."
	if buf.String() != want {
		t.Errorf("want streamed answer %q, got %q", want, buf.String())
	}
}

func Test_Engine_AnswerStream_ProviderError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &fakeChatModel{err: fmt.Errorf("model overloaded")})
	var buf bytes.Buffer
	err := e.AnswerStream(context.Background(), "q", &buf)
	if !errors.Is(err, rag.ErrProvider) {
		t.Errorf("want ErrProvider, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("want nothing written on stream setup failure, got %q", buf.String())
	}
}

func Test_Engine_Statelessness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	chat := &fakeChatModel{response: "An answer."}
	e := newTestEngine(t, chat)
	if _, err := e.Build(ctx, verseDocs(), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, err := e.Answer(ctx, "Who created the heavens?"); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if _, err := e.Answer(ctx, "When did that happen?"); err != nil {
		t.Fatalf("second answer: %v", err)
	}

	// The second prompt must not carry the first exchange: [system prompt,
	// passages, question] only.
	msgs := chat.gotMessages
	if len(msgs) != 3 {
		t.Fatalf("want 3 messages on second question, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Role == schema.Assistant {
			t.Errorf("prior assistant turn leaked into prompt: %q", m.Content)
		}
		if strings.Contains(m.Content, "Who created the heavens?") {
			t.Errorf("prior question leaked into prompt: %q", m.Content)
		}
	}
}

func Test_Engine_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	e := newTestEngine(t, &fakeChatModel{})
	if _, err := e.Build(ctx, verseDocs(), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	docs, err := e.Search(ctx, "creation of the world", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("want 1 result, got %d", len(docs))
	}
	if docs[0].Metadata["reference"] == "" {
		t.Errorf("want result with a reference, got %+v", docs[0])
	}
}

func Test_Engine_Build_EmbedErrorWrapsProvider(t *testing.T) {
	t.Parallel()

	index, err := rag.NewSQLiteStore(&rag.SQLiteConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })

	e, err := New(&Config{
		ChatModel: &fakeChatModel{},
		Embedder:  &fakeEmbedder{err: fmt.Errorf("429 too many requests")},
		Index:     index,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	_, err = e.Build(context.Background(), verseDocs(), nil)
	if !errors.Is(err, rag.ErrProvider) {
		t.Errorf("want ErrProvider from failed embed, got %v", err)
	}
}

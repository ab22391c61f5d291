// Package engine runs the retrieval-augmented answer pipeline. It indexes
// corpus documents into the vector store (chunk, embed, upsert) and answers
// questions by retrieving relevant passages and prompting the chat model
// with them. A single Engine is immutable after construction and safe for
// concurrent use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/biblica-labs/biblica-go/internal/budget"
	"github.com/biblica-labs/biblica-go/internal/chunk"
	"github.com/biblica-labs/biblica-go/internal/logging"
	"github.com/biblica-labs/biblica-go/internal/rag"
)

// systemPrompt is the base system prompt injected into every question.
// It fixes the assistant's grounding rules: answer only from the provided
// passages, cite every verse used, and stay doctrinally neutral.
const systemPrompt = `You are Biblica, a study assistant for the King James Bible. You answer
questions using only the scripture passages provided to you as context.

Rules you always follow:
- Ground every claim in the provided passages, and cite each verse you rely
  on in the canonical form "Book Chapter:Verse" (e.g. Genesis 1:1, John 3:16).
- If the provided passages do not contain enough information to answer the
  question, say so plainly. Never speculate or draw on outside knowledge.
- Remain doctrinally neutral: present what the text says without advocating
  any one tradition's interpretation.
- Treat the subject matter with respect at all times, including when the
  question does not.
- Keep answers concise — a few sentences unless the question genuinely
  calls for more.`

// indexBatchSize is the number of fragments embedded and upserted per batch
// during a Build. Kept under the Gemini batchEmbedContents cap of 100.
const indexBatchSize = 64

// Config holds the dependencies required to construct an Engine.
type Config struct {
	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.BaseChatModel

	// Embedder converts text into dense vectors for indexing and retrieval.
	Embedder rag.Embedder

	// Index is the vector store holding the embedded corpus fragments.
	Index rag.VectorStore

	// ChunkSize is the maximum fragment size in characters for indexing.
	// Defaults to chunk.DefaultSize if zero.
	ChunkSize int

	// ChunkOverlap is the character overlap between consecutive fragments.
	// Defaults to chunk.DefaultOverlap if zero.
	ChunkOverlap int

	// TopK is the number of passages retrieved per question. Defaults to 5.
	TopK int

	// MaxContextTokens is the estimated token budget for the full prompt
	// (system prompt + passages + question). Exceeding it is logged, never
	// truncated. Defaults to budget.DefaultMaxContextTokens.
	MaxContextTokens int
}

// Engine answers questions about the corpus using retrieval-augmented
// generation.
type Engine struct {
	// chatModel is the LLM backend used for answer generation.
	chatModel model.BaseChatModel

	// embedder converts corpus fragments and questions into vectors.
	embedder rag.Embedder

	// index is the vector store holding the embedded corpus.
	index rag.VectorStore

	// retriever embeds a question and searches the index.
	retriever rag.Retriever

	// splitter cuts documents into fragments before embedding.
	splitter *chunk.Splitter

	// topK is the number of passages retrieved per question.
	topK int

	// maxContextTokens is the estimated token budget for the prompt.
	maxContextTokens int
}

// New constructs an Engine from the provided Config.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine: config must not be nil")
	}
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("engine: ChatModel must not be nil")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("engine: Embedder must not be nil")
	}
	if cfg.Index == nil {
		return nil, fmt.Errorf("engine: Index must not be nil")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}

	retriever, err := rag.NewRetriever(cfg.Embedder, cfg.Index, topK)
	if err != nil {
		return nil, fmt.Errorf("engine: failed to create retriever: %w", err)
	}

	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	return &Engine{
		chatModel:        cfg.ChatModel,
		embedder:         cfg.Embedder,
		index:            cfg.Index,
		retriever:        retriever,
		splitter:         chunk.New(cfg.ChunkSize, cfg.ChunkOverlap),
		topK:             topK,
		maxContextTokens: maxCtx,
	}, nil
}

// Build chunks, embeds, and indexes the given documents, replacing any
// fragments that share IDs with existing ones. It returns the number of
// fragments indexed. Progress is reported via the optional progress callback.
func (e *Engine) Build(ctx context.Context, docs []rag.Document, progress func(msg string)) (int, error) {
	if progress == nil {
		progress = func(string) {}
	}

	fragments := e.splitter.SplitDocuments(docs)
	if len(fragments) == 0 {
		return 0, fmt.Errorf("engine: %w", rag.ErrEmptyInput)
	}
	progress(fmt.Sprintf("split %d documents into %d fragments", len(docs), len(fragments)))

	for start := 0; start < len(fragments); start += indexBatchSize {
		end := min(start+indexBatchSize, len(fragments))
		batch := fragments[start:end]

		texts := make([]string, len(batch))
		for i, frag := range batch {
			texts[i] = frag.Content
		}

		progress(fmt.Sprintf("embedding fragments %d-%d of %d", start+1, end, len(fragments)))
		embeddings, err := e.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("engine: embed batch: %w: %w", rag.ErrProvider, err)
		}

		if err := e.index.Upsert(ctx, batch, embeddings); err != nil {
			return 0, fmt.Errorf("engine: index batch: %w", err)
		}
	}

	progress(fmt.Sprintf("indexed %d fragments", len(fragments)))
	return len(fragments), nil
}

// Ready reports whether the index holds anything to retrieve from. It
// returns the fragment count on success and rag.ErrUninitialized when the
// index is empty.
func (e *Engine) Ready(ctx context.Context) (int, error) {
	n, err := e.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("engine: count index: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("engine: %w", rag.ErrUninitialized)
	}
	return n, nil
}

// Answer retrieves passages for the question and returns the model's whole
// answer. Every question stands alone: the prompt never carries prior
// conversation turns.
func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	messages, docs, err := e.buildMessages(ctx, question)
	if err != nil {
		return "", err
	}

	resp, err := e.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("engine: generate: %w: %w", rag.ErrProvider, err)
	}
	if resp == nil {
		return "", fmt.Errorf("engine: generate: %w: empty response", rag.ErrProvider)
	}

	e.logCitations(ctx, resp.Content, docs)
	return resp.Content, nil
}

// AnswerStream retrieves passages for the question and streams the model's
// answer to w as increments arrive. The concatenated increments equal the
// whole-mode answer for the same question and index state.
func (e *Engine) AnswerStream(ctx context.Context, question string, w io.Writer) error {
	messages, docs, err := e.buildMessages(ctx, question)
	if err != nil {
		return err
	}

	sr, err := e.chatModel.Stream(ctx, messages)
	if err != nil {
		return fmt.Errorf("engine: stream: %w: %w", rag.ErrProvider, err)
	}
	defer sr.Close()

	var full strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("engine: stream receive: %w: %w", rag.ErrProvider, err)
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		if _, err := io.WriteString(w, msg.Content); err != nil {
			return fmt.Errorf("engine: write answer: %w", err)
		}
		full.WriteString(msg.Content)
	}

	e.logCitations(ctx, full.String(), docs)
	return nil
}

// Search embeds the query and returns the most similar fragments with their
// scores, highest first. It is the retrieval half of Answer, exposed for the
// search endpoint and diagnostics. topK <= 0 uses the engine default.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]rag.Document, error) {
	docs, err := e.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("engine: search: %w", err)
	}
	return docs, nil
}

// buildMessages constructs the message slice for one question: the system
// prompt, a system message carrying the retrieved passages, and the user
// question. No conversation history is ever included — every question
// stands alone. The retrieved documents are returned alongside so callers
// can cross-check the answer's citations.
func (e *Engine) buildMessages(ctx context.Context, question string) ([]*schema.Message, []rag.Document, error) {
	docs, err := e.retriever.Retrieve(ctx, question, e.topK)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: retrieve context: %w", err)
	}

	messages := []*schema.Message{schema.SystemMessage(systemPrompt)}
	if len(docs) > 0 {
		messages = append(messages, schema.SystemMessage(contextMessage(docs)))
	}
	messages = append(messages, schema.UserMessage(question))

	if total := budget.EstimateMessages(messages); total > e.maxContextTokens {
		logging.FromContext(ctx).Warn("budget: prompt exceeds estimated context budget",
			slog.Int("estimated_tokens", total),
			slog.Int("max_tokens", e.maxContextTokens),
		)
	}
	return messages, docs, nil
}

// contextMessage formats retrieved passages into a system message that
// grounds the model's answer.
func contextMessage(docs []rag.Document) string {
	return "## Relevant Scripture Passages\n\n" +
		"The following passages were retrieved for this question. " +
		"Ground your answer in them and cite each verse you rely on.\n\n" +
		rag.FormatContext(docs)
}

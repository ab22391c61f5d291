package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cloudwego/eino/components/model"

	"github.com/biblica-labs/biblica-go/internal/embedder"
	"github.com/biblica-labs/biblica-go/internal/engine"
	"github.com/biblica-labs/biblica-go/internal/provider"
	"github.com/biblica-labs/biblica-go/internal/rag"
	"github.com/biblica-labs/biblica-go/internal/store"
)

// dataDir returns the biblica data directory (~/.biblica), creating it if
// needed.
func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".biblica")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not create %s: %w", dir, err)
	}
	return dir, nil
}

// corpusPath resolves the corpus JSON location. CORPUS_PATH overrides the
// default ~/.biblica/KJV.json.
func corpusPath() (string, error) {
	if p := os.Getenv("CORPUS_PATH"); p != "" {
		return p, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "KJV.json"), nil
}

// indexBackend returns the configured vector index backend name.
func indexBackend() string {
	return getEnvOrDefault("INDEX_BACKEND", "sqlite")
}

// indexLocation returns a human-readable index location for logs and the
// status surfaces.
func indexLocation() string {
	if indexBackend() == "qdrant" {
		return fmt.Sprintf("%s:%d/%s",
			getEnvOrDefault("QDRANT_HOST", "localhost"),
			getEnvInt("QDRANT_PORT", 6334),
			getEnvOrDefault("QDRANT_COLLECTION", "biblica_verses"))
	}
	dir, err := sqliteIndexDir()
	if err != nil {
		return "unknown"
	}
	return dir
}

// sqliteIndexDir resolves the SQLite index directory. INDEX_PATH overrides
// the default ~/.biblica/index.
func sqliteIndexDir() (string, error) {
	if p := os.Getenv("INDEX_PATH"); p != "" {
		return p, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "index"), nil
}

// qdrantConfig resolves the Qdrant connection settings from the environment.
// The collection vector size follows the configured embedding backend.
func qdrantConfig() *rag.QdrantConfig {
	embBackend := embedder.ConfigFromEnv().Provider
	return &rag.QdrantConfig{
		Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		Collection: getEnvOrDefault("QDRANT_COLLECTION", "biblica_verses"),
		VectorSize: uint64(embedder.DefaultDimensions(embBackend)), //nolint:gosec // dimensions are bounded
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	}
}

// openIndex connects to the existing vector index on the query path.
// A missing index fails with rag.ErrIndexNotFound.
func openIndex(ctx context.Context) (rag.VectorStore, error) {
	if indexBackend() == "qdrant" {
		return rag.OpenQdrantStore(ctx, qdrantConfig())
	}
	dir, err := sqliteIndexDir()
	if err != nil {
		return nil, err
	}
	return rag.OpenSQLiteStore(&rag.SQLiteConfig{Dir: dir})
}

// newIndex creates the vector index backend for a fresh build.
func newIndex(ctx context.Context) (rag.VectorStore, error) {
	if indexBackend() == "qdrant" {
		return rag.NewQdrantStore(ctx, qdrantConfig())
	}
	dir, err := sqliteIndexDir()
	if err != nil {
		return nil, err
	}
	return rag.NewSQLiteStore(&rag.SQLiteConfig{Dir: dir})
}

// queryStack bundles what every query-path command needs: the chat model,
// its resolved config, the open index, and the wired engine.
type queryStack struct {
	Engine      *engine.Engine
	ChatModel   model.ToolCallingChatModel
	ProviderCfg *provider.Config
	Index       rag.VectorStore
}

// Close releases the index connection.
func (s *queryStack) Close() {
	_ = s.Index.Close()
}

// buildQueryStack constructs the provider and embedder, opens the existing
// index, and wires the engine. A missing index fails with guidance to run
// `biblica setup`.
func buildQueryStack(ctx context.Context) (*queryStack, error) {
	providerCfg := provider.ConfigFromEnv()
	chatModel, err := provider.New(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	index, err := openIndex(ctx)
	if err != nil {
		if errors.Is(err, rag.ErrIndexNotFound) {
			return nil, fmt.Errorf("no index found at %s: run `biblica setup` first", indexLocation())
		}
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	eng, err := engine.New(engineConfig(chatModel, emb, index))
	if err != nil {
		_ = index.Close()
		return nil, err
	}

	return &queryStack{Engine: eng, ChatModel: chatModel, ProviderCfg: providerCfg, Index: index}, nil
}

// engineConfig resolves the engine tuning knobs from the environment.
// Zero values select the engine defaults.
func engineConfig(chatModel model.BaseChatModel, emb rag.Embedder, index rag.VectorStore) *engine.Config {
	return &engine.Config{
		ChatModel:    chatModel,
		Embedder:     emb,
		Index:        index,
		ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
		TopK:         getEnvInt("RETRIEVAL_K", 0),
	}
}

// historyDBPath resolves the conversation history database path.
// ok is false when persistence is disabled via BIBLICA_HISTORY_DB=disabled.
func historyDBPath() (path string, ok bool) {
	p := os.Getenv("BIBLICA_HISTORY_DB")
	if p == "disabled" {
		return "", false
	}
	if p != "" {
		return p, true
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return "", false
	}
	return p, true
}

// openHistory opens the conversation history store. Persistence problems
// never block a chat: failures are logged and a nil store is returned.
func openHistory(log *slog.Logger) (store.ConversationStore, func()) {
	path, ok := historyDBPath()
	if !ok {
		log.Info("history: persistence disabled")
		return nil, func() {}
	}
	hs, err := store.Open(path)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("history: store opened", slog.String("path", path))
	return hs, func() { _ = hs.Close() }
}

// modelDisplayName returns the chat model identifier for the active backend.
func modelDisplayName(cfg *provider.Config) string {
	switch cfg.Backend {
	case provider.BackendOpenAI:
		return cfg.OpenAI.Model
	case provider.BackendAzure:
		return cfg.AzureOpenAI.Deployment
	case provider.BackendBedrock:
		return cfg.Bedrock.ModelID
	case provider.BackendOllama:
		return cfg.Ollama.Model
	default:
		return cfg.Gemini.Model
	}
}

// embeddingDisplayName returns the embedding model identifier, falling back
// to the backend default when none is configured.
func embeddingDisplayName(cfg *embedder.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return embedder.DefaultModel(cfg.Provider)
}

// getEnvOrDefault returns the env value for key, or fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer env value for key, or fallback when unset
// or unparsable.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

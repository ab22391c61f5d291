package embedder

import (
	"fmt"
	"os"
	"strconv"

	"github.com/biblica-labs/biblica-go/internal/rag"
)

// Default embedding models per backend.
const (
	defaultGeminiModel  = "embedding-001"
	defaultOllamaModel  = "nomic-embed-text"
	defaultOpenAIModel  = "text-embedding-3-small"
	defaultBedrockModel = "amazon.titan-embed-text-v2"

	// defaultGeminiDimensions is the output dimension of embedding-001.
	defaultGeminiDimensions = 768
	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ — override with EMBEDDING_DIMENSIONS.
	defaultOllamaDimensions = 768
	// defaultOpenAIDimensions is the output dimension of text-embedding-3-small.
	defaultOpenAIDimensions = 1536
)

// Config holds the resolved settings for constructing an embedder. All
// fields except Provider are optional; zero values select per-backend
// defaults.
type Config struct {
	// Provider selects the backend: gemini, openai, azure, ollama, bedrock.
	Provider string

	// Model is the embedding model name. Empty selects the backend default.
	Model string

	// APIKey authenticates against hosted backends. Unused by ollama.
	APIKey string

	// Endpoint overrides the backend base URL (Azure resource endpoint,
	// Ollama host, or a test server).
	Endpoint string

	// Dimensions is the requested vector length, for backends that accept
	// one (openai/azure). Zero selects the model default.
	Dimensions int
}

// DefaultDimensions returns the default embedding vector size for the given
// backend name. Callers that pre-size a vector index (e.g. Qdrant collection
// creation) should use this rather than hardcoding a value.
// EMBEDDING_DIMENSIONS always takes precedence when set.
func DefaultDimensions(backend string) int {
	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		return v
	}
	switch backend {
	case "ollama":
		return defaultOllamaDimensions
	case "openai", "azure":
		return defaultOpenAIDimensions
	default:
		return defaultGeminiDimensions
	}
}

// DefaultModel returns the default embedding model name for the given
// backend. Used by display surfaces when EMBEDDING_MODEL is unset.
func DefaultModel(backend string) string {
	switch backend {
	case "ollama":
		return defaultOllamaModel
	case "openai", "azure":
		return defaultOpenAIModel
	case "bedrock":
		return defaultBedrockModel
	default:
		return defaultGeminiModel
	}
}

// New constructs a rag.Embedder for the backend named in cfg.Provider.
func New(cfg *Config) (rag.Embedder, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	switch cfg.Provider {
	case "", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedder: gemini requires GEMINI_API_KEY, GOOGLE_API_KEY, or EMBEDDING_API_KEY")
		}
		return NewGeminiEmbedder(&GeminiConfig{
			BaseURL: cfg.Endpoint,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		}), nil

	case "ollama":
		host := cfg.Endpoint
		if host == "" {
			host = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = defaultOllamaModel
		}
		return NewOllamaEmbedder(&OllamaConfig{
			Host:  host,
			Model: model,
		}), nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedder: openai requires OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		baseURL := cfg.Endpoint
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		dims := cfg.Dimensions
		if dims <= 0 {
			dims = defaultOpenAIDimensions
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    baseURL,
			APIKey:     cfg.APIKey,
			Model:      model,
			Dimensions: dims,
		}), nil

	case "azure":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		dims := cfg.Dimensions
		if dims <= 0 {
			dims = defaultOpenAIDimensions
		}
		apiVersion := getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview")
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    cfg.Endpoint + "/openai",
			APIKey:     cfg.APIKey,
			Model:      model,
			Dimensions: dims,
			Azure:      true,
			APIVersion: apiVersion,
		}), nil

	case "bedrock":
		// Future: implement BedrockEmbedder. For now, return an error.
		return nil, fmt.Errorf("embedder: bedrock embedding support is not yet implemented (model: %s)", defaultBedrockModel)

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q — valid values: gemini, openai, azure, ollama, bedrock", cfg.Provider)
	}
}

// NewFromEnv constructs a rag.Embedder using cascading defaults that inherit
// from the chat provider configuration when embedding-specific overrides are
// not set.
//
// Resolution order:
//
//  1. EMBEDDING_PROVIDER — if unset, inherits MODEL_PROVIDER (default: gemini)
//  2. Per-backend credentials are inherited from the chat provider's env vars
//  3. EMBEDDING_MODEL — overrides the default model for the resolved backend
//  4. EMBEDDING_API_KEY — overrides the inherited API key
//  5. EMBEDDING_ENDPOINT — overrides the inherited endpoint
//  6. EMBEDDING_DIMENSIONS — overrides the default dimensions
func NewFromEnv() (rag.Embedder, error) {
	return New(ConfigFromEnv())
}

// ConfigFromEnv resolves the embedder configuration from the environment
// without constructing anything. The caller may still override fields before
// passing the result to New.
func ConfigFromEnv() *Config {
	backend := getEnv("EMBEDDING_PROVIDER")
	if backend == "" {
		backend = getEnvOrDefault("MODEL_PROVIDER", "gemini")
	}

	cfg := &Config{
		Provider:   backend,
		Model:      getEnv("EMBEDDING_MODEL"),
		APIKey:     getEnv("EMBEDDING_API_KEY"),
		Endpoint:   getEnv("EMBEDDING_ENDPOINT"),
		Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 0),
	}

	if cfg.APIKey == "" {
		switch backend {
		case "", "gemini":
			cfg.APIKey = getEnv("GEMINI_API_KEY")
			if cfg.APIKey == "" {
				cfg.APIKey = getEnv("GOOGLE_API_KEY")
			}
		case "openai":
			cfg.APIKey = getEnv("OPENAI_API_KEY")
		case "azure":
			cfg.APIKey = getEnv("AZURE_OPENAI_API_KEY")
		}
	}
	if cfg.Endpoint == "" {
		switch backend {
		case "ollama":
			cfg.Endpoint = getEnv("OLLAMA_HOST")
		case "azure":
			cfg.Endpoint = getEnv("AZURE_OPENAI_ENDPOINT")
		}
	}

	return cfg
}

// getEnv returns the value of the named environment variable, or empty string.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

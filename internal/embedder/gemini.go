// Package embedder provides implementations of the rag.Embedder interface for
// converting text into dense vector embeddings. Each implementation talks to a
// different backend (Gemini, OpenAI, Azure OpenAI, Ollama) via plain HTTP — no
// additional SDK dependencies are required.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// geminiDefaultBaseURL is the public Generative Language API base.
const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiEmbedder implements rag.Embedder using the Gemini batchEmbedContents
// REST API. It is safe for concurrent use.
type GeminiEmbedder struct {
	// baseURL is the API base (default: the public Generative Language API).
	baseURL string
	// apiKey is sent as the x-goog-api-key header.
	apiKey string
	// model is the embedding model resource name (e.g. "models/embedding-001").
	model string
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// GeminiConfig holds the settings for constructing a GeminiEmbedder.
type GeminiConfig struct {
	// BaseURL overrides the API base URL. Empty selects the public endpoint.
	BaseURL string
	// APIKey is the Gemini API key.
	APIKey string
	// Model is the embedding model name (e.g. "embedding-001"). The
	// "models/" resource prefix is added if missing.
	Model string
}

// NewGeminiEmbedder constructs a GeminiEmbedder from the given config.
func NewGeminiEmbedder(cfg *GeminiConfig) *GeminiEmbedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &GeminiEmbedder{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// geminiEmbedRequest is the JSON body sent to the batchEmbedContents endpoint.
type geminiEmbedRequest struct {
	Requests []geminiContentRequest `json:"requests"`
}

// geminiContentRequest is one entry in the batch. The model must be repeated
// per entry and match the model in the URL.
type geminiContentRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiEmbedResponse is the JSON body returned from batchEmbedContents.
type geminiEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice. The API caps a batch at
// 100 entries; callers are expected to batch below that.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := geminiEmbedRequest{
		Requests: make([]geminiContentRequest, len(texts)),
	}
	for i, text := range texts {
		body.Requests[i] = geminiContentRequest{
			Model:   e.model,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: marshal request: %w", err)
	}

	url := e.baseURL + "/" + e.model + ":batchEmbedContents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr geminiEmbedResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("gemini embedder: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("gemini embedder: HTTP %d: %s", resp.StatusCode, snippet(raw))
	}

	var result geminiEmbedResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("gemini embedder: decode response: %w", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embedder: expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}

	embeddings := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/biblica-labs/biblica-go/internal/rag"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Must be long enough to cover a full SSE answer stream.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// AskTimeout bounds a single answer generation on POST /api/ask,
	// applied via the request context. Defaults to 2 minutes.
	AskTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 5 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 10 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives the server's Prometheus metrics. If nil a
	// fresh registry is created (and used as the gatherer too).
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Usually the same value as
	// MetricsRegistry.
	MetricsGatherer prometheus.Gatherer
	// IndexBackend is the vector index backend name reported by /api/status
	// (e.g. "sqlite", "qdrant").
	IndexBackend string
	// IndexLocation is the index path or collection reported by /api/status.
	IndexLocation string
	// Model is the chat model identifier reported by /api/status.
	Model string
	// EmbeddingModel is the embedding model identifier reported by /api/status.
	EmbeddingModel string
}

// Answerer is the narrow interface the handlers consume. *engine.Engine
// satisfies it; tests inject a fake.
type Answerer interface {
	// AnswerStream retrieves passages for question and streams answer
	// increments to w.
	AnswerStream(ctx context.Context, question string, w io.Writer) error
	// Search returns the most similar fragments for query, highest first.
	// topK <= 0 selects the engine default.
	Search(ctx context.Context, query string, topK int) ([]rag.Document, error)
	// Ready reports the number of indexed fragments, failing when the
	// index is unreachable or empty.
	Ready(ctx context.Context) (int, error)
}

// Server is the HTTP server that exposes the answer engine.
type Server struct {
	// answerer handles ask, search, and readiness requests.
	answerer Answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments registered for this instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the user's natural language question.
	Question string `json:"question"`
}

// searchResult is one scored fragment in a GET /api/search response.
type searchResult struct {
	// Reference is the fragment's human-readable label (e.g. "Genesis 1:1").
	Reference string `json:"reference"`
	// Content is the fragment text.
	Content string `json:"content"`
	// Score is the cosine similarity against the query.
	Score float32 `json:"score"`
}

// searchResponse is the JSON response for GET /api/search.
type searchResponse struct {
	// Query is the echoed search query.
	Query string `json:"query"`
	// Count is the number of results returned.
	Count int `json:"count"`
	// Results lists the matching fragments in similarity-descending order.
	Results []searchResult `json:"results"`
}

// statusResponse is the JSON response for GET /api/status.
type statusResponse struct {
	// Fragments is the number of indexed fragments (0 when not built).
	Fragments int `json:"fragments"`
	// Backend is the vector index backend name.
	Backend string `json:"backend"`
	// Location is the index path or collection name.
	Location string `json:"location"`
	// Model is the chat model identifier.
	Model string `json:"model"`
	// EmbeddingModel is the embedding model identifier.
	EmbeddingModel string `json:"embedding_model"`
	// Ready is true when the index holds at least one fragment.
	Ready bool `json:"ready"`
}

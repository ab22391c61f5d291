package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/qdrant/go-client/qdrant"

	"github.com/biblica-labs/biblica-go/internal/provider"
	"github.com/biblica-labs/biblica-go/internal/rag"
)

// LLMPinger probes a chat backend for GET /api/ready. When a zero-cost
// HealthCheckConfig is available it is used exclusively; backends without
// one (ark) fall back to a single-token Generate call, which consumes
// tokens.
type LLMPinger struct {
	// model backs the Generate fallback. Only called when healthCheck is nil.
	model model.BaseChatModel
	// healthCheck is the zero-cost connectivity probe, when the backend has one.
	healthCheck provider.HealthCheckConfig
	// name identifies the backend in readiness responses (e.g. "gemini").
	name string
}

// NewLLMPinger constructs an LLMPinger for the given model and backend name.
// hc may be nil; the pinger then probes with a Generate call.
func NewLLMPinger(m model.BaseChatModel, hc provider.HealthCheckConfig, name string) *LLMPinger {
	return &LLMPinger{model: m, healthCheck: hc, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *LLMPinger) Name() string { return p.name }

// Ping probes the chat backend for readiness.
func (p *LLMPinger) Ping(ctx context.Context) error {
	if p.healthCheck != nil {
		if err := p.healthCheck.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s health check failed: %w", p.name, err)
		}
		return nil
	}

	slog.Warn("pinger: falling back to Generate-based health check — tokens will be consumed",
		slog.String("backend", p.name),
	)
	msgs := []*schema.Message{
		schema.UserMessage("ping"),
	}
	resp, err := p.model.Generate(ctx, msgs)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("generate returned nil response")
	}
	return nil
}

// QdrantPinger probes a Qdrant instance using its native HealthCheck RPC.
// It satisfies the Pinger interface and is used by GET /api/ready.
type QdrantPinger struct {
	// client is the Qdrant gRPC client to probe.
	client *qdrant.Client
}

// NewQdrantPinger constructs a QdrantPinger for the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
// Returns nil if Qdrant is reachable, or a descriptive error otherwise.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	_, err := p.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// IndexPinger reports the vector index not ready until it is reachable and
// holds at least one fragment. An empty index can answer no questions, so
// readiness treats it the same as an unreachable one.
type IndexPinger struct {
	// store is the vector index to probe.
	store rag.VectorStore
}

// NewIndexPinger constructs an IndexPinger for the given vector store.
func NewIndexPinger(store rag.VectorStore) *IndexPinger {
	return &IndexPinger{store: store}
}

// Name returns the dependency label used in readiness responses.
func (p *IndexPinger) Name() string { return "index" }

// Ping counts the indexed fragments, failing on zero.
func (p *IndexPinger) Ping(ctx context.Context) error {
	count, err := p.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count failed: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("index is empty: run `biblica setup` to build it")
	}
	return nil
}

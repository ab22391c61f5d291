package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/biblica-labs/biblica-go/internal/embedder"
	"github.com/biblica-labs/biblica-go/internal/logging"
	"github.com/biblica-labs/biblica-go/internal/provider"
	"github.com/biblica-labs/biblica-go/internal/rag"
	"github.com/biblica-labs/biblica-go/internal/server"
	"github.com/biblica-labs/biblica-go/internal/tracing"
)

// NewServeCmd constructs the `biblica serve` command, which starts the HTTP
// API server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the biblica HTTP API server",
		Long: `Start the biblica HTTP API server on localhost.

The server exposes the answering pipeline over REST/SSE:

  POST /api/ask      stream an answer for {"question": "..."}
  GET  /api/search   retrieval-only passage search
  GET  /api/status   index and model status
  GET  /api/health   liveness probe
  GET  /api/ready    readiness probe (model, index)
  GET  /metrics      Prometheus metrics

Set BIBLICA_API_KEY to require a bearer token on the /api endpoints.

Examples:
  biblica serve
  biblica serve --port 9090
  MODEL_PROVIDER=ollama biblica serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			stack, err := buildQueryStack(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer stack.Close()
			log.Info("provider initialised", slog.String("provider", string(stack.ProviderCfg.Backend)))

			srv, err := server.New(stack.Engine, &server.Config{
				Host:           host,
				Port:           port,
				Logger:         log,
				Pingers:        buildPingers(stack),
				APIKey:         os.Getenv("BIBLICA_API_KEY"),
				IndexBackend:   indexBackend(),
				IndexLocation:  indexLocation(),
				Model:          modelDisplayName(stack.ProviderCfg),
				EmbeddingModel: embeddingDisplayName(embedder.ConfigFromEnv()),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}

// buildPingers assembles the readiness probes: the chat model, the Qdrant
// service when that backend is active, and the index contents.
func buildPingers(stack *queryStack) []server.Pinger {
	pingers := []server.Pinger{
		server.NewLLMPinger(stack.ChatModel, provider.NewHealthCheck(stack.ProviderCfg), string(stack.ProviderCfg.Backend)),
	}
	if qs, ok := stack.Index.(*rag.QdrantStore); ok {
		pingers = append(pingers, server.NewQdrantPinger(qs.Client()))
	}
	return append(pingers, server.NewIndexPinger(stack.Index))
}

package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HealthCheckConfig is implemented by zero-cost connectivity probes for a
// chat backend. Unlike a Generate call, a health check consumes no tokens.
type HealthCheckConfig interface {
	// HealthCheck verifies the backend is reachable and the credentials
	// are accepted. It must be cheap and side-effect free.
	HealthCheck(ctx context.Context) error
}

// httpHealthCheck probes a backend listing endpoint over HTTP. Any 2xx
// response counts as healthy.
type httpHealthCheck struct {
	name    string
	url     string
	headers map[string]string
	client  *http.Client
}

func (h *httpHealthCheck) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("provider: %s health check: create request: %w", h.name, err)
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s health check: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider: %s health check: unexpected status %d", h.name, resp.StatusCode)
	}
	return nil
}

// NewHealthCheck returns a zero-cost connectivity probe for the backend
// selected in cfg, or nil when the backend has no cheap probe endpoint
// (bedrock). Callers with a nil check fall back to a Generate-based probe.
func NewHealthCheck(cfg *Config) HealthCheckConfig {
	client := &http.Client{Timeout: 10 * time.Second}

	switch cfg.Backend {
	case BackendGemini:
		return &httpHealthCheck{
			name:    "gemini",
			url:     "https://generativelanguage.googleapis.com/v1beta/models",
			headers: map[string]string{"x-goog-api-key": cfg.Gemini.APIKey},
			client:  client,
		}

	case BackendOpenAI:
		return &httpHealthCheck{
			name:    "openai",
			url:     "https://api.openai.com/v1/models",
			headers: map[string]string{"Authorization": "Bearer " + cfg.OpenAI.APIKey},
			client:  client,
		}

	case BackendAzure:
		if cfg.AzureOpenAI.Endpoint == "" {
			return nil
		}
		return &httpHealthCheck{
			name:    "azure",
			url:     cfg.AzureOpenAI.Endpoint + "/openai/models?api-version=" + cfg.AzureOpenAI.APIVersion,
			headers: map[string]string{"api-key": cfg.AzureOpenAI.APIKey},
			client:  client,
		}

	case BackendOllama:
		host := cfg.Ollama.Host
		if host == "" {
			host = "http://localhost:11434"
		}
		return &httpHealthCheck{
			name:   "ollama",
			url:    host + "/api/tags",
			client: client,
		}

	default:
		return nil
	}
}

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHealthCheck_BackendSelection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     *Config
		wantNil bool
	}{
		{"gemini", &Config{Backend: BackendGemini, Gemini: ProviderGemini{APIKey: "k"}}, false},
		{"openai", &Config{Backend: BackendOpenAI, OpenAI: ProviderOpenAI{APIKey: "k"}}, false},
		{"azure", &Config{Backend: BackendAzure, AzureOpenAI: ProviderAzureOpenAI{APIKey: "k", Endpoint: "https://r.openai.azure.com"}}, false},
		{"azure without endpoint", &Config{Backend: BackendAzure}, true},
		{"ollama", &Config{Backend: BackendOllama}, false},
		{"bedrock has no probe", &Config{Backend: BackendBedrock}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			hc := NewHealthCheck(tc.cfg)
			if (hc == nil) != tc.wantNil {
				t.Errorf("NewHealthCheck(%s) nil = %v, want %v", tc.name, hc == nil, tc.wantNil)
			}
		})
	}
}

func TestHealthCheck_OllamaProbe(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(srv.Close)

	hc := NewHealthCheck(&Config{
		Backend: BackendOllama,
		Ollama:  ProviderOllama{Host: srv.URL},
	})
	if hc == nil {
		t.Fatal("NewHealthCheck returned nil for ollama")
	}

	if err := hc.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if gotPath != "/api/tags" {
		t.Errorf("probe hit %q, want /api/tags", gotPath)
	}
}

func TestHealthCheck_FailsOnErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	hc := NewHealthCheck(&Config{
		Backend: BackendOllama,
		Ollama:  ProviderOllama{Host: srv.URL},
	})

	if err := hc.HealthCheck(context.Background()); err == nil {
		t.Fatal("HealthCheck passed on a 401 response")
	}
}

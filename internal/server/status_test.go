package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biblica-labs/biblica-go/internal/rag"
)

func TestHandleStatus_Ready(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeAnswerer{readyCount: 31102})
	s.cfg.IndexBackend = "sqlite"
	s.cfg.IndexLocation = "/data/index"
	s.cfg.Model = "gemini-2.0-flash"
	s.cfg.EmbeddingModel = "models/embedding-001"

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	s.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", w.Code, w.Body.String())
	}

	var resp statusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Fragments != 31102 {
		t.Errorf("fragments: expected 31102, got %d", resp.Fragments)
	}
	if resp.Backend != "sqlite" || resp.Location != "/data/index" {
		t.Errorf("index: expected sqlite//data/index, got %s/%s", resp.Backend, resp.Location)
	}
	if resp.Model != "gemini-2.0-flash" || resp.EmbeddingModel != "models/embedding-001" {
		t.Errorf("models: got %s / %s", resp.Model, resp.EmbeddingModel)
	}
	if !resp.Ready {
		t.Errorf("expected ready:true")
	}
}

// TestHandleStatus_NotBuilt verifies that a missing index reports
// ready:false with zero fragments and still returns 200 — the server
// itself is healthy even when the index has not been built yet.
func TestHandleStatus_NotBuilt(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeAnswerer{readyErr: rag.ErrUninitialized})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	s.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp statusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Ready {
		t.Errorf("expected ready:false for unbuilt index")
	}
	if resp.Fragments != 0 {
		t.Errorf("expected 0 fragments, got %d", resp.Fragments)
	}
}

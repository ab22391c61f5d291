package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/biblica-labs/biblica-go/internal/logging"
	"github.com/biblica-labs/biblica-go/internal/rag"
)

// handleStatus handles GET /api/status. It reports the index shape and the
// configured models so operators can see what the server is answering from.
// A missing or empty index is reported as ready:false with zero fragments,
// not as an HTTP error — the server itself is fine.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	count, err := s.answerer.Ready(r.Context())
	if err != nil && !errors.Is(err, rag.ErrUninitialized) && !errors.Is(err, rag.ErrIndexNotFound) {
		log.Warn("status: index probe failed", slog.Any("error", err))
	}

	resp := statusResponse{
		Fragments:      count,
		Backend:        s.cfg.IndexBackend,
		Location:       s.cfg.IndexLocation,
		Model:          s.cfg.Model,
		EmbeddingModel: s.cfg.EmbeddingModel,
		Ready:          err == nil && count > 0,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("status encode error", slog.Any("error", err))
	}
}

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/biblica-labs/biblica-go/internal/logging"
	"github.com/biblica-labs/biblica-go/internal/rag"
)

// handleSearch handles GET /api/search?q=…&k=… requests. It runs retrieval
// only — no answer generation — and returns the scored fragments as JSON.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "query parameter q is required", http.StatusBadRequest)
		return
	}

	topK := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "query parameter k must be a positive integer", http.StatusBadRequest)
			return
		}
		topK = n
	}

	docs, err := s.answerer.Search(r.Context(), query, topK)
	if err != nil {
		logging.FromContext(r.Context()).Error("search failed", slog.Any("error", err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	resp := searchResponse{
		Query:   query,
		Count:   len(docs),
		Results: make([]searchResult, 0, len(docs)),
	}
	for _, doc := range docs {
		resp.Results = append(resp.Results, searchResult{
			Reference: resultReference(doc),
			Content:   doc.Content,
			Score:     doc.Score,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.FromContext(r.Context()).Error("search encode error", slog.Any("error", err))
	}
}

// resultReference picks the label for a search result, falling back from
// the verse reference to Source to ID so no result is anonymous.
func resultReference(doc rag.Document) string {
	if ref := doc.Metadata["reference"]; ref != "" {
		return ref
	}
	if doc.Source != "" {
		return doc.Source
	}
	return doc.ID
}

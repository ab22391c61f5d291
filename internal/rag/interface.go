// Package rag defines the interfaces for the retrieval side of the answer
// pipeline: vector storage, fragment retrieval, and embedding.
// Concrete backends (SQLite, Qdrant) satisfy these interfaces so the engine
// layer never depends on a specific store.
package rag

import (
	"context"
)

// Document represents one retrievable fragment of scripture text.
type Document struct {
	// ID is the unique identifier for this fragment. Single-fragment
	// documents use the parent document ID; split fragments append "#<n>".
	ID string

	// Content is the raw text content of the fragment.
	Content string

	// Source is the origin of the fragment (corpus file path or URL).
	Source string

	// Metadata holds the provenance attached at build time: reference
	// ("<book> <chapter>:<verse>"), book, chapter, verse, translation,
	// testament ("Old"|"New"), book_number ("1".."66", "0" unknown),
	// chunk_type.
	Metadata map[string]string

	// Score is the similarity score assigned during retrieval (0.0–1.0).
	// Zero value means the score was not computed.
	Score float32
}

// VectorStore is the interface for persisting and searching fragment
// embeddings. Implementations must be safe to call from multiple goroutines.
//
// A store is additive-only: fragments are added by Upsert and removed only
// by Destroy, which deletes the whole index. There is no partial deletion.
type VectorStore interface {
	// Upsert stores or updates a batch of fragments with their pre-computed
	// embeddings. The embeddings slice must be parallel to docs —
	// embeddings[i] is the vector for docs[i]. An empty batch fails with
	// ErrEmptyInput.
	Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error

	// Search performs a cosine similarity search and returns the top-k most
	// relevant fragments for the given query embedding, highest score first.
	// Ties break deterministically on insertion order.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error)

	// Count returns the number of fragments currently persisted.
	// Used for readiness and status reporting; a count of zero means the
	// index exists but can answer no questions.
	Count(ctx context.Context) (int, error)

	// Destroy deletes the whole persisted index. The store is unusable
	// afterwards; a fresh one must be created to rebuild.
	Destroy(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice; implementations
	// fail hard when the remote API returns a different number of vectors
	// than texts, since a silent mismatch would corrupt the index.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface used by the engine to fetch relevant
// passages for a given question. It combines embedding and vector search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the top-k most relevant fragments for the query,
	// in similarity-descending order. No deduplication, no re-ranking.
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}

package rag

import "errors"

// Sentinel errors for the retrieval pipeline. Callers branch on these with
// errors.Is; backends and clients wrap them with call-site context.
var (
	// ErrIndexNotFound reports that no persisted index exists at the
	// configured location. Callers treat it as "run setup first", not as a
	// failure of an existing index.
	ErrIndexNotFound = errors.New("index not found")

	// ErrEmptyInput reports an attempt to index zero fragments. An empty
	// store can answer no questions, so it is never created silently.
	ErrEmptyInput = errors.New("no fragments to index")

	// ErrUninitialized reports a query against an index that exists but
	// holds zero fragments, or a pipeline used before its index was built.
	ErrUninitialized = errors.New("index not built")

	// ErrProvider marks failures of remote embedding or generation calls
	// (network, quota, auth). The pipeline surfaces these unchanged; it
	// never retries internally.
	ErrProvider = errors.New("provider call failed")
)

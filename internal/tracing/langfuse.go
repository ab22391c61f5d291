// Package tracing wires optional Langfuse observability into the eino
// callback chain. Both LLM surfaces (the chat TUI and the HTTP server)
// attach the handler when keys are configured, so every retrieval-grounded
// generation shows up as a trace without any per-call plumbing.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// DefaultHost is the Langfuse endpoint used when LANGFUSE_HOST is unset.
// Keys without a host almost always mean the hosted service.
const DefaultHost = "https://cloud.langfuse.com"

// Setup constructs the Langfuse callback handler from the environment.
// Tracing is opt-in: it activates only when both LANGFUSE_PUBLIC_KEY and
// LANGFUSE_SECRET_KEY are set, and ok reports whether it did. The returned
// flush must run before process exit or buffered traces are lost; callers
// defer it next to their engine teardown.
func Setup() (handler callbacks.Handler, flush func(), ok bool) {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")
	if publicKey == "" || secretKey == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = DefaultHost
	}

	handler, flush = langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: publicKey,
		SecretKey: secretKey,
	})
	return handler, flush, true
}

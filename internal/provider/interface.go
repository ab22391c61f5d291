// Package provider selects and constructs the LLM chat backend at runtime.
// Supported backends: Google Gemini, OpenAI, Azure OpenAI, AWS Bedrock,
// Ollama. Gemini is the default.
package provider

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendGemini selects Google Gemini via AI Studio. The default.
	BackendGemini Backend = "gemini"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendBedrock selects AWS Bedrock.
	BackendBedrock Backend = "bedrock"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
)

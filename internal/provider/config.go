package provider

import (
	"fmt"
	"strings"
)

// ProviderGemini holds Google Gemini settings.
type ProviderGemini struct {
	// APIKey is the AI Studio API key. Populated from GEMINI_API_KEY or
	// GOOGLE_API_KEY.
	APIKey string
	// Model is the Gemini model name (e.g. "gemini-2.0-flash").
	Model string
}

// ProviderOpenAI holds OpenAI API settings.
type ProviderOpenAI struct {
	// APIKey is the OpenAI API key (OPENAI_API_KEY).
	APIKey string
	// Model is the model name (e.g. "gpt-4o").
	Model string
}

// ProviderAzureOpenAI holds Azure OpenAI Service settings.
type ProviderAzureOpenAI struct {
	// APIKey authenticates against the Azure resource (AZURE_OPENAI_API_KEY).
	APIKey string
	// Endpoint is the Azure resource endpoint, e.g.
	// "https://my-resource.openai.azure.com" (AZURE_OPENAI_ENDPOINT).
	Endpoint string
	// Deployment is the Azure deployment name (AZURE_OPENAI_DEPLOYMENT).
	Deployment string
	// APIVersion is the Azure REST API version (AZURE_OPENAI_API_VERSION,
	// e.g. "2024-02-01").
	APIVersion string
}

// ProviderBedrock holds AWS Bedrock settings. AWS credentials themselves are
// resolved via the standard SDK chain.
type ProviderBedrock struct {
	// AWSRegion is the AWS region (AWS_REGION).
	AWSRegion string
	// ModelID is the Bedrock model ID (BEDROCK_MODEL_ID).
	ModelID string
	// APIKey authenticates against a Bedrock-compatible gateway, when one
	// is used instead of SigV4 (BEDROCK_API_KEY).
	APIKey string
	// Endpoint overrides the Bedrock-compatible endpoint (BEDROCK_ENDPOINT).
	Endpoint string
}

// ProviderOllama holds local Ollama settings.
type ProviderOllama struct {
	// Host is the Ollama server base URL (OLLAMA_HOST,
	// default http://localhost:11434).
	Host string
	// Model is the model name (e.g. "llama3").
	Model string
}

// SharedTuning holds generation parameters applied across backends.
type SharedTuning struct {
	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int
	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Config holds all provider-level configuration, resolved from environment
// variables or explicit caller-supplied values. Only the section matching
// Backend is consulted.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	Gemini      ProviderGemini
	OpenAI      ProviderOpenAI
	AzureOpenAI ProviderAzureOpenAI
	Bedrock     ProviderBedrock
	Ollama      ProviderOllama

	// Tuning holds generation parameters shared across backends.
	Tuning SharedTuning
}

// Validate checks that the section selected by Backend carries everything
// the backend factory needs, so callers get a clear error at startup rather
// than on the first request. Error messages name the environment variable
// that fixes the problem.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("provider: gemini backend requires an API key — set GEMINI_API_KEY or GOOGLE_API_KEY")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("provider: gemini backend requires a model — set GEMINI_MODEL or MODEL_ID")
		}

	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider: openai backend requires OPENAI_API_KEY")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("provider: openai backend requires OPENAI_MODEL or MODEL_ID")
		}

	case BackendAzure:
		if c.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("provider: azure backend requires AZURE_OPENAI_API_KEY")
		}
		if c.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("provider: azure backend requires AZURE_OPENAI_ENDPOINT")
		}
		if c.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("provider: azure backend requires AZURE_OPENAI_DEPLOYMENT")
		}

	case BackendBedrock:
		if c.Bedrock.ModelID == "" {
			return fmt.Errorf("provider: bedrock backend requires BEDROCK_MODEL_ID")
		}
		if c.Bedrock.AWSRegion == "" {
			return fmt.Errorf("provider: bedrock backend requires AWS_REGION")
		}

	case BackendOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("provider: ollama backend requires OLLAMA_MODEL or MODEL_ID")
		}

	default:
		return fmt.Errorf("provider: unknown backend %q — valid values: gemini, openai, azure, bedrock, ollama", c.Backend)
	}
	return nil
}

// azureReasoningPrefixes identify o-series and codex-class deployments,
// which reject the temperature parameter.
var azureReasoningPrefixes = []string{"o1", "o3", "o4", "codex"}

// isAzureReasoningModel reports whether the deployment name identifies an
// Azure reasoning model. Matching is case-insensitive and anchored to the
// start of the name.
func isAzureReasoningModel(deployment string) bool {
	d := strings.ToLower(deployment)
	for _, prefix := range azureReasoningPrefixes {
		if strings.HasPrefix(d, prefix) {
			return true
		}
	}
	return false
}

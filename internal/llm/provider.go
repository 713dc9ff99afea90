package llm

import "fmt"

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Providers lists the supported provider names.
var Providers = []string{ProviderOpenAI, ProviderAnthropic}

// APIKeyEnvVar returns the conventional environment variable holding the
// credential for provider. Unknown providers map to OPENAI_API_KEY.
func APIKeyEnvVar(provider string) string {
	if provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// NewTransport builds the backend for provider. An empty provider selects
// OpenAI.
func NewTransport(provider string, opts ...Option) (Transport, error) {
	switch provider {
	case "", ProviderOpenAI:
		return NewOpenAITransport(opts...)
	case ProviderAnthropic:
		return NewAnthropicTransport(opts...)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}

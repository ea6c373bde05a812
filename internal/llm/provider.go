package llm

import (
	"os"
	"strings"
)

// Provider identifies a chat-completion provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// ParseModelString parses a model string into provider and model name.
//
// Supported formats:
//
//	"openai/gpt-4o"            → (openai, "gpt-4o")
//	"anthropic/claude-sonnet"  → (anthropic, "claude-sonnet")
//	"claude-sonnet-4-20250514" → (anthropic, "claude-sonnet-4-20250514")
//	"gpt-4o"                   → (openai, "gpt-4o")
func ParseModelString(model string) (Provider, string) {
	if i := strings.Index(model, "/"); i > 0 {
		prefix := strings.ToLower(model[:i])
		name := model[i+1:]
		switch prefix {
		case "openai":
			return ProviderOpenAI, name
		case "anthropic":
			return ProviderAnthropic, name
		}
	}

	lower := strings.ToLower(model)
	if strings.HasPrefix(lower, "claude") {
		return ProviderAnthropic, model
	}

	return ProviderOpenAI, model
}

// NewClientForModel creates the appropriate client based on the model
// string.
//
// Environment variables used:
//
//	ANTHROPIC_API_KEY  — Anthropic API key (read by SDK automatically)
//	OPENAI_API_KEY     — OpenAI API key
//	OPENAI_BASE_URL    — Custom OpenAI-compatible base URL
func NewClientForModel(model string) (Client, string) {
	provider, name := ParseModelString(model)
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(), name
	default:
		var opts []OpenAIOption
		if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
			opts = append(opts, WithBaseURL(base))
		}
		return NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), opts...), name
	}
}

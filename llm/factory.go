package llm

import (
	"context"
	"time"
)

// NewClient builds the transport variant named by kind. baseURL applies to
// endpoint-configurable transports (ollama, openai); timeout bounds every
// request issued through the returned client.
func NewClient(ctx context.Context, kind, baseURL string, timeout time.Duration) (Client, error) {
	switch kind {
	case "", "ollama":
		return NewOllamaClient(baseURL, timeout), nil
	case "openai":
		return NewOpenAIClient(baseURL, timeout)
	case "anthropic":
		return NewAnthropicClient(timeout)
	case "gemini":
		return NewGeminiClient(ctx)
	case "bedrock":
		return NewBedrockClient(ctx)
	default:
		return nil, transportErrorf(ErrConnectionFailed, "unknown transport %q", kind)
	}
}

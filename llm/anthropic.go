package llm

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient drives the Anthropic Messages API. The API has no
// server-side response-format constraint, so structured requests are refused
// with ErrFormatUnsupported and the relay degrades through its fallback
// stages instead.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a client. It requires ANTHROPIC_API_KEY.
func NewAnthropicClient(timeout time.Duration) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, transportErrorf(ErrConnectionFailed, "ANTHROPIC_API_KEY environment variable not set")
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	)
	return &AnthropicClient{client: &client}, nil
}

func (a *AnthropicClient) Name() string { return "anthropic" }

// Chat performs one Messages round trip.
func (a *AnthropicClient) Chat(ctx context.Context, req Request) (*Response, error) {
	if req.Format.Kind != FormatNone {
		return nil, transportErrorf(ErrFormatUnsupported,
			"anthropic transport has no structured response format")
	}

	messages, systemPrompt := toAnthropicMessages(req.Messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: 1024,
		Messages:  messages,
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropicError(err)
	}

	var content string
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}
	return &Response{StatusCode: 200, Content: content}, nil
}

func toAnthropicMessages(messages []Message) ([]anthropic.MessageParam, string) {
	var out []anthropic.MessageParam
	var systemPrompt string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemPrompt = msg.Content
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out, systemPrompt
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return httpStatusError(apiErr.StatusCode, apiErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return transportErrorf(ErrTimeout, "request deadline exceeded")
	}
	return transportErrorf(ErrConnectionFailed, "%v", err)
}

package llm

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClient drives any OpenAI-compatible chat completion endpoint,
// including a local Ollama server's /v1 surface. The schema stage maps onto
// response_format json_schema, the generic stage onto json_object.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a client. The API key comes from OPENAI_API_KEY;
// when baseURL points at a local OpenAI-compatible endpoint the key may be
// absent and a placeholder is sent instead.
func NewOpenAIClient(baseURL string, timeout time.Duration) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if apiKey == "" {
		if baseURL == "" {
			return nil, transportErrorf(ErrConnectionFailed,
				"OPENAI_API_KEY is not set and no base URL points at a local endpoint")
		}
		apiKey = "local"
	}

	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	// The SDK client is returned by value; keep a pointer like its docs do.
	c := openai.NewClient(options...)
	return &OpenAIClient{client: &c}, nil
}

func (o *OpenAIClient) Name() string { return "openai" }

// Chat performs one chat completion round trip.
func (o *OpenAIClient) Chat(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Seed != nil {
		params.Seed = openai.Int(*req.Seed)
	}

	switch req.Format.Kind {
	case FormatJSON:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	case FormatSchema:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "canonical_command",
					Schema: req.Format.Schema,
				},
			},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, transportErrorf(ErrBadEnvelope, "completion carried no choices")
	}
	return &Response{StatusCode: 200, Content: resp.Choices[0].Message.Content}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			out = append(out, openai.SystemMessage(msg.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return httpStatusError(apiErr.StatusCode, apiErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return transportErrorf(ErrTimeout, "request deadline exceeded")
	}
	return transportErrorf(ErrConnectionFailed, "%v", err)
}

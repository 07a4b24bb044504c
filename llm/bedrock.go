package llm

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
)

// BedrockClient drives Anthropic models hosted on AWS Bedrock. InvokeModel
// offers no response-format constraint, so structured requests are refused
// with ErrFormatUnsupported and the relay falls back to the text stage.
type BedrockClient struct {
	client *bedrockruntime.Client
}

// NewBedrockClient creates a client from the ambient AWS configuration.
func NewBedrockClient(ctx context.Context) (*BedrockClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, transportErrorf(ErrConnectionFailed, "load AWS config: %v", err)
	}
	return &BedrockClient{client: bedrockruntime.NewFromConfig(cfg)}, nil
}

func (b *BedrockClient) Name() string { return "bedrock" }

type bedrockAnthropicRequest struct {
	AnthropicVersion string                    `json:"anthropic_version"`
	MaxTokens        int                       `json:"max_tokens"`
	System           string                    `json:"system,omitempty"`
	Messages         []bedrockAnthropicMessage `json:"messages"`
}

type bedrockAnthropicMessage struct {
	Role    string                  `json:"role"`
	Content []bedrockAnthropicBlock `json:"content"`
}

type bedrockAnthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type bedrockAnthropicResponse struct {
	Content []bedrockAnthropicBlock `json:"content"`
}

// Chat performs one InvokeModel round trip using the Anthropic-on-Bedrock
// payload shape.
func (b *BedrockClient) Chat(ctx context.Context, req Request) (*Response, error) {
	if req.Format.Kind != FormatNone {
		return nil, transportErrorf(ErrFormatUnsupported,
			"bedrock transport has no structured response format")
	}

	payload := bedrockAnthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        1024,
	}
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			payload.System = msg.Content
			continue
		}
		role := msg.Role
		if role != "assistant" {
			role = "user"
		}
		payload.Messages = append(payload.Messages, bedrockAnthropicMessage{
			Role:    role,
			Content: []bedrockAnthropicBlock{{Type: "text", Text: msg.Content}},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, transportErrorf(ErrConnectionFailed, "encode request: %v", err)
	}

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.Model),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, classifyBedrockError(err)
	}

	var decoded bedrockAnthropicResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, transportErrorf(ErrBadEnvelope, "non-JSON invoke response: %v", err)
	}
	var content string
	for _, block := range decoded.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return &Response{StatusCode: 200, Content: content}, nil
}

func classifyBedrockError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return transportErrorf(ErrTimeout, "request deadline exceeded")
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return transportErrorf(ErrConnectionFailed, "%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return transportErrorf(ErrConnectionFailed, "%v", err)
}

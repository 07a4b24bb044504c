package llm

import (
	"context"
	"errors"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient drives the Google Gemini API. Structured stages map onto an
// application/json response MIME type; the schema stage additionally sets a
// genai translation of the canonical payload schema. Seeds are not supported
// by the API and are ignored.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a client. It requires GEMINI_API_KEY.
func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, transportErrorf(ErrConnectionFailed, "GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, transportErrorf(ErrConnectionFailed, "create genai client: %v", err)
	}
	return &GeminiClient{client: client}, nil
}

func (g *GeminiClient) Name() string { return "gemini" }

// Chat performs one generate-content round trip.
func (g *GeminiClient) Chat(ctx context.Context, req Request) (*Response, error) {
	model := g.client.GenerativeModel(req.Model)
	switch req.Format.Kind {
	case FormatJSON:
		model.ResponseMIMEType = "application/json"
	case FormatSchema:
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = canonicalGenaiSchema()
	}

	history, last, systemPrompt := toGeminiContents(req.Messages)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	if last == nil {
		return nil, transportErrorf(ErrBadEnvelope, "request carried no user message")
	}

	chat := model.StartChat()
	chat.History = history
	resp, err := chat.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, transportErrorf(ErrBadEnvelope, "empty response from Gemini")
	}

	var content string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			content += string(text)
		}
	}
	return &Response{StatusCode: 200, Content: content}, nil
}

func toGeminiContents(messages []Message) (history []*genai.Content, last *genai.Content, systemPrompt string) {
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Role == "system" {
			systemPrompt = msg.Content
			continue
		}
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	if len(contents) == 0 {
		return nil, nil, systemPrompt
	}
	return contents[:len(contents)-1], contents[len(contents)-1], systemPrompt
}

// canonicalGenaiSchema mirrors the canonical payload schema in genai's
// schema vocabulary. genai cannot express open additionalProperties, so
// params is declared as a bare object.
func canonicalGenaiSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"op":     {Type: genai.TypeString},
			"target": {Type: genai.TypeString},
			"count":  {Type: genai.TypeInteger},
			"params": {Type: genai.TypeObject},
		},
		Required: []string{"op", "target"},
	}
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return httpStatusError(apiErr.Code, apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return transportErrorf(ErrTimeout, "request deadline exceeded")
	}
	return transportErrorf(ErrConnectionFailed, "%v", err)
}

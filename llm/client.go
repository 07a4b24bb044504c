// Package llm defines the chat transport the relay engine drives and its
// concrete provider variants. Each variant maps one logical request (model,
// message history, expected response format, seed and keep-alive hints)
// onto a provider API and returns the raw assistant text plus the HTTP
// status, or a typed transport error.
package llm

import "context"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// FormatKind selects the response contract requested from the model.
type FormatKind int

const (
	// FormatNone requests plain text.
	FormatNone FormatKind = iota
	// FormatJSON requests generic structured output (any JSON object).
	FormatJSON
	// FormatSchema requests output constrained by a JSON Schema.
	FormatSchema
)

// ResponseFormat carries the requested response contract.
type ResponseFormat struct {
	Kind   FormatKind
	Schema map[string]interface{} // set when Kind == FormatSchema
}

func NoFormat() ResponseFormat   { return ResponseFormat{Kind: FormatNone} }
func JSONFormat() ResponseFormat { return ResponseFormat{Kind: FormatJSON} }
func SchemaFormat(schema map[string]interface{}) ResponseFormat {
	return ResponseFormat{Kind: FormatSchema, Schema: schema}
}

// Request is one logical chat request.
type Request struct {
	Model     string
	Messages  []Message
	Format    ResponseFormat
	Seed      *int64
	KeepAlive float64 // seconds the provider should keep the model loaded; 0 = provider default
}

// Response is a successful transport round trip.
type Response struct {
	StatusCode int
	Content    string
}

// Client is the transport collaborator contract. Implementations block for
// at most their configured request timeout.
type Client interface {
	// Name identifies the transport variant ("ollama", "openai", ...).
	Name() string
	// Chat performs one request and returns the assistant text.
	Chat(ctx context.Context, req Request) (*Response, error)
}

// Prober is implemented by transports that support a read-only
// liveness/readiness check. Probing never produces chat traffic beyond the
// minimal per-model readiness query.
type Prober interface {
	Probe(ctx context.Context, models []string) (*ProbeReport, error)
}

// ProbeReport aggregates per-endpoint and per-model probe results.
type ProbeReport struct {
	OK      bool
	Entries []ProbeEntry
}

// ProbeEntry is one probe result: the endpoint listing ("tags") or one model
// readiness check.
type ProbeEntry struct {
	Kind        string // "tags" or "model"
	Model       string
	OK          bool
	HTTPStatus  int
	ElapsedMS   int64
	Reason      string
	Suggestions []string // closest known model names when the model is missing
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const DefaultOllamaURL = "http://localhost:11434"

// OllamaClient talks to a local Ollama server's native chat API. The schema
// and generic-JSON response formats map directly onto Ollama's "format"
// request field.
type OllamaClient struct {
	baseURL string
	http    *http.Client
}

// NewOllamaClient creates a client against baseURL (DefaultOllamaURL when
// empty) with one request timeout for every call.
func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

type ollamaChatRequest struct {
	Model     string                 `json:"model"`
	Messages  []Message              `json:"messages"`
	Stream    bool                   `json:"stream"`
	Format    interface{}            `json:"format,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
	KeepAlive *float64               `json:"keep_alive,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

// Chat performs one /api/chat round trip.
func (c *OllamaClient) Chat(ctx context.Context, req Request) (*Response, error) {
	payload := ollamaChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
	}
	switch req.Format.Kind {
	case FormatJSON:
		payload.Format = "json"
	case FormatSchema:
		payload.Format = req.Format.Schema
	}
	if req.Seed != nil {
		payload.Options = map[string]interface{}{"seed": *req.Seed}
	}
	if req.KeepAlive > 0 {
		keepAlive := req.KeepAlive
		payload.KeepAlive = &keepAlive
	}

	status, body, err := c.postJSON(ctx, "/api/chat", payload)
	if err != nil {
		return nil, err
	}

	var decoded ollamaChatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, transportErrorf(ErrBadEnvelope, "non-JSON chat response: %v", err)
	}
	if decoded.Message.Content == "" && decoded.Error != "" {
		return nil, transportErrorf(ErrBadEnvelope, "ollama error: %s", decoded.Error)
	}
	return &Response{StatusCode: status, Content: decoded.Message.Content}, nil
}

// Probe checks connectivity via /api/tags, verifies each requested model is
// present, and issues one minimal readiness chat per model. Read-only with
// respect to the relay: no transcript records come out of it.
func (c *OllamaClient) Probe(ctx context.Context, models []string) (*ProbeReport, error) {
	report := &ProbeReport{OK: true}

	started := time.Now()
	known, status, err := c.listModels(ctx)
	entry := ProbeEntry{Kind: "tags", HTTPStatus: status, ElapsedMS: time.Since(started).Milliseconds()}
	if err != nil {
		entry.Reason = err.Error()
		report.OK = false
		report.Entries = append(report.Entries, entry)
		return report, nil
	}
	entry.OK = true
	report.Entries = append(report.Entries, entry)

	for _, model := range models {
		report.Entries = append(report.Entries, c.probeModel(ctx, model, known))
	}
	for _, e := range report.Entries {
		if !e.OK {
			report.OK = false
		}
	}
	return report, nil
}

func (c *OllamaClient) probeModel(ctx context.Context, model string, known []string) ProbeEntry {
	entry := ProbeEntry{Kind: "model", Model: model}

	if len(known) > 0 && !contains(known, model) {
		entry.Reason = fmt.Sprintf("model %q not present on server", model)
		entry.Suggestions = SuggestModelNames(model, known)
		return entry
	}

	started := time.Now()
	resp, err := c.Chat(ctx, Request{
		Model:    model,
		Messages: []Message{{Role: "user", Content: "Reply with the single word: ok"}},
	})
	entry.ElapsedMS = time.Since(started).Milliseconds()
	if err != nil {
		entry.Reason = err.Error()
		var terr *TransportError
		if errors.As(err, &terr) {
			entry.HTTPStatus = terr.Status
		}
		return entry
	}
	entry.OK = true
	entry.HTTPStatus = resp.StatusCode
	return entry
}

func (c *OllamaClient) listModels(ctx context.Context) ([]string, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, 0, transportErrorf(ErrConnectionFailed, "build request: %v", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, classifyHTTPError(err, c.baseURL)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, transportErrorf(ErrConnectionFailed, "read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, httpStatusError(resp.StatusCode, string(body))
	}

	var decoded struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, resp.StatusCode, transportErrorf(ErrBadEnvelope, "non-JSON tags response: %v", err)
	}
	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		names = append(names, m.Name)
	}
	return names, resp.StatusCode, nil
}

func (c *OllamaClient) postJSON(ctx context.Context, path string, payload interface{}) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, transportErrorf(ErrConnectionFailed, "encode request: %v", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, transportErrorf(ErrConnectionFailed, "build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, classifyHTTPError(err, c.baseURL)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, transportErrorf(ErrConnectionFailed, "read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, httpStatusError(resp.StatusCode, string(body))
	}
	return resp.StatusCode, body, nil
}

// classifyHTTPError sorts a stdlib HTTP client error into the transport
// taxonomy: timeouts are distinct from plain connection failures.
func classifyHTTPError(err error, baseURL string) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) {
		return transportErrorf(ErrTimeout, "request deadline exceeded")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return transportErrorf(ErrTimeout, "request timed out")
	}
	return transportErrorf(ErrConnectionFailed, "could not reach %s: %v", baseURL, err)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

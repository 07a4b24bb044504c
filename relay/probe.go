package relay

import (
	"context"
	"time"

	"github.com/choomlang/choom/llm"
)

// Probe checks transport reachability and model availability without
// mutating any run state. Transports that implement llm.Prober get the
// full treatment (model listing, name suggestions); the rest get one
// minimal readiness chat per model.
func Probe(ctx context.Context, client llm.Client, models []string) (*llm.ProbeReport, error) {
	if p, ok := client.(llm.Prober); ok {
		return p.Probe(ctx, models)
	}

	report := &llm.ProbeReport{OK: true}
	for _, model := range models {
		if model == "" {
			continue
		}
		entry := llm.ProbeEntry{Kind: "model", Model: model}
		started := time.Now()
		resp, err := client.Chat(ctx, llm.Request{
			Model:    model,
			Messages: []llm.Message{{Role: "user", Content: "Reply with the single word: ok"}},
		})
		entry.ElapsedMS = time.Since(started).Milliseconds()
		if err != nil {
			entry.Reason = err.Error()
			report.OK = false
		} else {
			entry.OK = true
			entry.HTTPStatus = resp.StatusCode
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

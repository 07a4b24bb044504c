package relay

import "time"

// TranscriptRecord is one durable log entry per physical attempt. Records
// are created once and never revised; nullable fields stay null on attempts
// where they do not apply.
type TranscriptRecord struct {
	TS              string                 `json:"ts"`
	RequestID       int64                  `json:"request_id"`
	Side            string                 `json:"side"`
	Model           string                 `json:"model"`
	Mode            string                 `json:"mode"` // "structured" or "dsl"
	Stage           Stage                  `json:"stage"`
	RequestMode     string                 `json:"request_mode"`
	HTTPStatus      *int                   `json:"http_status"`
	Parsed          map[string]interface{} `json:"parsed"`
	DSL             *string                `json:"dsl"`
	Raw             string                 `json:"raw"`
	Error           *string                `json:"error"`
	Retry           int                    `json:"retry"`
	ElapsedMS       int64                  `json:"elapsed_ms"`
	FallbackReason  *string                `json:"fallback_reason"`
	TimeoutS        float64                `json:"timeout_s"`
	KeepAliveS      float64                `json:"keep_alive_s"`
	RepeatPrevented bool                   `json:"repeat_prevented"`
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

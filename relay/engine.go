package relay

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/llm"
	"github.com/choomlang/choom/protocol"
	"github.com/choomlang/choom/registry"
	"github.com/choomlang/choom/translate"
)

const (
	// DefaultStart opens the conversation when no start line is given.
	DefaultStart = "ping tool service=relay"
	// DefaultMaxMessageChars bounds prompts and replies.
	DefaultMaxMessageChars = 4000

	structuredPrompt = "Reply with exactly one canonical ChoomLang JSON object and no extra text."
	textPrompt       = "Reply with exactly one ChoomLang DSL line."
	nudgePrompt      = "Do not repeat the previous line; advance the workflow."
)

// Options configure one relay run.
type Options struct {
	AModel, BModel   string
	Turns            int
	Seed             *int64
	SystemA, SystemB string
	Start            string

	Structured      bool // structured mode; false = text (DSL) mode
	UseSchema       bool // request the canonical JSON Schema on the first structured stage
	Strict          bool
	FallbackEnabled bool
	Lenient         bool
	NoRepeat        bool

	AllowUnknownOp     bool
	AllowUnknownTarget bool

	TimeoutS        float64
	KeepAliveS      float64
	MaxMessageChars int
	Warm            bool
}

// Exchange is one completed logical turn as seen by callers.
type Exchange struct {
	Side    string
	DSL     string
	Payload *translate.Payload
	Raw     string
}

// Engine drives one run. It owns all run state: request counter, transcript
// records, metrics and conversation histories. Runs are strictly sequential;
// an Engine must not be shared across goroutines.
type Engine struct {
	client    llm.Client
	reg       *registry.Table
	parser    *dsl.Parser
	validator *protocol.Validator
	log       *TranscriptLog
	logger    zerolog.Logger
	opts      Options

	requestID int64
	records   []TranscriptRecord
	metrics   *metrics
	promReg   *prometheus.Registry
}

// NewEngine builds an engine around one transport client and one vocabulary
// table. log may be nil to disable durable transcripts.
func NewEngine(client llm.Client, table *registry.Table, log *TranscriptLog, logger zerolog.Logger, opts Options) *Engine {
	if opts.MaxMessageChars == 0 {
		opts.MaxMessageChars = DefaultMaxMessageChars
	}
	promReg := prometheus.NewRegistry()
	return &Engine{
		client:    client,
		reg:       table,
		parser:    dsl.NewParser(table),
		validator: protocol.NewValidator(table),
		log:       log,
		logger:    logger,
		opts:      opts,
		metrics:   newMetrics(promReg),
		promReg:   promReg,
	}
}

// Records returns the transcript records accumulated so far.
func (e *Engine) Records() []TranscriptRecord { return e.records }

// Summary folds the accumulated records into run-level counters.
func (e *Engine) Summary() Summary { return Summarize(e.records) }

// Gatherer exposes the engine's private metrics registry.
func (e *Engine) Gatherer() prometheus.Gatherer { return e.promReg }

// Run executes the whole relay: validate the start line, optionally warm
// both models, then alternate sides for the configured number of turn pairs.
func (e *Engine) Run(ctx context.Context) ([]Exchange, error) {
	if e.opts.Turns < 1 {
		return nil, runErrorf(ErrBadRun, "turns must be >= 1")
	}

	start := e.opts.Start
	if start == "" {
		start = DefaultStart
	}
	startCmd, err := e.parser.ParseWith(start, e.opts.Lenient)
	if err != nil {
		return nil, runErrorf(ErrBadRun, "invalid start line: %v", err)
	}
	currentDSL, err := e.parser.Format(startCmd)
	if err != nil {
		return nil, runErrorf(ErrBadRun, "invalid start line: %v", err)
	}
	currentPayload := translate.CommandToPayload(startCmd)

	if e.opts.Warm {
		e.warmUp(ctx)
	}

	modeName := "dsl"
	if e.opts.Structured {
		modeName = "structured"
	}
	histories := map[string][]llm.Message{
		"A": newHistory(e.opts.SystemA, modeName),
		"B": newHistory(e.opts.SystemB, modeName),
	}

	var exchanges []Exchange
	for turn := 0; turn < e.opts.Turns; turn++ {
		for _, step := range []struct{ side, model, other string }{
			{"A", e.opts.AModel, "B"},
			{"B", e.opts.BModel, "A"},
		} {
			var result *turnResult
			var err error
			if e.opts.Structured {
				result, err = e.structuredTurn(ctx, step.side, step.model, histories[step.side], currentPayload, currentDSL)
			} else {
				result, err = e.textTurn(ctx, step.side, step.model, histories[step.side], currentPayload, currentDSL)
			}
			if err != nil {
				return exchanges, err
			}
			if result == nil {
				// Failure absorbed under non-strict policy: recorded, the
				// conversation state is left untouched for the next side.
				continue
			}

			incoming := currentDSL
			outgoing := result.dsl
			if e.opts.Structured {
				incoming, _ = translate.EncodePayload(currentPayload, true)
				outgoing, _ = translate.EncodePayload(result.payload, true)
			}
			histories[step.side] = appendExchange(histories[step.side], incoming, outgoing)
			histories[step.other] = appendExchange(histories[step.other], incoming, outgoing)

			exchanges = append(exchanges, Exchange{
				Side:    step.side,
				DSL:     result.dsl,
				Payload: result.payload,
				Raw:     result.raw,
			})
			currentDSL = result.dsl
			currentPayload = result.payload

			e.logger.Info().
				Str("side", step.side).
				Str("dsl", result.dsl).
				Msg("turn complete")
		}
	}
	return exchanges, nil
}

type turnResult struct {
	raw     string
	dsl     string
	payload *translate.Payload
}

// structuredTurn runs the staged fallback machine for one side:
// structured-schema (optional), structured-json, then a single-shot DSL
// fallback when policy allows.
func (e *Engine) structuredTurn(ctx context.Context, side, model string, history []llm.Message, incoming *translate.Payload, incomingDSL string) (*turnResult, error) {
	incomingJSON, err := translate.EncodePayload(incoming, true)
	if err != nil {
		return nil, runErrorf(ErrBadRun, "encode incoming payload: %v", err)
	}
	prompt := structuredPrompt + "\nIncoming JSON: " + incomingJSON
	if len(prompt) > e.opts.MaxMessageChars {
		return nil, runErrorf(ErrBadRun, "incoming message too large to relay")
	}
	messages := append(copyMessages(history), llm.Message{Role: "user", Content: prompt})

	retry := 0
	schemaFailed := false
	var fallbackReason *string

	if e.opts.UseSchema {
		res := e.attempt(ctx, attemptArgs{
			side: side, model: model, messages: messages,
			stage: StageStructuredSchema, mode: "structured",
			format: llm.SchemaFormat(e.schema()),
			retry:  retry, fallbackReason: fallbackReason,
		})
		if res.fatal != nil {
			return nil, res.fatal
		}
		if res.err == nil {
			return e.guardRepeat(ctx, side, model, messages, StageStructuredSchema, llm.SchemaFormat(e.schema()), retry, res, incomingDSL)
		}
		schemaFailed = true
		reason := "schema-failed:" + res.err.Error()
		switch decideStructuredRecovery(true, false, e.opts.Strict, e.opts.FallbackEnabled) {
		case recoveryRetryJSON:
			retry++
			fallbackReason = strPtr(reason)
		case recoveryFailNoFallback:
			return nil, &Error{
				Kind:           ErrStructuredAllStagesFailed,
				Stage:          StageStructuredSchema,
				FallbackReason: reason,
				Raw:            res.raw,
				Detail:         "schema stage failed and fallback is disabled",
			}
		}
	}

	res := e.attempt(ctx, attemptArgs{
		side: side, model: model, messages: messages,
		stage: StageStructuredJSON, mode: "structured",
		format: llm.JSONFormat(),
		retry:  retry, fallbackReason: fallbackReason,
	})
	if res.fatal != nil {
		return nil, res.fatal
	}
	if res.err == nil {
		return e.guardRepeat(ctx, side, model, messages, StageStructuredJSON, llm.JSONFormat(), retry, res, incomingDSL)
	}

	jsonReason := "json-failed:" + res.err.Error()
	switch decideStructuredRecovery(schemaFailed, true, e.opts.Strict, e.opts.FallbackEnabled) {
	case recoveryFailStrict:
		return nil, &Error{
			Kind:           ErrStructuredAllStagesFailed,
			Stage:          StageStructuredJSON,
			FallbackReason: jsonReason,
			Raw:            res.raw,
		}
	case recoveryFailNoFallback:
		return nil, &Error{
			Kind:           ErrStructuredAllStagesFailed,
			Stage:          StageStructuredJSON,
			FallbackReason: jsonReason,
			Raw:            res.raw,
			Detail:         "fallback is disabled",
		}
	}

	// Degrade to a single-shot DSL attempt against the same side.
	retry++
	dslMessages := append(copyMessages(history), llm.Message{
		Role:    "user",
		Content: textPrompt + "\nIncoming DSL: " + incomingDSL + "\nIncoming JSON: " + incomingJSON,
	})
	dres := e.attempt(ctx, attemptArgs{
		side: side, model: model, messages: dslMessages,
		stage: StageFallbackDSL, mode: "structured",
		format: llm.NoFormat(),
		retry:  retry, fallbackReason: strPtr(jsonReason),
	})
	if dres.fatal != nil {
		return nil, dres.fatal
	}
	if dres.err != nil {
		// Recorded with null parsed/dsl and a populated error; the run
		// itself carries on.
		e.logger.Warn().Str("side", side).Str("stage", string(StageFallbackDSL)).
			Err(dres.err).Msg("fallback stage failed; continuing")
		return nil, nil
	}
	return &turnResult{raw: dres.raw, dsl: dres.dsl, payload: dres.payload}, nil
}

// textTurn runs one text-mode exchange with at most one corrective retry
// under strict policy.
func (e *Engine) textTurn(ctx context.Context, side, model string, history []llm.Message, incoming *translate.Payload, incomingDSL string) (*turnResult, error) {
	incomingJSON, err := translate.EncodePayload(incoming, true)
	if err != nil {
		return nil, runErrorf(ErrBadRun, "encode incoming payload: %v", err)
	}
	prompt := textPrompt + "\nIncoming DSL: " + incomingDSL + "\nIncoming JSON: " + incomingJSON
	if len(prompt) > e.opts.MaxMessageChars {
		return nil, runErrorf(ErrBadRun, "incoming message too large to relay")
	}
	messages := append(copyMessages(history), llm.Message{Role: "user", Content: prompt})

	res := e.attempt(ctx, attemptArgs{
		side: side, model: model, messages: messages,
		stage: StageText, mode: "dsl",
		format: llm.NoFormat(),
	})
	if res.fatal != nil {
		return nil, res.fatal
	}
	if res.err == nil {
		return &turnResult{raw: res.raw, dsl: res.dsl, payload: res.payload}, nil
	}
	if !e.opts.Strict {
		e.logger.Warn().Str("side", side).Err(res.err).Msg("text turn failed; continuing")
		return nil, nil
	}

	// Exactly one corrective retry with an explicit repair instruction.
	correction := append(copyMessages(messages),
		llm.Message{Role: "assistant", Content: res.raw},
		llm.Message{Role: "user", Content: protocol.BuildGuardPrompt(res.err.Error(), res.raw)},
	)
	retryRes := e.attempt(ctx, attemptArgs{
		side: side, model: model, messages: correction,
		stage: StageText, mode: "dsl",
		format: llm.NoFormat(),
		retry:  1,
	})
	if retryRes.fatal != nil {
		return nil, retryRes.fatal
	}
	if retryRes.err != nil {
		return nil, &Error{
			Kind:   ErrStrictRetryExhausted,
			Stage:  StageText,
			Raw:    retryRes.raw,
			Detail: retryRes.err.Error(),
		}
	}
	return &turnResult{raw: retryRes.raw, dsl: retryRes.dsl, payload: retryRes.payload}, nil
}

// guardRepeat intercepts an exact repeat of the incoming line in structured
// mode and issues one nudge attempt. The original reply stands if the nudge
// does not produce something better.
func (e *Engine) guardRepeat(ctx context.Context, side, model string, messages []llm.Message, stage Stage, format llm.ResponseFormat, retry int, first *attemptResult, incomingDSL string) (*turnResult, error) {
	accepted := &turnResult{raw: first.raw, dsl: first.dsl, payload: first.payload}
	if !e.opts.NoRepeat || first.dsl != incomingDSL {
		return accepted, nil
	}

	nudged := append(copyMessages(messages),
		llm.Message{Role: "assistant", Content: first.raw},
		llm.Message{Role: "user", Content: nudgePrompt},
	)
	res := e.attempt(ctx, attemptArgs{
		side: side, model: model, messages: nudged,
		stage: stage, mode: "structured",
		format: format,
		retry:  retry + 1, repeatPrevented: true,
	})
	if res.fatal != nil {
		return nil, res.fatal
	}
	if res.err != nil {
		return accepted, nil
	}
	return &turnResult{raw: res.raw, dsl: res.dsl, payload: res.payload}, nil
}

type attemptArgs struct {
	side, model     string
	messages        []llm.Message
	stage           Stage
	mode            string
	format          llm.ResponseFormat
	retry           int
	fallbackReason  *string
	repeatPrevented bool
}

type attemptResult struct {
	raw     string
	dsl     string
	payload *translate.Payload
	err     error // validation or transport failure for this attempt
	fatal   error // transcript log failure; aborts the run
}

// attempt performs one physical request: transport round trip, decode,
// validation, then exactly one transcript record regardless of outcome.
func (e *Engine) attempt(ctx context.Context, a attemptArgs) *attemptResult {
	e.requestID++
	rec := TranscriptRecord{
		TS:              nowUTC(),
		RequestID:       e.requestID,
		Side:            a.side,
		Model:           a.model,
		Mode:            a.mode,
		Stage:           a.stage,
		RequestMode:     string(a.stage),
		Retry:           a.retry,
		FallbackReason:  a.fallbackReason,
		TimeoutS:        e.opts.TimeoutS,
		KeepAliveS:      e.opts.KeepAliveS,
		RepeatPrevented: a.repeatPrevented,
	}

	started := time.Now()
	resp, transportErr := e.client.Chat(ctx, llm.Request{
		Model:     a.model,
		Messages:  a.messages,
		Format:    a.format,
		Seed:      e.opts.Seed,
		KeepAlive: e.opts.KeepAliveS,
	})
	rec.ElapsedMS = time.Since(started).Milliseconds()

	result := &attemptResult{}
	if transportErr != nil {
		result.err = transportErr
		rec.Error = strPtr(transportErr.Error())
	} else {
		rec.HTTPStatus = intPtr(resp.StatusCode)
		rec.Raw = strings.TrimSpace(resp.Content)
		result.raw = rec.Raw

		payload, cmd, decodeErr := e.decodeReply(rec.Raw, a.mode)
		if decodeErr != nil {
			result.err = decodeErr
			rec.Error = strPtr(decodeErr.Error())
		} else {
			line, fmtErr := e.parser.Format(cmd)
			if fmtErr != nil {
				result.err = fmtErr
				rec.Error = strPtr(fmtErr.Error())
			} else {
				result.payload = payload
				result.dsl = line
				rec.Parsed = payloadMap(payload)
				rec.DSL = strPtr(line)
			}
		}
	}

	e.records = append(e.records, rec)
	e.metrics.observe(&rec)
	if err := e.log.Append(&rec); err != nil {
		result.fatal = err
	}

	event := e.logger.Debug()
	if result.err != nil {
		event = e.logger.Warn().Err(result.err)
	}
	event.Int64("request_id", rec.RequestID).
		Str("side", a.side).
		Str("stage", string(a.stage)).
		Int("retry", a.retry).
		Int64("elapsed_ms", rec.ElapsedMS).
		Msg("attempt")
	return result
}

// decodeReply turns raw model output into a validated canonical command.
func (e *Engine) decodeReply(raw, mode string) (*translate.Payload, *dsl.Command, error) {
	if len(raw) > e.opts.MaxMessageChars {
		return nil, nil, runErrorf(ErrBadRun, "model message exceeded maximum size")
	}
	if mode == "structured" {
		payload, err := translate.DecodePayload(raw)
		if err != nil {
			return nil, nil, err
		}
		cmd, err := e.validator.ValidatePayload(payload, protocol.Options{
			Mode:               protocol.Strict,
			AllowUnknownOp:     e.opts.AllowUnknownOp,
			AllowUnknownTarget: e.opts.AllowUnknownTarget,
		})
		if err != nil {
			return nil, nil, err
		}
		return translate.CommandToPayload(cmd), cmd, nil
	}

	cmd, err := e.parser.ParseWith(raw, e.opts.Lenient)
	if err != nil {
		return nil, nil, err
	}
	// Text replies get structural validation only; unknown vocabulary is a
	// strict-relay concern, not a grammar one.
	if err := e.validator.Validate(cmd, protocol.Options{Mode: protocol.Permissive}); err != nil {
		return nil, nil, err
	}
	return translate.CommandToPayload(cmd), cmd, nil
}

// warmUp issues one throwaway request per model so the first scored turn
// does not pay the model load time. Failures are logged and ignored.
func (e *Engine) warmUp(ctx context.Context) {
	ping := structuredPrompt + "\nIncoming JSON: " + `{"op":"healthcheck","target":"tool","count":1,"params":{"service":"relay"}}`
	seen := map[string]bool{}
	for _, model := range []string{e.opts.AModel, e.opts.BModel} {
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true
		started := time.Now()
		_, err := e.client.Chat(ctx, llm.Request{
			Model:     model,
			Messages:  []llm.Message{{Role: "user", Content: ping}},
			KeepAlive: e.opts.KeepAliveS,
		})
		if err != nil {
			e.logger.Warn().Str("model", model).Err(err).Msg("warm-up failed")
			continue
		}
		e.logger.Info().Str("model", model).
			Int64("elapsed_ms", time.Since(started).Milliseconds()).
			Msg("model warmed")
	}
}

func (e *Engine) schema() map[string]interface{} {
	mode := protocol.Strict
	if e.opts.AllowUnknownOp || e.opts.AllowUnknownTarget {
		mode = protocol.Permissive
	}
	return protocol.CanonicalJSONSchema(e.reg, mode)
}

func newHistory(systemPrompt, modeName string) []llm.Message {
	contract := protocol.BuildContractPrompt(modeName)
	if systemPrompt != "" {
		contract = systemPrompt + "\n\n" + contract
	}
	return []llm.Message{{Role: "system", Content: contract}}
}

func appendExchange(history []llm.Message, incoming, outgoing string) []llm.Message {
	return append(history,
		llm.Message{Role: "user", Content: incoming},
		llm.Message{Role: "assistant", Content: outgoing},
	)
}

func copyMessages(messages []llm.Message) []llm.Message {
	return append([]llm.Message(nil), messages...)
}

func payloadMap(p *translate.Payload) map[string]interface{} {
	params := make(map[string]interface{}, len(p.Params))
	for k, v := range p.Params {
		params[k] = v
	}
	return map[string]interface{}{
		"op":     p.Op,
		"target": p.Target,
		"count":  p.Count,
		"params": params,
	}
}

// Package protocol covers the structured side of the command exchange: the
// canonical JSON Schema, strict/permissive payload validation, the model
// contract and repair prompts, and multi-line script handling.
package protocol

import (
	"fmt"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/registry"
	"github.com/choomlang/choom/translate"
)

// Mode selects how unknown vocabulary is treated.
type Mode int

const (
	// Strict rejects unknown ops/targets unless explicitly allowed.
	Strict Mode = iota
	// Permissive allows unknown ops/targets but still enforces structure.
	Permissive
)

// ValidationErrorKind enumerates validation failures.
type ValidationErrorKind string

const (
	ErrUnknownOp            ValidationErrorKind = "unknown op"
	ErrUnknownTarget        ValidationErrorKind = "unknown target"
	ErrBadCount             ValidationErrorKind = "bad count"
	ErrBadParamType         ValidationErrorKind = "bad param type"
	ErrScriptContentInvalid ValidationErrorKind = "invalid script content"
)

// ValidationError reports one structural or vocabulary problem with a
// canonical record.
type ValidationError struct {
	Kind   ValidationErrorKind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func validationErrorf(kind ValidationErrorKind, format string, a ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, a...)}
}

// Options control one validation call.
type Options struct {
	Mode               Mode
	AllowUnknownOp     bool
	AllowUnknownTarget bool
}

// Validator checks canonical records against one vocabulary table. The
// gen/script rule re-enters the parser, so the validator owns one.
type Validator struct {
	reg    *registry.Table
	parser *dsl.Parser
}

func NewValidator(reg *registry.Table) *Validator {
	return &Validator{reg: reg, parser: dsl.NewParser(reg)}
}

// Validate checks an already-parsed Command.
func (v *Validator) Validate(cmd *dsl.Command, opts Options) error {
	if cmd.Count < 1 {
		return validationErrorf(ErrBadCount, "expected integer >= 1, got %d", cmd.Count)
	}
	if opts.Mode == Strict {
		if !opts.AllowUnknownOp && !v.reg.IsKnownOp(cmd.Op) {
			return validationErrorf(ErrUnknownOp, "field op=%q: unknown canonical op", cmd.Op)
		}
		if !opts.AllowUnknownTarget && !v.reg.IsKnownTarget(cmd.Target) {
			return validationErrorf(ErrUnknownTarget, "field target=%q: unknown canonical target", cmd.Target)
		}
	}
	return v.validateScriptRule(cmd)
}

// ValidatePayload checks a wire payload and, when valid, returns the
// canonical Command it maps to.
func (v *Validator) ValidatePayload(p *translate.Payload, opts Options) (*dsl.Command, error) {
	if p.Op == "" {
		return nil, validationErrorf(ErrUnknownOp, "field op: expected non-empty string")
	}
	if p.Target == "" {
		return nil, validationErrorf(ErrUnknownTarget, "field target: expected non-empty string")
	}
	// Count 0 means omitted; the mapping defaults it to 1.
	if p.Count < 0 {
		return nil, validationErrorf(ErrBadCount, "expected integer >= 1, got %d", p.Count)
	}
	cmd, err := translate.PayloadToCommand(p, v.reg)
	if err != nil {
		return nil, validationErrorf(ErrBadParamType, "%v", err)
	}
	if err := v.Validate(cmd, opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

// validateScriptRule enforces the embedded-script contract: a
// "gen script" command must carry params.text with one or more lines that
// parse, and must not carry params.prompt.
func (v *Validator) validateScriptRule(cmd *dsl.Command) error {
	if cmd.Op != "gen" || cmd.Target != "script" {
		return nil
	}
	text, ok := cmd.Params["text"]
	if !ok || text.Kind() != dsl.KindString {
		return validationErrorf(ErrScriptContentInvalid, "params.text is required string for gen script")
	}
	if _, ok := cmd.Params["prompt"]; ok {
		return validationErrorf(ErrScriptContentInvalid, "params.prompt is not allowed for gen script")
	}
	lines := IterScriptLines(text.Text())
	if len(lines) == 0 {
		return validationErrorf(ErrScriptContentInvalid, "params.text must contain at least one command line")
	}
	for _, line := range lines {
		if _, err := v.parser.Parse(line.Text); err != nil {
			return validationErrorf(ErrScriptContentInvalid,
				"params.text must be a valid multi-line ChoomLang script: line %d: %v", line.Number, err)
		}
	}
	return nil
}

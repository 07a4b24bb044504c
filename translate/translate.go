// Package translate bridges command text and the canonical structured
// payload: {"op","target","count","params"}. It performs no validation beyond
// structural mapping and alias canonicalization of op/target.
package translate

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/errors"
	"github.com/choomlang/choom/registry"
)

// Payload is the wire/storage shape of one canonical command.
type Payload struct {
	Op     string                 `json:"op"`
	Target string                 `json:"target"`
	Count  int                    `json:"count"`
	Params map[string]interface{} `json:"params"`
}

// CommandToPayload maps a canonical Command onto the wire payload.
func CommandToPayload(cmd *dsl.Command) *Payload {
	params := make(map[string]interface{}, len(cmd.Params))
	for k, v := range cmd.Params {
		params[k] = v.Interface()
	}
	count := cmd.Count
	if count == 0 {
		count = 1
	}
	return &Payload{Op: cmd.Op, Target: cmd.Target, Count: count, Params: params}
}

// PayloadToCommand maps a wire payload onto a new canonical Command,
// resolving op/target aliases and defaulting an omitted count to 1. Non-scalar
// parameter values are rejected.
func PayloadToCommand(p *Payload, reg *registry.Table) (*dsl.Command, error) {
	count := p.Count
	if count == 0 {
		count = 1
	}
	params := make(map[string]dsl.Value, len(p.Params))
	for k, raw := range p.Params {
		v, err := scalarValue(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "param '%s'", k)
		}
		params[k] = v
	}
	return &dsl.Command{
		Op:     reg.CanonicalOp(p.Op),
		Target: reg.CanonicalTarget(p.Target),
		Count:  count,
		Params: params,
	}, nil
}

func scalarValue(raw interface{}) (dsl.Value, error) {
	switch v := raw.(type) {
	case string:
		return dsl.String(v), nil
	case bool:
		return dsl.Bool(v), nil
	case int:
		return dsl.Int(int64(v)), nil
	case int64:
		return dsl.Int(v), nil
	case float64:
		return dsl.Float(v), nil
	case json.Number:
		if !strings.ContainsAny(v.String(), ".eE") {
			if i, err := v.Int64(); err == nil {
				return dsl.Int(i), nil
			}
		}
		f, err := v.Float64()
		if err != nil {
			return dsl.Value{}, errors.New("unrepresentable number %q", v.String())
		}
		return dsl.Float(f), nil
	case dsl.Value:
		return v, nil
	default:
		return dsl.Value{}, errors.New("expected scalar value, got %T", raw)
	}
}

// DSLToPayload parses one command line into a payload.
func DSLToPayload(parser *dsl.Parser, line string) (*Payload, error) {
	cmd, err := parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return CommandToPayload(cmd), nil
}

// DSLToJSON parses one command line and encodes the payload as JSON, compact
// or indented.
func DSLToJSON(parser *dsl.Parser, line string, compact bool) (string, error) {
	payload, err := DSLToPayload(parser, line)
	if err != nil {
		return "", err
	}
	return EncodePayload(payload, compact)
}

// EncodePayload renders a payload as JSON with deterministic key order.
func EncodePayload(p *Payload, compact bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(p); err != nil {
		return "", errors.Wrapf(err, "encode payload")
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// JSONToDSL decodes a payload object and renders the canonical command line.
func JSONToDSL(parser *dsl.Parser, reg *registry.Table, jsonText string) (string, error) {
	payload, err := DecodePayload(jsonText)
	if err != nil {
		return "", err
	}
	cmd, err := PayloadToCommand(payload, reg)
	if err != nil {
		return "", err
	}
	return parser.Format(cmd)
}

// DecodePayload parses a JSON object into a Payload, preserving the
// int/float distinction of numeric params.
func DecodePayload(jsonText string) (*Payload, error) {
	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.UseNumber()

	var generic map[string]interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, errors.Wrapf(err, "JSON input must be an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}

	payload := &Payload{Count: 1, Params: map[string]interface{}{}}
	op, _ := generic["op"].(string)
	target, _ := generic["target"].(string)
	payload.Op = op
	payload.Target = target

	if rawCount, ok := generic["count"]; ok {
		n, ok := rawCount.(json.Number)
		if !ok {
			return nil, errors.New("count must be an integer")
		}
		i, err := n.Int64()
		if err != nil {
			return nil, errors.New("count must be an integer")
		}
		if i < 1 {
			return nil, errors.New("count must be >= 1")
		}
		payload.Count = int(i)
	}

	if rawParams, ok := generic["params"]; ok {
		params, ok := rawParams.(map[string]interface{})
		if !ok {
			return nil, errors.New("params must be an object")
		}
		payload.Params = params
	}
	return payload, nil
}

// Package dsl implements the compact command grammar
// "op target[count] key=value ..." and its canonical textual form. A Parser
// converts text into canonical Commands; Format renders a Command back into
// the unique canonical line, so format(parse(x)) is a fixed point for
// already-canonical input.
package dsl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/choomlang/choom/registry"
)

// Command is the canonical structured record for one command line. Op and
// Target always hold canonical names regardless of the input alias. Commands
// are never mutated after construction; transformations clone first.
type Command struct {
	Op     string
	Target string
	Count  int
	Params map[string]Value
}

// Clone returns an independent copy with its own params map.
func (c *Command) Clone() *Command {
	out := &Command{Op: c.Op, Target: c.Target, Count: c.Count}
	out.Params = make(map[string]Value, len(c.Params))
	for k, v := range c.Params {
		out.Params[k] = v
	}
	return out
}

var headerPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)(?:\[([^\]]*)\])?$`)

// Parser converts command text to and from canonical Commands against one
// alias table.
type Parser struct {
	reg *registry.Table
}

func NewParser(reg *registry.Table) *Parser {
	return &Parser{reg: reg}
}

// Parse parses one command line into a canonical Command.
func (p *Parser) Parse(line string) (*Command, error) {
	return p.parse(line, false)
}

// ParseLenient parses like Parse after dropping a single trailing standalone
// punctuation token.
func (p *Parser) ParseLenient(line string) (*Command, error) {
	return p.parse(line, true)
}

// ParseWith selects between Parse and ParseLenient via a flag, for callers
// that thread the option through.
func (p *Parser) ParseWith(line string, lenient bool) (*Command, error) {
	return p.parse(line, lenient)
}

func (p *Parser) parse(line string, lenient bool) (*Command, error) {
	tokens, err := Tokenize(strings.TrimSpace(line))
	if err != nil {
		return nil, err
	}
	if lenient {
		tokens = stripTrailingPunctuation(tokens)
	}
	if len(tokens) < 2 {
		return nil, parseErrorf(ErrInvalidHeader, "expected '<op> <target>[count] ...'")
	}

	op := p.reg.CanonicalOp(tokens[0].Text)
	target, count, err := p.parseTargetCount(tokens[1].Text)
	if err != nil {
		return nil, err
	}

	params := make(map[string]Value)
	for _, token := range tokens[2:] {
		key, value, err := parseKeyValue(token)
		if err != nil {
			return nil, err
		}
		// Duplicate keys: last occurrence wins.
		params[key] = value
	}

	return &Command{Op: op, Target: target, Count: count, Params: params}, nil
}

func (p *Parser) parseTargetCount(token string) (string, int, error) {
	m := headerPattern.FindStringSubmatch(token)
	if m == nil {
		return "", 0, parseErrorf(ErrInvalidHeader, "invalid target/count segment '%s'", token)
	}
	target := p.reg.CanonicalTarget(m[1])
	if !strings.Contains(token, "[") {
		return target, 1, nil
	}
	raw := m[2]
	count, err := strconv.Atoi(raw)
	if err != nil || strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "+") {
		return "", 0, parseErrorf(ErrBadCount, "expected positive integer, got '%s'", raw)
	}
	if count < 1 {
		return "", 0, parseErrorf(ErrBadCount, "expected >= 1, got %d", count)
	}
	return target, count, nil
}

func parseKeyValue(token Token) (string, Value, error) {
	idx := strings.Index(token.Text, "=")
	if idx < 0 {
		return "", Value{}, parseErrorf(ErrMalformedKeyValue, "missing '=' in token '%s'", token.Text)
	}
	key, raw := token.Text[:idx], token.Text[idx+1:]
	if key == "" {
		return "", Value{}, parseErrorf(ErrMalformedKeyValue, "empty key in token '%s'", token.Text)
	}
	if raw == "" {
		return "", Value{}, parseErrorf(ErrMalformedKeyValue, "empty value for key '%s'", key)
	}
	return key, coerceValue(raw), nil
}

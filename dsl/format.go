package dsl

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Format renders a Command into its canonical single-line form:
// "op target[count]" with the bracketed count omitted when it is 1, followed
// by key=value pairs sorted ascending by key. Op and target aliases are
// resolved through the parser's table, so formatting is idempotent.
func (p *Parser) Format(cmd *Command) (string, error) {
	count := cmd.Count
	if count == 0 {
		count = 1
	}
	if count < 1 {
		return "", parseErrorf(ErrBadCount, "expected >= 1, got %d", count)
	}

	var b strings.Builder
	b.WriteString(p.reg.CanonicalOp(cmd.Op))
	b.WriteByte(' ')
	b.WriteString(p.reg.CanonicalTarget(cmd.Target))
	if count != 1 {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(count))
		b.WriteByte(']')
	}

	keys := make([]string, 0, len(cmd.Params))
	for k := range cmd.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(renderValue(cmd.Params[k]))
	}
	return b.String(), nil
}

// FormatLine canonicalizes one command line: parse then format.
func (p *Parser) FormatLine(line string, lenient bool) (string, error) {
	cmd, err := p.ParseWith(line, lenient)
	if err != nil {
		return "", err
	}
	return p.Format(cmd)
}

func renderValue(v Value) string {
	switch v.Kind() {
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case KindFloat:
		return renderFloat(v.Float())
	default:
		return renderString(v.Text())
	}
}

// renderFloat emits the shortest decimal form that still re-parses as a
// float, keeping the canonical form deterministic across round trips.
func renderFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func renderString(s string) string {
	if !needsQuotes(s) {
		return s
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// needsQuotes reports whether a string value falls outside the bareword
// grammar: empty, whitespace, '=' or '"' all force quoting. Strings that
// would coerce to another type on re-parse must be quoted too.
func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, ch := range s {
		if ch == '"' || ch == '=' || unicode.IsSpace(ch) {
			return true
		}
	}
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return intPattern.MatchString(s) || floatPattern.MatchString(s)
}

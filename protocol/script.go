package protocol

import (
	"fmt"
	"strings"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/translate"
)

// ScriptLine is one parseable line of a multi-line script with its original
// line number.
type ScriptLine struct {
	Number int
	Text   string
}

// StripInlineComment removes a trailing comment introduced by an unquoted
// '#'. Quote spans are honored so '#' inside a quoted value survives.
func StripInlineComment(line string) string {
	inQuote := false
	escape := false
	for i, ch := range line {
		if inQuote {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inQuote = false
			}
			continue
		}
		if ch == '"' {
			inQuote = true
			continue
		}
		if ch == '#' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return strings.TrimRight(line, " \t")
}

// IterScriptLines returns the parseable lines of a script: blank lines and
// comment-only lines are skipped, inline comments stripped.
func IterScriptLines(text string) []ScriptLine {
	var rows []ScriptLine
	for i, raw := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(raw)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		withoutComment := strings.TrimSpace(StripInlineComment(raw))
		if withoutComment == "" {
			continue
		}
		rows = append(rows, ScriptLine{Number: i + 1, Text: withoutComment})
	}
	return rows
}

// ScriptToJSONL converts a script to one compact JSON payload per line.
// Errors are reported as "line N: ..." strings; failFast stops at the first.
func ScriptToJSONL(parser *dsl.Parser, text string, failFast bool) ([]string, []string) {
	var outputs, errs []string
	for _, line := range IterScriptLines(text) {
		payload, err := translate.DSLToPayload(parser, line.Text)
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line.Number, err))
			if failFast {
				break
			}
			continue
		}
		encoded, err := translate.EncodePayload(payload, true)
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line.Number, err))
			if failFast {
				break
			}
			continue
		}
		outputs = append(outputs, encoded)
	}
	return outputs, errs
}

// ScriptToDSL canonicalizes each script line.
func ScriptToDSL(parser *dsl.Parser, text string, failFast bool) ([]string, []string) {
	var outputs, errs []string
	for _, line := range IterScriptLines(text) {
		formatted, err := parser.FormatLine(line.Text, false)
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line.Number, err))
			if failFast {
				break
			}
			continue
		}
		outputs = append(outputs, formatted)
	}
	return outputs, errs
}

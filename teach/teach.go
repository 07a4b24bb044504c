// Package teach renders token-by-token explanations of DSL lines. The
// output is plain text meant for humans learning the grammar.
package teach

import (
	"fmt"
	"sort"
	"strings"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/registry"
)

// Explain parses line and returns a breakdown of each component. The op is
// reported as written, with a note when it is an alias for a canonical op.
func Explain(parser *dsl.Parser, reg *registry.Table, line string, lenient bool) (string, error) {
	cmd, err := parser.ParseWith(line, lenient)
	if err != nil {
		return "", err
	}

	sourceOp := strings.Fields(strings.TrimSpace(line))[0]
	aliasNote := ""
	if canonical, ok := reg.OpAlias(sourceOp); ok {
		aliasNote = fmt.Sprintf(" (alias -> %s)", canonical)
	}

	var b strings.Builder
	b.WriteString("ChoomLang teach mode\n")
	fmt.Fprintf(&b, "- op: %s%s\n", sourceOp, aliasNote)
	fmt.Fprintf(&b, "- target: %s\n", cmd.Target)
	fmt.Fprintf(&b, "- count: %d\n", cmd.Count)

	if len(cmd.Params) == 0 {
		b.WriteString("- params: (none)")
		return b.String(), nil
	}

	b.WriteString("- params:")
	keys := make([]string, 0, len(cmd.Params))
	for key := range cmd.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := cmd.Params[key]
		fmt.Fprintf(&b, "\n  - %s: %s (%s)", key, renderValue(value), value.Kind())
	}
	return b.String(), nil
}

func renderValue(v dsl.Value) string {
	switch v.Kind() {
	case dsl.KindString:
		return fmt.Sprintf("%q", v.Text())
	case dsl.KindInt:
		return fmt.Sprintf("%d", v.Int())
	case dsl.KindFloat:
		return fmt.Sprintf("%v", v.Float())
	case dsl.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	}
	return v.Text()
}

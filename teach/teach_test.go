package teach

import (
	"strings"
	"testing"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/registry"
)

func TestExplainAliasedOp(t *testing.T) {
	table := registry.Default()
	parser := dsl.NewParser(table)

	out, err := Explain(parser, table, `jack img[2] style=studio temp=0.5`, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"ChoomLang teach mode",
		"- op: jack (alias -> gen)",
		"- target: img",
		"- count: 2",
		"- params:",
		`- style: "studio" (string)`,
		"- temp: 0.5 (float)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestExplainCanonicalOpHasNoAliasNote(t *testing.T) {
	table := registry.Default()
	parser := dsl.NewParser(table)

	out, err := Explain(parser, table, "gen txt prompt=hello", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "alias") {
		t.Errorf("canonical op must not carry an alias note:\n%s", out)
	}
}

func TestExplainNoParams(t *testing.T) {
	table := registry.Default()
	parser := dsl.NewParser(table)

	out, err := Explain(parser, table, "ping txt", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "- params: (none)") {
		t.Errorf("expected the no-params marker:\n%s", out)
	}
}

func TestExplainParseError(t *testing.T) {
	table := registry.Default()
	parser := dsl.NewParser(table)
	if _, err := Explain(parser, table, `gen txt note="oops`, false); err == nil {
		t.Error("expected parse error to propagate")
	}
}

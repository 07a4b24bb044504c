package protocol

import (
	"strings"
	"testing"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/registry"
)

func scriptParser() *dsl.Parser {
	return dsl.NewParser(registry.Default())
}

func TestStripInlineComment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ping txt # check", "ping txt"},
		{"# whole line", ""},
		{`gen txt tag="#not-a-comment"`, `gen txt tag="#not-a-comment"`},
		{`gen txt tag="#kept" # stripped`, `gen txt tag="#kept"`},
		{"ping txt", "ping txt"},
	}
	for _, tc := range cases {
		if got := StripInlineComment(tc.in); got != tc.want {
			t.Errorf("StripInlineComment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIterScriptLinesSkipsBlanksAndComments(t *testing.T) {
	text := "ping txt\n\n# comment only\nscan txt sentiment=polarity  # inline\n   \n"
	lines := IterScriptLines(text)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0].Number != 1 || lines[0].Text != "ping txt" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Number != 4 || lines[1].Text != "scan txt sentiment=polarity" {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestScriptToDSL(t *testing.T) {
	outputs, errs := ScriptToDSL(scriptParser(), "jack image style=studio\nping txt\n", true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outputs))
	}
	if outputs[0] != "gen img style=studio" {
		t.Errorf("expected canonical line, got %q", outputs[0])
	}
	if outputs[1] != "healthcheck txt" {
		t.Errorf("expected canonical line, got %q", outputs[1])
	}
}

func TestScriptToJSONL(t *testing.T) {
	outputs, errs := ScriptToJSONL(scriptParser(), "ping txt\n", true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs))
	}
	if !strings.Contains(outputs[0], `"op":"healthcheck"`) {
		t.Errorf("expected compact payload JSON, got %q", outputs[0])
	}
	if strings.Contains(outputs[0], "\n") {
		t.Error("JSONL output must be single lines")
	}
}

func TestScriptFailFastStopsAtFirstError(t *testing.T) {
	text := "ping txt\ngen txt key=\nscan txt sentiment=polarity\n"

	outputs, errs := ScriptToDSL(scriptParser(), text, true)
	if len(outputs) != 1 {
		t.Errorf("fail-fast must keep outputs before the error, got %v", outputs)
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "line 2") {
		t.Errorf("expected a single line 2 error, got %v", errs)
	}

	outputs, errs = ScriptToDSL(scriptParser(), text, false)
	if len(outputs) != 2 {
		t.Errorf("continue mode must process all valid lines, got %v", outputs)
	}
	if len(errs) != 1 {
		t.Errorf("expected one error, got %v", errs)
	}
}

package dsl

import (
	"strings"
	"testing"

	"github.com/choomlang/choom/registry"
)

func testParser() *Parser {
	return NewParser(registry.Default())
}

func TestParseBasicCommand(t *testing.T) {
	cmd, err := testParser().Parse(`gen img[2] style=studio res=1024x1024`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Op != "gen" {
		t.Errorf("expected op 'gen', got '%s'", cmd.Op)
	}
	if cmd.Target != "img" {
		t.Errorf("expected target 'img', got '%s'", cmd.Target)
	}
	if cmd.Count != 2 {
		t.Errorf("expected count 2, got %d", cmd.Count)
	}
	if len(cmd.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(cmd.Params))
	}
	if cmd.Params["style"].Text() != "studio" {
		t.Errorf("expected style 'studio', got '%s'", cmd.Params["style"].Text())
	}
	// 1024x1024 is neither int nor float, so it stays a bareword string
	if cmd.Params["res"].Kind() != KindString {
		t.Errorf("expected res to be a string, got %s", cmd.Params["res"].Kind())
	}
}

func TestParseCountDefaultsToOne(t *testing.T) {
	cmd, err := testParser().Parse("ping txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Count != 1 {
		t.Errorf("expected count 1, got %d", cmd.Count)
	}
}

func TestParseOpAliases(t *testing.T) {
	cases := []struct {
		line string
		op   string
	}{
		{"jack img style=studio", "gen"},
		{"scan txt sentiment=polarity", "classify"},
		{"ghost txt len=3", "summarize"},
		{"forge txt steps=5", "plan"},
		{"ping txt", "healthcheck"},
		{"call tool name=search", "toolcall"},
		{"relay txt channel=ops priority=2", "forward"},
	}
	p := testParser()
	for _, tc := range cases {
		cmd, err := p.Parse(tc.line)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.line, err)
		}
		if cmd.Op != tc.op {
			t.Errorf("parse %q: expected op '%s', got '%s'", tc.line, tc.op, cmd.Op)
		}
	}
}

func TestParseTargetAliases(t *testing.T) {
	cmd, err := testParser().Parse("gen image prompt=hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Target != "img" {
		t.Errorf("expected target 'img', got '%s'", cmd.Target)
	}
}

func TestParseUnknownOpPassesThrough(t *testing.T) {
	cmd, err := testParser().Parse("transmogrify txt prompt=hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Op != "transmogrify" {
		t.Errorf("expected op to pass through, got '%s'", cmd.Op)
	}
}

func TestParseValueCoercion(t *testing.T) {
	cmd, err := testParser().Parse(`gen txt flag=true n=42 temp=0.82 city="New Tokyo" style=cyberpunk neg=-7`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Params["flag"].Kind() != KindBool || !cmd.Params["flag"].Bool() {
		t.Errorf("expected flag to be bool true")
	}
	if cmd.Params["n"].Kind() != KindInt || cmd.Params["n"].Int() != 42 {
		t.Errorf("expected n to be int 42")
	}
	if cmd.Params["temp"].Kind() != KindFloat || cmd.Params["temp"].Float() != 0.82 {
		t.Errorf("expected temp to be float 0.82")
	}
	if cmd.Params["city"].Kind() != KindString || cmd.Params["city"].Text() != "New Tokyo" {
		t.Errorf("expected city to be string 'New Tokyo', got %q", cmd.Params["city"].Text())
	}
	if cmd.Params["style"].Kind() != KindString || cmd.Params["style"].Text() != "cyberpunk" {
		t.Errorf("expected style to be bareword string")
	}
	if cmd.Params["neg"].Kind() != KindInt || cmd.Params["neg"].Int() != -7 {
		t.Errorf("expected neg to be int -7")
	}
}

func TestParseQuotedValueKeepsDigits(t *testing.T) {
	cmd, err := testParser().Parse(`gen txt n="42" flag="true"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Params["n"].Kind() != KindString {
		t.Errorf("quoted '42' must stay a string, got %s", cmd.Params["n"].Kind())
	}
	if cmd.Params["flag"].Kind() != KindString {
		t.Errorf("quoted 'true' must stay a string, got %s", cmd.Params["flag"].Kind())
	}
}

func TestParseEscapes(t *testing.T) {
	cmd, err := testParser().Parse(`gen txt note="say \"hi\" to \\everyone"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `say "hi" to \everyone`
	if cmd.Params["note"].Text() != want {
		t.Errorf("expected %q, got %q", want, cmd.Params["note"].Text())
	}
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	cmd, err := testParser().Parse("gen txt prompt=first prompt=second")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Params["prompt"].Text() != "second" {
		t.Errorf("expected last duplicate to win, got %q", cmd.Params["prompt"].Text())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		line string
		kind ParseErrorKind
	}{
		{"", ErrInvalidHeader},
		{"gen", ErrInvalidHeader},
		{"gen txt[0]", ErrBadCount},
		{"gen txt[-1]", ErrBadCount},
		{"gen txt[abc]", ErrBadCount},
		{"gen txt prompt", ErrMalformedKeyValue},
		{"gen txt =value", ErrMalformedKeyValue},
		{"gen txt key=", ErrMalformedKeyValue},
		{`gen txt note="oops`, ErrUnterminatedQuote},
	}
	p := testParser()
	for _, tc := range cases {
		_, err := p.Parse(tc.line)
		if err == nil {
			t.Errorf("parse %q: expected error", tc.line)
			continue
		}
		perr, ok := err.(*ParseError)
		if !ok {
			t.Errorf("parse %q: expected *ParseError, got %T", tc.line, err)
			continue
		}
		if perr.Kind != tc.kind {
			t.Errorf("parse %q: expected kind %q, got %q", tc.line, tc.kind, perr.Kind)
		}
	}
}

func TestParseLenientStripsTrailingPunctuation(t *testing.T) {
	p := testParser()
	if _, err := p.Parse("gen txt prompt=hello ."); err == nil {
		t.Fatal("strict parse must reject a standalone trailing '.'")
	}
	cmd, err := p.ParseLenient("gen txt prompt=hello .")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Params["prompt"].Text() != "hello" {
		t.Errorf("expected prompt 'hello', got %q", cmd.Params["prompt"].Text())
	}
}

func TestParseLenientStripsAtMostOneToken(t *testing.T) {
	if _, err := testParser().ParseLenient("gen txt prompt=hello . ."); err == nil {
		t.Fatal("lenient mode strips only one trailing punctuation token")
	}
}

func TestParseErrorMentionsToken(t *testing.T) {
	_, err := testParser().Parse("gen txt prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "prompt") {
		t.Errorf("expected error to mention offending token, got %q", err.Error())
	}
}

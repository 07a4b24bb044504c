package dsl

import "testing"

func TestFormatCanonicalOrdering(t *testing.T) {
	line, err := testParser().FormatLine("jack image[2] res=1024x1024 style=studio", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "gen img[2] res=1024x1024 style=studio"
	if line != want {
		t.Errorf("expected %q, got %q", want, line)
	}
}

func TestFormatOmitsCountOne(t *testing.T) {
	line, err := testParser().FormatLine("gen txt[1] prompt=hello", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "gen txt prompt=hello" {
		t.Errorf("count 1 must be omitted, got %q", line)
	}
}

func TestFormatSortsParamKeys(t *testing.T) {
	line, err := testParser().FormatLine("gen txt z=1 a=2 m=3", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "gen txt a=2 m=3 z=1" {
		t.Errorf("expected sorted keys, got %q", line)
	}
}

func TestFormatQuotesWhenNeeded(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{`gen txt city="New Tokyo"`, `gen txt city="New Tokyo"`},
		{`gen txt note="say \"hi\""`, `gen txt note="say \"hi\""`},
		// strings that would re-coerce must round-trip quoted
		{`gen txt n="42"`, `gen txt n="42"`},
		{`gen txt flag="true"`, `gen txt flag="true"`},
		{`gen txt temp="1.5"`, `gen txt temp="1.5"`},
		// plain barewords stay bare
		{`gen txt style=cyberpunk`, `gen txt style=cyberpunk`},
	}
	p := testParser()
	for _, tc := range cases {
		line, err := p.FormatLine(tc.line, false)
		if err != nil {
			t.Fatalf("format %q: %v", tc.line, err)
		}
		if line != tc.want {
			t.Errorf("format %q: expected %q, got %q", tc.line, tc.want, line)
		}
	}
}

func TestFormatFloatKeepsDecimalPoint(t *testing.T) {
	line, err := testParser().FormatLine("gen txt temp=2.0", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "gen txt temp=2.0" {
		t.Errorf("float formatting must keep a decimal point, got %q", line)
	}
}

// Canonical lines must be fixed points of parse-then-format.
func TestFormatRoundTripFixedPoint(t *testing.T) {
	lines := []string{
		"ping txt",
		"gen img[2] res=1024x1024 style=studio",
		`gen txt city="New Tokyo" count=3 temp=0.82 verbose=true`,
		`toolcall tool name=search query="cats and dogs"`,
		`gen txt n="42" note="say \"hi\""`,
		"forward txt channel=ops priority=2",
	}
	p := testParser()
	for _, line := range lines {
		first, err := p.FormatLine(line, false)
		if err != nil {
			t.Fatalf("format %q: %v", line, err)
		}
		second, err := p.FormatLine(first, false)
		if err != nil {
			t.Fatalf("reformat %q: %v", first, err)
		}
		if first != second {
			t.Errorf("not a fixed point: %q -> %q -> %q", line, first, second)
		}
	}
}

func TestFormatRejectsNegativeCount(t *testing.T) {
	p := testParser()
	cmd := &Command{Op: "gen", Target: "txt", Count: -1}
	if _, err := p.Format(cmd); err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestFormatZeroCountTreatedAsOne(t *testing.T) {
	p := testParser()
	cmd := &Command{Op: "gen", Target: "txt", Count: 0}
	line, err := p.Format(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "gen txt" {
		t.Errorf("expected 'gen txt', got %q", line)
	}
}

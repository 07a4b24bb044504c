package registry

import (
	"sort"
	"testing"
)

func TestCanonicalOp(t *testing.T) {
	table := Default()
	cases := map[string]string{
		"jack":  "gen",
		"scan":  "classify",
		"ghost": "summarize",
		"forge": "plan",
		"ping":  "healthcheck",
		"call":  "toolcall",
		"relay": "forward",
		"gen":   "gen",
		// unknown ops pass through untouched
		"transmogrify": "transmogrify",
	}
	for raw, want := range cases {
		if got := table.CanonicalOp(raw); got != want {
			t.Errorf("CanonicalOp(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCanonicalTarget(t *testing.T) {
	table := Default()
	cases := map[string]string{
		"image":  "img",
		"text":   "txt",
		"audio":  "aud",
		"video":  "vid",
		"vector": "vec",
		"img":    "img",
		"tool":   "tool",
		"custom": "custom",
	}
	for raw, want := range cases {
		if got := table.CanonicalTarget(raw); got != want {
			t.Errorf("CanonicalTarget(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestOpAlias(t *testing.T) {
	table := Default()
	canonical, ok := table.OpAlias("jack")
	if !ok || canonical != "gen" {
		t.Errorf("OpAlias(jack) = %q, %v", canonical, ok)
	}
	if _, ok := table.OpAlias("gen"); ok {
		t.Error("canonical ops are not aliases")
	}
}

func TestKnownVocabulary(t *testing.T) {
	table := Default()
	if !table.IsKnownOp("gen") || !table.IsKnownOp("healthcheck") {
		t.Error("expected core ops to be known")
	}
	if !table.IsKnownOp("jack") {
		t.Error("aliases of canonical ops are known")
	}
	if table.IsKnownOp("warp") {
		t.Error("unrecognized ops are not known")
	}
	if !table.IsKnownTarget("script") || !table.IsKnownTarget("tool") {
		t.Error("expected core targets to be known")
	}

	ops := table.KnownOps()
	if !sort.StringsAreSorted(ops) {
		t.Errorf("KnownOps must be sorted, got %v", ops)
	}
	targets := table.KnownTargets()
	if !sort.StringsAreSorted(targets) {
		t.Errorf("KnownTargets must be sorted, got %v", targets)
	}
}

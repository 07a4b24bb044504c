package relay

import "testing"

func TestDecideStructuredRecovery(t *testing.T) {
	cases := []struct {
		name            string
		schemaFailed    bool
		jsonFailed      bool
		strict          bool
		fallbackEnabled bool
		want            recovery
	}{
		{"schema failed, fallback on", true, false, true, true, recoveryRetryJSON},
		{"schema failed, fallback off", true, false, true, false, recoveryFailNoFallback},
		{"schema failed, lax, fallback on", true, false, false, true, recoveryRetryJSON},
		{"json failed, strict", true, true, true, true, recoveryFailStrict},
		{"json failed, lax, fallback on", true, true, false, true, recoveryFallbackDSL},
		{"json failed, lax, fallback off", true, true, false, false, recoveryFailNoFallback},
		{"schema skipped, json failed, strict", false, true, true, true, recoveryFailStrict},
		{"schema skipped, json failed, lax", false, true, false, true, recoveryFallbackDSL},
	}
	for _, tc := range cases {
		got := decideStructuredRecovery(tc.schemaFailed, tc.jsonFailed, tc.strict, tc.fallbackEnabled)
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

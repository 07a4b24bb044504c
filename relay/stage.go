// Package relay drives one conversation between two models over an abstract
// chat transport. Each logical turn runs a bounded staged-fallback state
// machine (structured-schema, then structured-json, then a single-shot DSL
// fallback) and every physical attempt is appended to a durable JSONL
// transcript.
package relay

// Stage names one attempt format within a turn.
type Stage string

const (
	StageStructuredSchema Stage = "structured-schema"
	StageStructuredJSON   Stage = "structured-json"
	StageFallbackDSL      Stage = "fallback-dsl"
	StageText             Stage = "text"
)

// recovery is the transition chosen after a failed structured attempt.
type recovery string

const (
	recoveryRetryJSON      recovery = "retry-json"
	recoveryFailStrict     recovery = "fail-strict"
	recoveryFallbackDSL    recovery = "fallback-dsl"
	recoveryFailNoFallback recovery = "fail-no-fallback"
)

// decideStructuredRecovery is the single transition function of the
// structured fallback machine, consulted after a failed attempt. schemaFailed
// reports the schema stage's outcome; jsonFailed reports whether the
// generic-JSON stage has also been attempted and failed.
func decideStructuredRecovery(schemaFailed, jsonFailed, strict, fallbackEnabled bool) recovery {
	if schemaFailed && !jsonFailed {
		if fallbackEnabled {
			return recoveryRetryJSON
		}
		return recoveryFailNoFallback
	}
	if strict {
		return recoveryFailStrict
	}
	if fallbackEnabled {
		return recoveryFallbackDSL
	}
	return recoveryFailNoFallback
}

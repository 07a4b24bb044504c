package protocol

import (
	"fmt"
	"strings"
)

const dslContract = "Reply with exactly one valid ChoomLang DSL line and no extra text. " +
	"Grammar: <op> <target>[count] key=value ... " +
	"Bans: no trailing punctuation, no standalone symbols, no JSON, one line only. " +
	`Examples: ping txt; gen txt prompt="hello"; ` +
	`classify txt sentiment=polarity; toolcall tool[1] name=search query="cats".`

const structuredContract = "Return JSON only. Match the requested schema exactly."

// BuildContractPrompt returns the fixed system contract for one exchange
// mode: "dsl" or "structured".
func BuildContractPrompt(mode string) string {
	if mode == "structured" {
		return structuredContract
	}
	return dslContract
}

// BuildGuardPrompt returns the repair prompt issued after a failed reply.
// Error text and the previous reply are appended when present.
func BuildGuardPrompt(errText, previous string) string {
	if errText == "" && previous == "" {
		return dslContract
	}
	parts := []string{dslContract}
	if errText != "" {
		parts = append(parts, "Error: "+errText)
	}
	if previous != "" {
		parts = append(parts, fmt.Sprintf("Previous reply: %q", previous))
	}
	return strings.Join(parts, " ")
}

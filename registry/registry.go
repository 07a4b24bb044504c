// Package registry holds the canonical operation/target vocabulary and the
// alias tables that map informal names onto it. The tables are plain data so
// new aliases can be added without touching any caller.
package registry

import "sort"

// Table is an immutable alias and vocabulary table. Construct one with
// Default and pass it by reference into parsers and validators.
type Table struct {
	opAliases     map[string]string
	targetAliases map[string]string
	ops           map[string]struct{}
	targets       map[string]struct{}
}

// Default returns the built-in vocabulary table.
func Default() *Table {
	return newTable(
		[]string{"gen", "classify", "summarize", "plan", "healthcheck", "toolcall", "forward"},
		[]string{"img", "txt", "aud", "vid", "vec", "tool", "script"},
		map[string]string{
			"jack":  "gen",
			"scan":  "classify",
			"ghost": "summarize",
			"forge": "plan",
			"ping":  "healthcheck",
			"call":  "toolcall",
			"relay": "forward",
		},
		map[string]string{
			"image":  "img",
			"text":   "txt",
			"audio":  "aud",
			"video":  "vid",
			"vector": "vec",
		},
	)
}

func newTable(ops, targets []string, opAliases, targetAliases map[string]string) *Table {
	t := &Table{
		opAliases:     make(map[string]string, len(opAliases)),
		targetAliases: make(map[string]string, len(targetAliases)),
		ops:           make(map[string]struct{}, len(ops)),
		targets:       make(map[string]struct{}, len(targets)),
	}
	for _, op := range ops {
		t.ops[op] = struct{}{}
	}
	for _, target := range targets {
		t.targets[target] = struct{}{}
	}
	for alias, canon := range opAliases {
		t.opAliases[alias] = canon
	}
	for alias, canon := range targetAliases {
		t.targetAliases[alias] = canon
	}
	return t
}

// CanonicalOp maps an op alias to its canonical name. Unknown inputs pass
// through unchanged; rejecting them is the validator's job.
func (t *Table) CanonicalOp(raw string) string {
	if canon, ok := t.opAliases[raw]; ok {
		return canon
	}
	return raw
}

// CanonicalTarget maps a target alias to its canonical name. Unknown inputs
// pass through unchanged.
func (t *Table) CanonicalTarget(raw string) string {
	if canon, ok := t.targetAliases[raw]; ok {
		return canon
	}
	return raw
}

// OpAlias reports whether raw is an alias and what it canonicalizes to.
func (t *Table) OpAlias(raw string) (string, bool) {
	canon, ok := t.opAliases[raw]
	return canon, ok
}

// IsKnownOp reports whether the op (after alias resolution) is canonical.
func (t *Table) IsKnownOp(op string) bool {
	_, ok := t.ops[t.CanonicalOp(op)]
	return ok
}

// IsKnownTarget reports whether the target (after alias resolution) is canonical.
func (t *Table) IsKnownTarget(target string) bool {
	_, ok := t.targets[t.CanonicalTarget(target)]
	return ok
}

// KnownOps returns the canonical operation names in sorted order.
func (t *Table) KnownOps() []string {
	return sortedKeys(t.ops)
}

// KnownTargets returns the canonical target names in sorted order.
func (t *Table) KnownTargets() []string {
	return sortedKeys(t.targets)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

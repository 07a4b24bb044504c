package llm

import "sort"

// SuggestModelNames returns up to three known model names closest to the
// requested one, nearest first. Helps probe output point at typos like
// "llama3.2:lates".
func SuggestModelNames(name string, known []string) []string {
	type scored struct {
		name string
		dist int
	}
	candidates := make([]scored, 0, len(known))
	for _, candidate := range known {
		d := editDistance(name, candidate)
		// Only offer names within a third of the candidate's length; beyond
		// that the suggestion is noise.
		if d*3 <= len(candidate)+len(name) {
			candidates = append(candidates, scored{candidate, d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	out := make([]string, 0, 3)
	for _, c := range candidates {
		out = append(out, c.name)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

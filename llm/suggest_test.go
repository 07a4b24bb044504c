package llm

import "testing"

func TestSuggestModelNames(t *testing.T) {
	known := []string{"llama3.2:latest", "llama3.1:latest", "qwen2.5:latest", "mistral:latest"}

	suggestions := SuggestModelNames("llama3.2", known)
	if len(suggestions) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	if suggestions[0] != "llama3.2:latest" {
		t.Errorf("expected closest match first, got %v", suggestions)
	}
	if len(suggestions) > 3 {
		t.Errorf("at most 3 suggestions, got %d", len(suggestions))
	}
}

func TestSuggestModelNamesNoWildGuesses(t *testing.T) {
	known := []string{"qwen2.5:latest"}
	if got := SuggestModelNames("completely-unrelated-model-name-xyz", known); len(got) != 0 {
		t.Errorf("distant names must yield no suggestions, got %v", got)
	}
}

func TestSuggestModelNamesEmptyKnown(t *testing.T) {
	if got := SuggestModelNames("anything", nil); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
	}
	for _, tc := range cases {
		if got := editDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

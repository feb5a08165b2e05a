package index

import (
	"regexp"
	"strings"
)

// wordRE matches maximal runs of word characters, Unicode-aware. The same
// expression tokenizes both the corpus at build time and every query, so
// scores are comparable across runs.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lower-cases text and extracts word runs, discarding everything
// else. Deterministic; returns nil for text with no word characters.
func Tokenize(text string) []string {
	matches := wordRE.FindAllString(text, -1)
	if matches == nil {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = strings.ToLower(m)
	}
	return out
}

// TokenSet returns the distinct tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}

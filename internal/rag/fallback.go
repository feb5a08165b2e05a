package rag

import (
	"strings"

	"riskrag/internal/corpus"
	"riskrag/internal/index"
)

// Extractive fallback: deterministic, side-effect-free sentence extraction.
// Always succeeds given non-empty context, which is what makes it a safe
// landing spot for every generation failure.

const (
	extractiveHeader = "Según el documento, lo más relevante es:"
	// hedged variant used when the best retrieval score was low
	extractiveHeaderWeak = "Según el documento (coincidencia débil), lo más relevante es:"
	// answer when the gates passed but no sentence overlaps the question
	noDirectSentence = "Según el documento, encontré fragmentos relacionados, pero no hay una frase directa. Te dejo las fuentes."

	minSentenceLen = 25
)

// splitSentences cuts text at punctuation followed by whitespace. Go's RE2
// has no lookbehind, so the boundary is found by scanning.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\t' || runes[i+1] == '\n') {
				out = append(out, strings.TrimSpace(string(runes[start:i+1])))
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		out = append(out, strings.TrimSpace(string(runes[start:])))
	}
	return out
}

type scoredSentence struct {
	overlap  int
	sentence string
}

// bestSentences scores each context sentence by distinct-token overlap with
// the question and returns the top maxSentences, best first. Ties keep
// document order (stable sort).
func bestSentences(hits []index.Hit, question string, maxSentences int) []string {
	qTerms := index.TokenSet(question)
	var scored []scoredSentence

	for _, h := range hits {
		txt := corpus.Normalize(h.Passage.Text)
		if txt == "" {
			continue
		}
		for _, sent := range splitSentences(txt) {
			if len([]rune(sent)) < minSentenceLen {
				continue
			}
			var overlap int
			for t := range index.TokenSet(sent) {
				if _, ok := qTerms[t]; ok {
					overlap++
				}
			}
			if overlap > 0 {
				scored = append(scored, scoredSentence{overlap: overlap, sentence: sent})
			}
		}
	}

	stableSortByOverlap(scored)
	if len(scored) > maxSentences {
		scored = scored[:maxSentences]
	}
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.sentence)
	}
	return out
}

func stableSortByOverlap(s []scoredSentence) {
	// insertion sort keeps it stable and the input is tiny (k passages)
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].overlap > s[j-1].overlap; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// extractiveAnswer builds the bulleted fallback answer. weak switches the
// header to its lower-confidence variant.
func extractiveAnswer(hits []index.Hit, question string, maxSentences int, weak bool) string {
	sentences := bestSentences(hits, question, maxSentences)
	if len(sentences) == 0 {
		return noDirectSentence
	}
	header := extractiveHeader
	if weak {
		header = extractiveHeaderWeak
	}
	var b strings.Builder
	b.WriteString(header)
	for _, s := range sentences {
		b.WriteString("\n- ")
		b.WriteString(s)
	}
	return b.String()
}

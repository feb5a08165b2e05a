package rag

import (
	"regexp"
	"strings"
)

// Deterministic extractors for known, high-stakes question shapes. An
// extractor fires only when every required literal marker is verbatim present
// in the retrieved context, and its answer embeds an exact text span around
// the first marker. A missed marker means "no match", never a refusal: the
// pipeline falls through to synthesis.

const (
	// extractPrefix heads every extractor answer; everything after it is a
	// verbatim substring of the context.
	extractPrefix = "Según el documento: "
	// windowWidth is the span width, in runes, centered on the marker.
	windowWidth = 240
)

// extractor matches a question shape and builds an answer from context.
type extractor struct {
	name string
	// match reports the templated answer and whether the extractor fired.
	match func(question, context string) (string, bool)
}

// extractors in fixed priority order; the first match wins.
var extractors = []extractor{
	{name: "risk_levels", match: matchRiskLevels},
	{name: "refrigeration_deductible", match: matchRefrigerationDeductible},
	{name: "acronym", match: matchAcronym},
}

var (
	riskLevelsQ = regexp.MustCompile(`nivel(?:es)? de riesgo`)
	// every level token must be verbatim present before this extractor fires
	riskLevelMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\balto\b`),
		regexp.MustCompile(`(?i)\bmedio\b`),
		regexp.MustCompile(`(?i)\bbajo\b`),
	}

	deductibleQ  = regexp.MustCompile(`deducible|franquicia`)
	refrigQ      = regexp.MustCompile(`refrigeraci[oó]n|refrigerado|c[aá]mara\s+fr[ií]a`)
	amountMarker = regexp.MustCompile(`(?i)(?:US\$|USD|\$|€)\s*\d[\d.,]*|\d+(?:[.,]\d+)?\s*%`)

	// matched against the raw question: the acronym capture needs case
	acronymQ = regexp.MustCompile(`(?:[Qq]u[eé]) significa(?:n)?(?: la| las| el)?(?: siglas?)? ([A-ZÁÉÍÓÚÜÑ]{2,6})\b`)
)

// matchRiskLevels answers "what risk levels are mentioned" style questions by
// quoting the span around the earliest level token. All level markers must be
// present; a partial scale is not quoted.
func matchRiskLevels(question, context string) (string, bool) {
	if !riskLevelsQ.MatchString(strings.ToLower(question)) {
		return "", false
	}
	first := []int(nil)
	for _, m := range riskLevelMarkers {
		loc := m.FindStringIndex(context)
		if loc == nil {
			return "", false
		}
		if first == nil || loc[0] < first[0] {
			first = loc
		}
	}
	return extractPrefix + window(context, first[0], first[1]), true
}

// matchRefrigerationDeductible answers deductible questions for refrigeration
// failure. It requires a literal amount (currency or percentage) in context;
// without one there is no number it may safely state.
func matchRefrigerationDeductible(question, context string) (string, bool) {
	q := strings.ToLower(question)
	if !deductibleQ.MatchString(q) || !refrigQ.MatchString(q) {
		return "", false
	}
	loc := amountMarker.FindStringIndex(context)
	if loc == nil {
		return "", false
	}
	return extractPrefix + window(context, loc[0], loc[1]), true
}

// matchAcronym answers "what does acronym X mean" when the acronym itself is
// verbatim present in context.
func matchAcronym(question, context string) (string, bool) {
	m := acronymQ.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	pos := strings.Index(context, m[1])
	if pos < 0 {
		return "", false
	}
	return extractPrefix + window(context, pos, pos+len(m[1])), true
}

// window returns a span of about windowWidth runes centered on the marker at
// byte range [from, to), widened then trimmed to whitespace boundaries so the
// result stays a verbatim substring of context.
func window(context string, from, to int) string {
	runes := []rune(context)
	rfrom := len([]rune(context[:from]))
	rto := len([]rune(context[:to]))

	half := (windowWidth - (rto - rfrom)) / 2
	if half < 0 {
		half = 0
	}
	start := rfrom - half
	if start < 0 {
		start = 0
	}
	end := rto + half
	if end > len(runes) {
		end = len(runes)
	}

	// shrink to whitespace boundaries, keeping the marker intact
	for start > 0 && start < rfrom && runes[start-1] != ' ' {
		start++
	}
	for end > rto && end < len(runes) && runes[end] != ' ' {
		end--
	}
	return strings.TrimSpace(string(runes[start:end]))
}

// runExtractors tries each extractor in priority order against the question
// and the concatenated retrieved context.
func runExtractors(question, context string) (string, bool) {
	for _, ex := range extractors {
		if answer, ok := ex.match(question, context); ok {
			return answer, true
		}
	}
	return "", false
}

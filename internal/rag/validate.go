package rag

import (
	"errors"
	"strings"

	"riskrag/internal/index"
)

// Post-generation validation. Applied only to generation-backed output; a
// rejection sends the pipeline to the extractive fallback.

var (
	errEmptyAnswer    = errors.New("empty answer")
	errMetaDisclaimer = errors.New("meta/disclaimer answer")
	errLowGrounding   = errors.New("low answer-context overlap")
)

// metaMarkers flag self-referential or vendor-identifying output: a model
// talking about itself is never quoting the policy document.
var metaMarkers = []string{
	"como modelo", "soy un modelo", "modelo de lenguaje", "no tengo acceso",
	"no puedo acceder", "no tengo capacidad", "no tengo información",
	"no tengo el contexto", "no puedo ver", "como asistente", "ia creada por",
	"alibaba", "openai", "no estoy seguro",
}

func looksLikeDisclaimer(answer string) bool {
	a := strings.ToLower(answer)
	for _, m := range metaMarkers {
		if strings.Contains(a, m) {
			return true
		}
	}
	return false
}

// groundingRatio measures how much of the answer's vocabulary appears in the
// context. A cheap grounding check, not semantic entailment.
func groundingRatio(answer, context string) float64 {
	aTerms := index.TokenSet(answer)
	if len(aTerms) == 0 {
		return 0
	}
	cTerms := index.TokenSet(context)
	var n int
	for t := range aTerms {
		if _, ok := cTerms[t]; ok {
			n++
		}
	}
	return float64(n) / float64(len(aTerms))
}

// validateGenerated rejects generated answers that are empty, self
// referential, or insufficiently grounded in the supplied context. The exact
// NoEvidence sentence is the caller's to handle before validation.
func validateGenerated(answer, context string, minGrounding float64) error {
	if answer == "" {
		return errEmptyAnswer
	}
	if looksLikeDisclaimer(answer) {
		return errMetaDisclaimer
	}
	if groundingRatio(answer, context) < minGrounding {
		return errLowGrounding
	}
	return nil
}

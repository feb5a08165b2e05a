package rag

import (
	"fmt"
	"strings"

	"riskrag/internal/corpus"
	"riskrag/internal/index"
)

// Admission gates. Each gate is a pure predicate over the question and the
// top-k hits; they run in a fixed order and the first one that triggers wins.
// Precision dominates recall here: every gate encodes a class of question
// where lexical retrieval alone is an unreliable evidence signal.

// Trigger vocabularies, tuned to the calibration document. Kept as data so a
// new gate slots into the chain without touching the others.
var (
	cyberQuestionTerms = []string{"ciber", "cibern", "cyber", "ransom", "malware", "phishing", "ddos", "hack"}
	cyberContextTerms  = append(append([]string{}, cyberQuestionTerms...), "intrusión", "intrusion", "ataque", "ataques")

	externalEntityTerms  = []string{"ceo", "director general", "presidente", "owner", "propietario", "gerente general"}
	externalEntityProofs = []string{" ceo", "director general", "presidente"}

	definitionTriggers = []string{"¿qué es", "que es", "definición", "definicion", "define", "defina"}
	definitionMarkers  = []string{"se define", "se entiende", "consiste", "se considera", "se refiere", "definición", "definicion"}
)

// gateInput carries everything a gate may inspect.
type gateInput struct {
	question  string // trimmed original
	qLower    string
	hits      []index.Hit
	ctxLower  string // lowercased concatenation of top-k texts
	generated bool   // true when a generation-backed synthesizer will run

	minBestScore float64
	minOverlap   float64
}

// gateVerdict describes a triggered gate.
type gateVerdict struct {
	Reason string
	// KeepSources: return the retrieved texts as fuentes instead of [].
	KeepSources bool
}

type gate func(in *gateInput) *gateVerdict

// gateChain is the fixed evaluation order. The topic and entity gates run
// before the score gates: their refusals must win whatever the retrieval
// scores look like, otherwise a weak lexical match would mask the stronger
// "the document does not cover this at all" signal.
var gateChain = []gate{
	gateEmptyQuestion,
	gateCyberTopic,
	gateExternalEntity,
	gateNoHits,
	gateMinBestScore,
	gateMinOverlap,
	gateDefinitionalEvidence,
}

func hasAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func gateEmptyQuestion(in *gateInput) *gateVerdict {
	if in.question == "" {
		return &gateVerdict{Reason: "empty_question"}
	}
	return nil
}

func gateNoHits(in *gateInput) *gateVerdict {
	if len(in.hits) == 0 {
		return &gateVerdict{Reason: "no_hits"}
	}
	return nil
}

func gateMinBestScore(in *gateInput) *gateVerdict {
	best := in.hits[0].Score
	if best < in.minBestScore {
		return &gateVerdict{Reason: fmt.Sprintf("bm25_below_min_best_score(%.4f<%g)", best, in.minBestScore)}
	}
	return nil
}

// overlapRatio is the fraction of distinct question terms that also appear in
// the concatenated top-k text.
func overlapRatio(question, context string) float64 {
	q := index.TokenSet(question)
	if len(q) == 0 {
		return 0
	}
	c := index.TokenSet(context)
	var n int
	for t := range q {
		if _, ok := c[t]; ok {
			n++
		}
	}
	return float64(n) / float64(len(q))
}

func gateMinOverlap(in *gateInput) *gateVerdict {
	ov := overlapRatio(in.question, in.ctxLower)
	if ov < in.minOverlap {
		return &gateVerdict{
			Reason:      fmt.Sprintf("overlap_below_min_overlap(%.4f<%g)", ov, in.minOverlap),
			KeepSources: true,
		}
	}
	return nil
}

// gateCyberTopic refuses cyber-incident questions when the retrieved text has
// no corroborating term: a ransomware question against a policy that never
// mentions intrusions is a fabrication risk, not a weak match.
func gateCyberTopic(in *gateInput) *gateVerdict {
	if hasAny(in.qLower, cyberQuestionTerms) && !hasAny(in.ctxLower, cyberContextTerms) {
		return &gateVerdict{Reason: "required_topic_missing(cyber)", KeepSources: true}
	}
	return nil
}

// gateExternalEntity refuses questions about named external roles unless the
// role token is literally present in the retrieved text.
func gateExternalEntity(in *gateInput) *gateVerdict {
	if hasAny(in.qLower, externalEntityTerms) && !hasAny(in.ctxLower, externalEntityProofs) {
		return &gateVerdict{Reason: "external_entity_question_gate", KeepSources: true}
	}
	return nil
}

// gateDefinitionalEvidence applies only ahead of generation: a definitional
// question needs a definitional marker phrase in context, otherwise a mention
// would be dressed up as a definition.
func gateDefinitionalEvidence(in *gateInput) *gateVerdict {
	if !in.generated {
		return nil
	}
	if hasAny(in.qLower, definitionTriggers) && !hasAny(in.ctxLower, definitionMarkers) {
		return &gateVerdict{Reason: "definitional_evidence_missing"}
	}
	return nil
}

// runGates evaluates the chain and returns the first triggered verdict.
func runGates(in *gateInput) *gateVerdict {
	for _, g := range gateChain {
		if v := g(in); v != nil {
			return v
		}
	}
	return nil
}

// joinedContext concatenates the top-k passage texts, normalized, in
// retrieval order.
func joinedContext(hits []index.Hit) string {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		if t := corpus.Normalize(h.Passage.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

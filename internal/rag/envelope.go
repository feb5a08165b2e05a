// Package rag implements the retrieval-gating and answer-synthesis pipeline:
// BM25 retrieval, an ordered chain of admission gates, deterministic
// extractors for known question shapes, generation-backed synthesis under a
// closed prompt, post-generation validation, and the extractive fallback.
package rag

import "riskrag/internal/index"

// NoEvidence is the fixed refusal sentence. Downstream evaluation compares it
// byte for byte; never paraphrase it.
const NoEvidence = "No se encontró evidencia suficiente en los documentos."

// Answer strategies.
const (
	ModeBaseline = "baseline"
	ModeLocal    = "local"
	ModeRemote   = "llm"
)

// RetrievedRecord is the externally visible projection of a retrieval hit.
type RetrievedRecord struct {
	ChunkID  int               `json:"chunk_id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
	Text     string            `json:"text"`
}

// Envelope is the single return value of Ask. Constructed fresh per call and
// never mutated afterwards. Field names match the serving contract.
type Envelope struct {
	Respuesta    string            `json:"respuesta"`
	Fuentes      []string          `json:"fuentes"`
	Retrieved    []RetrievedRecord `json:"retrieved"`
	NoEvidence   bool              `json:"no_evidence"`
	UsedFallback bool              `json:"used_fallback"`
	GateReason   *string           `json:"gate_reason"`
	Mode         string            `json:"mode"`
}

func reason(r string) *string { return &r }

// hitsToRetrieved projects hits in order; ordering is preserved.
func hitsToRetrieved(hits []index.Hit) []RetrievedRecord {
	out := make([]RetrievedRecord, 0, len(hits))
	for _, h := range hits {
		meta := h.Passage.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		out = append(out, RetrievedRecord{
			ChunkID:  h.Passage.ID,
			Score:    h.Score,
			Metadata: meta,
			Text:     h.Passage.Text,
		})
	}
	return out
}

func recordTexts(records []RetrievedRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Text)
	}
	return out
}

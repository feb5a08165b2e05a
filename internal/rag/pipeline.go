package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"riskrag/config"
	"riskrag/internal/index"
	"riskrag/internal/provider"
)

// Pipeline is the orchestrator: one retrieval, the gate chain, deterministic
// extractors, then synthesis with validation and fallback. It holds only
// read-only state after construction, so one instance serves concurrent asks
// without locking.
type Pipeline struct {
	k               int
	minBestScore    float64
	minOverlap      float64
	maxSentences    int
	maxContextChars int
	minGrounding    float64
	weakScore       float64

	store  *index.Store
	local  provider.Generator
	remote provider.Generator

	mode   string
	logger *log.Logger
}

// New wires the pipeline. A requested strategy whose backend is not
// configured is demoted to baseline here, logged, never fatal; with no
// requested strategy the best available one is selected.
func New(cfg *config.Config, store *index.Store, local, remote provider.Generator) *Pipeline {
	p := &Pipeline{
		k:               cfg.Retrieval.K,
		minBestScore:    cfg.Retrieval.MinBestScore,
		minOverlap:      cfg.Retrieval.MinOverlap,
		maxSentences:    cfg.Answer.MaxSentences,
		maxContextChars: cfg.Answer.MaxContextChars,
		minGrounding:    cfg.Answer.MinGrounding,
		weakScore:       cfg.Answer.WeakScore,
		store:           store,
		local:           local,
		remote:          remote,
		logger:          log.New(log.Writer(), "[RAG] ", log.LstdFlags),
	}

	switch cfg.General.Mode {
	case ModeBaseline:
		p.mode = ModeBaseline
	case ModeLocal:
		if local == nil {
			p.logger.Printf("mode local requested but ollama not configured, demoting to baseline")
			p.mode = ModeBaseline
		} else {
			p.mode = ModeLocal
		}
	case ModeRemote:
		if remote == nil {
			p.logger.Printf("mode llm requested but remote backend not configured, demoting to baseline")
			p.mode = ModeBaseline
		} else {
			p.mode = ModeRemote
		}
	case "":
		switch {
		case remote != nil:
			p.mode = ModeRemote
		case local != nil:
			p.mode = ModeLocal
		default:
			p.mode = ModeBaseline
		}
	default:
		p.logger.Printf("unknown mode %q, demoting to baseline", cfg.General.Mode)
		p.mode = ModeBaseline
	}
	p.logger.Printf("default strategy: %s", p.mode)
	return p
}

// Mode returns the default strategy after demotion.
func (p *Pipeline) Mode() string { return p.mode }

// SearchRecords is the read-only similarity browse: retrieval without answer
// generation.
func (p *Pipeline) SearchRecords(query string, k int) []RetrievedRecord {
	if k <= 0 {
		k = 3
	}
	return hitsToRetrieved(p.store.Search(strings.TrimSpace(query), k))
}

// Ask runs the full state machine for one question. modeOverride forces a
// strategy for this call only; empty uses the default. Every path returns a
// complete envelope; no error escapes.
func (p *Pipeline) Ask(ctx context.Context, question, modeOverride string) Envelope {
	question = strings.TrimSpace(question)

	envMode := p.mode
	gen := p.generator(p.mode)
	var demotion *string

	if modeOverride != "" && modeOverride != p.mode {
		switch modeOverride {
		case ModeBaseline:
			envMode, gen = ModeBaseline, nil
		case ModeLocal:
			envMode = ModeLocal
			if p.local == nil {
				gen = nil
				demotion = reason("fallback(local_init_failed)")
			} else {
				gen = p.local
			}
		case ModeRemote:
			envMode = ModeRemote
			if p.remote == nil {
				gen = nil
				demotion = reason("fallback(llm_init_failed)")
			} else {
				gen = p.remote
			}
		default:
			envMode, gen = modeOverride, nil
			demotion = reason(fmt.Sprintf("fallback(invalid_mode:%s)", modeOverride))
		}
	}

	// retrieval happens exactly once per ask
	hits := p.store.Search(question, p.k)
	retrieved := hitsToRetrieved(hits)
	joined := joinedContext(hits)

	in := &gateInput{
		question:     question,
		qLower:       strings.ToLower(question),
		hits:         hits,
		ctxLower:     strings.ToLower(joined),
		generated:    gen != nil,
		minBestScore: p.minBestScore,
		minOverlap:   p.minOverlap,
	}
	if v := runGates(in); v != nil {
		fuentes := []string{}
		if v.KeepSources {
			fuentes = recordTexts(retrieved)
		}
		// a refusal is a refusal under any strategy: no fallback ran, so a
		// demotion on this call is not surfaced here
		return Envelope{
			Respuesta:  NoEvidence,
			Fuentes:    fuentes,
			Retrieved:  retrieved,
			NoEvidence: true,
			GateReason: reason(v.Reason),
			Mode:       envMode,
		}
	}

	if answer, ok := runExtractors(question, joined); ok {
		return Envelope{
			Respuesta:    answer,
			Fuentes:      recordTexts(retrieved),
			Retrieved:    retrieved,
			UsedFallback: demotion != nil,
			GateReason:   demotion,
			Mode:         envMode,
		}
	}

	weak := hits[0].Score < p.weakScore

	if gen == nil {
		return Envelope{
			Respuesta:    extractiveAnswer(hits, question, p.maxSentences, weak),
			Fuentes:      recordTexts(retrieved),
			Retrieved:    retrieved,
			UsedFallback: demotion != nil,
			GateReason:   demotion,
			Mode:         envMode,
		}
	}

	window := BuildContext(hits, p.maxContextChars)
	prompt := BuildPrompt(window, question)

	answer, err := gen.Generate(ctx, prompt)
	if err != nil {
		p.logger.Printf("generation failed (%s): %v", envMode, err)
		return p.fallbackEnvelope(hits, retrieved, question, envMode, weak, "fallback(generation_error)")
	}
	if answer == NoEvidence {
		// the model followed the contract: accept verbatim, no sources
		return Envelope{
			Respuesta:  NoEvidence,
			Fuentes:    []string{},
			Retrieved:  retrieved,
			NoEvidence: true,
			Mode:       envMode,
		}
	}
	if err := validateGenerated(answer, window, p.minGrounding); err != nil {
		p.logger.Printf("generated answer rejected (%s): %v", envMode, err)
		return p.fallbackEnvelope(hits, retrieved, question, envMode, weak, "fallback(validator_rejected)")
	}

	return Envelope{
		Respuesta: answer,
		Fuentes:   recordTexts(retrieved),
		Retrieved: retrieved,
		Mode:      envMode,
	}
}

// fallbackEnvelope re-invokes the extractive strategy exactly once after a
// synthesis failure or validator rejection.
func (p *Pipeline) fallbackEnvelope(hits []index.Hit, retrieved []RetrievedRecord, question, envMode string, weak bool, cause string) Envelope {
	return Envelope{
		Respuesta:    extractiveAnswer(hits, question, p.maxSentences, weak),
		Fuentes:      recordTexts(retrieved),
		Retrieved:    retrieved,
		UsedFallback: true,
		GateReason:   reason(cause),
		Mode:         envMode,
	}
}

func (p *Pipeline) generator(mode string) provider.Generator {
	switch mode {
	case ModeLocal:
		return p.local
	case ModeRemote:
		return p.remote
	default:
		return nil
	}
}

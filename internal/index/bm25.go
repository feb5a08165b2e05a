// Package index implements the lexical retrieval index: a BM25-Okapi scorer
// over tokenized passages with a persisted snapshot. The index is built once,
// read-only afterwards, and safe to share across concurrent queries.
package index

import (
	"math"
	"sort"

	"riskrag/internal/corpus"
)

// BM25 parameters. Scores are calibrated against these constants; changing
// them invalidates the gate thresholds.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// Hit pairs a passage with its relevance score for one query. Ephemeral.
type Hit struct {
	Passage corpus.Passage
	Score   float64
}

// BM25 holds the per-passage token bags and global term statistics needed to
// score any query against every passage.
type BM25 struct {
	passages  []corpus.Passage
	docTokens [][]string

	docFreq   map[string]int
	idf       map[string]float64
	docLen    []int
	avgDocLen float64
}

// NewBM25 builds the index over an ordered passage sequence. Position i in
// the index corresponds to passage i; the caller must not mutate passages
// afterwards.
func NewBM25(passages []corpus.Passage) *BM25 {
	b := &BM25{
		passages:  passages,
		docTokens: make([][]string, len(passages)),
		docFreq:   make(map[string]int),
		idf:       make(map[string]float64),
		docLen:    make([]int, len(passages)),
	}
	for i, p := range passages {
		b.docTokens[i] = Tokenize(p.Text)
	}
	b.computeStats()
	return b
}

// newBM25FromTokens rebuilds the index from a snapshot's token bags without
// re-tokenizing, so a reload scores identically to a fresh build.
func newBM25FromTokens(passages []corpus.Passage, docTokens [][]string) *BM25 {
	b := &BM25{
		passages:  passages,
		docTokens: docTokens,
		docFreq:   make(map[string]int),
		idf:       make(map[string]float64),
		docLen:    make([]int, len(passages)),
	}
	b.computeStats()
	return b
}

func (b *BM25) computeStats() {
	var total int
	for i, toks := range b.docTokens {
		b.docLen[i] = len(toks)
		total += len(toks)
		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			b.docFreq[t]++
		}
	}
	if n := len(b.docTokens); n > 0 {
		b.avgDocLen = float64(total) / float64(n)
	}

	// Okapi IDF with the rank_bm25 negative-IDF floor: terms appearing in
	// more than half the corpus get epsilon * average IDF instead of a
	// negative weight. The sum runs in sorted term order: float addition is
	// not associative and map order varies per instance, so summing in map
	// order would let the floor drift between builds of the same corpus.
	terms := make([]string, 0, len(b.docFreq))
	for term := range b.docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(b.docTokens))
	var idfSum float64
	var negative []string
	for _, term := range terms {
		df := b.docFreq[term]
		idf := math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
		b.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(b.idf) > 0 {
		floor := bm25Epsilon * (idfSum / float64(len(b.idf)))
		for _, term := range negative {
			b.idf[term] = floor
		}
	}
}

// Len returns the number of indexed passages.
func (b *BM25) Len() int { return len(b.passages) }

// Passages returns the indexed passage sequence. Callers must treat it as
// read-only.
func (b *BM25) Passages() []corpus.Passage { return b.passages }

func (b *BM25) score(queryTokens []string, doc int) float64 {
	if b.avgDocLen == 0 {
		return 0
	}
	freq := make(map[string]int, len(b.docTokens[doc]))
	for _, t := range b.docTokens[doc] {
		freq[t]++
	}
	norm := bm25K1 * (1 - bm25B + bm25B*float64(b.docLen[doc])/b.avgDocLen)
	var s float64
	for _, q := range queryTokens {
		f := float64(freq[q])
		if f == 0 {
			continue
		}
		s += b.idf[q] * (f * (bm25K1 + 1)) / (f + norm)
	}
	return s
}

// Search scores the query against every passage and returns up to k hits with
// positive scores, ordered by descending score with ties broken by original
// passage order. Never errors: an empty corpus or zero term overlap yields an
// empty result.
func (b *BM25) Search(query string, k int) []Hit {
	if k <= 0 || len(b.passages) == 0 {
		return nil
	}
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	hits := make([]Hit, 0, len(b.passages))
	for i := range b.passages {
		if s := b.score(queryTokens, i); s > 0 {
			hits = append(hits, Hit{Passage: b.passages[i], Score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

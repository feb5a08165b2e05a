package index

import (
	"fmt"
	"reflect"
	"testing"

	"riskrag/internal/corpus"
)

func passagesFrom(texts ...string) []corpus.Passage {
	out := make([]corpus.Passage, len(texts))
	for i, t := range texts {
		out[i] = corpus.Passage{ID: i, Text: t, Metadata: map[string]string{}}
	}
	return out
}

func TestTokenizeLowercasesAndSplits(t *testing.T) {
	got := Tokenize("La Póliza cubre: incendio, robo (y 2 más).")
	want := []string{"la", "póliza", "cubre", "incendio", "robo", "y", "2", "más"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTokenizeNoWordCharacters(t *testing.T) {
	if got := Tokenize("¿¡ - ... !?"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSearchOrdersByScore(t *testing.T) {
	b := NewBM25(passagesFrom(
		"el contrato regula obligaciones generales",
		"incendio incendio incendio en la planta",
		"la planta tiene un plan de incendio",
	))
	hits := b.Search("incendio", 3)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Passage.ID != 1 {
		t.Fatalf("expected passage 1 first, got %d", hits[0].Passage.ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Fatalf("hits not sorted by score: %v", hits)
	}
}

func TestSearchRespectsK(t *testing.T) {
	b := NewBM25(passagesFrom(
		"riesgo operativo", "riesgo financiero", "riesgo legal", "riesgo externo",
	))
	hits := b.Search("riesgo", 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
}

func TestSearchNoOverlapReturnsEmpty(t *testing.T) {
	b := NewBM25(passagesFrom("la póliza cubre incendio"))
	if hits := b.Search("zzzxqv", 5); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}
}

func TestSearchEmptyCorpus(t *testing.T) {
	b := NewBM25(nil)
	if hits := b.Search("riesgo", 5); len(hits) != 0 {
		t.Fatalf("expected no hits on empty corpus, got %v", hits)
	}
}

func TestSearchStableTieBreak(t *testing.T) {
	// identical passages score identically; original order must hold
	b := NewBM25(passagesFrom("riesgo cubierto", "riesgo cubierto", "riesgo cubierto"))
	hits := b.Search("riesgo", 3)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	for i, h := range hits {
		if h.Passage.ID != i {
			t.Fatalf("tie not broken by passage order: %v", hits)
		}
	}
}

func TestRebuildScoresIdentically(t *testing.T) {
	// terms shared by most passages get the epsilon floor, which averages
	// over every term's idf; two builds of the same corpus must agree on it
	// to the last bit
	texts := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		texts = append(texts, fmt.Sprintf(
			"riesgo póliza cobertura deducible cláusula término%d anexo%d sección%d",
			i, i*7, i*13))
	}
	first := NewBM25(passagesFrom(texts...))
	second := NewBM25(passagesFrom(texts...))

	for _, q := range []string{"riesgo", "póliza deducible", "cobertura término3 anexo21"} {
		a := first.Search(q, 10)
		b := second.Search(q, 10)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("scores drifted between builds for %q:\n%v\n%v", q, a, b)
		}
	}
}

func TestSearchDeterministic(t *testing.T) {
	b := NewBM25(passagesFrom(
		"el deducible aplica a fallas de refrigeración",
		"los riesgos se clasifican en alto medio y bajo",
		"la cobertura excluye guerra y terrorismo",
	))
	first := b.Search("deducible refrigeración", 3)
	second := b.Search("deducible refrigeración", 3)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("search is not deterministic:\n%v\n%v", first, second)
	}
}

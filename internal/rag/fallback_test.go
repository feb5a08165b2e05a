package rag

import (
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Primera frase. Segunda frase! ¿Tercera frase? Cuarta sin cierre")
	want := []string{"Primera frase.", "Segunda frase!", "¿Tercera frase?", "Cuarta sin cierre"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitSentencesAbbreviationStaysWhole(t *testing.T) {
	// a period not followed by whitespace is not a boundary
	got := splitSentences("El monto es de 1.500 dólares. Fin.")
	if len(got) != 2 || !strings.Contains(got[0], "1.500") {
		t.Fatalf("number was split: %v", got)
	}
}

func TestBestSentencesRanksByOverlap(t *testing.T) {
	hits := hitsFrom(
		"El comité se reúne cada trimestre para revisar pendientes generales.",
		"Las exclusiones de la póliza incluyen guerra y terrorismo según el anexo.",
		"Las exclusiones aplican a toda la póliza de la empresa sin excepciones contractuales.",
	)
	got := bestSentences(hits, "¿qué exclusiones tiene la póliza de la empresa?", 6)
	if len(got) != 2 {
		t.Fatalf("expected 2 overlapping sentences, got %v", got)
	}
	if !strings.Contains(got[0], "empresa") {
		t.Fatalf("highest-overlap sentence should rank first: %v", got)
	}
}

func TestBestSentencesSkipsShortOnes(t *testing.T) {
	hits := hitsFrom("Exclusiones: guerra. Las exclusiones de la póliza se detallan en el anexo tercero.")
	got := bestSentences(hits, "exclusiones de la póliza", 6)
	for _, s := range got {
		if len([]rune(s)) < minSentenceLen {
			t.Fatalf("short sentence not filtered: %q", s)
		}
	}
}

func TestBestSentencesRespectsMax(t *testing.T) {
	hits := hitsFrom(
		"El riesgo operativo afecta los procesos internos de la empresa.",
		"El riesgo financiero afecta la liquidez de la empresa directamente.",
		"El riesgo legal afecta los contratos vigentes de la empresa.",
	)
	if got := bestSentences(hits, "riesgo de la empresa", 2); len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(got))
	}
}

func TestExtractiveAnswerHeaders(t *testing.T) {
	hits := hitsFrom("Las exclusiones de la póliza incluyen guerra y terrorismo según el anexo.")

	strong := extractiveAnswer(hits, "exclusiones de la póliza", 6, false)
	if !strings.HasPrefix(strong, extractiveHeader) {
		t.Fatalf("expected strong header, got %q", strong)
	}
	if !strings.Contains(strong, "\n- ") {
		t.Fatalf("expected bulleted sentences, got %q", strong)
	}

	weak := extractiveAnswer(hits, "exclusiones de la póliza", 6, true)
	if !strings.HasPrefix(weak, extractiveHeaderWeak) {
		t.Fatalf("expected weak header, got %q", weak)
	}
}

func TestExtractiveAnswerNoDirectSentence(t *testing.T) {
	hits := hitsFrom("El comité de riesgos sesiona trimestralmente en la sede principal.")
	got := extractiveAnswer(hits, "zanahoria espacial", 6, false)
	if got != noDirectSentence {
		t.Fatalf("expected the no-direct-sentence answer, got %q", got)
	}
}

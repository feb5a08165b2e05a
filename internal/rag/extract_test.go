package rag

import (
	"strings"
	"testing"
)

const extractCtx = "La matriz clasifica los riesgos en nivel alto, nivel medio y nivel bajo según impacto. " +
	"El deducible para fallas de refrigeración es del 10% del valor asegurado con un mínimo de US$ 500. " +
	"El sistema SST define los controles de seguridad y salud en el trabajo."

func TestRiskLevelsExtractor(t *testing.T) {
	answer, ok := runExtractors("¿Cuáles son los niveles de riesgo?", extractCtx)
	if !ok {
		t.Fatalf("expected risk_levels to fire")
	}
	if !strings.HasPrefix(answer, extractPrefix) {
		t.Fatalf("answer missing prefix: %q", answer)
	}
	span := strings.TrimPrefix(answer, extractPrefix)
	if !strings.Contains(extractCtx, span) {
		t.Fatalf("span is not a verbatim substring of context: %q", span)
	}
	for _, level := range []string{"alto", "medio", "bajo"} {
		if !strings.Contains(span, level) {
			t.Fatalf("span missing level %q: %q", level, span)
		}
	}
}

func TestRiskLevelsRequiresAllMarkers(t *testing.T) {
	ctx := "los riesgos pueden ser de nivel alto o de nivel medio según la matriz"
	if _, ok := matchRiskLevels("¿cuáles son los niveles de riesgo?", ctx); ok {
		t.Fatalf("must not fire with a partial scale")
	}
}

func TestRefrigerationDeductibleExtractor(t *testing.T) {
	answer, ok := runExtractors("¿Cuál es el deducible por fallas de refrigeración?", extractCtx)
	if !ok {
		t.Fatalf("expected refrigeration_deductible to fire")
	}
	if !strings.Contains(answer, "10%") {
		t.Fatalf("answer should quote the amount: %q", answer)
	}
	span := strings.TrimPrefix(answer, extractPrefix)
	if !strings.Contains(extractCtx, span) {
		t.Fatalf("span is not a verbatim substring of context: %q", span)
	}
}

func TestRefrigerationDeductibleNeedsAmount(t *testing.T) {
	ctx := "el deducible por fallas de refrigeración se acuerda caso a caso"
	if _, ok := matchRefrigerationDeductible("¿cuál es el deducible por refrigeración?", ctx); ok {
		t.Fatalf("must not fire without a literal amount")
	}
}

func TestAcronymExtractor(t *testing.T) {
	answer, ok := runExtractors("¿Qué significa la sigla SST?", extractCtx)
	if !ok {
		t.Fatalf("expected acronym to fire")
	}
	if !strings.Contains(answer, "SST") {
		t.Fatalf("answer should contain the acronym: %q", answer)
	}
}

func TestAcronymAbsentFromContext(t *testing.T) {
	if _, ok := matchAcronym("¿Qué significa la sigla XYZ?", extractCtx); ok {
		t.Fatalf("must not fire when the acronym is not in context")
	}
}

func TestExtractorsMissMeansFallThrough(t *testing.T) {
	if answer, ok := runExtractors("¿Qué exclusiones tiene la póliza?", extractCtx); ok {
		t.Fatalf("no extractor should match, got %q", answer)
	}
}

func TestWindowStaysOnWordBoundaries(t *testing.T) {
	long := strings.Repeat("palabra ", 100) + "marcador " + strings.Repeat("palabra ", 100)
	pos := strings.Index(long, "marcador")
	got := window(long, pos, pos+len("marcador"))
	if !strings.Contains(got, "marcador") {
		t.Fatalf("window lost the marker: %q", got)
	}
	if !strings.Contains(long, got) {
		t.Fatalf("window is not a substring of the input")
	}
	if n := len([]rune(got)); n > windowWidth+len("marcador") {
		t.Fatalf("window too wide: %d runes", n)
	}
	for _, w := range strings.Fields(got) {
		if w != "palabra" && w != "marcador" {
			t.Fatalf("window cut a word: %q", w)
		}
	}
}

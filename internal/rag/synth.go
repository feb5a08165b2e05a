package rag

import (
	"fmt"
	"strings"

	"riskrag/internal/corpus"
	"riskrag/internal/index"
)

// BuildContext concatenates the top-k passage texts under strong [DOC i]
// delimiters and truncates the result to maxChars at a whitespace boundary,
// never mid-token.
func BuildContext(hits []index.Hit, maxChars int) string {
	parts := make([]string, 0, len(hits))
	for i, h := range hits {
		txt := corpus.Normalize(h.Passage.Text)
		if txt == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[DOC %d]\n%s", i+1, txt))
	}
	context := strings.Join(parts, "\n\n")
	runes := []rune(context)
	if len(runes) <= maxChars {
		return context
	}
	end := maxChars
	for end > 0 && runes[end-1] != ' ' && runes[end-1] != '\n' {
		end--
	}
	if end == 0 {
		// a single token longer than the budget; cut it rather than
		// returning nothing
		end = maxChars
	}
	return strings.TrimRight(string(runes[:end]), " \n")
}

// BuildPrompt wraps the context and question in the closed instruction
// prompt: answer only from context, refuse with the exact NoEvidence sentence
// when the context is insufficient, no meta commentary, five lines max.
func BuildPrompt(context, question string) string {
	return strings.TrimSpace(fmt.Sprintf(`INSTRUCCIONES (obligatorias):
1) Responde SOLO la pregunta.
2) Usa SOLO el CONTEXTO. No inventes. No uses conocimiento externo.
3) No escribas explicaciones meta (ej: "como modelo", "no tengo acceso", etc.).
4) Si el CONTEXTO no contiene la respuesta, responde EXACTAMENTE:
%s

CONTEXTO:
%s

PREGUNTA:
%s

RESPUESTA (máx 5 líneas):`, NoEvidence, context, question))
}

// Package corpus provides the canonical passage type and the segmentation of
// source documents into ordered passages. Every downstream component sees
// passages only through this type; no ad hoc source objects cross the
// boundary.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Passage is a contiguous span of source text with a stable identifier.
// Immutable after segmentation.
type Passage struct {
	ID       int
	Text     string
	Metadata map[string]string
}

var spaceRE = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace runs (including NBSP) into single spaces.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return strings.TrimSpace(spaceRE.ReplaceAllString(text, " "))
}

// Load reads a source document and segments it into passages. Plain text and
// markdown are read verbatim; HTML goes through readability extraction first.
// PDF extraction is the job of an external segmenter.
func Load(path string, chunkSize, overlap int) ([]Passage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	text := string(raw)
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		article, err := readability.FromReader(strings.NewReader(text), nil)
		if err != nil {
			return nil, fmt.Errorf("extract html text: %w", err)
		}
		text = article.TextContent
	}

	passages := Segment(text, chunkSize, overlap)
	for i := range passages {
		passages[i].Metadata["source"] = path
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("corpus %s produced no passages", path)
	}
	return passages, nil
}

// Segment splits normalized text into chunks of at most chunkSize characters
// with the given overlap, cutting only at whitespace boundaries. Empty chunks
// are dropped; IDs are the ordinal positions.
func Segment(text string, chunkSize, overlap int) []Passage {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	var passages []Passage
	runes := []rune(text)
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			// back up to the last space so no token is cut mid-word
			cut := end
			for cut > start && runes[cut] != ' ' {
				cut--
			}
			if cut > start {
				end = cut
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			passages = append(passages, Passage{
				ID:       len(passages),
				Text:     chunk,
				Metadata: map[string]string{},
			})
		}

		if end == len(runes) {
			break
		}
		next := end - overlap
		if next < 0 {
			next = 0
		}
		// advance to a word start so the overlap repeats whole words only
		for next < end && next > 0 && runes[next-1] != ' ' {
			next++
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return passages
}

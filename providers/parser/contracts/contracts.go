package contracts

import (
	"context"
	"fmt"
	"strings"

	"github.com/tiger/signstream/api/language"
)

// Parser is the linguistic-analysis boundary: sentence segmentation over a
// larger text, and tagged-token parsing of one sentence.
type Parser interface {
	Segment(ctx context.Context, text string) ([]string, error)
	Parse(ctx context.Context, sentence string) (language.Sentence, error)
}

// Static is a fixture-backed parser for tests and offline runs: naive
// punctuation segmentation plus a sentence-keyed parse table.
type Static struct {
	Sentences map[string]language.Sentence
}

// Segment splits on terminal punctuation and trims whitespace.
func (s Static) Segment(_ context.Context, text string) ([]string, error) {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// Parse returns the fixture for sentence, or an error when none is
// registered.
func (s Static) Parse(_ context.Context, sentence string) (language.Sentence, error) {
	parsed, ok := s.Sentences[sentence]
	if !ok {
		return language.Sentence{}, fmt.Errorf("no parse fixture for %q", sentence)
	}
	if err := parsed.Validate(); err != nil {
		return language.Sentence{}, fmt.Errorf("fixture for %q: %w", sentence, err)
	}
	return parsed, nil
}

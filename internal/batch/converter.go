package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tiger/signstream/api/playback"
	"github.com/tiger/signstream/internal/assets"
	"github.com/tiger/signstream/internal/grammar"
	parsecontracts "github.com/tiger/signstream/providers/parser/contracts"
)

// DefaultConcurrency bounds parallel parse requests per document.
const DefaultConcurrency = 4

// SentencePlan is the conversion result for one sentence: the sign tokens in
// output order and the clips that render them.
type SentencePlan struct {
	Sentence string          `json:"sentence"`
	Tokens   []string        `json:"tokens"`
	Clips    []playback.Clip `json:"clips"`
}

// Document is the conversion result for one input text.
type Document struct {
	Text      string         `json:"text"`
	Sentences []SentencePlan `json:"sentences"`
}

// Config tunes the batch converter.
type Config struct {
	Concurrency int
	Logger      *logrus.Logger
}

// Converter turns whole texts into per-sentence sign plans. Sentences parse
// concurrently; output order always matches input order.
type Converter struct {
	parser      parsecontracts.Parser
	resolver    *assets.Resolver
	concurrency int
	log         *logrus.Logger
}

// NewConverter constructs a converter over the given parser and resolver.
func NewConverter(parser parsecontracts.Parser, resolver *assets.Resolver, cfg Config) (*Converter, error) {
	if parser == nil {
		return nil, fmt.Errorf("parser is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Converter{
		parser:      parser,
		resolver:    resolver,
		concurrency: cfg.Concurrency,
		log:         cfg.Logger,
	}, nil
}

// Convert segments text, parses every sentence, and builds the per-sentence
// sign plan. Any sentence failure fails the document.
func (c *Converter) Convert(ctx context.Context, text string) (Document, error) {
	raw, err := c.parser.Segment(ctx, text)
	if err != nil {
		return Document{}, fmt.Errorf("segment text: %w", err)
	}

	plans := make([]SentencePlan, len(raw))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)
	for i, sentence := range raw {
		group.Go(func() error {
			parsed, err := c.parser.Parse(ctx, sentence)
			if err != nil {
				return fmt.Errorf("parse sentence %q: %w", sentence, err)
			}
			tokens := grammar.TranslateSentence(parsed)
			plans[i] = SentencePlan{
				Sentence: sentence,
				Tokens:   tokens,
				Clips:    c.resolver.ResolveTokens(tokens),
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Document{}, err
	}

	c.log.WithFields(logrus.Fields{
		"sentences": len(plans),
	}).Debug("converted document")
	return Document{Text: text, Sentences: plans}, nil
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode conversion result: %w", err)
	}
	return nil
}

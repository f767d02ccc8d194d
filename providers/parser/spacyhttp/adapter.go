package spacyhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tiger/signstream/api/language"
)

const ProviderID = "parser-spacy-http"

// Config configures the HTTP client for a spaCy tagging service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv resolves parser configuration from the environment.
func ConfigFromEnv() Config {
	base := os.Getenv("SIGNSTREAM_PARSER_URL")
	if base == "" {
		base = "http://127.0.0.1:8090"
	}
	return Config{BaseURL: base, Timeout: 10 * time.Second}
}

// Adapter is a JSON-over-HTTP client for sentence segmentation and
// tagged-token parsing.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New constructs the adapter; a missing base URL is a configuration error.
func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Adapter{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// NewFromEnv constructs the adapter from environment configuration.
func NewFromEnv() (*Adapter, error) {
	return New(ConfigFromEnv())
}

type textRequest struct {
	Text string `json:"text"`
}

type segmentResponse struct {
	Sentences []string `json:"sentences"`
}

type tokenPayload struct {
	Text   string `json:"text"`
	Lemma  string `json:"lemma"`
	POS    string `json:"pos"`
	Dep    string `json:"dep"`
	Entity string `json:"entity"`
	Head   int    `json:"head"`
}

type parseResponse struct {
	Tokens []tokenPayload `json:"tokens"`
}

// Segment splits text into sentence strings via the service's /segment
// endpoint.
func (a *Adapter) Segment(ctx context.Context, text string) ([]string, error) {
	var out segmentResponse
	if err := a.postJSON(ctx, "/segment", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.Sentences, nil
}

// Parse tags one sentence via the service's /parse endpoint and returns the
// validated token arena.
func (a *Adapter) Parse(ctx context.Context, sentence string) (language.Sentence, error) {
	var out parseResponse
	if err := a.postJSON(ctx, "/parse", textRequest{Text: sentence}, &out); err != nil {
		return language.Sentence{}, err
	}

	parsed := language.Sentence{Text: sentence, Tokens: make([]language.Token, 0, len(out.Tokens))}
	for _, tok := range out.Tokens {
		parsed.Tokens = append(parsed.Tokens, language.Token{
			Text:   tok.Text,
			Lemma:  tok.Lemma,
			POS:    language.PartOfSpeech(tok.POS),
			Dep:    language.DependencyLabel(tok.Dep),
			Entity: language.EntityType(tok.Entity),
			Head:   tok.Head,
		})
	}
	if err := parsed.Validate(); err != nil {
		return language.Sentence{}, fmt.Errorf("parser response: %w", err)
	}
	return parsed, nil
}

func (a *Adapter) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode parser request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build parser request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("parser %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("parser %s: %s: %s", path, resp.Status, bytes.TrimSpace(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode parser response: %w", err)
	}
	return nil
}

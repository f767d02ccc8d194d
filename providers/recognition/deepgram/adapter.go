package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/tiger/signstream/providers/common/streamsse"
	"github.com/tiger/signstream/providers/recognition/contracts"
)

const ProviderID = "recognition-deepgram"

// Config configures the Deepgram live-transcription adapter.
type Config struct {
	APIKey   string
	Endpoint string
	Language string
	Model    string
}

// ConfigFromEnv resolves adapter configuration from the environment.
func ConfigFromEnv() Config {
	return Config{
		APIKey:   os.Getenv("SIGNSTREAM_RECOGNITION_DEEPGRAM_API_KEY"),
		Endpoint: defaultString(os.Getenv("SIGNSTREAM_RECOGNITION_DEEPGRAM_ENDPOINT"), "https://api.deepgram.com/v1/listen"),
		Language: defaultString(os.Getenv("SIGNSTREAM_RECOGNITION_DEEPGRAM_LANGUAGE"), "en-US"),
		Model:    defaultString(os.Getenv("SIGNSTREAM_RECOGNITION_DEEPGRAM_MODEL"), "nova-2"),
	}
}

// Adapter consumes a Deepgram-compatible server-sent-event transcription
// stream and forwards transcript events.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// NewAdapter constructs the adapter; a missing endpoint is a configuration
// error.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	return &Adapter{cfg: cfg, client: &http.Client{}}, nil
}

// NewAdapterFromEnv constructs the adapter from environment configuration.
func NewAdapterFromEnv() (*Adapter, error) {
	return NewAdapter(ConfigFromEnv())
}

type transcriptPayload struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"is_final"`
}

// Stream opens the live stream and invokes fn per transcript event until the
// upstream closes, fn fails, or ctx is cancelled.
func (a *Adapter) Stream(ctx context.Context, fn contracts.EventFunc) error {
	endpoint, err := a.streamURL()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build recognition request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Token "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("open recognition stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recognition stream status %s", resp.Status)
	}

	err = streamsse.Parse(resp.Body, func(ev streamsse.Event) error {
		var payload transcriptPayload
		if jsonErr := json.Unmarshal([]byte(ev.Data), &payload); jsonErr != nil {
			// The stream interleaves metadata frames we do not consume.
			return nil
		}
		if strings.TrimSpace(payload.Transcript) == "" {
			return nil
		}
		return fn(contracts.TranscriptEvent{Text: payload.Transcript, Final: payload.IsFinal})
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (a *Adapter) streamURL() (string, error) {
	parsed, err := url.Parse(a.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	query := parsed.Query()
	if a.cfg.Language != "" {
		query.Set("language", a.cfg.Language)
	}
	if a.cfg.Model != "" {
		query.Set("model", a.cfg.Model)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

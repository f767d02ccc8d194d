package contracts

import "context"

// TranscriptEvent is one recognition result. Interim events revise text that
// is still being spoken; only final events are stable.
type TranscriptEvent struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// EventFunc consumes one recognition event. Returning an error stops the
// stream and is reported by Stream.
type EventFunc func(TranscriptEvent) error

// Recognizer is the speech-recognition boundary: an event stream of interim
// and final transcripts. Stream blocks until the upstream source ends, the
// context is cancelled, or fn returns an error.
type Recognizer interface {
	Stream(ctx context.Context, fn EventFunc) error
}

// Replay is an in-memory recognizer for tests and file-driven input. It
// emits its events in order and then returns.
type Replay struct {
	Events []TranscriptEvent
}

// Stream delivers every queued event, honoring context cancellation between
// events.
func (r Replay) Stream(ctx context.Context, fn EventFunc) error {
	for _, ev := range r.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

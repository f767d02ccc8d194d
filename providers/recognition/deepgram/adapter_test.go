package deepgram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiger/signstream/providers/recognition/contracts"
)

func TestStreamForwardsTranscriptEvents(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token dg-key" {
			t.Errorf("authorization header = %q", got)
		}
		if got := r.URL.Query().Get("model"); got != "nova-2" {
			t.Errorf("model query = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"transcript\":\"hello wor\",\"is_final\":false}\n\n")
		fmt.Fprint(w, "data: {\"transcript\":\"hello world\",\"is_final\":true}\n\n")
		fmt.Fprint(w, "data: {\"metadata\":true}\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	adapter, err := NewAdapter(Config{APIKey: "dg-key", Endpoint: srv.URL, Language: "en-US", Model: "nova-2"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	var got []contracts.TranscriptEvent
	err = adapter.Stream(context.Background(), func(ev contracts.TranscriptEvent) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("event count = %d, want 2: %+v", len(got), got)
	}
	if got[0].Final || got[0].Text != "hello wor" {
		t.Fatalf("first event = %+v", got[0])
	}
	if !got[1].Final || got[1].Text != "hello world" {
		t.Fatalf("second event = %+v", got[1])
	}
}

func TestStreamContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"transcript\":\"first\",\"is_final\":true}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	adapter, err := NewAdapter(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = adapter.Stream(ctx, func(ev contracts.TranscriptEvent) error {
		cancel()
		return nil
	})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStreamNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	adapter, err := NewAdapter(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	err = adapter.Stream(context.Background(), func(contracts.TranscriptEvent) error { return nil })
	if err == nil {
		t.Fatalf("expected status error")
	}
}

func TestNewAdapterRequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewAdapter(Config{}); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tiger/signstream/internal/batch"
)

// syncBuffer serializes writes from session observer goroutines and the
// playback loop.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeAssets(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("clip"), 0o644); err != nil {
			t.Fatalf("write asset %s: %v", name, err)
		}
	}
	return dir
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signstream.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func parserService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/segment", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"sentences": []string{"I go"}})
	})
	mux.HandleFunc("/parse", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tokens": []map[string]any{
				{"text": "I", "lemma": "I", "pos": "PRON", "dep": "nsubj", "head": 1},
				{"text": "go", "lemma": "go", "pos": "VERB", "dep": "ROOT", "head": 1},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "signstream usage:") {
		t.Fatalf("usage not printed: %q", stdout.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"frobnicate"}, &stdout, &stderr)
	if err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if !strings.Contains(stderr.String(), "signstream usage:") {
		t.Fatalf("usage not printed to stderr: %q", stderr.String())
	}
}

func TestTranslateCommand(t *testing.T) {
	t.Parallel()

	parser := parserService(t)
	assetDir := writeAssets(t, "i.mp4", "go.mp4")
	cfgPath := writeConfig(t, fmt.Sprintf("assets:\n  dir: %s\nparser:\n  url: %s\n", assetDir, parser.URL))

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate", "-config", cfgPath, "-text", "I go."}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	var doc batch.Document
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout.String())
	}
	if len(doc.Sentences) != 1 {
		t.Fatalf("sentence count = %d", len(doc.Sentences))
	}
	if got := strings.Join(doc.Sentences[0].Tokens, " "); got != "I GO" {
		t.Fatalf("tokens = %q", got)
	}
	if len(doc.Sentences[0].Clips) != 2 {
		t.Fatalf("clips = %+v", doc.Sentences[0].Clips)
	}
}

func TestTranslateReadsInputFile(t *testing.T) {
	t.Parallel()

	parser := parserService(t)
	assetDir := writeAssets(t, "i.mp4", "go.mp4")
	cfgPath := writeConfig(t, fmt.Sprintf("assets:\n  dir: %s\nparser:\n  url: %s\n", assetDir, parser.URL))

	inPath := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(inPath, []byte("I go."), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	outPath := filepath.Join(t.TempDir(), "out.json")

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate", "-config", cfgPath, "-in", inPath, "-out", outPath}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	var doc batch.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if doc.Text != "I go." {
		t.Fatalf("document text = %q", doc.Text)
	}
}

func TestTranslateRequiresInput(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"translate"}, &stdout, &stderr); err == nil {
		t.Fatalf("expected error without -text or -in")
	}
}

func TestValidateAssetsCommand(t *testing.T) {
	t.Parallel()

	assetDir := writeAssets(t, "hello.mp4", "A.mp4")
	cfgPath := writeConfig(t, fmt.Sprintf("assets:\n  dir: %s\n", assetDir))

	var stdout, stderr bytes.Buffer
	if err := run([]string{"validate-assets", "-config", cfgPath}, &stdout, &stderr); err != nil {
		t.Fatalf("validate-assets: %v", err)
	}
	if !strings.Contains(stdout.String(), "1 word clips, 1 letter clips") {
		t.Fatalf("unexpected summary: %q", stdout.String())
	}
}

func TestValidateAssetsMissingDir(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, fmt.Sprintf("assets:\n  dir: %s\n", filepath.Join(t.TempDir(), "absent")))
	var stdout, stderr bytes.Buffer
	if err := run([]string{"validate-assets", "-config", cfgPath}, &stdout, &stderr); err == nil {
		t.Fatalf("expected error for missing asset directory")
	}
}

func TestStreamCommand(t *testing.T) {
	t.Parallel()

	parser := parserService(t)
	speech := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"transcript\":\"I go.\",\"is_final\":true}\n\n")
	}))
	t.Cleanup(speech.Close)

	assetDir := writeAssets(t, "i.mp4", "go.mp4")
	cfgPath := writeConfig(t, fmt.Sprintf(
		"assets:\n  dir: %s\nparser:\n  url: %s\nspeech:\n  endpoint: %s\npipeline:\n  poll_interval: 20ms\n",
		assetDir, parser.URL, speech.URL,
	))

	var stdout, stderr syncBuffer
	if err := run([]string{"stream", "-config", cfgPath}, &stdout, &stderr); err != nil {
		t.Fatalf("stream: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "heard: I go.") {
		t.Fatalf("transcript line missing: %q", out)
	}
	if !strings.Contains(out, "signs: I GO") {
		t.Fatalf("sign line missing: %q", out)
	}
	if strings.Count(out, "play: ") != 2 {
		t.Fatalf("expected two play lines: %q", out)
	}
}

package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeClipFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("stub"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestNewLibraryIndexesWordsAndLetters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClipFiles(t, dir, "hello.mp4", "Home.mp4", "A.mp4", "B.mp4", "notes.txt")

	lib, err := NewLibrary(dir)
	if err != nil {
		t.Fatalf("new library: %v", err)
	}
	if lib.WordCount() != 2 {
		t.Fatalf("word count = %d, want 2", lib.WordCount())
	}
	if lib.LetterCount() != 2 {
		t.Fatalf("letter count = %d, want 2", lib.LetterCount())
	}

	if _, ok := lib.Word("HELLO"); !ok {
		t.Fatalf("word lookup should case-fold to lowercase")
	}
	if _, ok := lib.Word("home"); !ok {
		t.Fatalf("mixed-case clip file should index by lowercase stem")
	}
	if _, ok := lib.Letter('a'); !ok {
		t.Fatalf("letter lookup should case-fold to uppercase")
	}
	if _, ok := lib.Word("notes"); ok {
		t.Fatalf("non-clip file must not be indexed")
	}
}

func TestNewLibraryMissingDirectoryIsFatal(t *testing.T) {
	t.Parallel()

	if _, err := NewLibrary(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing asset directory")
	}
	if _, err := NewLibrary(""); err == nil {
		t.Fatalf("expected error for empty asset directory")
	}
}

func TestLibraryProbeRecordsDurations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClipFiles(t, dir, "hello.mp4", "A.mp4")
	lib, err := NewLibrary(dir)
	if err != nil {
		t.Fatalf("new library: %v", err)
	}

	err = lib.Probe(func(path string) (float64, error) {
		return 1.5, nil
	})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	clip, ok := lib.Word("hello")
	if !ok || clip.MediaSeconds != 1.5 {
		t.Fatalf("probed word clip = %+v", clip)
	}
	letter, ok := lib.Letter('A')
	if !ok || letter.MediaSeconds != 1.5 {
		t.Fatalf("probed letter clip = %+v", letter)
	}

	if err := lib.Probe(nil); err == nil {
		t.Fatalf("expected error for nil probe func")
	}
}

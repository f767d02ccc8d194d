package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const clipExtension = ".mp4"

// Clip is one indexed sign asset: its on-disk path and the probed media
// duration when known (zero when never probed).
type Clip struct {
	Path         string
	MediaSeconds float64
}

// ProbeFunc reports the media duration of a clip file in seconds. Decoding
// is external; the library only records what the probe returns.
type ProbeFunc func(path string) (float64, error)

// Library indexes a directory of sign clips: whole-word assets keyed by
// lowercase token and single-letter assets keyed by uppercase letter.
type Library struct {
	dir     string
	words   map[string]Clip
	letters map[rune]Clip
}

// NewLibrary scans dir and indexes every clip file found. A missing or
// unreadable directory is a configuration error reported immediately, never
// retried.
func NewLibrary(dir string) (*Library, error) {
	if dir == "" {
		return nil, fmt.Errorf("asset directory is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read asset directory: %w", err)
	}

	lib := &Library{
		dir:     dir,
		words:   map[string]Clip{},
		letters: map[rune]Clip{},
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), clipExtension) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if stem == "" {
			continue
		}
		clip := Clip{Path: filepath.Join(dir, name)}
		if r, ok := singleLetter(stem); ok {
			lib.letters[unicode.ToUpper(r)] = clip
			continue
		}
		lib.words[strings.ToLower(stem)] = clip
	}
	return lib, nil
}

// Dir returns the indexed asset directory.
func (l *Library) Dir() string {
	return l.dir
}

// Word returns the whole-word asset for a token, case-folded to lowercase.
func (l *Library) Word(token string) (Clip, bool) {
	clip, ok := l.words[strings.ToLower(token)]
	return clip, ok
}

// Letter returns the single-letter asset for r, case-folded to uppercase.
func (l *Library) Letter(r rune) (Clip, bool) {
	clip, ok := l.letters[unicode.ToUpper(r)]
	return clip, ok
}

// WordCount returns the number of indexed whole-word assets.
func (l *Library) WordCount() int {
	return len(l.words)
}

// LetterCount returns the number of indexed letter assets.
func (l *Library) LetterCount() int {
	return len(l.letters)
}

// Probe records media durations for every indexed clip using fn. Probe
// failures skip the clip and keep the index entry; playback timing uses
// fixed display times regardless.
func (l *Library) Probe(fn ProbeFunc) error {
	if fn == nil {
		return fmt.Errorf("probe func is required")
	}
	for key, clip := range l.words {
		if seconds, err := fn(clip.Path); err == nil && seconds > 0 {
			clip.MediaSeconds = seconds
			l.words[key] = clip
		}
	}
	for key, clip := range l.letters {
		if seconds, err := fn(clip.Path); err == nil && seconds > 0 {
			clip.MediaSeconds = seconds
			l.letters[key] = clip
		}
	}
	return nil
}

func singleLetter(stem string) (rune, bool) {
	if utf8.RuneCountInString(stem) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(stem)
	// Letter assets are named by their uppercase letter; a lowercase
	// single-rune stem is a one-letter word asset.
	if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
		return 0, false
	}
	return r, true
}

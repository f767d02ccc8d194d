package assets

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tiger/signstream/api/playback"
)

// Display times are fixed by the sign-rendering policy: whole-word clips
// hold longer than fingerspelled letters.
const (
	WordDisplaySeconds   = 2.5
	LetterDisplaySeconds = 0.8
)

// Resolver maps sign tokens onto playback descriptors against a library.
type Resolver struct {
	lib *Library
}

// NewResolver constructs a resolver over one asset library.
func NewResolver(lib *Library) (*Resolver, error) {
	if lib == nil {
		return nil, fmt.Errorf("asset library is required")
	}
	return &Resolver{lib: lib}, nil
}

// ResolveTokens maps each token to clip descriptors. A whole-word asset hit
// emits one descriptor at the word display time; otherwise each alphabetic
// rune falls back to its letter asset at the letter display time.
// Non-alphabetic runes (including the clause separator) and tokens with no
// resolvable asset at all contribute nothing. Resolution misses are silent
// because the asset set is incomplete by nature.
func (r *Resolver) ResolveTokens(tokens []string) []playback.Clip {
	var out []playback.Clip
	for _, token := range tokens {
		lower := strings.ToLower(token)
		if clip, ok := r.lib.Word(lower); ok {
			out = append(out, playback.Clip{Path: clip.Path, Seconds: WordDisplaySeconds})
			continue
		}
		for _, ch := range lower {
			if !unicode.IsLetter(ch) {
				continue
			}
			if clip, ok := r.lib.Letter(ch); ok {
				out = append(out, playback.Clip{Path: clip.Path, Seconds: LetterDisplaySeconds})
			}
		}
	}
	return out
}

package language

import "fmt"

// PartOfSpeech is a coarse universal part-of-speech tag as produced by the
// external tagging service.
type PartOfSpeech string

const (
	POSVerb       PartOfSpeech = "VERB"
	POSAuxiliary  PartOfSpeech = "AUX"
	POSNoun       PartOfSpeech = "NOUN"
	POSProperNoun PartOfSpeech = "PROPN"
	POSPronoun    PartOfSpeech = "PRON"
	POSAdjective  PartOfSpeech = "ADJ"
	POSAdverb     PartOfSpeech = "ADV"
	POSAdposition PartOfSpeech = "ADP"
	POSDeterminer PartOfSpeech = "DET"
	POSParticle   PartOfSpeech = "PART"
)

// DependencyLabel is a dependency-relation label on one token, naming its
// grammatical role relative to its head.
type DependencyLabel string

const (
	DepRoot             DependencyLabel = "ROOT"
	DepNominalSubject   DependencyLabel = "nsubj"
	DepPassiveSubject   DependencyLabel = "nsubjpass"
	DepDirectObject     DependencyLabel = "dobj"
	DepPrepositionalObj DependencyLabel = "pobj"
	DepAttribute        DependencyLabel = "attr"
	DepAdjComplement    DependencyLabel = "acomp"
	DepNegation         DependencyLabel = "neg"
	DepAdverbialClause  DependencyLabel = "advcl"
)

// EntityType is a named-entity label, or empty when the token is not part of
// a recognized entity.
type EntityType string

const (
	EntityNone EntityType = ""
	EntityDate EntityType = "DATE"
	EntityTime EntityType = "TIME"
)

// Token is one immutable tagged linguistic unit within a sentence. Head is
// the arena index of the token this one depends on; the root token heads
// itself.
type Token struct {
	Text   string          `json:"text"`
	Lemma  string          `json:"lemma"`
	POS    PartOfSpeech    `json:"pos"`
	Dep    DependencyLabel `json:"dep"`
	Entity EntityType      `json:"entity,omitempty"`
	Head   int             `json:"head"`
}

// Validate enforces token-local invariants.
func (t Token) Validate() error {
	if t.Text == "" {
		return fmt.Errorf("token text is required")
	}
	if t.Head < 0 {
		return fmt.Errorf("token head must be >=0")
	}
	return nil
}

// Sentence is the ordered token arena for one parsed sentence. Tokens refer
// to each other only by arena index, never by reference.
type Sentence struct {
	Text   string  `json:"text,omitempty"`
	Tokens []Token `json:"tokens"`
}

// Validate enforces arena invariants: per-token validity and in-range head
// indices.
func (s Sentence) Validate() error {
	for i, tok := range s.Tokens {
		if err := tok.Validate(); err != nil {
			return fmt.Errorf("token %d: %w", i, err)
		}
		if tok.Head >= len(s.Tokens) {
			return fmt.Errorf("token %d: head %d out of range for %d tokens", i, tok.Head, len(s.Tokens))
		}
	}
	return nil
}

// Children returns the arena indexes of tokens directly headed by index i,
// in sentence order. A token is never its own child even when it heads
// itself.
func (s Sentence) Children(i int) []int {
	var out []int
	for j, tok := range s.Tokens {
		if tok.Head == i && j != i {
			out = append(out, j)
		}
	}
	return out
}

// Subtree returns the arena indexes of token i plus all of its transitive
// dependents, in sentence order. The walk is index-based so head
// back-references cannot loop it.
func (s Sentence) Subtree(i int) []int {
	if i < 0 || i >= len(s.Tokens) {
		return nil
	}
	member := make([]bool, len(s.Tokens))
	member[i] = true
	stack := []int{i}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range s.Children(next) {
			if !member[child] {
				member[child] = true
				stack = append(stack, child)
			}
		}
	}
	out := make([]int, 0, len(s.Tokens))
	for j, in := range member {
		if in {
			out = append(out, j)
		}
	}
	return out
}

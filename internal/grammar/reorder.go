package grammar

import (
	"strings"

	"github.com/tiger/signstream/api/language"
)

// modifierWords are the adverbs/adpositions signed as sequence modifiers
// rather than objects.
var modifierWords = map[string]struct{}{
	"before":      {},
	"after":       {},
	"immediately": {},
	"now":         {},
	"later":       {},
}

var objectDeps = map[language.DependencyLabel]struct{}{
	language.DepDirectObject:     {},
	language.DepPrepositionalObj: {},
	language.DepAttribute:        {},
	language.DepAdjComplement:    {},
}

// ReorderClause buckets each token into at most one of six categories and
// emits them in the target sign order: time, modifiers, objects, subjects,
// verbs, negation. A token is evaluated against the buckets in that same
// order and lands in the first one it matches; the entity check runs before
// any part-of-speech check, so a DATE-tagged adverb is a time token, never an
// object. Tokens matching no bucket contribute nothing.
func ReorderClause(tokens []language.Token) []string {
	var timeSigns, modifierSigns, objectSigns, subjectSigns, verbSigns, negationSigns []string

	for _, tok := range tokens {
		lower := strings.ToLower(tok.Text)
		switch {
		case tok.Entity == language.EntityDate || tok.Entity == language.EntityTime:
			timeSigns = append(timeSigns, strings.ToUpper(tok.Text))
		case isModifier(tok.POS, lower):
			modifierSigns = append(modifierSigns, strings.ToUpper(tok.Text))
		case tok.POS == language.POSAdverb || isObjectDep(tok.Dep):
			objectSigns = append(objectSigns, strings.ToUpper(tok.Text))
		case isSubject(tok.Dep, lower):
			subjectSigns = append(subjectSigns, strings.ToUpper(tok.Text))
		case tok.POS == language.POSVerb:
			// Verbs sign by lemma, not surface form.
			verbSigns = append(verbSigns, strings.ToUpper(tok.Lemma))
		case tok.Dep == language.DepNegation:
			negationSigns = append(negationSigns, "NOT")
		}
	}

	out := make([]string, 0,
		len(timeSigns)+len(modifierSigns)+len(objectSigns)+len(subjectSigns)+len(verbSigns)+len(negationSigns))
	out = append(out, timeSigns...)
	out = append(out, modifierSigns...)
	out = append(out, objectSigns...)
	out = append(out, subjectSigns...)
	out = append(out, verbSigns...)
	out = append(out, negationSigns...)
	return out
}

func isModifier(pos language.PartOfSpeech, lower string) bool {
	if pos != language.POSAdverb && pos != language.POSAdposition {
		return false
	}
	_, ok := modifierWords[lower]
	return ok
}

func isObjectDep(dep language.DependencyLabel) bool {
	_, ok := objectDeps[dep]
	return ok
}

func isSubject(dep language.DependencyLabel, lower string) bool {
	if dep != language.DepNominalSubject && dep != language.DepPassiveSubject {
		return false
	}
	// Expletive "it" carries no sign of its own.
	return lower != "it"
}

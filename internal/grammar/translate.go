package grammar

import "github.com/tiger/signstream/api/language"

// Separator is the literal token emitted between a condition clause and the
// main clause it guards.
const Separator = ","

// TranslateSentence converts one parsed sentence into its sign token
// sequence: clause split, per-clause reorder, then concatenation. The
// separator is emitted only when the condition clause produced at least one
// sign; a condition clause whose tokens all bucketed to nothing yields the
// main clause alone.
func TranslateSentence(sentence language.Sentence) []string {
	conditionTokens, mainTokens := SplitClauses(sentence)
	conditionSigns := ReorderClause(conditionTokens)
	mainSigns := ReorderClause(mainTokens)

	if len(conditionSigns) == 0 {
		return mainSigns
	}
	out := make([]string, 0, len(conditionSigns)+1+len(mainSigns))
	out = append(out, conditionSigns...)
	out = append(out, Separator)
	out = append(out, mainSigns...)
	return out
}

// TranslateSentences converts parsed sentences in order and concatenates the
// per-sentence sign sequences.
func TranslateSentences(sentences []language.Sentence) []string {
	var out []string
	for _, sentence := range sentences {
		out = append(out, TranslateSentence(sentence)...)
	}
	return out
}

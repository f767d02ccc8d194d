package grammar

import (
	"strings"

	"github.com/tiger/signstream/api/language"
)

// SplitClauses partitions a sentence into condition-clause and main-clause
// token sets. Two cumulative rules claim tokens for the condition clause:
// every advcl-labeled token claims its own subtree, and every literal "if"
// claims its head's subtree. A claimed token leaves the main set permanently;
// overlapping claims are harmless because both rules are idempotent subtree
// marks. Both outputs keep original sentence order.
func SplitClauses(sentence language.Sentence) (condition, main []language.Token) {
	claimed := make([]bool, len(sentence.Tokens))

	for i, tok := range sentence.Tokens {
		if tok.Dep == language.DepAdverbialClause {
			claimSubtree(sentence, i, claimed)
		}
		if strings.ToLower(tok.Text) == "if" {
			claimSubtree(sentence, tok.Head, claimed)
		}
	}

	for i, tok := range sentence.Tokens {
		if claimed[i] {
			condition = append(condition, tok)
		} else {
			main = append(main, tok)
		}
	}
	return condition, main
}

func claimSubtree(sentence language.Sentence, root int, claimed []bool) {
	for _, idx := range sentence.Subtree(root) {
		claimed[idx] = true
	}
}

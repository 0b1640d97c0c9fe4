package enrichment

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Toxicity is a cheap local screen over a banned-term list. It runs before
// any remote call and only counts hits; whether a hit blocks the send is the
// caller's policy.
type Toxicity struct {
	matcher *goahocorasick.Machine
	empty   bool
}

func NewToxicity(bannedWords []string) (*Toxicity, error) {
	if len(bannedWords) == 0 {
		return &Toxicity{empty: true}, nil
	}

	patterns := make([][]rune, len(bannedWords))
	for i, w := range bannedWords {
		patterns[i] = normalizeRunes([]rune(w))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Toxicity{matcher: m}, nil
}

// Hits returns the number of banned terms present in the text.
func (t *Toxicity) Hits(text string) int {
	if t.empty {
		return 0
	}
	norm := normalizeRunes([]rune(text))
	if len(norm) == 0 {
		return 0
	}
	return len(t.matcher.MultiPatternSearch(norm, false))
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune folds common leet substitutions back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}

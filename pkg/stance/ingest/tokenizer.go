package ingest

import (
	"strings"
	"unicode"
)

// SplitWords splits text into lowercase word forms. A word is a run of
// letters, digits, apostrophes and hyphens; leading and trailing hyphens
// and apostrophes are stripped and repeated hyphens collapse to one.
func SplitWords(text string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if w := cleanWord(current.String()); w != "" {
			words = append(words, w)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return words
}

// cleanWord strips leading/trailing hyphens and apostrophes and normalizes
// consecutive hyphens.
func cleanWord(word string) string {
	word = strings.Trim(word, "-'")
	for strings.Contains(word, "--") {
		word = strings.ReplaceAll(word, "--", "-")
	}
	// possessive
	word = strings.TrimSuffix(word, "'s")
	return word
}

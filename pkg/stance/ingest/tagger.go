package ingest

import (
	"fmt"
	"strings"

	snowball "github.com/kljensen/snowball/english"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"

	"github.com/cognicore/stance/pkg/stance/lexeme"
	"github.com/cognicore/stance/pkg/stance/lexicon"
)

// Tagger turns text into sentences of (lemma, tag) tokens. Tags follow the
// Penn Treebank convention; only their two-letter prefix matters downstream.
type Tagger interface {
	Tag(text string) ([][]lexeme.Token, error)
}

// TaggerFunc adapts a function to the Tagger interface.
type TaggerFunc func(text string) ([][]lexeme.Token, error)

// Tag calls f(text).
func (f TaggerFunc) Tag(text string) ([][]lexeme.Token, error) {
	return f(text)
}

// SimpleTagger is a dictionary and suffix based tagger for English.
//
// It splits sentences with the Punkt model, looks every form up in the
// lexicon and the closed-class table, and falls back to suffix rules for
// the tag and the Snowball stemmer for the lemma. It is far from a real
// part-of-speech tagger but keeps the four open classes apart well enough
// for word statistics.
type SimpleTagger struct {
	sentences *sentences.DefaultSentenceTokenizer
	lexicon   *lexicon.Lexicon
}

// NewSimpleTagger creates a tagger. lex may be nil.
func NewSimpleTagger(lex *lexicon.Lexicon) (*SimpleTagger, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}
	return &SimpleTagger{sentences: tok, lexicon: lex}, nil
}

// Tag implements Tagger.
func (t *SimpleTagger) Tag(text string) ([][]lexeme.Token, error) {
	var out [][]lexeme.Token
	for _, s := range t.sentences.Tokenize(text) {
		var sentence []lexeme.Token
		for _, form := range SplitWords(s.Text) {
			sentence = append(sentence, t.TagWord(form))
		}
		if len(sentence) > 0 {
			out = append(out, sentence)
		}
	}
	return out, nil
}

// TagWord analyses a single lowercase form.
func (t *SimpleTagger) TagWord(form string) lexeme.Token {
	form = strings.ToLower(form)
	if t.lexicon != nil {
		if e, ok := t.lexicon.Lookup(form); ok {
			if e.Tag == "" {
				return lexeme.Token{Lemma: e.Lemma, Tag: suffixTag(form)}
			}
			return lexeme.Token{Lemma: e.Lemma, Tag: e.Tag}
		}
	}
	if tok, ok := closedClass[form]; ok {
		return tok
	}
	if lexeme.IsNumeric(form) {
		return lexeme.Token{Lemma: form, Tag: "CD"}
	}
	return lexeme.Token{Lemma: stem(form), Tag: suffixTag(form)}
}

// stem reduces a form with the Snowball English stemmer. Short and hyphenated
// forms are kept as they are.
func stem(form string) string {
	if len(form) <= 3 || strings.Contains(form, "-") {
		return form
	}
	if s := snowball.Stem(form, false); s != "" {
		return s
	}
	return form
}

// suffixTag guesses an open-class tag from the word ending.
func suffixTag(form string) string {
	switch {
	case len(form) > 4 && strings.HasSuffix(form, "ly"):
		return "RB"
	case len(form) > 5 && strings.HasSuffix(form, "ing"):
		return "VBG"
	case len(form) > 4 && strings.HasSuffix(form, "ed"):
		return "VBD"
	case len(form) > 4 && strings.HasSuffix(form, "ize"),
		len(form) > 4 && strings.HasSuffix(form, "ise"),
		len(form) > 4 && strings.HasSuffix(form, "ate"):
		return "VB"
	}
	for _, suffix := range adjectiveSuffixes {
		if len(form) > len(suffix)+2 && strings.HasSuffix(form, suffix) {
			return "JJ"
		}
	}
	if len(form) > 3 && strings.HasSuffix(form, "s") && !strings.HasSuffix(form, "ss") {
		return "NNS"
	}
	return "NN"
}

var adjectiveSuffixes = []string{"ous", "ful", "ive", "able", "ible", "less", "ic", "al", "ish"}

// closedClass tags function words and a handful of frequent irregular
// verbs and adjectives the suffix rules get wrong.
var closedClass = buildClosedClass(map[string][]string{
	"DT":   {"the", "a", "an", "this", "that", "these", "those", "every", "each", "some", "any", "no", "all", "both", "either", "neither", "another"},
	"IN":   {"of", "in", "on", "at", "by", "for", "with", "about", "against", "between", "into", "through", "during", "before", "after", "above", "below", "from", "up", "down", "over", "under", "than", "because", "since", "while", "although", "though", "if", "unless", "whether", "as", "like", "per", "upon", "without", "within"},
	"CC":   {"and", "or", "but", "nor", "yet", "so"},
	"PRP":  {"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them", "myself", "yourself", "himself", "herself", "itself", "ourselves", "themselves", "one"},
	"PRP$": {"my", "your", "his", "its", "our", "their", "mine", "yours", "ours", "theirs"},
	"WDT":  {"which", "what", "whatever", "whichever"},
	"WP":   {"who", "whom", "whose", "whoever"},
	"WRB":  {"when", "where", "why", "how"},
	"MD":   {"can", "could", "may", "might", "must", "shall", "should", "will", "would"},
	"TO":   {"to"},
	"EX":   {"there"},
	"UH":   {"oh", "yes", "hey", "wow"},
})

// irregular maps frequent irregular forms to their lemma and tag.
var irregular = map[string]lexeme.Token{
	"is": {Lemma: "be", Tag: "VBZ"}, "are": {Lemma: "be", Tag: "VBP"}, "am": {Lemma: "be", Tag: "VBP"},
	"was": {Lemma: "be", Tag: "VBD"}, "were": {Lemma: "be", Tag: "VBD"}, "be": {Lemma: "be", Tag: "VB"},
	"been": {Lemma: "be", Tag: "VBN"}, "being": {Lemma: "be", Tag: "VBG"},
	"has": {Lemma: "have", Tag: "VBZ"}, "have": {Lemma: "have", Tag: "VBP"}, "had": {Lemma: "have", Tag: "VBD"},
	"do": {Lemma: "do", Tag: "VBP"}, "does": {Lemma: "do", Tag: "VBZ"}, "did": {Lemma: "do", Tag: "VBD"},
	"not": {Lemma: "not", Tag: "RB"}, "never": {Lemma: "never", Tag: "RB"},
	"don't": {Lemma: "not", Tag: "RB"}, "doesn't": {Lemma: "not", Tag: "RB"}, "didn't": {Lemma: "not", Tag: "RB"},
	"isn't": {Lemma: "not", Tag: "RB"}, "wasn't": {Lemma: "not", Tag: "RB"}, "aren't": {Lemma: "not", Tag: "RB"},
	"can't": {Lemma: "not", Tag: "RB"}, "won't": {Lemma: "not", Tag: "RB"}, "shouldn't": {Lemma: "not", Tag: "RB"},
	"very": {Lemma: "very", Tag: "RB"}, "too": {Lemma: "too", Tag: "RB"}, "also": {Lemma: "also", Tag: "RB"},
	"good": {Lemma: "good", Tag: "JJ"}, "better": {Lemma: "good", Tag: "JJR"}, "best": {Lemma: "good", Tag: "JJS"},
	"bad": {Lemma: "bad", Tag: "JJ"}, "worse": {Lemma: "bad", Tag: "JJR"}, "worst": {Lemma: "bad", Tag: "JJS"},
	"great": {Lemma: "great", Tag: "JJ"}, "new": {Lemma: "new", Tag: "JJ"}, "old": {Lemma: "old", Tag: "JJ"},
	"people": {Lemma: "person", Tag: "NNS"}, "children": {Lemma: "child", Tag: "NNS"}, "men": {Lemma: "man", Tag: "NNS"},
	"women": {Lemma: "woman", Tag: "NNS"},
	"made":  {Lemma: "make", Tag: "VBD"}, "said": {Lemma: "say", Tag: "VBD"}, "went": {Lemma: "go", Tag: "VBD"},
	"thought": {Lemma: "think", Tag: "VBD"}, "took": {Lemma: "take", Tag: "VBD"}, "gave": {Lemma: "give", Tag: "VBD"},
}

func buildClosedClass(byTag map[string][]string) map[string]lexeme.Token {
	out := make(map[string]lexeme.Token)
	for tag, words := range byTag {
		for _, w := range words {
			out[w] = lexeme.Token{Lemma: w, Tag: tag}
		}
	}
	for form, tok := range irregular {
		out[form] = tok
	}
	return out
}

// Package lexeme defines the lexical units shared by the corpus, the
// classifiers and the ingestion pipeline.
package lexeme

import (
	"strings"
	"unicode"
)

// POS is the coarse part-of-speech class a tagger tag is reduced to.
type POS int

const (
	Unknown POS = iota
	Noun
	Verb
	Adjective
	Adverb
)

// Classes lists the recognised word classes in display order.
var Classes = []POS{Noun, Verb, Adjective, Adverb}

// POSFromTag maps a raw Penn-style tag to its class by prefix.
// Anything that is not a noun, verb, adjective or adverb is Unknown.
func POSFromTag(tag string) POS {
	switch {
	case strings.HasPrefix(tag, "NN"):
		return Noun
	case strings.HasPrefix(tag, "VB"):
		return Verb
	case strings.HasPrefix(tag, "JJ"):
		return Adjective
	case strings.HasPrefix(tag, "RB"):
		return Adverb
	}
	return Unknown
}

// ParsePOS accepts either the short tag form ("NN") or the class name
// ("noun"), case-insensitively.
func ParsePOS(s string) POS {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nn", "noun":
		return Noun
	case "vb", "verb":
		return Verb
	case "jj", "adjective", "adj":
		return Adjective
	case "rb", "adverb", "adv":
		return Adverb
	}
	return Unknown
}

// String returns the two-letter tag for the class.
func (p POS) String() string {
	switch p {
	case Noun:
		return "NN"
	case Verb:
		return "VB"
	case Adjective:
		return "JJ"
	case Adverb:
		return "RB"
	default:
		return "UN"
	}
}

// IsWord reports whether the class is one of the four recognised ones.
func (p POS) IsWord() bool {
	return p != Unknown
}

// Token is a (lemma, tag) pair as produced by a tagger.
type Token struct {
	Lemma string
	Tag   string
}

// POS returns the class of the token's tag.
func (t Token) POS() POS {
	return POSFromTag(t.Tag)
}

// Identity returns the token's lexical identity.
func (t Token) Identity() Identity {
	return NewIdentity(t.Lemma, t.POS())
}

// IsWord reports whether the token should take part in word statistics:
// a recognised class and a non-numeric, non-empty lemma.
func (t Token) IsWord() bool {
	lemma := Normalize(t.Lemma)
	if lemma == "" || IsNumeric(lemma) {
		return false
	}
	return t.POS().IsWord()
}

// Identity identifies a word for statistical purposes. Two words are the
// same iff lemma and class are equal.
type Identity struct {
	Lemma string
	POS   POS
}

// NewIdentity builds an identity with a normalized lemma.
func NewIdentity(lemma string, pos POS) Identity {
	return Identity{Lemma: Normalize(lemma), POS: pos}
}

// Less orders identities by lemma, then class.
func (id Identity) Less(other Identity) bool {
	if id.Lemma != other.Lemma {
		return id.Lemma < other.Lemma
	}
	return id.POS < other.POS
}

func (id Identity) String() string {
	return id.Lemma + "/" + id.POS.String()
}

// Normalize trims and lowercases a lemma.
func Normalize(lemma string) string {
	return strings.ToLower(strings.TrimSpace(lemma))
}

// IsNumeric returns true if s contains only digits and number punctuation
// and at least one digit.
func IsNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '-' || r == '.' || r == ',' || r == '/' || r == '%' || r == '+':
		default:
			return false
		}
	}
	return digits > 0
}

// Label is the opinion a document expresses.
type Label int

const (
	LabelUnknown Label = iota
	Positive
	Negative
)

func (l Label) String() string {
	switch l {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

// ParseLabel is the inverse of Label.String.
func ParseLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos", "pro":
		return Positive
	case "negative", "neg", "anti":
		return Negative
	}
	return LabelUnknown
}

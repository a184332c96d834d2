package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/stance/pkg/stance/internalerr"
)

// Lexicon maps inflected word forms to their lemma and tag.
//
// It is the curated half of lemmatisation: forms listed here win over any
// stemming fallback, which is where irregular forms belong
// (was → be/VB, better → good/JJ, children → child/NN).
type Lexicon struct {
	// lemma -> all forms (including the lemma itself)
	// Example: "be" -> ["be", "is", "was", "were"]
	forms map[string][]string

	// form -> entry
	// Example: "was" -> {be VB}
	reverseIndex map[string]Entry
}

// Entry is the analysis of a single form.
type Entry struct {
	Lemma string
	Tag   string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		forms:        make(map[string][]string),
		reverseIndex: make(map[string]Entry),
	}
}

// LoadFromYAML loads form groups from a YAML file.
//
// Expected format:
//
//	entries:
//	  - lemma: be
//	    tag: VB
//	    forms: [is, was, were, are, been, being]
//	  - lemma: good
//	    tag: JJ
//	    forms: [better, best]
//
// Forms are case-insensitive. The lemma is a form of itself.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Entries []struct {
			Lemma string   `yaml:"lemma"`
			Tag   string   `yaml:"tag"`
			Forms []string `yaml:"forms"`
		} `yaml:"entries"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	lex := New()
	for i, entry := range config.Entries {
		if strings.TrimSpace(entry.Lemma) == "" {
			return nil, fmt.Errorf("lexicon %s entry %d: empty lemma: %w", path, i+1, internalerr.ErrInvalidInput)
		}
		lex.AddEntry(entry.Lemma, entry.Tag, entry.Forms)
	}
	return lex, nil
}

// AddEntry registers a lemma with its tag and inflected forms. Registering
// the same lemma again replaces its earlier forms.
func (l *Lexicon) AddEntry(lemma, tag string, forms []string) {
	lemma = strings.ToLower(strings.TrimSpace(lemma))
	tag = strings.ToUpper(strings.TrimSpace(tag))

	if old, exists := l.forms[lemma]; exists {
		for _, f := range old {
			delete(l.reverseIndex, f)
		}
	}

	normalized := make([]string, 0, len(forms)+1)
	seen := map[string]bool{lemma: true}
	normalized = append(normalized, lemma)
	for _, f := range forms {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		normalized = append(normalized, f)
		seen[f] = true
	}

	l.forms[lemma] = normalized
	for _, f := range normalized {
		l.reverseIndex[f] = Entry{Lemma: lemma, Tag: tag}
	}
}

// Lookup returns the entry for a form.
func (l *Lexicon) Lookup(form string) (Entry, bool) {
	e, ok := l.reverseIndex[strings.ToLower(form)]
	return e, ok
}

// Normalize returns the lemma of a form, or the form itself when unknown.
func (l *Lexicon) Normalize(form string) string {
	form = strings.ToLower(form)
	if e, ok := l.reverseIndex[form]; ok {
		return e.Lemma
	}
	return form
}

// Forms returns every known form of a lemma or of any of its forms.
func (l *Lexicon) Forms(word string) []string {
	word = strings.ToLower(word)
	if forms, ok := l.forms[word]; ok {
		return forms
	}
	if e, ok := l.reverseIndex[word]; ok {
		return l.forms[e.Lemma]
	}
	return []string{word}
}

// Lemmas returns every lemma, sorted.
func (l *Lexicon) Lemmas() []string {
	out := make([]string, 0, len(l.forms))
	for lemma := range l.forms {
		out = append(out, lemma)
	}
	sort.Strings(out)
	return out
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, forms := range l.forms {
		total += len(forms)
	}
	return Stats{Lemmas: len(l.forms), Forms: total}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Lemmas int // number of lemmas
	Forms  int // number of forms, lemmas included
}

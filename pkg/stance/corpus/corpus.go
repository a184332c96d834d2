// Package corpus holds labelled documents and the corpus-wide word
// statistics derived from them.
package corpus

import (
	"fmt"

	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Filter decides whether a lemma should be dropped from the statistics.
// stoplist.Manager satisfies it.
type Filter interface {
	IsStop(word string) bool
}

// Corpus owns the positive and negative documents and the deduplicated
// records of every word they contain.
type Corpus struct {
	positive []*Document
	negative []*Document

	words []*Record
	index map[lexeme.Identity]*Record

	nextID DocID
}

// New creates an empty corpus.
func New() *Corpus {
	return &Corpus{
		index:  make(map[lexeme.Identity]*Record),
		nextID: 1,
	}
}

// Add builds a document from tokens and appends it to the list of its
// class. Build must be called afterwards to refresh corpus-wide records.
func (c *Corpus) Add(label lexeme.Label, text string, tokens []lexeme.Token) (*Document, error) {
	if label != lexeme.Positive && label != lexeme.Negative {
		return nil, fmt.Errorf("add document labelled %s: %w", label, ErrInvalidLabel)
	}
	doc := NewDocument(c.nextID, text, label, tokens)
	c.nextID++
	if label == lexeme.Positive {
		c.positive = append(c.positive, doc)
	} else {
		c.negative = append(c.negative, doc)
	}
	return doc, nil
}

// Build merges the document-local records of every document into the
// corpus-wide record list. Positive documents are visited first.
func (c *Corpus) Build() {
	agg := newAggregator()
	for _, docs := range [][]*Document{c.positive, c.negative} {
		for _, doc := range docs {
			for _, w := range doc.Words {
				agg.absorb(w)
			}
		}
	}
	c.setWords(agg.records())
}

func (c *Corpus) setWords(words []*Record) {
	c.words = words
	c.index = make(map[lexeme.Identity]*Record, len(words))
	for _, w := range words {
		c.index[w.Identity()] = w
	}
}

// Positive returns the positive documents in load order.
func (c *Corpus) Positive() []*Document { return c.positive }

// Negative returns the negative documents in load order.
func (c *Corpus) Negative() []*Document { return c.negative }

// Documents returns positive then negative documents.
func (c *Corpus) Documents() []*Document {
	all := make([]*Document, 0, len(c.positive)+len(c.negative))
	all = append(all, c.positive...)
	return append(all, c.negative...)
}

// PositiveDocsNumber returns the number of positive documents.
func (c *Corpus) PositiveDocsNumber() int { return len(c.positive) }

// NegativeDocsNumber returns the number of negative documents.
func (c *Corpus) NegativeDocsNumber() int { return len(c.negative) }

// Words returns the corpus-wide records, optionally restricted to classes.
func (c *Corpus) Words(classes ...lexeme.POS) []*Record {
	return filterByPOS(c.words, classes)
}

// Lookup returns the corpus-wide record for an identity.
func (c *Corpus) Lookup(id lexeme.Identity) (*Record, bool) {
	r, ok := c.index[id]
	return r, ok
}

// RemoveSpecialWords drops every word whose lemma the filter rejects, both
// from the corpus-wide list and from each document.
func (c *Corpus) RemoveSpecialWords(filter Filter) {
	if filter == nil {
		return
	}
	for _, doc := range c.Documents() {
		doc.RemoveSpecialWords(filter)
	}
	kept := make([]*Record, 0, len(c.words))
	for _, w := range c.words {
		if !filter.IsStop(w.Lemma()) {
			kept = append(kept, w)
		}
	}
	c.setWords(kept)
}

// RemoveInsignificantWords keeps only corpus-wide records whose total
// frequency exceeds threshold. Documents are left untouched.
func (c *Corpus) RemoveInsignificantWords(threshold int) {
	kept := make([]*Record, 0, len(c.words))
	for _, w := range c.words {
		if w.TotalFrequency() > threshold {
			kept = append(kept, w)
		}
	}
	c.setWords(kept)
}

// Stats summarises the corpus.
type Stats struct {
	PositiveDocs int
	NegativeDocs int
	Vocabulary   int
	Occurrences  int
	ByClass      map[lexeme.POS]int
}

// Stats computes corpus-wide counters over the current record list.
func (c *Corpus) Stats() Stats {
	s := Stats{
		PositiveDocs: len(c.positive),
		NegativeDocs: len(c.negative),
		Vocabulary:   len(c.words),
		ByClass:      make(map[lexeme.POS]int),
	}
	for _, w := range c.words {
		s.Occurrences += w.TotalFrequency()
		s.ByClass[w.POS()]++
	}
	return s
}

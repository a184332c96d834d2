package corpus

import "github.com/cognicore/stance/pkg/stance/lexeme"

// Document is one text with its label and the words it contains.
type Document struct {
	ID    DocID
	Text  string
	Label lexeme.Label

	// Words holds one record per distinct word of this document only,
	// ordered by lemma then class.
	Words []*Record
}

// NewDocument aggregates tokens into document-local records. Tokens that
// are not words (numerals, unrecognised classes) are skipped.
func NewDocument(id DocID, text string, label lexeme.Label, tokens []lexeme.Token) *Document {
	agg := newAggregator()
	for _, tok := range tokens {
		if !tok.IsWord() {
			continue
		}
		agg.observe(tok.Identity(), id, label)
	}
	return &Document{
		ID:    id,
		Text:  text,
		Label: label,
		Words: agg.records(),
	}
}

// WordsOf returns the document's records restricted to the given classes.
// With no classes every word is returned.
func (d *Document) WordsOf(classes ...lexeme.POS) []*Record {
	return filterByPOS(d.Words, classes)
}

// Len returns the number of word occurrences in the document.
func (d *Document) Len() int {
	n := 0
	for _, w := range d.Words {
		n += w.FrequencyIn(d.ID)
	}
	return n
}

// RemoveSpecialWords drops every record whose lemma the filter rejects.
func (d *Document) RemoveSpecialWords(filter Filter) {
	if filter == nil {
		return
	}
	kept := d.Words[:0]
	for _, w := range d.Words {
		if !filter.IsStop(w.Lemma()) {
			kept = append(kept, w)
		}
	}
	d.Words = kept
}

func filterByPOS(records []*Record, classes []lexeme.POS) []*Record {
	if len(classes) == 0 {
		return records
	}
	allowed := make(map[lexeme.POS]struct{}, len(classes))
	for _, c := range classes {
		allowed[c] = struct{}{}
	}
	var out []*Record
	for _, r := range records {
		if _, ok := allowed[r.POS()]; ok {
			out = append(out, r)
		}
	}
	return out
}

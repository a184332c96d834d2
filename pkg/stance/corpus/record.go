package corpus

import (
	"fmt"
	"sort"

	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// DocID identifies a document inside a corpus. IDs are assigned at
// ingestion and never reused; zero marks a document that belongs to no
// corpus (text being classified).
type DocID int64

// Rate is the TF-IDF-like (positive, negative) score of a word.
type Rate struct {
	Positive float64
	Negative float64
}

// Record aggregates the occurrence statistics of one lexical identity.
type Record struct {
	id lexeme.Identity

	positiveFreq  int
	negativeFreq  int
	unlabeledFreq int

	perDoc       map[DocID]int
	positiveDocs map[DocID]struct{}
	negativeDocs map[DocID]struct{}

	rate Rate
}

// NewRecord creates an empty record for the identity.
func NewRecord(id lexeme.Identity) *Record {
	return &Record{
		id:           id,
		perDoc:       make(map[DocID]int),
		positiveDocs: make(map[DocID]struct{}),
		negativeDocs: make(map[DocID]struct{}),
	}
}

// Identity returns the record's lexical identity.
func (r *Record) Identity() lexeme.Identity { return r.id }

// Lemma returns the normalized lemma.
func (r *Record) Lemma() string { return r.id.Lemma }

// POS returns the word class.
func (r *Record) POS() lexeme.POS { return r.id.POS }

// PositiveFrequency is the number of occurrences in positive documents.
func (r *Record) PositiveFrequency() int { return r.positiveFreq }

// NegativeFrequency is the number of occurrences in negative documents.
func (r *Record) NegativeFrequency() int { return r.negativeFreq }

// TotalFrequency counts every occurrence, labelled or not.
func (r *Record) TotalFrequency() int {
	return r.positiveFreq + r.negativeFreq + r.unlabeledFreq
}

// PositiveDocsNumber is the number of positive documents containing the word.
func (r *Record) PositiveDocsNumber() int { return len(r.positiveDocs) }

// NegativeDocsNumber is the number of negative documents containing the word.
func (r *Record) NegativeDocsNumber() int { return len(r.negativeDocs) }

// FrequencyIn returns the occurrence count inside one document.
func (r *Record) FrequencyIn(doc DocID) int { return r.perDoc[doc] }

// Documents returns the ids of every document the word occurs in, sorted.
func (r *Record) Documents() []DocID {
	ids := make([]DocID, 0, len(r.perDoc))
	for id := range r.perDoc {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rate returns the TF-IDF-like scores set by Corpus.MarkTFIDF.
func (r *Record) Rate() Rate { return r.rate }

// AddOccurrence records one occurrence of the word in a document.
func (r *Record) AddOccurrence(doc DocID, label lexeme.Label) {
	r.perDoc[doc]++
	switch label {
	case lexeme.Positive:
		r.positiveDocs[doc] = struct{}{}
		r.positiveFreq++
	case lexeme.Negative:
		r.negativeDocs[doc] = struct{}{}
		r.negativeFreq++
	default:
		r.unlabeledFreq++
	}
}

// CanMerge reports whether both records share a lexical identity.
func (r *Record) CanMerge(other *Record) bool {
	return r.id == other.id
}

// Merge folds other into r. Frequencies are summed, per-document counts are
// summed key-wise and document sets are united.
func (r *Record) Merge(other *Record) error {
	if !r.CanMerge(other) {
		return fmt.Errorf("merge %s with %s: %w", r.id, other.id, ErrIdentityMismatch)
	}
	if r == other {
		return nil
	}

	r.positiveFreq += other.positiveFreq
	r.negativeFreq += other.negativeFreq
	r.unlabeledFreq += other.unlabeledFreq

	for doc, n := range other.perDoc {
		r.perDoc[doc] += n
	}
	for doc := range other.positiveDocs {
		r.positiveDocs[doc] = struct{}{}
	}
	for doc := range other.negativeDocs {
		r.negativeDocs[doc] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := NewRecord(r.id)
	c.positiveFreq = r.positiveFreq
	c.negativeFreq = r.negativeFreq
	c.unlabeledFreq = r.unlabeledFreq
	for doc, n := range r.perDoc {
		c.perDoc[doc] = n
	}
	for doc := range r.positiveDocs {
		c.positiveDocs[doc] = struct{}{}
	}
	for doc := range r.negativeDocs {
		c.negativeDocs[doc] = struct{}{}
	}
	c.rate = r.rate
	return c
}

// SortRecords orders records by lemma, then class.
func SortRecords(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].id.Less(records[j].id)
	})
}

// Dedupe merges adjacent records of equal identity in a single pass. The
// input is expected to be sorted; running it on a deduplicated list returns
// an equal list.
func Dedupe(records []*Record) []*Record {
	if len(records) == 0 {
		return records
	}
	out := make([]*Record, 0, len(records))
	current := records[0]
	for _, next := range records[1:] {
		if current.CanMerge(next) {
			// identities are equal, Merge cannot fail
			_ = current.Merge(next)
			continue
		}
		out = append(out, current)
		current = next
	}
	return append(out, current)
}

// aggregator collects records keyed by identity.
type aggregator struct {
	index map[lexeme.Identity]*Record
	order []*Record
}

func newAggregator() *aggregator {
	return &aggregator{index: make(map[lexeme.Identity]*Record)}
}

// observe counts one token occurrence.
func (a *aggregator) observe(id lexeme.Identity, doc DocID, label lexeme.Label) {
	rec, ok := a.index[id]
	if !ok {
		rec = NewRecord(id)
		a.index[id] = rec
		a.order = append(a.order, rec)
	}
	rec.AddOccurrence(doc, label)
}

// absorb merges a record from another scope. The first record seen for an
// identity is cloned so the caller's record is never mutated.
func (a *aggregator) absorb(rec *Record) {
	if existing, ok := a.index[rec.id]; ok {
		_ = existing.Merge(rec)
		return
	}
	clone := rec.Clone()
	a.index[rec.id] = clone
	a.order = append(a.order, clone)
}

// records returns the aggregated records sorted and passed through Dedupe.
func (a *aggregator) records() []*Record {
	out := make([]*Record, len(a.order))
	copy(out, a.order)
	SortRecords(out)
	return Dedupe(out)
}

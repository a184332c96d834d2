// Package bayes implements the two Naive Bayes opinion classifiers.
//
// Both variants share the same smoothing:
//
//	P(w|c) = f(w,c) / (N_c + V_c)
//
// where N_c is the total frequency mass of class c, V_c the number of
// distinct words seen in c plus one for the unknown word, and f(w,c) the
// frequency of w in c, or 1 when w never occurred in c. The multinomial
// variant counts occurrences; the binary variant counts documents.
package bayes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/stance/pkg/stance/corpus"
	"github.com/cognicore/stance/pkg/stance/internalerr"
	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Variant selects the counting scheme.
type Variant int

const (
	Multinomial Variant = iota
	Binary
)

// Variants lists every supported variant.
var Variants = []Variant{Multinomial, Binary}

func (v Variant) String() string {
	switch v {
	case Multinomial:
		return "multinomial"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "multinomial":
		return Multinomial, nil
	case "binary":
		return Binary, nil
	}
	return 0, fmt.Errorf("parse %q: %w", s, ErrUnknownVariant)
}

func (v Variant) valid() bool {
	return v == Multinomial || v == Binary
}

var (
	ErrUnknownVariant   = fmt.Errorf("%w: unknown naive bayes variant", internalerr.ErrInvalidConfig)
	ErrEmptyTrainingSet = fmt.Errorf("%w: training set is empty", internalerr.ErrInvalidInput)
	ErrNotTrained       = fmt.Errorf("%w: variant has not been trained", internalerr.ErrNotFound)
)

// UnknownWord is the reserved identity under which the unknown-word
// probability is stored. Real words never carry the Unknown class.
var UnknownWord = lexeme.Identity{Lemma: "UNKNOWN_WORD", POS: lexeme.Unknown}

// table is the trained state of one variant. A table is never modified
// after Learn publishes it.
type table struct {
	positive      map[lexeme.Identity]float64
	negative      map[lexeme.Identity]float64
	positivePrior float64
	negativePrior float64
}

// Model holds one probability table set per variant.
//
// Classify only reads. Learn builds a new table and swaps it in, so a
// table observed by a running Classify is never mutated, but Learn and
// Classify must still not run concurrently on the same Model.
type Model struct {
	tables [2]*table
}

// New creates an untrained model.
func New() *Model {
	return &Model{}
}

// Learn trains the given variant, replacing any previous tables for it.
func (m *Model) Learn(positive, negative []*corpus.Document, v Variant) error {
	if !v.valid() {
		return ErrUnknownVariant
	}
	if len(positive) == 0 || len(negative) == 0 {
		return ErrEmptyTrainingSet
	}

	total := float64(len(positive) + len(negative))
	t := &table{
		positive:      make(map[lexeme.Identity]float64),
		negative:      make(map[lexeme.Identity]float64),
		positivePrior: float64(len(positive)) / total,
		negativePrior: float64(len(negative)) / total,
	}

	posFreq := frequencies(positive, v)
	negFreq := frequencies(negative, v)

	posVocab := len(posFreq) + 1 // +1 for the unknown word
	negVocab := len(negFreq) + 1
	posDenom := float64(sum(posFreq) + posVocab)
	negDenom := float64(sum(negFreq) + negVocab)

	for _, freqs := range []map[lexeme.Identity]int{posFreq, negFreq} {
		for id := range freqs {
			if _, done := t.positive[id]; done {
				continue
			}
			t.positive[id] = float64(orOne(posFreq, id)) / posDenom
			t.negative[id] = float64(orOne(negFreq, id)) / negDenom
		}
	}
	t.positive[UnknownWord] = 1 / posDenom
	t.negative[UnknownWord] = 1 / negDenom

	m.tables[v] = t
	return nil
}

// frequencies builds the per-class word frequency table.
func frequencies(docs []*corpus.Document, v Variant) map[lexeme.Identity]int {
	freq := make(map[lexeme.Identity]int)
	for _, doc := range docs {
		for _, w := range doc.Words {
			n := 1
			if v == Multinomial {
				n = w.FrequencyIn(doc.ID)
			}
			freq[w.Identity()] += n
		}
	}
	return freq
}

func orOne(freq map[lexeme.Identity]int, id lexeme.Identity) int {
	if n, ok := freq[id]; ok {
		return n
	}
	return 1
}

func sum(freq map[lexeme.Identity]int) int {
	total := 0
	for _, n := range freq {
		total += n
	}
	return total
}

func (m *Model) table(v Variant) (*table, error) {
	if !v.valid() {
		return nil, ErrUnknownVariant
	}
	t := m.tables[v]
	if t == nil {
		return nil, fmt.Errorf("%s: %w", v, ErrNotTrained)
	}
	return t, nil
}

// Trained reports whether the variant has tables.
func (m *Model) Trained(v Variant) bool {
	return v.valid() && m.tables[v] != nil
}

// Scores returns the log-space scores of a document:
// ln P(pos) + Σ ln P(w|pos) and ln P(neg) + Σ ln P(w|neg) over the
// document's distinct words. Unseen words use the unknown-word probability.
func (m *Model) Scores(doc *corpus.Document, v Variant) (logPositive, logNegative float64, err error) {
	t, err := m.table(v)
	if err != nil {
		return 0, 0, err
	}
	for _, w := range doc.Words {
		id := w.Identity()
		logPositive += math.Log(lookup(t.positive, id))
		logNegative += math.Log(lookup(t.negative, id))
	}
	logPositive += math.Log(t.positivePrior)
	logNegative += math.Log(t.negativePrior)
	return logPositive, logNegative, nil
}

func lookup(probs map[lexeme.Identity]float64, id lexeme.Identity) float64 {
	if p, ok := probs[id]; ok {
		return p
	}
	return probs[UnknownWord]
}

// Classify returns Positive iff the positive log score is strictly greater
// than the negative one. Ties go to Negative.
func (m *Model) Classify(doc *corpus.Document, v Variant) (lexeme.Label, error) {
	logPos, logNeg, err := m.Scores(doc, v)
	if err != nil {
		return lexeme.LabelUnknown, err
	}
	if logPos > logNeg {
		return lexeme.Positive, nil
	}
	return lexeme.Negative, nil
}

// Posterior converts the log scores into normalised class probabilities.
// It is for reporting only; Classify compares raw log scores.
func (m *Model) Posterior(doc *corpus.Document, v Variant) (positive, negative float64, err error) {
	logPos, logNeg, err := m.Scores(doc, v)
	if err != nil {
		return 0, 0, err
	}
	norm := floats.LogSumExp([]float64{logPos, logNeg})
	return math.Exp(logPos - norm), math.Exp(logNeg - norm), nil
}

// Probability returns P(id|label) for the variant, falling back to the
// unknown-word probability when id was not seen in training.
func (m *Model) Probability(id lexeme.Identity, label lexeme.Label, v Variant) (float64, error) {
	t, err := m.table(v)
	if err != nil {
		return 0, err
	}
	switch label {
	case lexeme.Positive:
		return lookup(t.positive, id), nil
	case lexeme.Negative:
		return lookup(t.negative, id), nil
	}
	return 0, fmt.Errorf("probability for label %s: %w", label, internalerr.ErrInvalidInput)
}

// Prior returns P(label) for the variant.
func (m *Model) Prior(label lexeme.Label, v Variant) (float64, error) {
	t, err := m.table(v)
	if err != nil {
		return 0, err
	}
	switch label {
	case lexeme.Positive:
		return t.positivePrior, nil
	case lexeme.Negative:
		return t.negativePrior, nil
	}
	return 0, fmt.Errorf("prior for label %s: %w", label, internalerr.ErrInvalidInput)
}

// Vocabulary returns the number of identities in the variant's tables,
// excluding the unknown word.
func (m *Model) Vocabulary(v Variant) int {
	t, err := m.table(v)
	if err != nil {
		return 0
	}
	return len(t.positive) - 1
}

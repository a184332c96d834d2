package corpus

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cognicore/stance/pkg/stance/lexeme"
	"github.com/cognicore/stance/pkg/stance/stoplist"
)

// MarkTFIDF scores every corpus-wide record:
//
//	idf      = ln(N_neg * max(1, docs_pos(w)) / (N_pos * max(1, docs_neg(w))))
//	positive = freq_pos(w) / max(1, N_pos) * idf
//	negative = freq_neg(w) / max(1, N_neg) * idf
//
// where N_pos and N_neg are the class document counts. Both classes must
// be non-empty.
func (c *Corpus) MarkTFIDF() error {
	posDocs := len(c.positive)
	negDocs := len(c.negative)
	if posDocs == 0 || negDocs == 0 {
		return ErrEmptyClass
	}

	for _, w := range c.words {
		idf := math.Log(
			float64(negDocs*maxInt(1, w.PositiveDocsNumber())) /
				float64(posDocs*maxInt(1, w.NegativeDocsNumber())),
		)
		w.rate = Rate{
			Positive: float64(w.PositiveFrequency()) / float64(maxInt(1, posDocs)) * idf,
			Negative: float64(w.NegativeFrequency()) / float64(maxInt(1, negDocs)) * idf,
		}
	}
	return nil
}

// MarkedWord pairs an identity with a single discriminative mark.
type MarkedWord struct {
	Identity lexeme.Identity
	Mark     float64
}

// MarkedWords returns each record's mark, the mean of its two TF-IDF rates,
// sorted by descending mark then identity. MarkTFIDF must have run.
func (c *Corpus) MarkedWords(classes ...lexeme.POS) []MarkedWord {
	words := c.Words(classes...)
	out := make([]MarkedWord, 0, len(words))
	for _, w := range words {
		r := w.Rate()
		out = append(out, MarkedWord{
			Identity: w.Identity(),
			Mark:     (r.Positive + r.Negative) / 2,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mark != out[j].Mark {
			return out[i].Mark > out[j].Mark
		}
		return out[i].Identity.Less(out[j].Identity)
	})
	return out
}

// StopwordStats aggregates per-lemma document frequency and the entropy of
// the lemma's split between the two classes, normalised to [0,1]. A lemma
// that is frequent and evenly split carries no opinion signal.
func (c *Corpus) StopwordStats() []stoplist.Stats {
	total := len(c.positive) + len(c.negative)
	if total == 0 {
		return nil
	}

	type acc struct {
		docs     map[DocID]struct{}
		pos, neg int
	}
	byLemma := make(map[string]*acc)
	for _, w := range c.words {
		a, ok := byLemma[w.Lemma()]
		if !ok {
			a = &acc{docs: make(map[DocID]struct{})}
			byLemma[w.Lemma()] = a
		}
		for _, id := range w.Documents() {
			a.docs[id] = struct{}{}
		}
		a.pos += w.PositiveFrequency()
		a.neg += w.NegativeFrequency()
	}

	out := make([]stoplist.Stats, 0, len(byLemma))
	for lemma, a := range byLemma {
		df := len(a.docs)
		out = append(out, stoplist.Stats{
			Token:        lemma,
			DF:           int64(df),
			DFPercent:    float64(df) / float64(total) * 100,
			Frequency:    int64(a.pos + a.neg),
			ClassEntropy: classEntropy(a.pos, a.neg),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// classEntropy returns the binary entropy of the class split in bits.
func classEntropy(pos, neg int) float64 {
	n := pos + neg
	if n == 0 {
		return 0
	}
	p := []float64{float64(pos) / float64(n), float64(neg) / float64(n)}
	return stat.Entropy(p) / math.Ln2
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

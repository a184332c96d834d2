package bayes

import (
	"fmt"
	"sort"

	"github.com/cognicore/stance/pkg/stance/internalerr"
	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Entry is one row of an exported probability table.
type Entry struct {
	Identity lexeme.Identity
	Positive float64
	Negative float64
}

// Snapshot is the exported state of one trained variant.
type Snapshot struct {
	Variant       Variant
	PositivePrior float64
	NegativePrior float64
	Entries       []Entry // sorted by identity, unknown word included
}

// Export copies the tables of a trained variant.
func (m *Model) Export(v Variant) (Snapshot, error) {
	t, err := m.table(v)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Variant:       v,
		PositivePrior: t.positivePrior,
		NegativePrior: t.negativePrior,
		Entries:       make([]Entry, 0, len(t.positive)),
	}
	for id, p := range t.positive {
		snap.Entries = append(snap.Entries, Entry{
			Identity: id,
			Positive: p,
			Negative: t.negative[id],
		})
	}
	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Identity.Less(snap.Entries[j].Identity)
	})
	return snap, nil
}

// Import replaces the variant's tables with a snapshot. The snapshot must
// carry the unknown word and probabilities in (0,1].
func (m *Model) Import(snap Snapshot) error {
	if !snap.Variant.valid() {
		return ErrUnknownVariant
	}
	t := &table{
		positive:      make(map[lexeme.Identity]float64, len(snap.Entries)),
		negative:      make(map[lexeme.Identity]float64, len(snap.Entries)),
		positivePrior: snap.PositivePrior,
		negativePrior: snap.NegativePrior,
	}
	for _, e := range snap.Entries {
		if !inUnitRange(e.Positive) || !inUnitRange(e.Negative) {
			return fmt.Errorf("import %s: probability out of range: %w", e.Identity, internalerr.ErrInvalidInput)
		}
		t.positive[e.Identity] = e.Positive
		t.negative[e.Identity] = e.Negative
	}
	if _, ok := t.positive[UnknownWord]; !ok {
		return fmt.Errorf("import %s: missing unknown word: %w", snap.Variant, internalerr.ErrInvalidInput)
	}
	if !inUnitRange(t.positivePrior) || !inUnitRange(t.negativePrior) {
		return fmt.Errorf("import %s: prior out of range: %w", snap.Variant, internalerr.ErrInvalidInput)
	}
	m.tables[snap.Variant] = t
	return nil
}

func inUnitRange(p float64) bool {
	return p > 0 && p <= 1
}

package store

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store is the main interface for persisting trained models, scored words
// and evaluation runs
type Store interface {
	Close() error

	// Models
	SaveModel(ctx context.Context, m Model) error
	LoadModel(ctx context.Context, name, variant string) (Model, bool, error)

	// Words
	UpsertWords(ctx context.Context, words []Word) error
	ReplaceWords(ctx context.Context, words []Word) error
	GetWord(ctx context.Context, lemma, pos string) (Word, bool, error)
	TopWords(ctx context.Context, k int) ([]Word, error)

	// Evaluation runs
	SaveRun(ctx context.Context, r Run) (string, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Special words
	UpsertStoplist(ctx context.Context, tokens []string) error
	Stoplist(ctx context.Context) ([]string, error)
}

// Model is a stored probability table set of one variant.
type Model struct {
	Name          string
	Variant       string
	PositivePrior float64
	NegativePrior float64
	TrainedAt     time.Time
	Entries       []Probability
}

// Probability is one word row of a stored model.
type Probability struct {
	Lemma    string
	POS      string
	Positive float64
	Negative float64
}

// Word is a stored corpus word with its counts and scores.
type Word struct {
	Lemma             string
	POS               string
	PositiveFrequency int64
	NegativeFrequency int64
	PositiveDocs      int64
	NegativeDocs      int64
	PositiveRate      float64
	NegativeRate      float64
}

// Mark is the mean of the two class rates.
func (w Word) Mark() float64 {
	return (w.PositiveRate + w.NegativeRate) / 2
}

// Run is one stored evaluation result. Nil metrics are undefined.
type Run struct {
	ID        string
	CreatedAt time.Time
	Model     string
	Fold      int
	Variant   string
	TP        int
	TN        int
	FP        int
	FN        int
	Accuracy  *float64
	Precision *float64
	Recall    *float64
	F         *float64
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new ULID. IDs created by one process sort by creation
// time.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// SortWords orders words by descending mark, then lemma and class.
func SortWords(words []Word) {
	sort.SliceStable(words, func(i, j int) bool {
		mi, mj := words[i].Mark(), words[j].Mark()
		if mi != mj {
			return mi > mj
		}
		if words[i].Lemma != words[j].Lemma {
			return words[i].Lemma < words[j].Lemma
		}
		return words[i].POS < words[j].POS
	})
}

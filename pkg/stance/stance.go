package stance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/stance/pkg/stance/bayes"
	"github.com/cognicore/stance/pkg/stance/corpus"
	"github.com/cognicore/stance/pkg/stance/eval"
	"github.com/cognicore/stance/pkg/stance/internalerr"
	"github.com/cognicore/stance/pkg/stance/lexeme"
	"github.com/cognicore/stance/pkg/stance/lexicon"
	"github.com/cognicore/stance/pkg/stance/store"
	"github.com/cognicore/stance/pkg/stance/store/memstore"
)

// ErrNoCorpus is returned by operations that need a loaded corpus.
var ErrNoCorpus = fmt.Errorf("%w: no corpus loaded", internalerr.ErrNotFound)

// Engine is the opinion classification facade: it loads a labeled corpus,
// trains both Naive Bayes variants, classifies new text and runs
// cross-validation, persisting results to a store.
type Engine struct {
	mu           sync.RWMutex
	store        store.Store
	analyzer     corpus.Analyzer
	filter       corpus.Filter
	minFrequency int
	modelName    string
	logf         func(format string, args ...any)

	corpus *corpus.Corpus
	model  *bayes.Model
}

// Options configures an Engine
type Options struct {
	Store        store.Store     // nil keeps everything in memory
	Analyzer     corpus.Analyzer // usually an *ingest.Pipeline
	Filter       corpus.Filter   // special words, may be nil
	MinFrequency int             // corpus-wide words at or below this total are dropped
	ModelName    string
	Logf         func(format string, args ...any) // progress lines, may be nil
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	e := &Engine{
		store:        opts.Store,
		analyzer:     opts.Analyzer,
		filter:       opts.Filter,
		minFrequency: opts.MinFrequency,
		modelName:    opts.ModelName,
		logf:         opts.Logf,
		model:        bayes.New(),
	}
	if e.store == nil {
		e.store = memstore.New()
	}
	if e.modelName == "" {
		e.modelName = "default"
	}
	if e.logf == nil {
		e.logf = func(string, ...any) {}
	}
	return e
}

// Close cleanly shuts down the Engine
func (e *Engine) Close() error {
	return e.store.Close()
}

// LoadCorpus reads the two class files, removes special words and rare
// words, and makes the result the engine's corpus.
func (e *Engine) LoadCorpus(ctx context.Context, positivePath, negativePath string) (corpus.Stats, error) {
	if e.analyzer == nil {
		return corpus.Stats{}, fmt.Errorf("load corpus: no analyzer: %w", internalerr.ErrInvalidConfig)
	}
	c, err := corpus.Load(e.analyzer, positivePath, negativePath)
	if err != nil {
		return corpus.Stats{}, err
	}
	e.logf("loaded %d positive and %d negative documents", c.PositiveDocsNumber(), c.NegativeDocsNumber())
	return e.SetCorpus(c), nil
}

// SetCorpus cleans a built corpus the same way LoadCorpus does and makes it
// the engine's corpus.
func (e *Engine) SetCorpus(c *corpus.Corpus) corpus.Stats {
	if e.filter != nil {
		c.RemoveSpecialWords(e.filter)
	}
	c.RemoveInsignificantWords(e.minFrequency)

	e.mu.Lock()
	e.corpus = c
	e.mu.Unlock()

	stats := c.Stats()
	e.logf("corpus vocabulary: %d words, %d occurrences", stats.Vocabulary, stats.Occurrences)
	return stats
}

// Corpus returns the current corpus, or nil.
func (e *Engine) Corpus() *corpus.Corpus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.corpus
}

// TrainReport summarises a training run.
type TrainReport struct {
	PositiveDocs int
	NegativeDocs int
	Vocabulary   map[bayes.Variant]int
	Words        int
	TrainedAt    time.Time
}

// Train learns both variants on the whole corpus, scores the corpus words
// and persists models, words and the special word list.
func (e *Engine) Train(ctx context.Context) (TrainReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.corpus == nil {
		return TrainReport{}, ErrNoCorpus
	}
	c := e.corpus

	model := bayes.New()
	report := TrainReport{
		PositiveDocs: c.PositiveDocsNumber(),
		NegativeDocs: c.NegativeDocsNumber(),
		Vocabulary:   make(map[bayes.Variant]int, len(bayes.Variants)),
		TrainedAt:    time.Now().UTC(),
	}
	for _, v := range bayes.Variants {
		if err := model.Learn(c.Positive(), c.Negative(), v); err != nil {
			return TrainReport{}, fmt.Errorf("train %s: %w", v, err)
		}
		report.Vocabulary[v] = model.Vocabulary(v)
		e.logf("trained %s: %d words", v, report.Vocabulary[v])
	}

	if err := c.MarkTFIDF(); err != nil {
		return TrainReport{}, fmt.Errorf("score words: %w", err)
	}

	for _, v := range bayes.Variants {
		snap, err := model.Export(v)
		if err != nil {
			return TrainReport{}, err
		}
		if err := e.store.SaveModel(ctx, toStoreModel(e.modelName, snap, report.TrainedAt)); err != nil {
			return TrainReport{}, fmt.Errorf("save %s model: %w", v, err)
		}
	}

	words := c.Words()
	rows := make([]store.Word, 0, len(words))
	for _, w := range words {
		rows = append(rows, toStoreWord(w))
	}
	if err := e.store.ReplaceWords(ctx, rows); err != nil {
		return TrainReport{}, fmt.Errorf("save words: %w", err)
	}
	report.Words = len(rows)

	if lister, ok := e.filter.(interface{ All() []string }); ok {
		if err := e.store.UpsertStoplist(ctx, lister.All()); err != nil {
			return TrainReport{}, fmt.Errorf("save stoplist: %w", err)
		}
	}

	e.model = model
	return report, nil
}

// Restore loads the persisted models of both variants into the engine.
func (e *Engine) Restore(ctx context.Context) error {
	model := bayes.New()
	for _, v := range bayes.Variants {
		m, found, err := e.store.LoadModel(ctx, e.modelName, v.String())
		if err != nil {
			return fmt.Errorf("load %s model: %w", v, err)
		}
		if !found {
			return fmt.Errorf("model %q variant %s: %w", e.modelName, v, internalerr.ErrNotFound)
		}
		if err := model.Import(fromStoreModel(m, v)); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.model = model
	e.mu.Unlock()
	return nil
}

// Classification is the verdict on one text.
type Classification struct {
	Label       lexeme.Label
	Variant     bayes.Variant
	LogPositive float64
	LogNegative float64
	Positive    float64 // normalised posterior, for display
	Negative    float64
	Words       int // distinct words that took part
}

// Classify analyses text and labels it with the given variant.
func (e *Engine) Classify(ctx context.Context, text string, v bayes.Variant) (Classification, error) {
	doc, err := e.document(text)
	if err != nil {
		return Classification{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	label, err := e.model.Classify(doc, v)
	if err != nil {
		return Classification{}, err
	}
	logPos, logNeg, err := e.model.Scores(doc, v)
	if err != nil {
		return Classification{}, err
	}
	pos, neg, err := e.model.Posterior(doc, v)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		Label:       label,
		Variant:     v,
		LogPositive: logPos,
		LogNegative: logNeg,
		Positive:    pos,
		Negative:    neg,
		Words:       len(doc.Words),
	}, nil
}

// document turns unseen text into an unlabeled document cleaned like the
// training corpus.
func (e *Engine) document(text string) (*corpus.Document, error) {
	if e.analyzer == nil {
		return nil, fmt.Errorf("classify: no analyzer: %w", internalerr.ErrInvalidConfig)
	}
	tokens, err := e.analyzer.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	doc := corpus.NewDocument(0, text, lexeme.LabelUnknown, tokens)
	if e.filter != nil {
		doc.RemoveSpecialWords(e.filter)
	}
	return doc, nil
}

// Evaluate runs one cross-validation fold and stores its results.
func (e *Engine) Evaluate(ctx context.Context, fold int) (eval.Report, error) {
	c := e.Corpus()
	if c == nil {
		return eval.Report{}, ErrNoCorpus
	}
	report, err := eval.New().Run(c, fold)
	if err != nil {
		return eval.Report{}, err
	}
	if err := e.saveRuns(ctx, report); err != nil {
		return eval.Report{}, err
	}
	return report, nil
}

// CrossValidate runs every fold, stores the results and returns the
// per-variant summaries.
func (e *Engine) CrossValidate(ctx context.Context) ([]eval.Report, []eval.Summary, error) {
	c := e.Corpus()
	if c == nil {
		return nil, nil, ErrNoCorpus
	}
	reports, summaries, err := eval.New().CrossValidate(c)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range reports {
		if err := e.saveRuns(ctx, r); err != nil {
			return nil, nil, err
		}
		e.logf("fold %d done", r.Fold)
	}
	return reports, summaries, nil
}

func (e *Engine) saveRuns(ctx context.Context, r eval.Report) error {
	now := time.Now().UTC()
	for _, res := range r.Results {
		m := res.Metrics
		run := store.Run{
			ID:        store.NewID(),
			CreatedAt: now,
			Model:     e.modelName,
			Fold:      r.Fold,
			Variant:   res.Variant.String(),
			TP:        res.Confusion.TP,
			TN:        res.Confusion.TN,
			FP:        res.Confusion.FP,
			FN:        res.Confusion.FN,
			Accuracy:  ratioPtr(m.Accuracy),
			Precision: ratioPtr(m.Precision),
			Recall:    ratioPtr(m.Recall),
			F:         ratioPtr(m.F),
		}
		if _, err := e.store.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}
	return nil
}

// Dictionary returns the scored corpus words of the given classes. Train
// must have run.
func (e *Engine) Dictionary(classes ...lexeme.POS) (*lexicon.Dictionary, error) {
	c := e.Corpus()
	if c == nil {
		return nil, ErrNoCorpus
	}
	d := lexicon.NewDictionary()
	for _, w := range c.MarkedWords(classes...) {
		d.Set(w.Identity, w.Mark)
	}
	return d, nil
}

// Store returns the engine's store.
func (e *Engine) Store() store.Store { return e.store }

func toStoreModel(name string, snap bayes.Snapshot, trainedAt time.Time) store.Model {
	m := store.Model{
		Name:          name,
		Variant:       snap.Variant.String(),
		PositivePrior: snap.PositivePrior,
		NegativePrior: snap.NegativePrior,
		TrainedAt:     trainedAt,
		Entries:       make([]store.Probability, 0, len(snap.Entries)),
	}
	for _, e := range snap.Entries {
		m.Entries = append(m.Entries, store.Probability{
			Lemma:    e.Identity.Lemma,
			POS:      e.Identity.POS.String(),
			Positive: e.Positive,
			Negative: e.Negative,
		})
	}
	return m
}

func fromStoreModel(m store.Model, v bayes.Variant) bayes.Snapshot {
	snap := bayes.Snapshot{
		Variant:       v,
		PositivePrior: m.PositivePrior,
		NegativePrior: m.NegativePrior,
		Entries:       make([]bayes.Entry, 0, len(m.Entries)),
	}
	for _, e := range m.Entries {
		// lemmas are stored normalized, except the unknown word
		snap.Entries = append(snap.Entries, bayes.Entry{
			Identity: lexeme.Identity{Lemma: e.Lemma, POS: lexeme.ParsePOS(e.POS)},
			Positive: e.Positive,
			Negative: e.Negative,
		})
	}
	return snap
}

func toStoreWord(w *corpus.Record) store.Word {
	r := w.Rate()
	return store.Word{
		Lemma:             w.Lemma(),
		POS:               w.POS().String(),
		PositiveFrequency: int64(w.PositiveFrequency()),
		NegativeFrequency: int64(w.NegativeFrequency()),
		PositiveDocs:      int64(w.PositiveDocsNumber()),
		NegativeDocs:      int64(w.NegativeDocsNumber()),
		PositiveRate:      r.Positive,
		NegativeRate:      r.Negative,
	}
}

func ratioPtr(r eval.Ratio) *float64 {
	if !r.Defined {
		return nil
	}
	v := r.Value
	return &v
}

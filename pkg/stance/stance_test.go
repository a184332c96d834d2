package stance

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/stance/pkg/stance/bayes"
	"github.com/cognicore/stance/pkg/stance/corpus"
	"github.com/cognicore/stance/pkg/stance/internalerr"
	"github.com/cognicore/stance/pkg/stance/lexeme"
	"github.com/cognicore/stance/pkg/stance/stoplist"
	"github.com/cognicore/stance/pkg/stance/store/memstore"
)

// taggedAnalyzer reads "lemma/TAG" fields; untagged words are nouns.
type taggedAnalyzer struct{}

func (taggedAnalyzer) Analyze(text string) ([]lexeme.Token, error) {
	var out []lexeme.Token
	for _, field := range strings.Fields(text) {
		lemma, tag, ok := strings.Cut(field, "/")
		if !ok {
			tag = "NN"
		}
		tok := lexeme.Token{Lemma: lemma, Tag: tag}
		if tok.IsWord() {
			out = append(out, tok)
		}
	}
	return out, nil
}

func buildCorpus(t *testing.T, pos, neg []string) *corpus.Corpus {
	t.Helper()
	a := taggedAnalyzer{}
	c := corpus.New()
	for _, set := range []struct {
		label lexeme.Label
		texts []string
	}{{lexeme.Positive, pos}, {lexeme.Negative, neg}} {
		for _, text := range set.texts {
			tokens, _ := a.Analyze(text)
			if _, err := c.Add(set.label, text, tokens); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}
	}
	c.Build()
	return c
}

func TestEngineTrainAndClassify(t *testing.T) {
	ctx := context.Background()
	e := New(Options{Analyzer: taggedAnalyzer{}})
	defer e.Close()

	e.SetCorpus(buildCorpus(t,
		[]string{"great/JJ film/NN", "great/JJ acting/NN"},
		[]string{"boring/JJ waste/NN", "waste/NN time/NN"},
	))

	report, err := e.Train(ctx)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if report.PositiveDocs != 2 || report.NegativeDocs != 2 {
		t.Errorf("Expected 2/2 documents, got %d/%d", report.PositiveDocs, report.NegativeDocs)
	}
	if report.Vocabulary[bayes.Multinomial] != 6 {
		t.Errorf("Expected vocabulary 6, got %d", report.Vocabulary[bayes.Multinomial])
	}

	// Symmetric scores tie and ties go negative.
	res, err := e.Classify(ctx, "great/JJ waste/NN", bayes.Multinomial)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	want := math.Log(0.25) + math.Log(0.125) + math.Log(0.5)
	if math.Abs(res.LogPositive-want) > 1e-12 {
		t.Errorf("Expected logPositive %.6f, got %.6f", want, res.LogPositive)
	}
	if res.LogPositive != res.LogNegative {
		t.Errorf("Expected tie, got %v vs %v", res.LogPositive, res.LogNegative)
	}
	if res.Label != lexeme.Negative {
		t.Errorf("Expected tie to resolve negative, got %s", res.Label)
	}
	if math.Abs(res.Positive-0.5) > 1e-12 {
		t.Errorf("Expected posterior 0.5 on a tie, got %v", res.Positive)
	}

	res, err = e.Classify(ctx, "great/JJ acting/NN", bayes.Binary)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Label != lexeme.Positive {
		t.Errorf("Expected positive, got %s", res.Label)
	}
}

func TestEngineWithoutCorpus(t *testing.T) {
	ctx := context.Background()
	e := New(Options{Analyzer: taggedAnalyzer{}})

	if _, err := e.Train(ctx); !errors.Is(err, ErrNoCorpus) {
		t.Errorf("Expected ErrNoCorpus from Train, got %v", err)
	}
	if _, err := e.Evaluate(ctx, 0); !errors.Is(err, ErrNoCorpus) {
		t.Errorf("Expected ErrNoCorpus from Evaluate, got %v", err)
	}
	if _, err := e.Classify(ctx, "great", bayes.Binary); !errors.Is(err, bayes.ErrNotTrained) {
		t.Errorf("Expected ErrNotTrained from Classify, got %v", err)
	}
}

func TestEngineTrainEmptyClass(t *testing.T) {
	e := New(Options{Analyzer: taggedAnalyzer{}})
	e.SetCorpus(buildCorpus(t, []string{"good/JJ"}, nil))

	if _, err := e.Train(context.Background()); !errors.Is(err, bayes.ErrEmptyTrainingSet) {
		t.Errorf("Expected ErrEmptyTrainingSet, got %v", err)
	}
}

func TestEngineRestore(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	trainer := New(Options{Store: st, Analyzer: taggedAnalyzer{}, ModelName: "films"})
	trainer.SetCorpus(buildCorpus(t,
		[]string{"superb/JJ cast/NN", "superb/JJ story/NN"},
		[]string{"dull/JJ story/NN", "dull/JJ cast/NN"},
	))
	if _, err := trainer.Train(ctx); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	fresh := New(Options{Store: st, Analyzer: taggedAnalyzer{}, ModelName: "films"})
	if err := fresh.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	for _, v := range bayes.Variants {
		want, err := trainer.Classify(ctx, "superb/JJ unseen/NN", v)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		got, err := fresh.Classify(ctx, "superb/JJ unseen/NN", v)
		if err != nil {
			t.Fatalf("Classify after restore failed: %v", err)
		}
		if got.Label != lexeme.Positive || got.LogPositive != want.LogPositive || got.LogNegative != want.LogNegative {
			t.Errorf("%s: expected %+v after restore, got %+v", v, want, got)
		}
	}

	missing := New(Options{Store: st, Analyzer: taggedAnalyzer{}, ModelName: "other"})
	if err := missing.Restore(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown model, got %v", err)
	}
}

func TestEngineSpecialWords(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	filter := stoplist.NewManager([]string{"film"})

	e := New(Options{Store: st, Analyzer: taggedAnalyzer{}, Filter: filter})
	e.SetCorpus(buildCorpus(t,
		[]string{"great/JJ film/NN", "great/JJ film/NN"},
		[]string{"awful/JJ film/NN", "awful/JJ plot/NN"},
	))

	if _, ok := e.Corpus().Lookup(lexeme.NewIdentity("film", lexeme.Noun)); ok {
		t.Error("Expected 'film' to be removed from the corpus")
	}
	if _, err := e.Train(ctx); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	stops, err := st.Stoplist(ctx)
	if err != nil || len(stops) != 1 || stops[0] != "film" {
		t.Errorf("Expected stored stoplist [film], got %v (err=%v)", stops, err)
	}

	res, err := e.Classify(ctx, "film/NN film/NN", bayes.Multinomial)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Words != 0 {
		t.Errorf("Expected special words to be dropped at classification, got %d words", res.Words)
	}

	words, err := st.TopWords(ctx, 0)
	if err != nil {
		t.Fatalf("TopWords failed: %v", err)
	}
	if len(words) != 3 {
		t.Errorf("Expected 3 stored words, got %d: %v", len(words), words)
	}
}

func TestEngineMinFrequency(t *testing.T) {
	e := New(Options{Analyzer: taggedAnalyzer{}, MinFrequency: 1})
	stats := e.SetCorpus(buildCorpus(t,
		[]string{"good/JJ good/JJ rare/JJ"},
		[]string{"bad/JJ bad/JJ"},
	))

	if stats.Vocabulary != 2 {
		t.Errorf("Expected 2 words above the threshold, got %d", stats.Vocabulary)
	}
}

func TestEngineCrossValidate(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	e := New(Options{Store: st, Analyzer: taggedAnalyzer{}})

	var pos, neg []string
	for i := 0; i < 5; i++ {
		pos = append(pos, "excellent/JJ brilliant/JJ story/NN")
		neg = append(neg, "terrible/JJ dreadful/JJ story/NN")
	}
	e.SetCorpus(buildCorpus(t, pos, neg))

	reports, summaries, err := e.CrossValidate(ctx)
	if err != nil {
		t.Fatalf("CrossValidate failed: %v", err)
	}
	if len(reports) != 5 {
		t.Fatalf("Expected 5 fold reports, got %d", len(reports))
	}
	for _, s := range summaries {
		if s.MeanAccuracy != 1 {
			t.Errorf("%s: expected perfect accuracy, got %v", s.Name, s.MeanAccuracy)
		}
		if s.Confusion.Total() != 10 {
			t.Errorf("%s: expected 10 classified documents, got %d", s.Name, s.Confusion.Total())
		}
	}

	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 10 {
		t.Errorf("Expected 10 stored runs (5 folds x 2 variants), got %d", len(runs))
	}

	if _, err := e.Evaluate(ctx, 5); err == nil {
		t.Error("Expected error for fold 5")
	}
}

func TestEngineLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	posPath := filepath.Join(dir, "pro.txt")
	negPath := filepath.Join(dir, "anti.txt")
	if err := os.WriteFile(posPath, []byte("Document Number: 1\ngood/JJ\nDocument Number: 2\nfine/JJ\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(negPath, []byte("Document Number: 1\nbad/JJ\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var lines []string
	e := New(Options{
		Analyzer: taggedAnalyzer{},
		Logf: func(format string, args ...any) {
			lines = append(lines, format)
		},
	})
	stats, err := e.LoadCorpus(context.Background(), posPath, negPath)
	if err != nil {
		t.Fatalf("LoadCorpus failed: %v", err)
	}
	if stats.PositiveDocs != 2 || stats.NegativeDocs != 1 || stats.Vocabulary != 3 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if len(lines) == 0 {
		t.Error("Expected progress lines")
	}

	if _, err := e.LoadCorpus(context.Background(), posPath, filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
	if e.Corpus().PositiveDocsNumber() != 2 {
		t.Error("Expected failed load to leave the corpus unchanged")
	}
}

func TestEngineDictionary(t *testing.T) {
	e := New(Options{Analyzer: taggedAnalyzer{}})
	if _, err := e.Dictionary(); !errors.Is(err, ErrNoCorpus) {
		t.Errorf("Expected ErrNoCorpus, got %v", err)
	}

	e.SetCorpus(buildCorpus(t,
		[]string{"great/JJ plot/NN", "great/JJ cast/NN"},
		[]string{"awful/JJ plot/NN", "dull/JJ plot/NN"},
	))
	if _, err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	d, err := e.Dictionary(lexeme.Adjective)
	if err != nil {
		t.Fatalf("Dictionary failed: %v", err)
	}
	if d.Len() != 3 {
		t.Errorf("Expected 3 adjectives, got %d", d.Len())
	}
	mark, ok := d.Mark(lexeme.NewIdentity("great", lexeme.Adjective))
	if !ok {
		t.Fatal("Expected 'great' in the dictionary")
	}
	// idf = ln(2*2 / (2*1)), positive rate = 2/2 * idf, negative rate = 0
	want := math.Log(2) / 2
	if math.Abs(mark-want) > 1e-12 {
		t.Errorf("Expected mark %v, got %v", want, mark)
	}
}

func TestEngineRetrainReplacesWords(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	e := New(Options{Store: st, Analyzer: taggedAnalyzer{}})
	defer e.Close()

	e.SetCorpus(buildCorpus(t, []string{"great/JJ film/NN"}, []string{"boring/JJ film/NN"}))
	if _, err := e.Train(ctx); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	e.SetCorpus(buildCorpus(t, []string{"wonderful/JJ"}, []string{"awful/JJ"}))
	if _, err := e.Train(ctx); err != nil {
		t.Fatalf("Retrain failed: %v", err)
	}

	words, err := st.TopWords(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 {
		t.Errorf("Expected 2 stored words after retrain, got %d: %v", len(words), words)
	}
	if _, found, _ := st.GetWord(ctx, "film", "NN"); found {
		t.Error("Expected film/NN from the previous corpus to be gone")
	}
}

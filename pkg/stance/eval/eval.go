// Package eval measures the Naive Bayes variants with folded
// cross-validation.
package eval

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/cognicore/stance/pkg/stance/bayes"
	"github.com/cognicore/stance/pkg/stance/corpus"
)

// Result is the outcome of one variant on one fold.
type Result struct {
	Variant   bayes.Variant `json:"-"`
	Name      string        `json:"variant"`
	Confusion Confusion     `json:"confusion"`
	Metrics   Metrics       `json:"metrics"`
}

// Report holds every variant's result for one fold.
type Report struct {
	Fold          int      `json:"fold"`
	TrainPositive int      `json:"train_positive"`
	TrainNegative int      `json:"train_negative"`
	TestPositive  int      `json:"test_positive"`
	TestNegative  int      `json:"test_negative"`
	Results       []Result `json:"results"`
}

// Result returns the entry for a variant.
func (r Report) Result(v bayes.Variant) (Result, bool) {
	for _, res := range r.Results {
		if res.Variant == v {
			return res, true
		}
	}
	return Result{}, false
}

// Evaluator trains and tests the variants on folds of a corpus.
type Evaluator struct {
	variants []bayes.Variant
}

// New creates an evaluator for the given variants, or both when none are
// given.
func New(variants ...bayes.Variant) *Evaluator {
	if len(variants) == 0 {
		variants = bayes.Variants
	}
	return &Evaluator{variants: variants}
}

// Run holds out fold k of each class, trains every variant on the rest and
// classifies the held-out documents. All variants see the same slices.
func (e *Evaluator) Run(c *corpus.Corpus, k int) (Report, error) {
	posTrain, posTest, err := Split(c.Positive(), k)
	if err != nil {
		return Report{}, err
	}
	negTrain, negTest, err := Split(c.Negative(), k)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Fold:          k,
		TrainPositive: len(posTrain),
		TrainNegative: len(negTrain),
		TestPositive:  len(posTest),
		TestNegative:  len(negTest),
	}

	for _, v := range e.variants {
		model := bayes.New()
		if err := model.Learn(posTrain, negTrain, v); err != nil {
			return Report{}, fmt.Errorf("fold %d %s: %w", k, v, err)
		}
		var conf Confusion
		for _, docs := range [][]*corpus.Document{posTest, negTest} {
			for _, doc := range docs {
				predicted, err := model.Classify(doc, v)
				if err != nil {
					return Report{}, fmt.Errorf("fold %d %s: %w", k, v, err)
				}
				conf.Observe(doc.Label, predicted)
			}
		}
		report.Results = append(report.Results, Result{
			Variant:   v,
			Name:      v.String(),
			Confusion: conf,
			Metrics:   conf.Metrics(),
		})
	}
	return report, nil
}

// Summary aggregates one variant over every fold.
type Summary struct {
	Variant      bayes.Variant `json:"-"`
	Name         string        `json:"variant"`
	Confusion    Confusion     `json:"confusion"`
	MeanAccuracy float64       `json:"mean_accuracy"`
	StdAccuracy  float64       `json:"std_accuracy"`
	MeanF        Ratio         `json:"mean_f_measure"`
	DefinedF     int           `json:"defined_f_folds"`
}

// CrossValidate runs every fold and summarises each variant. Folds whose
// F-measure is undefined are left out of the F mean.
func (e *Evaluator) CrossValidate(c *corpus.Corpus) ([]Report, []Summary, error) {
	reports := make([]Report, 0, Folds)
	for k := 0; k < Folds; k++ {
		r, err := e.Run(c, k)
		if err != nil {
			return nil, nil, err
		}
		reports = append(reports, r)
	}
	return reports, Summarize(reports, e.variants), nil
}

// Summarize folds per-fold reports into one summary per variant.
func Summarize(reports []Report, variants []bayes.Variant) []Summary {
	out := make([]Summary, 0, len(variants))
	for _, v := range variants {
		s := Summary{Variant: v, Name: v.String()}
		var acc, fs []float64
		for _, r := range reports {
			res, ok := r.Result(v)
			if !ok {
				continue
			}
			s.Confusion.TP += res.Confusion.TP
			s.Confusion.TN += res.Confusion.TN
			s.Confusion.FP += res.Confusion.FP
			s.Confusion.FN += res.Confusion.FN
			if res.Metrics.Accuracy.Defined {
				acc = append(acc, res.Metrics.Accuracy.Value)
			}
			if res.Metrics.F.Defined {
				fs = append(fs, res.Metrics.F.Value)
			}
		}
		if len(acc) > 0 {
			s.MeanAccuracy, s.StdAccuracy = stat.MeanStdDev(acc, nil)
		}
		if len(fs) > 0 {
			s.MeanF = Ratio{Value: stat.Mean(fs, nil), Defined: true}
		}
		s.DefinedF = len(fs)
		out = append(out, s)
	}
	return out
}

package eval

import (
	"encoding/json"
	"strconv"

	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Ratio is a metric value that may be undefined because its denominator
// was zero.
type Ratio struct {
	Value   float64
	Defined bool
}

func ratio(num, denom float64) Ratio {
	if denom == 0 {
		return Ratio{}
	}
	return Ratio{Value: num / denom, Defined: true}
}

func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.Value, 'f', 4, 64)
}

// MarshalJSON renders undefined ratios as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// Confusion counts outcomes with Positive as the designated positive class.
type Confusion struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Observe records one prediction against its ground truth.
func (c *Confusion) Observe(truth, predicted lexeme.Label) {
	switch {
	case truth == lexeme.Positive && predicted == lexeme.Positive:
		c.TP++
	case truth == lexeme.Positive:
		c.FN++
	case predicted == lexeme.Positive:
		c.FP++
	default:
		c.TN++
	}
}

// Total returns the number of observations.
func (c Confusion) Total() int {
	return c.TP + c.TN + c.FP + c.FN
}

// Metrics are the summary scores of one confusion matrix.
type Metrics struct {
	Accuracy  Ratio `json:"accuracy"`
	Precision Ratio `json:"precision"`
	Recall    Ratio `json:"recall"`
	F         Ratio `json:"f_measure"`
}

// Metrics computes accuracy, precision, recall and F-measure. Precision is
// undefined without positive predictions, recall without positive truth,
// and F whenever either is undefined or both are zero.
func (c Confusion) Metrics() Metrics {
	tp, tn, fp, fn := float64(c.TP), float64(c.TN), float64(c.FP), float64(c.FN)
	m := Metrics{
		Accuracy:  ratio(tp+tn, tp+tn+fp+fn),
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
	}
	if m.Precision.Defined && m.Recall.Defined {
		p, r := m.Precision.Value, m.Recall.Value
		m.F = ratio(2*p*r, p+r)
	}
	return m
}

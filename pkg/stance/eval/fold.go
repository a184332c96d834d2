package eval

import (
	"fmt"

	"github.com/cognicore/stance/pkg/stance/internalerr"
)

// Folds is the number of cross-validation rounds; each test slice holds a
// fifth of every class.
const Folds = 5

// ErrInvalidFold is returned for fold indexes outside [0, Folds).
var ErrInvalidFold = fmt.Errorf("%w: fold index out of range", internalerr.ErrInvalidInput)

// Fold returns the half-open test range [start, end) of fold k over n
// documents: start = trunc(k*n/5), end = trunc((k+1)*n/5). Folds 0..4
// partition [0, n).
func Fold(n, k int) (start, end int, err error) {
	if k < 0 || k >= Folds {
		return 0, 0, fmt.Errorf("fold %d: %w", k, ErrInvalidFold)
	}
	return k * n / Folds, (k + 1) * n / Folds, nil
}

// Split separates items into the training and test slices of fold k.
// The input is not modified.
func Split[T any](items []T, k int) (train, test []T, err error) {
	start, end, err := Fold(len(items), k)
	if err != nil {
		return nil, nil, err
	}
	train = make([]T, 0, len(items)-(end-start))
	train = append(train, items[:start]...)
	train = append(train, items[end:]...)
	test = make([]T, end-start)
	copy(test, items[start:end])
	return train, test, nil
}

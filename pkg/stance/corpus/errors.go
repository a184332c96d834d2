package corpus

import (
	"fmt"

	"github.com/cognicore/stance/pkg/stance/internalerr"
)

var (
	// ErrIdentityMismatch is returned when merging records of different words.
	ErrIdentityMismatch = fmt.Errorf("%w: lexical identities differ", internalerr.ErrInvalidInput)

	// ErrEmptyClass is returned when an operation needs documents of both
	// classes and one of them has none.
	ErrEmptyClass = fmt.Errorf("%w: class has no documents", internalerr.ErrInvalidInput)

	// ErrInvalidLabel is returned when a corpus document is neither
	// positive nor negative.
	ErrInvalidLabel = fmt.Errorf("%w: document label must be positive or negative", internalerr.ErrInvalidInput)
)

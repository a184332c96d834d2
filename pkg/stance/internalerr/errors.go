// Package internalerr holds the error kinds shared across stance packages.
// Package errors wrap one of these so callers can branch with errors.Is.
package internalerr

import "errors"

var (
	// ErrNotFound: a model, word, corpus or trained variant is missing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: malformed documents, labels, tables or fold indexes.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable: the backing database could not be opened or queried.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidConfig: bad configuration values or missing required files.
	ErrInvalidConfig = errors.New("invalid configuration")
)

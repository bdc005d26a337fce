package errors

import (
	"github.com/gostdlib/base/errors"
)

// Wrappers around the stdlib errors package so callers only import one errors package.

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join returns an error that wraps the given errors. Any nil error values are discarded.
// Join returns nil if every value in errs is nil.
func Join(err ...error) error {
	return errors.Join(err...)
}

package analysis

import (
	"errors"
	"fmt"
)

// ErrNoDataset is returned by operations that need a loaded dataset.
var ErrNoDataset = errors.New("no dataset loaded")

// LoadError reports a failed load. The previously loaded dataset, if any, is untouched.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InsufficientColumnsError is an advisory refusal: fewer numeric columns than the
// operation needs.
type InsufficientColumnsError struct {
	Need int
	Have int
}

func (e *InsufficientColumnsError) Error() string {
	return fmt.Sprintf("not enough numeric columns: need at least %d, have %d", e.Need, e.Have)
}

// InvalidColumnError is returned when a named column is absent or not numeric.
type InvalidColumnError struct {
	Column string
	Reason string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid column %q: %s", e.Column, e.Reason)
}

// IsAdvisory reports whether err is a refusal the user can fix without reloading
// (missing dataset, too few numeric columns, bad column choice).
func IsAdvisory(err error) bool {
	if errors.Is(err, ErrNoDataset) {
		return true
	}
	var ice *InsufficientColumnsError
	if errors.As(err, &ice) {
		return true
	}
	var ive *InvalidColumnError
	return errors.As(err, &ive)
}

func loadErr(path, format string, args ...any) *LoadError {
	return &LoadError{Path: path, Err: fmt.Errorf(format, args...)}
}

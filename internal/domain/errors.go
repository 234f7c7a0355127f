package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entry id is absent from a locale set.
var ErrNotFound = errors.New("entry not found")

// ErrUnsupportedLocale is matched by every *LocaleError.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// LocaleError carries the rejected locale value.
type LocaleError struct {
	Value string
}

func (e *LocaleError) Error() string {
	return fmt.Sprintf("unsupported locale %q", e.Value)
}

func (e *LocaleError) Is(target error) bool { return target == ErrUnsupportedLocale }

// ConflictError is returned when a submission duplicates a kept entry.
type ConflictError struct {
	ExistingID string
	SourceURL  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("server already exists: %s (id %s)", e.SourceURL, e.ExistingID)
}

// RejectedError is returned when a submission fails validation.
// Reason is shown to the user as-is.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

// Rejected builds a *RejectedError.
func Rejected(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

package convert

import (
	"errors"
	"fmt"
)

// Skip marks a record that should be dropped without further notice.
type Skip struct {
	err error
}

func (s Skip) Error() string {
	return s.err.Error()
}

func (s Skip) Unwrap() error {
	return s.err
}

var (
	ErrNoJournalRef   = errors.New("no journal-ref")
	ErrNoYear         = errors.New("no year in journal-ref")
	ErrYearOutOfRange = errors.New("year out of range")
	ErrMissingField   = errors.New("missing or invalid required field")
)

// skipf wraps a cause into a Skip, keeping the sentinel reachable for
// errors.Is.
func skipf(sentinel error, format string, args ...interface{}) Skip {
	return Skip{err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}

// IsSkip returns true, if the error signals a record to be dropped.
func IsSkip(err error) bool {
	var s Skip
	return errors.As(err, &s)
}

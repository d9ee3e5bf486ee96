package mmcore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mmcore/blobstore"
)

var (
	// ErrSourceNotFound is returned when neither the virtual sources nor the
	// store hold the requested name.
	ErrSourceNotFound = errors.New("source not found")

	// ErrClosed is returned by operations on a closed Session or Database.
	ErrClosed = errors.New("session closed")
)

// SourceError reports a failure to load a named source.
//
// The original underlying error can be accessed via errors.Unwrap.
type SourceError struct {
	Name  string
	cause error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Name, e.cause)
}

func (e *SourceError) Unwrap() error { return e.cause }

func translateError(name string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return &SourceError{Name: name, cause: fmt.Errorf("%w: %w", ErrSourceNotFound, err)}
	}

	return &SourceError{Name: name, cause: err}
}

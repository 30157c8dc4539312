package analyzer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyText rejects utterances that are blank after trimming.
	ErrEmptyText = errors.New("utterance text is empty")

	// ErrNoThemes rejects analysis without candidate context labels.
	ErrNoThemes = errors.New("candidate theme set is empty")
)

// ClassifierError means one of the sub-classifiers failed or timed out.
// The whole turn is discarded; there is never a partial analysis.
type ClassifierError struct {
	Classifier string
	Err        error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("%s classifier unavailable: %v", e.Classifier, e.Err)
}

func (e *ClassifierError) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedCorpus indicates a structural defect in the raw corpus.
var ErrMalformedCorpus = errors.New("malformed corpus")

// MalformedCorpusError carries the location of a corpus structure defect.
// An entry-level defect skips that entry; a syntax-level defect ends the
// stream.
type MalformedCorpusError struct {
	PeriodKey string
	Index     int
	Reason    string
}

func (e MalformedCorpusError) Error() string {
	if e.PeriodKey == "" {
		return fmt.Sprintf("malformed corpus: %s", e.Reason)
	}
	return fmt.Sprintf("malformed corpus: period %s, record %d: %s", e.PeriodKey, e.Index, e.Reason)
}

func (e MalformedCorpusError) Is(target error) bool {
	return target == ErrMalformedCorpus
}

// ErrRunNotFound indicates a run ID absent from the run store.
var ErrRunNotFound = errors.New("run not found")

// ErrMissingSentimentField indicates a partially present sentiment structure.
var ErrMissingSentimentField = errors.New("missing sentiment field")

// MissingSentimentFieldError reports which of the four required sentiment
// keys was absent. Partial presence is corrupt input, not tolerated.
type MissingSentimentFieldError struct {
	Field string
}

func (e MissingSentimentFieldError) Error() string {
	return fmt.Sprintf("sentiment structure missing %q field", e.Field)
}

func (e MissingSentimentFieldError) Is(target error) bool {
	return target == ErrMissingSentimentField
}

// RecordError is a per-record failure collected into the run report instead
// of aborting the run.
type RecordError struct {
	PeriodKey string
	Title     string
	Artist    string
	Err       error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("period %s: %q by %q: %v", e.PeriodKey, e.Title, e.Artist, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Kind names the error category for reporting.
func (e RecordError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrMissingSentimentField):
		return "missing_sentiment_field"
	case errors.Is(e.Err, ErrMalformedCorpus):
		return "malformed_corpus"
	default:
		return "unknown"
	}
}

package readinglog

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an ingestion failure so that callers can react to the
// specific cause instead of a generic error string.
type ErrorKind string

const (
	KindInvalidURL           ErrorKind = "invalid_url"
	KindUnreachable          ErrorKind = "unreachable"
	KindContentTooLarge      ErrorKind = "content_too_large"
	KindNoExtractableContent ErrorKind = "no_extractable_content"
	KindUnreadable           ErrorKind = "unreadable"
	KindSummarizationFailed  ErrorKind = "summarization_failed"
	KindTaggingFailed        ErrorKind = "tagging_failed"
	KindDuplicateURL         ErrorKind = "duplicate_url"
	KindInvalidRating        ErrorKind = "invalid_rating"
	KindNotFound             ErrorKind = "not_found"
)

// IngestError is a typed pipeline failure. Transient errors may be retried by
// the orchestrator; everything else short-circuits the pipeline.
type IngestError struct {
	Kind      ErrorKind
	Stage     string // pipeline stage that produced the error
	Transient bool
	Err       error
}

func (e *IngestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is makes IngestError values comparable by kind via errors.Is.
func (e *IngestError) Is(target error) bool {
	var other *IngestError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf returns the error kind of err, or an empty kind for untyped errors.
func KindOf(err error) ErrorKind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsTransient reports whether err is a retryable pipeline failure.
func IsTransient(err error) bool {
	var ie *IngestError
	return errors.As(err, &ie) && ie.Transient
}

// Sentinel repository errors. Implementations wrap these so callers can test
// with errors.Is without depending on a concrete backend.
var (
	ErrDuplicateURL  = &IngestError{Kind: KindDuplicateURL, Stage: "persist"}
	ErrInvalidRating = &IngestError{Kind: KindInvalidRating, Stage: "update"}
	ErrNotFound      = &IngestError{Kind: KindNotFound, Stage: "lookup"}
)

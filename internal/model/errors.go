package model

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Per-industry failure classes. All of them are recoverable: the insight job
// records them in the industry's outcome and moves on.
var (
	ErrAIRequestFailure    = errors.New("ai request failed")
	ErrMalformedAIResponse = errors.New("malformed ai response")
	ErrStoreWrite          = errors.New("store write failed")
	ErrWriteConflict       = errors.New("write conflict")
	ErrInsightNotFound     = errors.New("insight not found")
	ErrProfileNotFound     = errors.New("profile not found")
)

// ErrorKind is the stable label attached to a failed JobRunOutcome.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindAIRequest         ErrorKind = "ai_request"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindStoreWrite        ErrorKind = "store_write"
	KindCancelled         ErrorKind = "cancelled"
	KindUnknown           ErrorKind = "unknown"
)

// Classify maps err onto an ErrorKind. Sentinels win over a context error
// wrapped beneath them, so a provider timeout stays an ai_request failure.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMalformedAIResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrAIRequestFailure):
		return KindAIRequest
	case errors.Is(err, ErrStoreWrite), errors.Is(err, ErrWriteConflict):
		return KindStoreWrite
	case isContextErr(err):
		return KindCancelled
	}
	return KindUnknown
}

// ClassifyRun classifies err against the run that produced it. A context
// error counts as cancelled only when ctx itself is done; otherwise it came
// from a per-request deadline and is classified like any other failure.
func ClassifyRun(ctx context.Context, err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if ctx.Err() != nil && isContextErr(err) {
		return KindCancelled
	}
	kind := Classify(err)
	if kind == KindCancelled {
		return KindUnknown
	}
	return kind
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

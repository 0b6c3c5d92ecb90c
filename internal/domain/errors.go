package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrMissingCredential = errors.New("missing credential")
	ErrModelRefusal      = errors.New("model refusal")
	ErrEmptyResponse     = errors.New("empty response")
	ErrBackendFailure    = errors.New("backend failure")
	ErrSessionBusy       = errors.New("session busy")
	ErrNotFound          = errors.New("not found")
)

// RefusalError carries the backend's refusal text verbatim so callers can show
// the user why no image came back. errors.Is(err, ErrModelRefusal) matches.
type RefusalError struct {
	Detail string
}

func (e *RefusalError) Error() string {
	if e.Detail == "" {
		return ErrModelRefusal.Error()
	}
	return fmt.Sprintf("model refusal: %s", e.Detail)
}

func (e *RefusalError) Unwrap() error { return ErrModelRefusal }

// RefusalDetail extracts the refusal text from an error chain, if present.
func RefusalDetail(err error) string {
	var refusal *RefusalError
	if errors.As(err, &refusal) {
		return refusal.Detail
	}
	return ""
}

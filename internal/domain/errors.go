package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognized means no classification rule matched the code.
	ErrUnrecognized = errors.New("unrecognized code")
	// ErrMalformed means a rule's prefix matched but its delimiters or
	// fields were missing.
	ErrMalformed = errors.New("malformed code")
	// ErrSpeaker means the speaker API answered with an error status.
	ErrSpeaker = errors.New("speaker api error")
	// ErrStateUnavailable means a persisted state file could not be used.
	ErrStateUnavailable = errors.New("state unavailable")
)

type ClassificationError struct {
	Code   string
	Rule   string
	Reason string
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Code)
	}
	return fmt.Sprintf("%v: %s: %s: %q", e.Err, e.Rule, e.Reason, e.Code)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

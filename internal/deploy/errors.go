package deploy

import (
	"fmt"
	"strings"
)

// ErrorKind tells the caller how to react to a failed attempt.
type ErrorKind string

const (
	// KindInput: the operator must change the configuration or candidate.
	KindInput ErrorKind = "input"
	// KindConflict: the name is reserved or claimed; pick another.
	KindConflict ErrorKind = "conflict"
	// KindTransient: storage or network failure; retry the whole attempt.
	KindTransient ErrorKind = "transient"
	// KindAbandoned: the caller went away before the commit.
	KindAbandoned ErrorKind = "abandoned"
	// KindBusy: another attempt for the same configuration is running.
	KindBusy ErrorKind = "busy"
)

// Reasons reported alongside an Error.
const (
	ReasonNotFound        = "not_found"
	ReasonOwnerMismatch   = "owner_mismatch"
	ReasonMissingName     = "missing_business_name"
	ReasonMissingTemplate = "missing_template"
	ReasonInvalid         = "invalid"
	ReasonReserved        = "reserved"
	ReasonTaken           = "taken"
	ReasonStorage         = "storage"
	ReasonRouting         = "routing"
	ReasonAbandoned       = "abandoned"
	ReasonBusy            = "busy"
)

// Error is the terminal failure of an attempt.
type Error struct {
	Stage       Stage     `json:"stage"`
	Kind        ErrorKind `json:"kind"`
	Reason      string    `json:"reason"`
	Message     string    `json:"message"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Err         error     `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "publish failed at %s (%s/%s): %s", e.Stage, e.Kind, e.Reason, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same request may succeed when run again.
// Retries always start over at validating.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransient, KindAbandoned, KindBusy:
		return true
	}
	return false
}

func inputError(stage Stage, reason, msg string) *Error {
	return &Error{Stage: stage, Kind: KindInput, Reason: reason, Message: msg}
}

func conflictError(stage Stage, reason, msg string, suggestions []string) *Error {
	return &Error{Stage: stage, Kind: KindConflict, Reason: reason, Message: msg, Suggestions: suggestions}
}

func transientError(stage Stage, reason, msg string, err error) *Error {
	return &Error{Stage: stage, Kind: KindTransient, Reason: reason, Message: msg, Err: err}
}

package pipeline

import (
	"fmt"
)

// Kind classifies a stage failure. Inference and parse problems never
// surface here: they degrade through the fallback tiers inside the
// mapper and generator instead of failing the stage.
type Kind string

const (
	ValidationFailure   Kind = "validation"
	ExtractionFailure   Kind = "extraction"
	PersistenceFailure  Kind = "persistence"
	NotificationFailure Kind = "notification"
)

// Error is a classified stage-local failure. It never escapes the
// controller; stages convert it into an entry on the record's error list.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newValidationError(field string) *Error {
	return &Error{Kind: ValidationFailure, Msg: field + " is required"}
}

func newExtractionError(cause error) *Error {
	return &Error{Kind: ExtractionFailure, Msg: "extraction failed", Cause: cause}
}

func newPersistenceError(cause error) *Error {
	return &Error{Kind: PersistenceFailure, Msg: "persistence failed", Cause: cause}
}

func newNotificationError(cause error) *Error {
	return &Error{Kind: NotificationFailure, Msg: "notification failed", Cause: cause}
}

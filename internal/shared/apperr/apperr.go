package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the HTTP surface and for refund decisions.
type Kind string

const (
	KindUnauthenticated     Kind = "unauthenticated"
	KindInvalidInput        Kind = "invalid_input"
	KindInsufficientCredits Kind = "insufficient_credits"
	KindStoreUnavailable    Kind = "store_unavailable"
	KindUnparsableDocument  Kind = "unparsable_document"
	KindCompletionFailed    Kind = "completion_failed"
	KindInternal            Kind = "internal"
)

// Error is a classified application error. Sentinels below carry no message and
// match any Error of the same kind through errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

var (
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrInsufficientCredits = &Error{Kind: KindInsufficientCredits}
	ErrStoreUnavailable    = &Error{Kind: KindStoreUnavailable}
	ErrUnparsableDocument  = &Error{Kind: KindUnparsableDocument}
	ErrCompletionFailed    = &Error{Kind: KindCompletionFailed}
)

// New builds a classified error wrapping cause (which may be nil).
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Newf builds a classified error with a formatted message and no cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindInternal when none is present.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns a caller-safe message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	switch KindOf(err) {
	case KindUnauthenticated:
		return "missing or invalid token"
	case KindInvalidInput:
		return "invalid request"
	case KindInsufficientCredits:
		return "Insufficient credits"
	case KindStoreUnavailable:
		return "credit store unavailable"
	case KindUnparsableDocument:
		return "Failed to parse resume file"
	case KindCompletionFailed:
		return "AI provider request failed"
	default:
		return "Unexpected server error"
	}
}

// Package apperr classifies the failures a user can see. Every error that
// reaches a command or an HTTP handler maps to exactly one Kind, and every
// Kind maps to one human-readable message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the user-facing category of a failure.
type Kind string

const (
	KindMissingCredential   Kind = "missing_credential"
	KindEmptyResponse       Kind = "empty_response"
	KindNoStructuredPayload Kind = "no_structured_payload"
	KindMalformedPayload    Kind = "malformed_payload"
	KindUnexpectedShape     Kind = "unexpected_shape"
	KindBackend             Kind = "backend_failure"
	KindInvalidInput        Kind = "invalid_input"
)

// Error attaches a Kind and the failing operation to an underlying error.
// Msg, when set, replaces the kind's default user-facing message.
type Error struct {
	Kind Kind
	Op   string
	Err  error
	Msg  string
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf is shorthand for New with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap annotates err with op. An error that already carries a Kind keeps
// it; anything else becomes the given kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return &Error{Kind: ae.Kind, Op: op, Err: err, Msg: ae.Msg}
	}
	return New(kind, op, err)
}

// Userf returns an *Error whose formatted text is also the message shown to
// the user.
func Userf(kind Kind, op, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, Op: op, Err: errors.New(msg), Msg: msg}
}

// KindOf reports the kind of err. Errors that were never classified are
// treated as network or backend failures. KindOf(nil) is "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindBackend
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var messages = map[Kind]string{
	KindMissingCredential:   "API key not found. Please provide your API key in the settings.",
	KindEmptyResponse:       "Received an empty response from the AI.",
	KindNoStructuredPayload: "Could not find valid JSON in the AI response. Please try again.",
	KindMalformedPayload:    "AI response could not be parsed. Please try again.",
	KindUnexpectedShape:     "AI response did not have the expected structure. Please try again.",
}

// Message converts err to the single line shown to the user. Backend and
// input failures carry their own wording, so the cause is surfaced as is.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	hasAE := errors.As(err, &ae)
	if hasAE && ae.Msg != "" {
		return ae.Msg
	}
	if msg, ok := messages[KindOf(err)]; ok {
		return msg
	}
	if hasAE && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}

// HTTPStatus maps a kind to the status code the API responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindMissingCredential:
		return http.StatusUnauthorized
	case KindEmptyResponse, KindNoStructuredPayload, KindMalformedPayload, KindUnexpectedShape:
		return http.StatusBadGateway
	case KindBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

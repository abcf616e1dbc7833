// Package errs defines the client-wide error taxonomy and its mapping to
// process exit codes. The engine never prints; it returns one of these kinds
// and lets the command layer format it.
package errs

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure for exit-code mapping and programmatic handling.
type Kind string

const (
	// KindUsage covers malformed arguments, conflicting flags, and missing
	// required fields.
	KindUsage Kind = "Usage"
	// KindConfig covers unreadable or invalid on-disk configuration.
	KindConfig Kind = "Config"
	// KindAuth covers signer failures and server 401s.
	KindAuth Kind = "Auth"
	// KindNotFound covers exhausted resolution and server 404s.
	KindNotFound Kind = "ResourceNotFound"
	// KindAmbiguousName is returned when a name matches more than one
	// resource of a kind with no documented tie-break.
	KindAmbiguousName Kind = "AmbiguousName"
	// KindAmbiguousShortID is returned when a short id prefix matches more
	// than one resource of a kind.
	KindAmbiguousShortID Kind = "AmbiguousShortId"
	// KindServer covers any other non-2xx CloudAPI response.
	KindServer Kind = "Server"
	// KindTransport covers connect, TLS, and response-parse failures after
	// retries are exhausted.
	KindTransport Kind = "Transport"
	// KindTimeout covers waiter and request deadline expiry.
	KindTimeout Kind = "Timeout"
	// KindCanceled covers caller-initiated cancellation.
	KindCanceled Kind = "Canceled"
	// KindMulti aggregates two or more independent failures.
	KindMulti Kind = "Multi"
)

// Error is a classified client error. Code and Status are populated for
// server-derived errors; Code carries the CloudAPI error body's "code" field
// (e.g. "ResourceNotFound", "InvalidArgument").
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Status  int
	cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error, keeping it on the cause chain.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...) + ": " + err.Error(),
		cause:   err,
	}
}

// WithServer attaches the server's error code and HTTP status.
func (e *Error) WithServer(code string, status int) *Error {
	e.Code = code
	e.Status = status
	return e
}

// KindOf extracts the Kind of err, walking the cause chain. Context
// cancellation and deadline errors classify as Canceled and Timeout even
// when unwrapped. Unclassified errors report KindServer's generic sibling:
// an empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return ""
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// CodeOf returns the server error code on err's chain, if any.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Exit codes are part of the CLI contract: 0 success, 1 generic runtime
// error, 2 usage error, 3 not-found. Codes above 3 are reserved.
const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// ExitCode maps an error to its stable process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch KindOf(err) {
	case KindUsage:
		return ExitUsage
	case KindNotFound:
		return ExitNotFound
	default:
		return ExitError
	}
}

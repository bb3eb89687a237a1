// Package apierr defines the error taxonomy shared by every layer that talks
// to the FatSecret Platform API.
//
// Each failure is reported as an *Error carrying a Kind, the remote error
// code (if the API returned one), the HTTP status (if any), a message and an
// optional cause. Every Kind has a sentinel so callers can branch with
// errors.Is(err, apierr.ErrRateLimit) and still reach the details with
// errors.As(err, &apiErr).
package apierr

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors, one per Kind.
var (
	// ErrValidation indicates bad caller input. Never reaches the network.
	ErrValidation = errors.New("invalid request")

	// ErrTransport indicates a network or HTTP-level failure.
	ErrTransport = errors.New("transport failure")

	// ErrTimeout is wrapped by transport errors caused by an expired deadline.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates the API rejected the credentials, signature or token.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimit indicates the API rate limit was exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrFoodNotFound indicates the API has no food with the requested id.
	ErrFoodNotFound = errors.New("food not found")

	// ErrRecipeNotFound indicates the API has no recipe with the requested id.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrBarcodeNotFound indicates no food is registered for the barcode.
	ErrBarcodeNotFound = errors.New("barcode not found")

	// ErrParse indicates a success payload could not be decoded.
	ErrParse = errors.New("malformed response")

	// ErrRemote indicates an API error code with no dedicated kind.
	ErrRemote = errors.New("remote error")
)

// Kind classifies an *Error.
type Kind int

// Error kinds.
const (
	KindRemote Kind = iota
	KindValidation
	KindTransport
	KindAuthentication
	KindRateLimit
	KindFoodNotFound
	KindRecipeNotFound
	KindBarcodeNotFound
	KindParse
)

var kindNames = map[Kind]string{
	KindRemote:          "remote",
	KindValidation:      "validation",
	KindTransport:       "transport",
	KindAuthentication:  "authentication",
	KindRateLimit:       "rate_limit",
	KindFoodNotFound:    "food_not_found",
	KindRecipeNotFound:  "recipe_not_found",
	KindBarcodeNotFound: "barcode_not_found",
	KindParse:           "parse",
}

var kindSentinels = map[Kind]error{
	KindRemote:          ErrRemote,
	KindValidation:      ErrValidation,
	KindTransport:       ErrTransport,
	KindAuthentication:  ErrAuthFailed,
	KindRateLimit:       ErrRateLimit,
	KindFoodNotFound:    ErrFoodNotFound,
	KindRecipeNotFound:  ErrRecipeNotFound,
	KindBarcodeNotFound: ErrBarcodeNotFound,
	KindParse:           ErrParse,
}

// String returns a stable snake_case name, suitable for metric labels.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel returns the sentinel error matched by errors.Is for this kind.
func (k Kind) Sentinel() error {
	if s, ok := kindSentinels[k]; ok {
		return s
	}
	return ErrRemote
}

// Error is the typed error returned by every API operation.
type Error struct {
	Kind Kind

	// Code is the FatSecret error code, or 0 when the failure did not come
	// from an API error object.
	Code int

	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Sentinel().Error()
	if e.Message != "" {
		msg = e.Message + ": " + msg
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind.Sentinel()}
	}
	return []error{e.Kind.Sentinel(), e.Cause}
}

// New creates an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Transport creates a transport error. status is 0 when no response arrived.
func Transport(message string, status int, cause error) *Error {
	return &Error{Kind: KindTransport, Status: status, Message: message, Cause: cause}
}

// Parse creates a parse error for the named payload.
func Parse(payload string, cause error) *Error {
	return &Error{Kind: KindParse, Message: "decode " + payload, Cause: cause}
}

// KindOf returns the kind of err, and false if err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsRetryable reports whether a caller may reasonably retry err later.
// Only rate limits and transport failures qualify; cancellation does not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	kind, ok := KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case KindRateLimit:
		return true
	case KindTransport:
		return !errors.Is(err, context.Canceled)
	default:
		return false
	}
}

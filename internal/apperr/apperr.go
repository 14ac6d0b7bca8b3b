// Package apperr defines the closed set of failure kinds produced by the
// request pipeline and their mapping to HTTP status codes.
//
// Every failure that leaves a service, a parameter extractor, or a piece of
// middleware is an *Error carrying exactly one Kind. The HTTP layer classifies
// it once, through Status, and renders a single response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a failure class. The set is closed: Status switches over
// every value.
type Kind int

const (
	// Parse means a string parameter failed numeric conversion.
	Parse Kind = iota + 1
	// MissingParameters means a required query parameter is absent.
	MissingParameters
	// OutOfRange means a parameter value is numerically invalid.
	OutOfRange
	// ItemNotFound means a referenced entity does not exist.
	ItemNotFound
	// DuplicateID means an id collided with an existing one.
	DuplicateID
	// DatabaseQuery means the storage layer reported a failure.
	DatabaseQuery
	// ExternalAPI means the moderation service call failed.
	ExternalAPI
	// InvalidIDShape means a path id did not parse as an int32.
	InvalidIDShape
	// MalformedBody means the request body did not match the expected schema.
	MalformedBody
	// CorsRejected means the cross-origin policy refused the request.
	CorsRejected
	// Unmatched means no route matched the request.
	Unmatched

	// InvalidHeader means a request header failed validation.
	InvalidHeader
	// RateLimited means the caller exhausted its request budget.
	RateLimited
	// Internal covers panics and unclassified errors.
	Internal
)

// String returns the stable, machine-readable name of k.
func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse"
	case MissingParameters:
		return "missing_parameters"
	case OutOfRange:
		return "out_of_range"
	case ItemNotFound:
		return "item_not_found"
	case DuplicateID:
		return "duplicate_id"
	case DatabaseQuery:
		return "database_query_error"
	case ExternalAPI:
		return "external_api_error"
	case InvalidIDShape:
		return "invalid_id"
	case MalformedBody:
		return "malformed_body"
	case CorsRejected:
		return "cors_rejected"
	case Unmatched:
		return "not_found"
	case InvalidHeader:
		return "invalid_header"
	case RateLimited:
		return "rate_limited"
	case Internal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Status maps k to its HTTP status code.
//
// Generic client failures map to 416 Range Not Satisfiable; this is part of
// the public contract and clients rely on it.
func Status(k Kind) int {
	switch k {
	case Parse, MissingParameters, OutOfRange, ItemNotFound, DuplicateID, DatabaseQuery:
		return http.StatusRequestedRangeNotSatisfiable
	case ExternalAPI:
		return http.StatusInternalServerError
	case InvalidIDShape, MalformedBody:
		return http.StatusUnprocessableEntity
	case CorsRejected:
		return http.StatusForbidden
	case Unmatched:
		return http.StatusNotFound
	case InvalidHeader:
		return http.StatusBadRequest
	case RateLimited:
		return http.StatusTooManyRequests
	case Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Context names the offending parameter, value or item. It may be empty.
	Context string
	// Err is the underlying cause, if any.
	Err error
}

// Error renders the human-readable message sent to clients.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	detail := e.Context
	if e.Err != nil {
		if detail != "" {
			detail += ": "
		}
		detail += e.Err.Error()
	}

	switch e.Kind {
	case Parse:
		return "could not parse provided parameter: " + detail
	case MissingParameters:
		return "required parameter missing: " + detail
	case OutOfRange:
		return "value provided for parameter out of range: " + detail
	case ItemNotFound:
		return "item not found: " + detail
	case DuplicateID:
		return "duplicate id: " + detail
	case DatabaseQuery:
		return "database query could not be executed: " + detail
	case ExternalAPI:
		return "error querying external API: " + detail
	case InvalidIDShape:
		return "no valid id provided"
	case MalformedBody:
		return "request body deserialize error: " + detail
	case CorsRejected:
		return "CORS request forbidden: " + detail
	case Unmatched:
		return "not found"
	case InvalidHeader:
		return "invalid header: " + detail
	case RateLimited:
		return "rate limit exceeded"
	case Internal:
		return "internal server error"
	default:
		return fmt.Sprintf("unknown error (%d): %s", int(e.Kind), detail)
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of kind k with a context string.
func New(k Kind, context string) *Error {
	return &Error{Kind: k, Context: context}
}

// Wrap builds an *Error of kind k around cause.
func Wrap(k Kind, cause error) *Error {
	return &Error{Kind: k, Err: cause}
}

// Database classifies a storage failure.
func Database(cause error) *Error { return Wrap(DatabaseQuery, cause) }

// External classifies a moderation failure.
func External(cause error) *Error { return Wrap(ExternalAPI, cause) }

// NotFound classifies a missing entity.
func NotFound(what string) *Error { return New(ItemNotFound, what) }

// KindOf returns the kind of the first *Error in err's chain, or Internal when
// err carries none. It returns 0 for a nil err.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

package errors

import "net/http"

// Code is the stable, client facing classification of a failure.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code surfaces over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

// ClientFacing reports whether the caller's own message may replace the
// generic public message.
func (m Metadata) ClientFacing() bool {
	return m.HTTPStatus >= 400 && m.HTTPStatus < 500
}

type metaOpt func(*Metadata)

func retryable(m *Metadata)   { m.Retryable = true }
func withDetails(m *Metadata) { m.DetailsAllowed = true }

func describe(status int, public string, opts ...metaOpt) Metadata {
	m := Metadata{HTTPStatus: status, PublicMessage: public}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

var codeTable = map[Code]Metadata{
	CodeValidation:    describe(http.StatusBadRequest, "validation failed", withDetails),
	CodeUnauthorized:  describe(http.StatusUnauthorized, "authentication required"),
	CodeForbidden:     describe(http.StatusForbidden, "access denied"),
	CodeNotFound:      describe(http.StatusNotFound, "resource not found"),
	CodeConflict:      describe(http.StatusConflict, "conflict detected"),
	CodeStateConflict: describe(http.StatusUnprocessableEntity, "state transition disallowed", withDetails),
	CodeRateLimit:     describe(http.StatusTooManyRequests, "rate limit exceeded"),
	CodeInternal:      describe(http.StatusInternalServerError, "internal server error", retryable),
	CodeDependency:    describe(http.StatusServiceUnavailable, "dependency unavailable", retryable, withDetails),
}

// MetadataFor looks up a code, treating unknown codes as internal.
func MetadataFor(code Code) Metadata {
	if m, ok := codeTable[code]; ok {
		return m
	}
	return codeTable[CodeInternal]
}

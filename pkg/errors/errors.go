package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an API error by what happened upstream.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindRateLimited Kind = "rate_limited"
	KindServerError Kind = "server_error"
	KindTimeout     Kind = "timeout"
	KindNetwork     Kind = "network"
	KindUnexpected  Kind = "unexpected_status"
	KindMalformed   Kind = "malformed_result"
)

// Error represents a Riot API error with kind information
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Kind, e.Code, e.Message)
}

// RetryClass tags how the dispatcher reacts to a failed attempt. A
// FreeRetry never consumes the retry budget, ConsumesBudget does, and
// Terminal ends the call immediately.
type RetryClass int

const (
	Terminal RetryClass = iota
	ConsumesBudget
	FreeRetry
)

func (c RetryClass) String() string {
	switch c {
	case Terminal:
		return "terminal"
	case ConsumesBudget:
		return "consumes_budget"
	case FreeRetry:
		return "free_retry"
	default:
		return "unknown"
	}
}

// ClassOf maps an error kind to its retry classification. Timeout is
// the only transport-level kind that earns a retry; other network
// failures end the call immediately.
func ClassOf(kind Kind) RetryClass {
	switch kind {
	case KindRateLimited:
		return FreeRetry
	case KindServerError, KindTimeout:
		return ConsumesBudget
	default:
		return Terminal
	}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

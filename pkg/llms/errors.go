package llms

import (
	"errors"
	"fmt"
)

// Kind classifies a model-client error so callers (the ReAct driver, the
// tiered executor, the quality pipeline) can decide whether to retry,
// surface to the user, or abort a run.
type Kind string

const (
	KindAuth            Kind = "auth"
	KindPermission      Kind = "permission"
	KindNotFound        Kind = "not_found"
	KindInvalidRequest  Kind = "invalid_request"
	KindRateLimited     Kind = "rate_limited"
	KindServerError     Kind = "server_error"
	KindCancelled       Kind = "cancelled"
	KindTimeout         Kind = "timeout"
	KindParseError      Kind = "parse_error"
	KindToolError       Kind = "tool_error"
	KindAgentUnavailable Kind = "agent_unavailable"
)

// ModelError is the typed error returned by Client.Complete/StreamComplete.
// HTTPStatus is 0 for errors that never reached the wire (parse, cancelled).
type ModelError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	RetryAfter int // seconds, 0 if the server didn't send one
	Err        error
}

func (e *ModelError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s: %s (http %d)", e.Kind, e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err if it (or something it wraps) is a
// *ModelError, or KindServerError as a conservative default otherwise.
func KindOf(err error) Kind {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindServerError
}

// kindFromStatus maps an HTTP status code from the chat completions endpoint
// to a Kind, mirroring the retry classification in pkg/httpclient.
func kindFromStatus(status int) Kind {
	switch status {
	case 401:
		return KindAuth
	case 403:
		return KindPermission
	case 404:
		return KindNotFound
	case 400, 422:
		return KindInvalidRequest
	case 408:
		return KindTimeout
	case 429:
		return KindRateLimited
	case 500, 502, 503, 504:
		return KindServerError
	default:
		if status >= 500 {
			return KindServerError
		}
		return KindInvalidRequest
	}
}

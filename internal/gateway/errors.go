package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for the completion backend failure taxonomy. Callers match
// with errors.Is to decide between retry, degrade and abort.
var (
	ErrRateLimited = errors.New("completion backend rate limited")
	ErrAuth        = errors.New("completion backend authentication failed")
	ErrQuota       = errors.New("completion backend quota exceeded")

	// ErrEmptyCompletion indicates the backend answered 200 with no usable
	// message body. That is a configuration problem, not a content problem,
	// and must not flow downstream as an empty string.
	ErrEmptyCompletion = errors.New("completion backend returned empty response")
)

// BackendError wraps a non-taxonomy backend failure with its HTTP status.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("completion backend status %d", e.Status)
	}
	return fmt.Sprintf("completion backend status %d: %s", e.Status, e.Body)
}

// classifyStatus maps an HTTP status plus the backend's error code string to
// the sentinel taxonomy, falling back to a generic BackendError.
func classifyStatus(status int, code, body string) error {
	switch {
	case status == 429 || code == "rate_limit_exceeded":
		return fmt.Errorf("%w (status %d)", ErrRateLimited, status)
	case status == 401 || status == 403 || code == "invalid_api_key":
		return fmt.Errorf("%w (status %d)", ErrAuth, status)
	case status == 402 || code == "insufficient_quota":
		return fmt.Errorf("%w (status %d)", ErrQuota, status)
	default:
		return &BackendError{Status: status, Body: body}
	}
}

package identity

import (
	"errors"
	"strings"
)

// LookupError indicates that no GitHub login could be determined for the
// current user. Callers fall back to a local name instead of failing.
type LookupError struct {
	Reason string
	cause  error
}

func (e *LookupError) Error() string {
	if e == nil || e.Reason == "" {
		return "github login lookup failed"
	}
	return "github login lookup failed: " + e.Reason
}

func (e *LookupError) Unwrap() error { return e.cause }

func IsLookupError(err error) bool {
	var e *LookupError
	return errors.As(err, &e)
}

func isMissingAuth(err error) bool {
	if err == nil {
		return false
	}
	// go-gh reports a missing token as "authentication token not found for host ...".
	msg := err.Error()
	return strings.Contains(msg, "authentication token not found") ||
		strings.Contains(msg, "not logged in")
}

// Error classification used by the aggregator to decide whether a failed
// upstream call is fatal, expected, or merely worth counting. The concrete
// error type lives in pkg/spotify; this package only relies on the
// StatusError interface so fakes can trigger every branch in tests.
package music

import (
	"errors"
	"strings"
)

// StatusError is implemented by upstream errors that carry an HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

// IsNotFound reports whether err represents a 404 from the catalog API.
// Missing related-artist data is expected for some artists and is skipped
// rather than surfaced.
func IsNotFound(err error) bool {
	var se StatusError
	return errors.As(err, &se) && se.HTTPStatus() == 404
}

// IsPermissionDenied reports whether err was caused by a missing OAuth
// scope. The catalog returns 403 with a message mentioning the client
// scope; both signals are accepted since the message wording has changed
// over time. The message check is restricted to client errors so a 5xx
// that happens to mention scopes is still counted and logged.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	var se StatusError
	if errors.As(err, &se) {
		code := se.HTTPStatus()
		if code == 403 {
			return true
		}
		if code < 400 || code >= 500 {
			return false
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "scope")
}

// IsTransient reports whether err is worth retrying: rate limiting or a
// server-side failure.
func IsTransient(err error) bool {
	var se StatusError
	if !errors.As(err, &se) {
		return false
	}
	code := se.HTTPStatus()
	return code == 429 || code >= 500
}

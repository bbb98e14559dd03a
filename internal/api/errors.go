package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the server rejects the auth token on
// any authorized call. The caller is expected to treat it as a forced
// logout, whichever operation produced it.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidCredentials is returned by Authenticate on any rejection.
// Deliberately carries no detail about which field was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegistrationError carries the server-supplied reason for a rejected
// registration, or a generic fallback when the server gave none.
type RegistrationError struct {
	Reason string
}

func (e *RegistrationError) Error() string { return e.Reason }

// UploadError carries the server-supplied reason for a rejected upload
// (wrong type, empty file, parse failure).
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string { return e.Reason }

// DeleteError signals a failed dataset deletion. Unlike fetch errors
// this one must surface to the user: silent failure would misrepresent
// a destructive action as having succeeded.
type DeleteError struct {
	ID     int64
	Reason string
}

func (e *DeleteError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("delete dataset %d: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("delete dataset %d failed", e.ID)
}

// FetchError wraps a transport or decode failure from a best-effort
// read (history, chart data, summary, report). Callers treat these as
// non-fatal.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

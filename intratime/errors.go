package intratime

import "fmt"

// AuthError signals rejected credentials or a failed login exchange. It is
// surfaced verbatim to the caller and never retried.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed (status %d)", e.Status)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// FetchError signals a transport or remote-service failure on an
// authenticated vendor call. Viewing paths recover by degrading to
// configuration-only data; submission paths abort on it.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: vendor returned status %d", e.Op, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StateError signals an operation attempted without an active session.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// ErrNoSession is returned when a vendor call is attempted with an empty
// token.
func ErrNoSession() *StateError {
	return &StateError{Message: "no hay sesión activa"}
}

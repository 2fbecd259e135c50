package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/romeoalpha/admin/internal/storage"
)

var (
	// ErrNotAuthenticated is returned when no session token is present.
	ErrNotAuthenticated = errors.New("session token missing")
	// ErrFormBusy is returned when a form is submitted while its previous
	// submission is still running.
	ErrFormBusy = errors.New("form is already being saved")
	// ErrUnknownRecord is returned when an edit targets an id that is not in
	// the loaded list.
	ErrUnknownRecord = errors.New("record not found in loaded list")
)

// authTokens mark a failure as an expired or invalid credential.
var authTokens = []string{"JWT", "invalid", "token"}

// Kind is the classification of a failure.
type Kind int

const (
	KindNone Kind = iota
	KindAuth
	KindDomain
	KindValidation
	KindUpload
)

// AuthError is a credential failure. It always ends the session.
type AuthError struct {
	Domain Domain
	Err    error
}

func (e *AuthError) Error() string { return "authentication failed: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// DomainError is a backend failure scoped to one domain.
type DomainError struct {
	Domain Domain
	Err    error
}

// Error formats the inline message, e.g. "Ads Error: connection refused".
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s Error: %s", e.Domain.Label(), e.Err.Error())
}

func (e *DomainError) Unwrap() error { return e.Err }

// ValidationError is missing or malformed operator input. It is detected
// before any gateway call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UploadError reports a failed image upload.
type UploadError = storage.UploadError

// unauthorizer is implemented by transport errors that know they are 401/403.
type unauthorizer interface {
	Unauthorized() bool
}

// IsAuthFailure reports whether err denotes invalid or expired credentials.
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var u unauthorizer
	if errors.As(err, &u) && u.Unauthorized() {
		return true
	}
	msg := err.Error()
	for _, tok := range authTokens {
		if strings.Contains(msg, tok) {
			return true
		}
	}
	return false
}

// Classify returns the kind of err. Upload failures are never KindAuth
// whatever their text says.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		verr *ValidationError
		uerr *UploadError
		aerr *AuthError
	)
	switch {
	case errors.As(err, &verr):
		return KindValidation
	case errors.As(err, &uerr):
		return KindUpload
	case errors.As(err, &aerr), IsAuthFailure(err):
		return KindAuth
	default:
		return KindDomain
	}
}

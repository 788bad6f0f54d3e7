package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the backend rejects the session
	// token. The API client has already triggered the sign-in redirect by
	// the time callers see it.
	ErrUnauthorized = errors.New("unauthorized")

	ErrNothingToSubmit  = errors.New("nothing to submit")
	ErrAnalysisInFlight = errors.New("analysis already in progress")
	ErrFileTooLarge     = errors.New("file exceeds the 20 MiB limit")
	ErrUnsupportedFile  = errors.New("unsupported file type")
)

// AuthError carries the backend's machine-readable auth failure code.
type AuthError struct {
	Code string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Code
}

// APIError is a non-success reply from any other endpoint.
type APIError struct {
	StatusCode int
	StatusText string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%s)", e.StatusText, e.Code)
	}
	return "api: " + e.StatusText
}

// authMessages is the full set of user-facing strings for auth failure
// codes. Unknown codes fall through to a generic message so raw provider
// text never reaches the user.
var authMessages = map[string]string{
	"invalid_credentials":      "Incorrect email or password.",
	"email_already_registered": "An account with this email already exists.",
	"weak_password":            "Password must be at least 8 characters long.",
	"user_suspended":           "This account has been disabled. Please contact support.",
	"user_inactive":            "This account has been disabled. Please contact support.",
	"rate_limited":             "Too many attempts. Please wait a moment and try again.",
	"network_error":            "Network error. Please check your connection and try again.",
	"not_authenticated":        "Please sign in to continue.",
}

const genericAuthMessage = "Something went wrong. Please try again."

// UserMessage converts any adapter failure into a fixed user-facing string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		if msg, ok := authMessages[authErr.Code]; ok {
			return msg
		}
		return genericAuthMessage
	}
	return genericAuthMessage
}

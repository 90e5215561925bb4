package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by the client. Callers match with errors.Is.
var (
	// ErrInvalidCredentials is returned when a login attempt is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when the backend rejects a bearer token.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrDuplicateAccount is returned when signup hits an existing email.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidInput is returned for request validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable is returned for transport failures, open circuit breakers,
	// and server-side errors. The caller should retry later.
	ErrUnavailable = errors.New("service unavailable")
)

// errorEnvelope mirrors the error half of the server's response envelope.
type errorEnvelope struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// responseError maps a non-success HTTP response to a sentinel error,
// preserving the server's message for logs and UI surfaces.
func responseError(resp *http.Response) error {
	var envelope errorEnvelope
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != nil {
		message = envelope.Error.Message
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = ErrInvalidToken
	case resp.StatusCode == http.StatusForbidden:
		sentinel = ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		sentinel = ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		sentinel = ErrDuplicateAccount
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		sentinel = ErrInvalidInput
	default:
		sentinel = ErrUnavailable
	}

	return fmt.Errorf("%w: %s", sentinel, message)
}

package api

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/regulus-console/internal/errors"
)

const defaultFailureMessage = "Request failed"

// RequestError is the typed failure for every non-2xx response.
// Error returns the server message unchanged so it can be shown to the operator.
type RequestError struct {
	Message string `json:"message"`
	Code    string `json:"error_code,omitempty"`
	Status  int    `json:"status"`
}

func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap classifies the failure as ErrUnauthorized or ErrDomain.
func (e *RequestError) Unwrap() error {
	if e.Unauthorized() {
		return errors.ErrUnauthorized
	}
	return errors.ErrDomain
}

// Unauthorized reports whether the server rejected the credential.
func (e *RequestError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// NetworkError reports that the transport could not complete the call.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, errors.ErrNetworkUnavailable, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{errors.ErrNetworkUnavailable, e.Err}
}

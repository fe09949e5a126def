package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkUnreachable is returned when a remote service could not be reached at all
	// (DNS failure, connection refused, TLS failure), as opposed to an HTTP-level error.
	ErrNetworkUnreachable = errors.New("network unreachable")

	// ErrPermissionDenied is returned when a file fetch is answered with 401.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPresentationExchangeFailed is the kind of a non-2xx presentation response.
	ErrPresentationExchangeFailed = errors.New("presentation exchange failed")

	// ErrMalformedPresentationResponse is returned when a 2xx presentation response has no data field.
	ErrMalformedPresentationResponse = errors.New("no data field found in presentation response")

	// ErrFileRetrievalFailed is the kind of a non-2xx, non-401 file fetch response.
	ErrFileRetrievalFailed = errors.New("file retrieval failed")

	// ErrUploadFailed is the kind of a non-2xx upload response.
	ErrUploadFailed = errors.New("upload failed")

	// ErrCredentialIssuanceFailed is the kind of a non-2xx VC-mint response.
	ErrCredentialIssuanceFailed = errors.New("vc creation failed")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")

	// ErrBusy is returned when a flow is submitted while another run is in flight.
	ErrBusy = errors.New("a request is already in flight")
)

// RequestError carries the HTTP outcome of a failed remote call.
// Kind is one of the sentinel errors above and is what errors.Is matches.
type RequestError struct {
	Kind       error
	StatusCode int
	Status     string
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: %d %s", e.Kind, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("%v: %d %s - %s", e.Kind, e.StatusCode, e.Status, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Kind
}

// NetworkError wraps a transport failure of the named operation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrNetworkUnreachable, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetworkUnreachable, e.Err}
}

// ValidationError reports missing or invalid local input, detected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Required returns a ValidationError for an empty mandatory field.
func Required(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

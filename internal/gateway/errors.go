package gateway

import (
	"errors"
	"fmt"

	"ai-nutricare/internal/intake"
)

// GenericFailure is shown when a failure carries no usable message.
const GenericFailure = "Something went wrong during analysis."

// ServiceError is a non-2xx answer from the analysis service.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// TransportError means no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to reach analysis service: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message converts any error from the request path into the text shown to
// the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var vErr *intake.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	var sErr *ServiceError
	if errors.As(err, &sErr) {
		return sErr.Error()
	}
	if errors.Is(err, intake.ErrNotPDF) {
		return intake.ErrNotPDF.Error()
	}
	return GenericFailure
}

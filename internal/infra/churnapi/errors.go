package churnapi

import "fmt"

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("churnapi: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError means the API answered with a failure status or with a body
// that could not be understood.
type ServerError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("churnapi: %s returned status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("churnapi: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// NetworkError means the request never got a response from the server.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a response the server rejected, or one that could not be
// understood. Message holds the server's error_msg and may be empty.
type ServerError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServerError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("server error %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("server error %d: %s", e.Status, http.StatusText(e.Status))
	}
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// errorBody is the error convention of the API. Older servers answer 200
// with success=false instead of an error status.
type errorBody struct {
	Success  *bool  `json:"success"`
	ErrorMsg string `json:"error_msg"`
}

func newServerError(status int, body []byte) *ServerError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return &ServerError{Status: status}
	}
	return &ServerError{Status: status, Message: eb.ErrorMsg}
}

// statusFailure returns a ServerError for a 2xx body that reports failure.
func statusFailure(status int, body []byte) *ServerError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil
	}
	if eb.Success != nil && !*eb.Success {
		return &ServerError{Status: status, Message: eb.ErrorMsg}
	}
	return nil
}

// Describe returns the text shown to the user for a failed operation.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var se *ServerError
	var ne *NetworkError
	switch {
	case errors.As(err, &se):
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("Request failed (HTTP %d)", se.Status)
	case errors.As(err, &ne):
		return fmt.Sprintf("Cannot reach server: %v", ne.Err)
	default:
		return err.Error()
	}
}

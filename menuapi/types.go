package menuapi

import (
	"encoding/json"
	"fmt"
)

// DefaultErrorMessage is used when a failed response carries no readable message.
const DefaultErrorMessage = "Request failed"

// RequestError is returned for any non-2xx response.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// errorBody is the error payload of the API. FastAPI-style servers put a
// string (or a validation list) in detail; others use message.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func parseErrorMessage(body []byte) string {
	var payload errorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return DefaultErrorMessage
	}
	if len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil && detail != "" {
			return detail
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return DefaultErrorMessage
}

func newRequestError(method, path string, status int, body []byte) *RequestError {
	return &RequestError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: parseErrorMessage(body),
	}
}

func (e *RequestError) String() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

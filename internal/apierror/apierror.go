// Package apierror holds the JSON envelopes returned on 4xx/5xx responses.
// Internal causes (SQL errors, stack traces) never reach these types.
package apierror

import "fmt"

// APIError is the body of every non-validation error.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError is the 422 body. Fields is keyed by request path.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// Field reports a single invalid field, e.g. "customerName".
func Field(name, reason string) *ValidationError {
	return NewValidation(map[string]string{name: reason})
}

// ItemPath is the key used for a field of one line item: items[1].quantity.
func ItemPath(index int, field string) string {
	return fmt.Sprintf("items[%d].%s", index, field)
}

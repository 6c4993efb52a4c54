package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/taskboard/internal/domain"
)

// ErrNotFound is matched by APIErrors with a 404 status.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []domain.FieldError
	TraceID    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api returned %d: %s", e.StatusCode, msg)
	}
	fields := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		fields = append(fields, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("api returned %d: %s (%s)", e.StatusCode, msg, strings.Join(fields, "; "))
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

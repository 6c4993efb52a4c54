package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard/internal/domain"
)

// dateOnlyLayout is accepted for due dates alongside RFC 3339.
const dateOnlyLayout = time.DateOnly

// getPathID extracts a task ID from the URL path parameters.
// The value must be a base-10 integer; anything else is an invalid ID.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(paramName, "must be an integer", domain.ErrInvalidID)
	}

	return id, nil
}

// parseDueDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date (midnight UTC).
func parseDueDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

const dueDateMessage = "must be an RFC 3339 timestamp or a YYYY-MM-DD date"

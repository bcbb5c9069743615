package front50

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the metadata store answers a lookup with a
// non-OK status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("front50: %s returned status %d", e.URL, e.StatusCode)
}

// IsAbsent reports whether err is a response status the tasks treat as "the
// object does not exist": unknown (404) or unauthorized (401, 403).
func IsAbsent(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.StatusCode {
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

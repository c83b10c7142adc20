package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingParameter       = errors.New("missing required parameter")
	ErrInvalidRiotID          = errors.New("invalid riot id")
	ErrAwaitingReply          = errors.New("awaiting reply")
	ErrNoRecapContext         = errors.New("no recap loaded")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrMalformedResponse      = errors.New("invalid data format received from API")
	ErrSnapshotNotFound       = errors.New("snapshot not found")
)

// BackendError is returned when the backend answers with a non-2xx status.
// Body is the raw response body, shown to the user as-is.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.StatusCode, e.Body)
}

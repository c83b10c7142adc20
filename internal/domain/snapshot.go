package domain

import (
	"encoding/json"
	"time"
)

// RecapSnapshot is the last recap successfully loaded by a page session
type RecapSnapshot struct {
	SessionID string
	RiotID    string
	Region    string
	Data      json.RawMessage
	StoredAt  time.Time
}

package models

import (
	"encoding/json"
	"time"
)

// StateKey addresses one synchronized state document.
type StateKey struct {
	SubjectID string `json:"subject_id"`
	ScopeID   string `json:"scope_id"`
	StateKey  string `json:"state_key"`
}

// StateRecord is the authoritative remote row for a StateKey.
type StateRecord struct {
	StateKey
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

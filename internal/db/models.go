package db

import (
	"time"

	"github.com/google/uuid"
)

// Preference is a user's email notification preference.
// At most one row exists per user, enforced by a unique constraint on user_id.
type Preference struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Enabled      bool      `json:"enabled"`
	ContactEmail string    `json:"contact_email"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`
}

// Email is one row in the append-only send log. Rows are never
// updated or deleted after insert.
type Email struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedOn time.Time `json:"created_on"`
}

// Email status constants
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

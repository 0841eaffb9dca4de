package models

import "time"

// SessionStatus enumerates persisted session states.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Session pins a concrete dated occurrence of a batch. A session row takes
// precedence over rule and override derivation for its date.
type Session struct {
	ID          string        `db:"id" json:"id"`
	BatchID     string        `db:"batch_id" json:"batch_id"`
	Date        time.Time     `db:"date" json:"date"`
	StartTime   string        `db:"start_time" json:"start_time"`
	DurationMin int           `db:"duration_min" json:"duration_min"`
	Status      SessionStatus `db:"status" json:"status"`
	Note        *string       `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	BatchID   string
	TeacherID string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

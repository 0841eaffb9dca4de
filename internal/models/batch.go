package models

import "time"

// BatchStatus enumerates batch lifecycle states.
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "active"
	BatchStatusArchived BatchStatus = "archived"
)

// Batch represents a coaching cohort taught by a single teacher.
// DurationMin is the default session length used when neither a rule nor an
// override specifies one. FeeDueCount and RiskCount are maintained by the
// billing and counseling systems; the calendar passes them through unchanged.
type Batch struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	TeacherID   string      `db:"teacher_id" json:"teacher_id"`
	Room        *string     `db:"room" json:"room,omitempty"`
	DurationMin int         `db:"duration_min" json:"duration_min"`
	Capacity    int         `db:"capacity" json:"capacity"`
	Unlimited   bool        `db:"unlimited" json:"unlimited"`
	Enrolled    int         `db:"enrolled" json:"enrolled"`
	FeeDueCount int         `db:"fee_due_count" json:"fee_due_count"`
	RiskCount   int         `db:"risk_count" json:"risk_count"`
	StartDate   time.Time   `db:"start_date" json:"start_date"`
	EndDate     *time.Time  `db:"end_date" json:"end_date,omitempty"`
	Status      BatchStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// BatchDetail extends Batch with the teacher's display name.
type BatchDetail struct {
	Batch
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// BatchFilter defines filter criteria for listing batches.
type BatchFilter struct {
	TeacherID string
	Status    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CapacitySnapshot reports enrollment pressure for a batch.
type CapacitySnapshot struct {
	BatchID     string  `json:"batch_id"`
	Capacity    int     `json:"capacity"`
	Unlimited   bool    `json:"unlimited"`
	Enrolled    int     `json:"enrolled"`
	Utilization float64 `json:"utilization"`
	Full        bool    `json:"full"`
}

package models

import "time"

// TimeBlock reserves part of a teacher's day outside batch sessions, e.g.
// administrative duties or private tutoring. Blocks join conflict checks
// and busy computation but are never editable on the planner board.
type TimeBlock struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Date        time.Time `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	Label       string    `db:"label" json:"label"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TimeBlockFilter narrows block listings.
type TimeBlockFilter struct {
	TeacherID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

package models

import "time"

// ScheduleRule defines a weekly recurring session slot for a batch.
// Weekday follows time.Weekday numbering: 0 is Sunday, 6 is Saturday.
type ScheduleRule struct {
	ID          string    `db:"id" json:"id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	Weekday     int       `db:"weekday" json:"weekday"`
	StartTime   string    `db:"start_time" json:"start_time"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleRuleFilter narrows rule listings.
type ScheduleRuleFilter struct {
	BatchID  string
	Weekday  *int
	Page     int
	PageSize int
}

// ScheduleOverride adjusts or cancels a single dated occurrence of a batch.
// At most one override exists per (batch, date); writes upsert.
type ScheduleOverride struct {
	ID          string    `db:"id" json:"id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	Date        time.Time `db:"date" json:"date"`
	StartTime   *string   `db:"start_time" json:"start_time,omitempty"`
	DurationMin *int      `db:"duration_min" json:"duration_min,omitempty"`
	Cancelled   bool      `db:"cancelled" json:"cancelled"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleOverrideFilter narrows override listings.
type ScheduleOverrideFilter struct {
	BatchID  string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

package models

import (
	"fmt"
	"time"
)

// EventSource identifies which record produced a materialized instance.
type EventSource string

const (
	EventSourceRule     EventSource = "rule"
	EventSourceOverride EventSource = "override"
	EventSourceSession  EventSource = "session"
)

// EventStatus classifies an instance relative to a reference time.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusLive      EventStatus = "live"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// CalendarEventInstance is a concrete dated occurrence materialized from
// rules, overrides and session rows. Instances are derived values and are
// never persisted as such.
type CalendarEventInstance struct {
	UID          string      `json:"uid"`
	BatchID      string      `json:"batch_id"`
	SessionID    *string     `json:"session_id,omitempty"`
	Title        string      `json:"title"`
	TeacherID    string      `json:"teacher_id"`
	Room         *string     `json:"room,omitempty"`
	Date         time.Time   `json:"date"`
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	DurationMin  int         `json:"duration_min"`
	Cancelled    bool        `json:"cancelled"`
	Status       EventStatus `json:"status"`
	Source       EventSource `json:"source"`
	Editable     bool        `json:"editable"`
	StudentCount int         `json:"student_count"`
	FeeDueCount  int         `json:"fee_due_count"`
	RiskCount    int         `json:"risk_count"`
}

// ClassifyStatus computes the instance status against the reference time.
// Cancellation is authoritative; otherwise the status follows the clock.
func (e *CalendarEventInstance) ClassifyStatus(now time.Time) EventStatus {
	if e.Cancelled {
		return EventStatusCancelled
	}
	if now.Before(e.Start) {
		return EventStatusUpcoming
	}
	if e.End.After(now) {
		return EventStatusLive
	}
	return EventStatusCompleted
}

// InstanceUID derives the stable identity of an occurrence. Session-backed
// instances key on the session row; derived instances embed batch and start
// so that rematerializing identical inputs yields identical UIDs.
func InstanceUID(sessionID *string, batchID string, start time.Time) string {
	if sessionID != nil && *sessionID != "" {
		return fmt.Sprintf("session-%s", *sessionID)
	}
	return fmt.Sprintf("batch-%s-%s", batchID, start.UTC().Format(time.RFC3339))
}

// Clone returns a deep copy of the instance.
func (e *CalendarEventInstance) Clone() *CalendarEventInstance {
	if e == nil {
		return nil
	}
	clone := *e
	if e.SessionID != nil {
		sid := *e.SessionID
		clone.SessionID = &sid
	}
	if e.Room != nil {
		room := *e.Room
		clone.Room = &room
	}
	return &clone
}

// CalendarWindow bounds a materialization as a half-open date range.
type CalendarWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether the date falls inside the window.
func (w CalendarWindow) Contains(date time.Time) bool {
	return !date.Before(w.From) && date.Before(w.To)
}

// ConflictDimension labels which shared resource two events contend for.
type ConflictDimension string

const (
	ConflictDimensionTeacher ConflictDimension = "teacher"
	ConflictDimensionRoom    ConflictDimension = "room"
)

// ConflictCheckRequest describes a proposed placement to validate.
type ConflictCheckRequest struct {
	TeacherID  string    `json:"teacher_id"`
	Room       *string   `json:"room,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ExcludeUID string    `json:"exclude_uid,omitempty"`
	Generation int64     `json:"generation,omitempty"`
}

// ConflictDetail identifies one committed event overlapping the proposal.
type ConflictDetail struct {
	UID       string            `json:"uid"`
	Title     string            `json:"title"`
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	Dimension ConflictDimension `json:"dimension"`
}

// ConflictCheckResult reports the outcome of a conflict check. Message
// summarizes the first collision; the full list rides in Conflicts.
type ConflictCheckResult struct {
	OK         bool             `json:"ok"`
	Conflicts  []ConflictDetail `json:"conflicts,omitempty"`
	Message    string           `json:"message,omitempty"`
	Generation int64            `json:"generation,omitempty"`
}

// Interval is a half-open [Start, End) span within one day.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// FreeBusy partitions a teacher's working day into busy intervals and the
// complementary free intervals. Their union is exactly the working day.
type FreeBusy struct {
	TeacherID string     `json:"teacher_id"`
	Date      time.Time  `json:"date"`
	Workday   Interval   `json:"workday"`
	Busy      []Interval `json:"busy"`
	Free      []Interval `json:"free"`
}

// RescheduleCandidate is one viable replacement slot for a batch session.
type RescheduleCandidate struct {
	BatchID    string    `json:"batch_id"`
	Date       time.Time `json:"date"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Weekday    int       `json:"weekday"`
	DayLoadMin int       `json:"day_load_min"`
	IsBest     bool      `json:"is_best"`
}

// CalendarSlice bundles every persisted row the materializer needs for one
// window load: batches in scope plus their rules, overrides and sessions,
// the teacher's blocks and the institute holidays.
type CalendarSlice struct {
	Batches   []Batch
	Rules     []ScheduleRule
	Overrides []ScheduleOverride
	Sessions  []Session
	Blocks    []TimeBlock
	Holidays  []Holiday
}

// CalendarView is the one-shot materialization payload for a window query,
// the same shape that lands in the view cache.
type CalendarView struct {
	TeacherID string                  `json:"teacher_id,omitempty"`
	From      time.Time               `json:"from"`
	To        time.Time               `json:"to"`
	Events    []CalendarEventInstance `json:"events"`
	Blocks    []TimeBlock             `json:"blocks"`
}

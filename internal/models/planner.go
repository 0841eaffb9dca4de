package models

import "time"

// GestureKind enumerates the edit gestures a planner board supports.
type GestureKind string

const (
	GestureKindMove   GestureKind = "move"
	GestureKindResize GestureKind = "resize"
	GestureKindCreate GestureKind = "create"
	GestureKindDelete GestureKind = "delete"
)

// CreateSpec describes the placement opened by a create gesture.
type CreateSpec struct {
	BatchID     string    `json:"batch_id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	DurationMin int       `json:"duration_min"`
}

// CommitResult reports the durable outcome of a committed gesture. Moving a
// derived instance changes its UID because derived identities embed the
// start; callers rebind on NewUID.
type CommitResult struct {
	GestureID string                 `json:"gesture_id"`
	Kind      GestureKind            `json:"kind"`
	OldUID    string                 `json:"old_uid,omitempty"`
	NewUID    string                 `json:"new_uid,omitempty"`
	Instance  *CalendarEventInstance `json:"instance,omitempty"`
}

// ScheduleChange is broadcast after a committed mutation so open boards can
// refresh ahead of their periodic cadence.
type ScheduleChange struct {
	TeacherID string      `json:"teacher_id"`
	BatchID   string      `json:"batch_id"`
	UID       string      `json:"uid"`
	Kind      GestureKind `json:"kind"`
	At        time.Time   `json:"at"`
}

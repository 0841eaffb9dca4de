package dto

import "github.com/noah-isme/bimbel-adp-api/internal/models"

// OpenBoardRequest opens an interactive planner board over a teacher's
// calendar window.
type OpenBoardRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
}

// OpenBoardResponse returns the board token and its initial materialization.
type OpenBoardResponse struct {
	Token     string                         `json:"token"`
	TeacherID string                         `json:"teacherId"`
	From      string                         `json:"from"`
	To        string                         `json:"to"`
	Events    []models.CalendarEventInstance `json:"events"`
}

// CreateSpecRequest describes the placement for a create gesture.
type CreateSpecRequest struct {
	BatchID     string `json:"batchId" validate:"required"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"startTime" validate:"required"`
	DurationMin int    `json:"durationMin" validate:"required,min=1"`
}

// BeginGestureRequest starts an edit gesture on the board. Move, resize and
// delete target an existing UID; create carries a placement spec instead.
type BeginGestureRequest struct {
	Kind   string             `json:"kind" validate:"required,oneof=move resize create delete"`
	UID    string             `json:"uid" validate:"required_unless=Kind create"`
	Create *CreateSpecRequest `json:"create" validate:"required_if=Kind create"`
}

// GestureResponse describes an open gesture and its tentative state.
type GestureResponse struct {
	GestureID  string                        `json:"gestureId"`
	Kind       string                        `json:"kind"`
	UID        string                        `json:"uid,omitempty"`
	Generation int64                         `json:"generation"`
	Tentative  *models.CalendarEventInstance `json:"tentative,omitempty"`
	Validation *models.ConflictCheckResult   `json:"validation,omitempty"`
}

// UpdateGestureRequest nudges the gesture by whole minutes; the engine
// snaps the delta to the configured grid.
type UpdateGestureRequest struct {
	DeltaMin int `json:"deltaMin"`
}

// BoardBlockRequest places a time block on the board owner's calendar.
type BoardBlockRequest struct {
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"startTime" validate:"required"`
	DurationMin int    `json:"durationMin" validate:"required,min=1"`
	Label       string `json:"label" validate:"required"`
}

// BoardEventsResponse lists the board's current instances and blocks.
// Open gestures render through their tentative state.
type BoardEventsResponse struct {
	Token   string                         `json:"token"`
	Version int64                          `json:"version"`
	Events  []models.CalendarEventInstance `json:"events"`
	Blocks  []models.TimeBlock             `json:"blocks"`
}

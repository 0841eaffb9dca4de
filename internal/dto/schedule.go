package dto

// CreateBatchRequest registers a new coaching batch.
type CreateBatchRequest struct {
	Name        string  `json:"name" validate:"required"`
	TeacherID   string  `json:"teacherId" validate:"required"`
	Room        *string `json:"room"`
	DurationMin int     `json:"durationMin" validate:"required,min=1"`
	Capacity    int     `json:"capacity" validate:"omitempty,min=0"`
	Unlimited   bool    `json:"unlimited"`
	Enrolled    int     `json:"enrolled" validate:"omitempty,min=0"`
	FeeDueCount int     `json:"feeDueCount" validate:"omitempty,min=0"`
	RiskCount   int     `json:"riskCount" validate:"omitempty,min=0"`
	StartDate   string  `json:"startDate" validate:"required"`
	EndDate     *string `json:"endDate"`
}

// UpdateBatchRequest applies partial changes to a batch.
type UpdateBatchRequest struct {
	Name        *string `json:"name"`
	TeacherID   *string `json:"teacherId"`
	Room        *string `json:"room"`
	DurationMin *int    `json:"durationMin" validate:"omitempty,min=1"`
	Capacity    *int    `json:"capacity" validate:"omitempty,min=0"`
	Unlimited   *bool   `json:"unlimited"`
	Enrolled    *int    `json:"enrolled" validate:"omitempty,min=0"`
	FeeDueCount *int    `json:"feeDueCount" validate:"omitempty,min=0"`
	RiskCount   *int    `json:"riskCount" validate:"omitempty,min=0"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Status      *string `json:"status" validate:"omitempty,oneof=active archived"`
}

// UpdateEnrollmentRequest records a head-count change for a batch.
type UpdateEnrollmentRequest struct {
	Enrolled *int `json:"enrolled" validate:"required,min=0"`
}

// CreateRuleRequest adds a weekly recurring slot to a batch.
type CreateRuleRequest struct {
	Weekday     *int   `json:"weekday" validate:"required,min=0,max=6"`
	StartTime   string `json:"startTime" validate:"required"`
	DurationMin int    `json:"durationMin" validate:"required,min=1"`
}

// UpdateRuleRequest applies partial changes to a recurring slot.
type UpdateRuleRequest struct {
	Weekday     *int    `json:"weekday" validate:"omitempty,min=0,max=6"`
	StartTime   *string `json:"startTime"`
	DurationMin *int    `json:"durationMin" validate:"omitempty,min=1"`
}

// UpsertOverrideRequest adjusts or cancels one dated occurrence. A request
// carrying neither a time change nor cancelled is rejected.
type UpsertOverrideRequest struct {
	BatchID     string  `json:"batchId" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	StartTime   *string `json:"startTime"`
	DurationMin *int    `json:"durationMin" validate:"omitempty,min=1"`
	Cancelled   bool    `json:"cancelled"`
	Reason      *string `json:"reason"`
}

// CreateSessionRequest pins an explicit dated session.
type CreateSessionRequest struct {
	BatchID     string  `json:"batchId" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	StartTime   string  `json:"startTime" validate:"required"`
	DurationMin int     `json:"durationMin" validate:"required,min=1"`
	Note        *string `json:"note"`
}

// UpdateSessionRequest applies partial changes to a session row.
type UpdateSessionRequest struct {
	Date        *string `json:"date"`
	StartTime   *string `json:"startTime"`
	DurationMin *int    `json:"durationMin" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Note        *string `json:"note"`
}

// CreateBlockRequest reserves teacher time outside batch sessions.
type CreateBlockRequest struct {
	TeacherID   string `json:"teacherId" validate:"required"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"startTime" validate:"required"`
	DurationMin int    `json:"durationMin" validate:"required,min=1"`
	Label       string `json:"label" validate:"required"`
}

// CreateHolidayRequest marks a non-teaching date.
type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required"`
	Name string `json:"name" validate:"required"`
}

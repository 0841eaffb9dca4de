package dto

// ConflictCheckRequest validates a proposed placement synchronously.
type ConflictCheckRequest struct {
	TeacherID  string  `json:"teacherId" validate:"required"`
	Room       *string `json:"room"`
	Start      string  `json:"start" validate:"required"`
	End        string  `json:"end" validate:"required"`
	ExcludeUID string  `json:"excludeUid"`
	Generation int64   `json:"generation"`
}

// AvailabilityResponse reports whether a batch meets on a date.
type AvailabilityResponse struct {
	BatchID   string `json:"batchId"`
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// ExportLinkResponse returns a signed download URL for a stored export.
type ExportLinkResponse struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	ExpiresAt string `json:"expiresAt"`
}

package models

import "time"

// SystemMetrics represents system level counters captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	ConflictChecks           uint64    `json:"conflict_checks"`
	ConflictsDetected        uint64    `json:"conflicts_detected"`
	GesturesCommitted        uint64    `json:"gestures_committed"`
	GesturesRolledBack       uint64    `json:"gestures_rolled_back"`
	StaleValidationsDropped  uint64    `json:"stale_validations_dropped"`
	BoardRefreshes           uint64    `json:"board_refreshes"`
	OpenPlannerSessions      int       `json:"open_planner_sessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

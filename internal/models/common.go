package models

import "time"

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// SystemMetrics is a point-in-time aggregate for status endpoints.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ConflictScans            uint64    `json:"conflict_scans"`
	AverageScanDurationMs    float64   `json:"average_scan_duration_ms"`
	CurrentConflicts         uint64    `json:"current_conflicts"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// ConflictSummary aggregates the current conflict picture for the client's
// conflict panel. Primary holds the single conflict shown on each affected
// event's badge.
type ConflictSummary struct {
	Total      int                      `json:"total"`
	ByKind     map[ConflictKind]int     `json:"byKind"`
	BySeverity map[ConflictSeverity]int `json:"bySeverity"`
	EventIDs   []string                 `json:"eventIds"`
	Primary    map[string]ConflictInfo  `json:"primary"`
}

package models

import "time"

// StageLog tracks the history of stage transitions for auditing.
type StageLog struct {
	ID         int64          `json:"id" db:"id"`                     // Auto-incremented log ID
	EvidenceID string         `json:"evidence_id" db:"evidence_id"`   // Record being logged
	Stage      string         `json:"stage" db:"stage"`               // Stage name (e.g., "mapping")
	Status     WorkflowStatus `json:"status" db:"status"`             // Status at this point
	Message    string         `json:"message,omitempty" db:"message"` // Details (e.g., error or success note)
	LoggedAt   time.Time      `json:"logged_at" db:"logged_at"`       // Timestamp of log entry
}

package models

import "time"

// Alert is the payload handed to the notification collaborator when a run
// surfaces critical findings.
type Alert struct {
	EvidenceID       string    `json:"evidence_id"`
	CriticalGapCount int       `json:"critical_gap_count"`
	ExpiringCount    int       `json:"expiring_count"`
	NarrativeExcerpt string    `json:"narrative_excerpt"`
	Timestamp        time.Time `json:"timestamp"`
}

const narrativeExcerptLimit = 200

// Excerpt truncates a narrative for inclusion in an alert payload.
func Excerpt(narrative string) string {
	if len(narrative) <= narrativeExcerptLimit {
		return narrative
	}
	return narrative[:narrativeExcerptLimit] + "..."
}

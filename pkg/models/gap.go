package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type GapPriority string

const (
	HighPriority   GapPriority = "high"
	MediumPriority GapPriority = "medium"
)

type GapType string

const MissingStandardGap GapType = "missing_standard"

// GapEntry names a catalog standard with no corresponding coverage claim.
type GapEntry struct {
	Type            GapType     `json:"type"`
	Standard        string      `json:"standard"`
	RequiredMetrics []string    `json:"required_metrics"`
	Priority        GapPriority `json:"priority"`
}

// ExpiringEntry flags a metric whose last capture predates the staleness
// window.
type ExpiringEntry struct {
	Metric      string    `json:"metric"`
	LastUpdated time.Time `json:"last_updated"`
	DaysOverdue int       `json:"days_overdue"`
}

// GapReport is the gap analyzer's diff of observed coverage against the
// required-standards catalog.
type GapReport struct {
	Gaps              []GapEntry      `json:"gaps"`
	ExpiringArtifacts []ExpiringEntry `json:"expiring_artifacts"`
	GapCount          int             `json:"gap_count"`
	ExpiringCount     int             `json:"expiring_count"`
}

// CriticalGapCount returns the number of high-priority gaps.
func (r *GapReport) CriticalGapCount() int {
	n := 0
	for _, g := range r.Gaps {
		if g.Priority == HighPriority {
			n++
		}
	}
	return n
}

// Alertable reports whether the findings warrant a stakeholder
// notification: at least one high-priority gap or expiring artifact.
func (r *GapReport) Alertable() bool {
	return r.CriticalGapCount() > 0 || r.ExpiringCount > 0
}

func (r GapReport) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *GapReport) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("GapReport: expected []byte from database")
	}
	return json.Unmarshal(b, r)
}

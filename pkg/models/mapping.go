package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type DataQuality string

const (
	HighQuality   DataQuality = "high"
	MediumQuality DataQuality = "medium"
	LowQuality    DataQuality = "low"
)

type MappingMethod string

const (
	LLMAnalysisMethod       MappingMethod = "llm_analysis"
	HeuristicParseMethod    MappingMethod = "heuristic_parse"
	RuleBasedFallbackMethod MappingMethod = "rule_based_fallback"
	ParseErrorMethod        MappingMethod = "parse_error"
)

// Metric is a single named metric claimed by the mapping engine.
// LastUpdated is populated when the source data carries a capture
// timestamp; the gap analyzer uses it for staleness checks.
type Metric struct {
	Name        string     `json:"name"`
	Confidence  float64    `json:"confidence"`
	Value       *float64   `json:"value,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// CoverageMapping is the mapping engine's claim about which reporting
// standards the evidence supports.
type CoverageMapping struct {
	MappedStandards []string      `json:"mapped_standards"`
	Metrics         []Metric      `json:"metrics"`
	DataQuality     DataQuality   `json:"data_quality"`
	MissingInfo     []string      `json:"missing_info"`
	Confidence      float64       `json:"confidence"`
	MappingMethod   MappingMethod `json:"mapping_method"`
}

// Covers reports whether the mapping claims coverage for a standard code.
func (m *CoverageMapping) Covers(standard string) bool {
	for _, s := range m.MappedStandards {
		if s == standard {
			return true
		}
	}
	return false
}

func (m CoverageMapping) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *CoverageMapping) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("CoverageMapping: expected []byte from database")
	}
	return json.Unmarshal(b, m)
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type WorkflowStatus string

const (
	StartedStatus             WorkflowStatus = "started"
	IngestingStatus           WorkflowStatus = "ingesting"
	ExtractingStatus          WorkflowStatus = "extracting"
	MappingStatus             WorkflowStatus = "mapping"
	GapCheckingStatus         WorkflowStatus = "gap_checking"
	GeneratingNarrativeStatus WorkflowStatus = "generating_narrative"
	PersistingStatus          WorkflowStatus = "persisting"
	CompletedStatus           WorkflowStatus = "completed"
	ErrorStatus               WorkflowStatus = "error"
	FailedStatus              WorkflowStatus = "failed"
)

// Terminal reports whether the status ends a run. A terminal record is
// never mutated again.
func (s WorkflowStatus) Terminal() bool {
	return s == CompletedStatus || s == FailedStatus
}

type SourceType string

const (
	CSVSource  SourceType = "csv"
	PDFSource  SourceType = "pdf"
	JSONSource SourceType = "json"
)

// ValidSourceType reports whether the extraction layer supports the type.
func ValidSourceType(s string) bool {
	switch SourceType(s) {
	case CSVSource, PDFSource, JSONSource:
		return true
	}
	return false
}

// JSONMap is a free-form mapping persisted as JSONB.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("JSONMap: expected []byte from database")
	}
	return json.Unmarshal(b, m)
}

// StringList is an ordered list of strings persisted as JSONB.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("StringList: expected []byte from database")
	}
	return json.Unmarshal(b, l)
}

// EvidenceRecord is the single mutable record threaded through every
// pipeline stage. It is owned by the controller for the duration of one
// run and persisted keyed by EvidenceID.
type EvidenceRecord struct {
	EvidenceID    string           `json:"evidence_id" db:"evidence_id"`
	FilePath      string           `json:"file_path" db:"file_path"`
	SourceType    string           `json:"source_type" db:"source_type"`
	Metadata      JSONMap          `json:"metadata" db:"metadata"`
	ExtractedData JSONMap          `json:"extracted_data,omitempty" db:"extracted_data"`
	Mapping       *CoverageMapping `json:"coverage_mapping,omitempty" db:"coverage_mapping"`
	GapReport     *GapReport       `json:"gap_report,omitempty" db:"gap_report"`
	Narrative     string           `json:"narrative,omitempty" db:"narrative"`
	ReferenceID   string           `json:"reference_id,omitempty" db:"reference_id"`
	Errors        StringList       `json:"errors" db:"errors"`
	Status        WorkflowStatus   `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty" db:"processed_at"`
}

// AddError appends a stage error. Errors only ever grow within a run.
func (r *EvidenceRecord) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Degraded reports whether any stage has recorded an error.
func (r *EvidenceRecord) Degraded() bool {
	return len(r.Errors) > 0
}

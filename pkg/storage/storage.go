package storage

import (
	"github.com/pkg/errors"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations for the evidence pipeline.
// SaveRecord upserts on evidence_id, so retried runs overwrite rather
// than duplicate.
type Store interface {
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Record operations
	SaveRecord(r models.EvidenceRecord) error
	GetRecord(evidenceID string) (models.EvidenceRecord, error)
	ListRecords() ([]models.EvidenceRecord, error)
	ListRecordsWithFindings() ([]models.EvidenceRecord, error)

	// Narrative archive
	ArchiveNarrative(evidenceID, referenceID, content string) error

	// Stage log operations
	SaveStageLog(l models.StageLog) error
	GetStageLogs(evidenceID string) ([]models.StageLog, error)
}

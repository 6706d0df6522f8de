package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
	"github.com/joshuahsieh24/enviroGovernment/pkg/storage"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

// SaveRecord upserts a full record snapshot keyed by evidence_id, so a
// retried run overwrites rather than duplicates.
func (s *PostgresStore) SaveRecord(r models.EvidenceRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO evidence_records
			(evidence_id, file_path, source_type, metadata, extracted_data,
			 coverage_mapping, gap_report, narrative, reference_id, errors,
			 status, created_at, updated_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP, $13)
		ON CONFLICT (evidence_id) DO UPDATE SET
			file_path = EXCLUDED.file_path,
			source_type = EXCLUDED.source_type,
			metadata = EXCLUDED.metadata,
			extracted_data = EXCLUDED.extracted_data,
			coverage_mapping = EXCLUDED.coverage_mapping,
			gap_report = EXCLUDED.gap_report,
			narrative = EXCLUDED.narrative,
			reference_id = EXCLUDED.reference_id,
			errors = EXCLUDED.errors,
			status = EXCLUDED.status,
			updated_at = CURRENT_TIMESTAMP,
			processed_at = EXCLUDED.processed_at`,
		r.EvidenceID, r.FilePath, r.SourceType, r.Metadata, r.ExtractedData,
		r.Mapping, r.GapReport, r.Narrative, r.ReferenceID, r.Errors,
		r.Status, r.CreatedAt, r.ProcessedAt)
	if err != nil {
		return fmt.Errorf("save record %s: %w", r.EvidenceID, err)
	}
	return nil
}

// GetRecord retrieves a record snapshot by evidence ID
func (s *PostgresStore) GetRecord(evidenceID string) (models.EvidenceRecord, error) {
	var r models.EvidenceRecord
	err := s.db.Get(&r, "SELECT * FROM evidence_records WHERE evidence_id = $1", evidenceID)
	if err == sql.ErrNoRows {
		return models.EvidenceRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return models.EvidenceRecord{}, fmt.Errorf("get record %s: %w", evidenceID, err)
	}
	return r, nil
}

func (s *PostgresStore) ListRecords() ([]models.EvidenceRecord, error) {
	records := []models.EvidenceRecord{}
	query := "SELECT * FROM evidence_records ORDER BY created_at DESC"
	if err := s.db.Select(&records, query); err != nil {
		return nil, err
	}
	return records, nil
}

// ListRecordsWithFindings returns records whose gap report still carries
// outstanding gaps or expiring artifacts.
func (s *PostgresStore) ListRecordsWithFindings() ([]models.EvidenceRecord, error) {
	records := []models.EvidenceRecord{}
	query := `
		SELECT * FROM evidence_records
		WHERE gap_report IS NOT NULL
		  AND ((gap_report->>'gap_count')::int > 0 OR (gap_report->>'expiring_count')::int > 0)
		ORDER BY created_at DESC`
	if err := s.db.Select(&records, query); err != nil {
		return nil, err
	}
	return records, nil
}

// ArchiveNarrative stores the drafted narrative under an external
// reference handle.
func (s *PostgresStore) ArchiveNarrative(evidenceID, referenceID, content string) error {
	_, err := s.db.Exec(`
		INSERT INTO narratives (reference_id, evidence_id, content, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)`,
		referenceID, evidenceID, content)
	if err != nil {
		return fmt.Errorf("archive narrative for %s: %w", evidenceID, err)
	}
	return nil
}

// SaveStageLog appends a stage-transition audit row
func (s *PostgresStore) SaveStageLog(l models.StageLog) error {
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO stage_logs (evidence_id, stage, status, message, logged_at)
		VALUES ($1, $2, $3, $4, $5)`,
		l.EvidenceID, l.Stage, l.Status, l.Message, l.LoggedAt)
	return err
}

// GetStageLogs retrieves the stage history for a record in log order
func (s *PostgresStore) GetStageLogs(evidenceID string) ([]models.StageLog, error) {
	logs := []models.StageLog{}
	err := s.db.Select(&logs, "SELECT * FROM stage_logs WHERE evidence_id = $1 ORDER BY id", evidenceID)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

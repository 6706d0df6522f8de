package storage

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

// mockStore implements Store with in-memory storage
type mockStore struct {
	mu         sync.Mutex
	records    map[string]models.EvidenceRecord
	narratives map[string]string // referenceID -> content
	stageLogs  []models.StageLog
	nextLogID  int64
}

func NewMockStore() Store {
	return &mockStore{
		records:    make(map[string]models.EvidenceRecord),
		narratives: make(map[string]string),
	}
}

func (m *mockStore) Begin() (Store, error) {
	return &mockTx{mockStore: m}, nil
}

func (m *mockStore) Commit() error {
	return errors.New("not in a transaction")
}

func (m *mockStore) Rollback() error {
	return errors.New("not in a transaction")
}

func (m *mockStore) Close() error {
	return nil
}

func (m *mockStore) SaveRecord(r models.EvidenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.EvidenceID == "" {
		return errors.New("evidence ID cannot be empty")
	}
	r.UpdatedAt = time.Now()
	if existing, ok := m.records[r.EvidenceID]; ok {
		r.CreatedAt = existing.CreatedAt
	}
	m.records[r.EvidenceID] = r
	return nil
}

func (m *mockStore) GetRecord(evidenceID string) (models.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[evidenceID]
	if !ok {
		return models.EvidenceRecord{}, ErrNotFound
	}
	return r, nil
}

func (m *mockStore) ListRecords() ([]models.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]models.EvidenceRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	return records, nil
}

func (m *mockStore) ListRecordsWithFindings() ([]models.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []models.EvidenceRecord
	for _, r := range m.records {
		if r.GapReport != nil && (r.GapReport.GapCount > 0 || r.GapReport.ExpiringCount > 0) {
			records = append(records, r)
		}
	}
	return records, nil
}

func (m *mockStore) ArchiveNarrative(evidenceID, referenceID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.narratives[referenceID]; ok {
		return errors.New("narrative already archived")
	}
	m.narratives[referenceID] = content
	return nil
}

func (m *mockStore) SaveStageLog(l models.StageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLogID++
	l.ID = m.nextLogID
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now()
	}
	m.stageLogs = append(m.stageLogs, l)
	return nil
}

func (m *mockStore) GetStageLogs(evidenceID string) ([]models.StageLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var logs []models.StageLog
	for _, l := range m.stageLogs {
		if l.EvidenceID == evidenceID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// mockTx is the transactional view handed out by Begin. Writes land in
// the parent store directly; only commit state is tracked.
type mockTx struct {
	*mockStore
	committed bool
}

func (t *mockTx) Begin() (Store, error) {
	return nil, errors.New("nested transactions not supported")
}

func (t *mockTx) Commit() error {
	if t.committed {
		return errors.New("already committed")
	}
	t.committed = true
	return nil
}

func (t *mockTx) Rollback() error {
	if t.committed {
		return errors.New("cannot rollback committed transaction")
	}
	return nil
}

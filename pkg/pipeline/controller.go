package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
	"github.com/joshuahsieh24/enviroGovernment/pkg/storage"
)

// Logger defines the logging interface for the pipeline.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Extractor is the file-extraction collaborator. It returns a normalized
// structured payload; the pipeline never touches raw file bytes.
type Extractor interface {
	Extract(ctx context.Context, filePath, sourceType string) (models.JSONMap, error)
}

// Notifier is the alerting collaborator.
type Notifier interface {
	// Alert delivers critical findings from a completed run.
	Alert(ctx context.Context, subject string, a models.Alert) error
	// Failure reports a run that ended on the error path.
	Failure(ctx context.Context, subject, evidenceID string, errs []string) error
}

// RunInput is the run entry point payload.
type RunInput struct {
	EvidenceID string         `json:"evidence_id"`
	FilePath   string         `json:"file_path"`
	SourceType string         `json:"source_type"`
	Metadata   models.JSONMap `json:"metadata,omitempty"`
}

// RunResult is what callers get back. Stage failures never surface as Go
// errors; callers distinguish success from failure via Status and Errors.
type RunResult struct {
	EvidenceID string                `json:"evidence_id"`
	Status     models.WorkflowStatus `json:"status"`
	Errors     []string              `json:"errors"`
}

// Controller sequences the pipeline stages over a shared evidence record
// and decides continue-vs-error routing. Collaborators are injected and
// scoped to the controller; one record is owned by exactly one run.
type Controller struct {
	store     storage.Store
	extractor Extractor
	notifier  Notifier
	mapper    *Mapper
	analyzer  *Analyzer
	generator *Generator
	logger    Logger
	now       func() time.Time
}

func NewController(
	store storage.Store,
	extractor Extractor,
	notifier Notifier,
	mapper *Mapper,
	analyzer *Analyzer,
	generator *Generator,
	logger Logger,
) *Controller {
	return &Controller{
		store:     store,
		extractor: extractor,
		notifier:  notifier,
		mapper:    mapper,
		analyzer:  analyzer,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the controller's clock. Used by tests to pin the
// staleness cutoff.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// stage is one transition of the state machine: the status it enters and
// the work it performs on the shared record.
type stage struct {
	name   string
	status models.WorkflowStatus
	run    func(ctx context.Context, rec *models.EvidenceRecord) error
}

func (c *Controller) stages() []stage {
	return []stage{
		{name: "Ingestion", status: models.IngestingStatus, run: c.ingest},
		{name: "Extraction", status: models.ExtractingStatus, run: c.extract},
		{name: "ESRS mapping", status: models.MappingStatus, run: c.mapStandards},
		{name: "Gap analysis", status: models.GapCheckingStatus, run: c.gapCheck},
		{name: "Narrative generation", status: models.GeneratingNarrativeStatus, run: c.draftNarrative},
		{name: "Persistence", status: models.PersistingStatus, run: c.persist},
	}
}

// Run executes the pipeline for one evidence item. Every stage transition
// is conditioned on the record's error list being empty; a failure at any
// stage routes to the error handler instead of advancing with a corrupted
// record. Run itself never returns an error.
func (c *Controller) Run(ctx context.Context, input RunInput) RunResult {
	rec := &models.EvidenceRecord{
		EvidenceID: input.EvidenceID,
		FilePath:   input.FilePath,
		SourceType: input.SourceType,
		Metadata:   input.Metadata,
		Errors:     models.StringList{},
		Status:     models.StartedStatus,
		CreatedAt:  c.now(),
	}
	if rec.Metadata == nil {
		rec.Metadata = models.JSONMap{}
	}

	for _, st := range c.stages() {
		c.runStage(ctx, st, rec)
		if rec.Degraded() {
			return c.handleFailure(ctx, rec)
		}
	}

	c.notifyFindings(ctx, rec)

	c.logger.Infof("Run completed for evidence %s", rec.EvidenceID)
	return RunResult{
		EvidenceID: rec.EvidenceID,
		Status:     rec.Status,
		Errors:     rec.Errors,
	}
}

// runStage performs one transition. Stage failures are caught here:
// appended to the record's error list and converted into an error status,
// never propagated.
func (c *Controller) runStage(ctx context.Context, st stage, rec *models.EvidenceRecord) {
	rec.Status = st.status

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return st.run(ctx, rec)
	}()

	if err != nil {
		c.logger.Errorf("%s failed for evidence %s: %v", st.name, rec.EvidenceID, err)
		rec.AddError(fmt.Sprintf("%s error: %v", st.name, err))
		rec.Status = models.ErrorStatus
		c.logStage(rec, st.name, err.Error())
		return
	}

	c.logger.Infof("%s completed for evidence %s", st.name, rec.EvidenceID)
	c.logStage(rec, st.name, "")
}

// logStage writes a stage-transition audit row. Best effort: the log is
// observability, not pipeline state.
func (c *Controller) logStage(rec *models.EvidenceRecord, stageName, message string) {
	err := c.store.SaveStageLog(models.StageLog{
		EvidenceID: rec.EvidenceID,
		Stage:      stageName,
		Status:     rec.Status,
		Message:    message,
		LoggedAt:   c.now(),
	})
	if err != nil {
		c.logger.Errorf("Failed to save stage log for evidence %s: %v", rec.EvidenceID, err)
	}
}

func (c *Controller) ingest(ctx context.Context, rec *models.EvidenceRecord) error {
	if rec.EvidenceID == "" {
		return newValidationError("evidence_id")
	}
	if rec.FilePath == "" {
		return newValidationError("file_path")
	}
	if rec.SourceType == "" {
		return newValidationError("source_type")
	}
	// Initial snapshot: makes the record visible to readers while the
	// run is still in flight.
	if err := c.store.SaveRecord(*rec); err != nil {
		return newPersistenceError(err)
	}
	return nil
}

func (c *Controller) extract(ctx context.Context, rec *models.EvidenceRecord) error {
	extracted, err := c.extractor.Extract(ctx, rec.FilePath, rec.SourceType)
	if err != nil {
		return newExtractionError(err)
	}
	rec.ExtractedData = extracted
	return nil
}

func (c *Controller) mapStandards(ctx context.Context, rec *models.EvidenceRecord) error {
	mapping := c.mapper.Map(ctx, rec.ExtractedData)
	rec.Mapping = &mapping
	return nil
}

func (c *Controller) gapCheck(ctx context.Context, rec *models.EvidenceRecord) error {
	report := c.analyzer.Analyze(rec.Mapping, c.now())
	rec.GapReport = &report
	return nil
}

func (c *Controller) draftNarrative(ctx context.Context, rec *models.EvidenceRecord) error {
	rec.Narrative = c.generator.Draft(ctx, rec.Mapping, rec.GapReport)

	referenceID := uuid.New().String()
	if err := c.store.ArchiveNarrative(rec.EvidenceID, referenceID, rec.Narrative); err != nil {
		return newPersistenceError(err)
	}
	rec.ReferenceID = referenceID
	return nil
}

func (c *Controller) persist(ctx context.Context, rec *models.EvidenceRecord) error {
	processedAt := c.now()
	rec.ProcessedAt = &processedAt
	rec.Status = models.CompletedStatus
	if err := c.saveRecordTx(*rec); err != nil {
		// undo the terminal status so the error path owns the record
		rec.Status = models.PersistingStatus
		rec.ProcessedAt = nil
		return newPersistenceError(err)
	}
	return nil
}

// saveRecordTx writes the terminal snapshot inside a transaction.
func (c *Controller) saveRecordTx(rec models.EvidenceRecord) (err error) {
	txStore, err := c.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				c.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			c.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()
	return txStore.SaveRecord(rec)
}

// notifyFindings alerts stakeholders when a completed run surfaced at
// least one high-priority gap or expiring artifact. A sink failure here
// is recorded but does not retroactively fail the run.
func (c *Controller) notifyFindings(ctx context.Context, rec *models.EvidenceRecord) {
	if rec.GapReport == nil || !rec.GapReport.Alertable() {
		return
	}
	alert := models.Alert{
		EvidenceID:       rec.EvidenceID,
		CriticalGapCount: rec.GapReport.CriticalGapCount(),
		ExpiringCount:    rec.GapReport.ExpiringCount,
		NarrativeExcerpt: models.Excerpt(rec.Narrative),
		Timestamp:        c.now(),
	}
	subject := fmt.Sprintf("ESG Alert: Critical gaps found in %s", rec.EvidenceID)
	if err := c.notifier.Alert(ctx, subject, alert); err != nil {
		c.logger.Errorf("Notification failed for evidence %s: %v", rec.EvidenceID, err)
		rec.AddError(fmt.Sprintf("Notification error: %v", newNotificationError(err)))
		return
	}
	c.logger.Infof("Critical gap notification sent for evidence %s", rec.EvidenceID)
}

// handleFailure is the dedicated error-handling state: persist the failed
// snapshot, emit a critical notification, and return a failed result.
func (c *Controller) handleFailure(ctx context.Context, rec *models.EvidenceRecord) RunResult {
	c.logger.Errorf("Handling errors for evidence %s: %v", rec.EvidenceID, rec.Errors)
	rec.Status = models.FailedStatus

	if rec.EvidenceID != "" {
		if err := c.store.SaveRecord(*rec); err != nil {
			c.logger.Errorf("Failed to persist failed record %s: %v", rec.EvidenceID, err)
		}
	}

	subject := fmt.Sprintf("ESG Processing Failed: %s", rec.EvidenceID)
	if err := c.notifier.Failure(ctx, subject, rec.EvidenceID, rec.Errors); err != nil {
		c.logger.Errorf("Failure notification for evidence %s did not send: %v", rec.EvidenceID, err)
	}

	return RunResult{
		EvidenceID: rec.EvidenceID,
		Status:     rec.Status,
		Errors:     rec.Errors,
	}
}

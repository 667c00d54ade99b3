package services

import (
	"context"
	"fmt"

	"github.com/yashrajoria/catalog-import-service/models"

	"go.uber.org/zap"
)

// RecordStore persists validated records in one bulk call and reports how many
// were written.
type RecordStore interface {
	InsertMany(ctx context.Context, records []models.ValidatedRecord) (int, error)
}

// MetricsRecorder receives the outcome of every ingest run.
type MetricsRecorder interface {
	RecordIngestion(ctx context.Context, report *models.IngestionReport)
}

// EventPublisher announces ingest runs that inserted rows.
type EventPublisher interface {
	PublishImported(ctx context.Context, report *models.IngestionReport) error
}

// StoreInsertError wraps a rejected bulk insert. None of the batch is considered
// persisted.
type StoreInsertError struct {
	Records int
	Err     error
}

func (e *StoreInsertError) Error() string {
	return fmt.Sprintf("bulk insert of %d records failed: %v", e.Records, e.Err)
}

func (e *StoreInsertError) Unwrap() error { return e.Err }

// Pipeline turns an uploaded CSV buffer into inserted products.
type Pipeline struct {
	store   RecordStore
	metrics MetricsRecorder
	events  EventPublisher
}

// NewPipeline wires the pipeline. metrics and events may be nil.
func NewPipeline(store RecordStore, metrics MetricsRecorder, events EventPublisher) *Pipeline {
	return &Pipeline{store: store, metrics: metrics, events: events}
}

// Ingest parses, validates and inserts the rows in buf. It always returns a report;
// failures are recorded in report.Errors. Ingesting the same buffer twice inserts
// the rows twice.
func (p *Pipeline) Ingest(ctx context.Context, buf []byte) *models.IngestionReport {
	report, records, ok := p.collect(buf)
	if ok && len(records) > 0 {
		inserted, err := p.store.InsertMany(ctx, records)
		if err != nil {
			insertErr := &StoreInsertError{Records: len(records), Err: err}
			zap.L().Error("Bulk import insert failed", zap.Int("records", len(records)), zap.Error(insertErr))
			report.Errors = append(report.Errors, models.IngestError{Stage: models.StageInsert, Detail: err.Error()})
		} else {
			report.TotalInserted = clamp(inserted, report.TotalValid)
		}
	}

	zap.L().Info("Bulk import completed",
		zap.Int("parsed", report.TotalParsed),
		zap.Int("valid", report.TotalValid),
		zap.Int("inserted", report.TotalInserted),
		zap.Int("errors", len(report.Errors)),
	)
	p.observe(ctx, report)
	return report
}

// Validate runs the parse and validation stages only. Nothing is written.
func (p *Pipeline) Validate(ctx context.Context, buf []byte) *models.IngestionReport {
	report, _, _ := p.collect(buf)
	return report
}

// collect drains the parser and filters rows. ok is false when parsing failed, in
// which case the report carries a single parse error and no counts.
func (p *Pipeline) collect(buf []byte) (*models.IngestionReport, []models.ValidatedRecord, bool) {
	report := &models.IngestionReport{Errors: []models.IngestError{}}

	var rows []models.RawRow
	for row, err := range ParseCSV(buf) {
		if err != nil {
			zap.L().Warn("Bulk import CSV parse failed", zap.Error(err))
			report.Errors = append(report.Errors, models.IngestError{Stage: models.StageParse, Detail: err.Error()})
			return report, nil, false
		}
		rows = append(rows, row)
	}
	report.TotalParsed = len(rows)

	records := make([]models.ValidatedRecord, 0, len(rows))
	for _, row := range rows {
		if IsValid(row) {
			records = append(records, ToValidatedRecord(row))
		}
	}
	report.TotalValid = len(records)

	if rejected := report.TotalParsed - report.TotalValid; rejected > 0 {
		zap.L().Debug("Bulk import rows rejected", zap.Int("rejected", rejected))
	}
	return report, records, true
}

func (p *Pipeline) observe(ctx context.Context, report *models.IngestionReport) {
	if p.metrics != nil {
		p.metrics.RecordIngestion(ctx, report)
	}
	if p.events != nil && report.TotalInserted > 0 {
		if err := p.events.PublishImported(ctx, report); err != nil {
			zap.L().Warn("Failed to publish products imported event", zap.Error(err))
		}
	}
}

// clamp keeps a store-reported count inside [0, limit].
func clamp(n, limit int) int {
	return min(max(n, 0), limit)
}

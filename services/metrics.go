package services

import (
	"context"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"
	awspkg "github.com/yashrajoria/catalog-import-service/pkg/aws"

	"go.uber.org/zap"
)

type metricsSink interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordCountValue(ctx context.Context, metricName string, value float64, dimensions map[string]string) error
}

// IngestionMetrics publishes ingest outcomes to CloudWatch without blocking the
// request.
type IngestionMetrics struct {
	sink    metricsSink
	service string
}

func NewIngestionMetrics(sink metricsSink, service string) *IngestionMetrics {
	return &IngestionMetrics{sink: sink, service: service}
}

func (m *IngestionMetrics) RecordIngestion(ctx context.Context, report *models.IngestionReport) {
	outcome := "success"
	var failedStage models.IngestStage
	if len(report.Errors) > 0 {
		failedStage = report.Errors[0].Stage
		outcome = string(failedStage) + "_error"
	}
	parsed := float64(report.TotalParsed)
	rejected := float64(report.TotalParsed - report.TotalValid)
	inserted := float64(report.TotalInserted)

	go func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		dims := map[string]string{"Service": m.service}
		runDims := map[string]string{"Service": m.service, "Outcome": outcome}

		m.check(m.sink.RecordCount(bgCtx, awspkg.MetricImportRuns, runDims))
		m.check(m.sink.RecordCountValue(bgCtx, awspkg.MetricImportRowsParsed, parsed, dims))
		m.check(m.sink.RecordCountValue(bgCtx, awspkg.MetricImportRowsRejected, rejected, dims))
		m.check(m.sink.RecordCountValue(bgCtx, awspkg.MetricProductsImported, inserted, dims))
		if failedStage != "" {
			m.check(m.sink.RecordCount(bgCtx, awspkg.MetricImportFailures, map[string]string{"Service": m.service, "Stage": string(failedStage)}))
		}
	}()
}

func (m *IngestionMetrics) check(err error) {
	if err != nil {
		zap.L().Warn("Failed to record bulk import metric", zap.Error(err))
	}
}

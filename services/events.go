package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"
	awspkg "github.com/yashrajoria/catalog-import-service/pkg/aws"
)

const EventProductsImported = "products.imported"

// ProductsImportedEvent is the SNS message body sent after rows were inserted.
type ProductsImportedEvent struct {
	Event         string    `json:"event"`
	TotalParsed   int       `json:"total_parsed"`
	TotalValid    int       `json:"total_valid"`
	TotalInserted int       `json:"total_inserted"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type SNSEventPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
	now      func() time.Time
}

func NewSNSEventPublisher(sns awspkg.SNSPublisher, topicArn string) *SNSEventPublisher {
	return &SNSEventPublisher{sns: sns, topicArn: topicArn, now: time.Now}
}

func (p *SNSEventPublisher) PublishImported(ctx context.Context, report *models.IngestionReport) error {
	body, err := json.Marshal(ProductsImportedEvent{
		Event:         EventProductsImported,
		TotalParsed:   report.TotalParsed,
		TotalValid:    report.TotalValid,
		TotalInserted: report.TotalInserted,
		OccurredAt:    p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", EventProductsImported, err)
	}
	return p.sns.Publish(ctx, p.topicArn, body)
}

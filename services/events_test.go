package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	topic   string
	message []byte
}

func (f *fakeSNS) Publish(_ context.Context, topicArn string, message []byte) error {
	f.topic = topicArn
	f.message = message
	return nil
}

func TestSNSEventPublisher_PublishImported(t *testing.T) {
	sns := &fakeSNS{}
	p := NewSNSEventPublisher(sns, "arn:aws:sns:us-east-1:000000000000:products")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.PublishImported(context.Background(), &models.IngestionReport{TotalParsed: 3, TotalValid: 2, TotalInserted: 2})
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:products", sns.topic)

	var evt ProductsImportedEvent
	require.NoError(t, json.Unmarshal(sns.message, &evt))
	assert.Equal(t, EventProductsImported, evt.Event)
	assert.Equal(t, 2, evt.TotalInserted)
	assert.True(t, evt.OccurredAt.Equal(fixed))
}

package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLeadEvent(t *testing.T) {
	event := NewLeadEvent(EventLeadCreated, "company-1", LeadCreatedEvent{LeadID: "lead-1", Score: 80, Source: "QUIZ"})

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, "crm-service", event.Source)
	assert.Equal(t, "1.0", event.Version)
	assert.Equal(t, "company-1", event.CompanyID)
	assert.False(t, event.Timestamp.IsZero())

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"lead.created"`)
	assert.Contains(t, string(data), `"lead_id":"lead-1"`)
}

func TestMockEventPublisher(t *testing.T) {
	pub := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, pub.PublishLeadEvent(ctx, NewLeadEvent(EventLeadCreated, "c", nil)))
	require.NoError(t, pub.PublishLeadEvent(ctx, NewLeadEvent(EventLeadsExported, "c", nil)))

	published := pub.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, EventLeadCreated, published[0].Type)
	assert.Equal(t, EventLeadsExported, published[1].Type)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
	assert.NoError(t, pub.Close())
}

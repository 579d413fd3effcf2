package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of lead events emitted by the service
type EventType string

const (
	EventLeadCreated   EventType = "lead.created"
	EventLeadsExported EventType = "lead.exported"
	EventQuizPublished EventType = "quiz.published"
)

const (
	eventSource  = "crm-service"
	eventVersion = "1.0"
)

// LeadEvent is the envelope shared by every event on the leads topic
type LeadEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	CompanyID string                 `json:"company_id"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewLeadEvent wraps a payload in an envelope with a fresh id.
func NewLeadEvent(eventType EventType, companyID string, data interface{}) *LeadEvent {
	return &LeadEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		CompanyID: companyID,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type LeadCreatedEvent struct {
	LeadID    string  `json:"lead_id"`
	QuizID    *string `json:"quiz_id,omitempty"`
	QuizTitle string  `json:"quiz_title,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Score     int     `json:"score"`
	Source    string  `json:"source"`
}

type LeadsExportedEvent struct {
	ExportedBy  string `json:"exported_by"`
	Format      string `json:"format"`
	FilterToken string `json:"filter_token,omitempty"`
	RowCount    int    `json:"row_count"`
}

type QuizPublishedEvent struct {
	QuizID    string    `json:"quiz_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Published time.Time `json:"published_at"`
}

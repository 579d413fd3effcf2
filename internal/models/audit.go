package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditLeadCreated   AuditAction = "lead_created"
	AuditLeadUpdated   AuditAction = "lead_updated"
	AuditLeadsExported AuditAction = "leads_exported"
	AuditDealCreated   AuditAction = "deal_created"
	AuditDealUpdated   AuditAction = "deal_updated"
	AuditQuizCreated   AuditAction = "quiz_created"
	AuditQuizUpdated   AuditAction = "quiz_updated"
	AuditQuizPublished AuditAction = "quiz_published"
	AuditQuizDeleted   AuditAction = "quiz_deleted"
)

type AuditLog struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	CompanyID string      `json:"company_id" gorm:"not null;index;size:36"`
	Action    AuditAction `json:"action" gorm:"not null;index;size:50"`

	// Actor information. Empty for anonymous quiz submissions.
	ActorID        *string `json:"actor_id" gorm:"index;size:36"`
	ActorEmail     *string `json:"actor_email" gorm:"size:255"`
	ImpersonatorID *string `json:"impersonator_id" gorm:"size:36"`

	// Target information
	EntityType string  `json:"entity_type" gorm:"size:50;index"` // lead, quiz, export
	EntityID   *string `json:"entity_id" gorm:"index;size:36"`

	// Event details
	Changes  datatypes.JSON `json:"changes" gorm:"type:jsonb"`
	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	// Request context
	IPAddress string `json:"ip_address" gorm:"size:45"`
	UserAgent string `json:"user_agent" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/crm-service/internal/quiz"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQualified LeadStatus = "QUALIFIED"
	LeadConverted LeadStatus = "CONVERTED"
	LeadLost      LeadStatus = "LOST"
)

var LeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost}

type LeadSource string

const (
	SourceQuiz     LeadSource = "QUIZ"
	SourceManual   LeadSource = "MANUAL"
	SourceImport   LeadSource = "IMPORT"
	SourceReferral LeadSource = "REFERRAL"
	SourceWebsite  LeadSource = "WEBSITE"
)

var LeadSources = []LeadSource{SourceQuiz, SourceManual, SourceImport, SourceReferral, SourceWebsite}

type Lead struct {
	ID        string  `json:"id" gorm:"primaryKey;size:36"`
	CompanyID string  `json:"company_id" gorm:"not null;index;size:36"`
	QuizID    *string `json:"quiz_id" gorm:"index;size:36"`

	// Contact details
	Email     *string `json:"email" gorm:"size:255;index" validate:"omitempty,email"`
	Phone     *string `json:"phone" gorm:"size:32"`
	FirstName *string `json:"first_name" gorm:"size:100"`
	LastName  *string `json:"last_name" gorm:"size:100"`

	// Pipeline
	Status       LeadStatus     `json:"status" gorm:"not null;default:NEW;index;size:20" validate:"required,lead_status"`
	Source       LeadSource     `json:"source" gorm:"not null;default:MANUAL;index;size:20" validate:"required,lead_source"`
	Score        int            `json:"score" gorm:"not null;default:0;index" validate:"min=0,max=100"`
	AssignedToID *string        `json:"assigned_to_id" gorm:"index;size:36"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	Notes        *string        `json:"notes" gorm:"type:text"`

	// Raw quiz answers and submission context (utm params, user agent)
	Responses datatypes.JSONType[[]quiz.RawResponse] `json:"responses" gorm:"type:jsonb"`
	Metadata  datatypes.JSON                         `json:"metadata" gorm:"type:jsonb"`

	ConvertedAt *time.Time     `json:"converted_at" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Deals      []Deal `json:"deals,omitempty" gorm:"foreignKey:LeadID"`
	Quiz       *Quiz  `json:"-" gorm:"foreignKey:QuizID"`
	AssignedTo *User  `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
}

func (Lead) TableName() string {
	return "leads"
}

func (l *Lead) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// DisplayName joins the known name parts, falling back to the email.
func (l *Lead) DisplayName() string {
	var parts []string
	if l.FirstName != nil {
		parts = append(parts, *l.FirstName)
	}
	if l.LastName != nil {
		parts = append(parts, *l.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if l.Email != nil {
		return *l.Email
	}
	return ""
}

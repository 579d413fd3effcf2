package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/crm-service/internal/quiz"
)

type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizPublished QuizStatus = "published"
	QuizArchived  QuizStatus = "archived"
)

type Quiz struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID   string     `json:"company_id" gorm:"not null;index;size:36"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;not null;size:100" validate:"required,slug"`
	Status      QuizStatus `json:"status" gorm:"default:draft;index;size:20" validate:"omitempty,oneof=draft published archived"`

	// Definition of the questions, form settings and tracking ids.
	Config datatypes.JSONType[quiz.Config] `json:"config" gorm:"type:jsonb;not null"`

	PublishedAt *time.Time `json:"published_at"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:36"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Computed fields (not stored)
	LeadCount int `json:"lead_count" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (q *Quiz) IsPublished() bool {
	return q.Status == QuizPublished
}

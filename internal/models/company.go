package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyPlan string

const (
	PlanFree       CompanyPlan = "free"
	PlanStarter    CompanyPlan = "starter"
	PlanPro        CompanyPlan = "pro"
	PlanEnterprise CompanyPlan = "enterprise"
)

// Company is a tenant. Every quiz, lead and deal belongs to exactly one.
type Company struct {
	ID     string      `json:"id" gorm:"primaryKey;size:36"`
	Name   string      `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Slug   string      `json:"slug" gorm:"uniqueIndex;not null;size:100" validate:"required,slug"`
	Plan   CompanyPlan `json:"plan" gorm:"default:free;size:20" validate:"omitempty,oneof=free starter pro enterprise"`
	Domain *string     `json:"domain" gorm:"size:255"`

	// Settings
	Timezone string `json:"timezone" gorm:"default:UTC;size:64"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DealStage string

const (
	StageProspecting DealStage = "PROSPECTING"
	StageProposal    DealStage = "PROPOSAL"
	StageNegotiation DealStage = "NEGOTIATION"
	StageClosedWon   DealStage = "CLOSED_WON"
	StageClosedLost  DealStage = "CLOSED_LOST"
)

var DealStages = []DealStage{StageProspecting, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}

func (s DealStage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

type Deal struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	CompanyID string          `json:"company_id" gorm:"not null;index;size:36"`
	LeadID    string          `json:"lead_id" gorm:"not null;index;size:36"`
	Title     string          `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Stage     DealStage       `json:"stage" gorm:"not null;default:PROSPECTING;index;size:20" validate:"required,deal_stage"`
	Value     decimal.Decimal `json:"value" gorm:"type:numeric(14,2);not null;default:0"`
	Currency  string          `json:"currency" gorm:"size:3;default:USD" validate:"omitempty,len=3"`
	OwnerID   *string         `json:"owner_id" gorm:"index;size:36"`

	ClosedAt  *time.Time     `json:"closed_at" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Deal) TableName() string {
	return "deals"
}

func (d *Deal) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

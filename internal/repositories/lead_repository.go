package repositories

import (
	"context"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"gorm.io/gorm"
)

// LeadRepository reads and writes leads. Every read is confined to one
// company before any caller supplied condition is applied.
type LeadRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lead *models.Lead) error
	GetByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Lead, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, companyID, id string, status models.LeadStatus) error

	// Query returns the company's leads matching the predicate, newest first,
	// together with the total number of matches.
	Query(ctx context.Context, tx *gorm.DB, companyID string, predicate analytics.Predicate, opts ListOptions) ([]*models.Lead, int64, error)

	// Aggregate computes dashboard figures over the matching leads.
	Aggregate(ctx context.Context, tx *gorm.DB, companyID string, predicate analytics.Predicate) (*models.LeadStats, error)
}

type DealRepository interface {
	Create(ctx context.Context, tx *gorm.DB, deal *models.Deal) error
	ListByLead(ctx context.Context, tx *gorm.DB, companyID, leadID string) ([]*models.Deal, error)
	UpdateStage(ctx context.Context, tx *gorm.DB, companyID, id string, stage models.DealStage) error
}

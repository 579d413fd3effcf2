package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"gorm.io/gorm"
)

type DealPostgreSQL struct {
	db *gorm.DB
}

func NewDealPostgreSQL(db *gorm.DB) repositories.DealRepository {
	return &DealPostgreSQL{db: db}
}

func (d *DealPostgreSQL) Create(ctx context.Context, tx *gorm.DB, deal *models.Deal) error {
	db := getDB(d.db, tx)
	return db.WithContext(ctx).Create(deal).Error
}

func (d *DealPostgreSQL) ListByLead(ctx context.Context, tx *gorm.DB, companyID, leadID string) ([]*models.Deal, error) {
	db := getDB(d.db, tx)
	var deals []*models.Deal
	if err := db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ?", companyID, leadID).
		Order("created_at DESC").
		Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// UpdateStage moves a deal and stamps closed_at when it enters a closed stage.
func (d *DealPostgreSQL) UpdateStage(ctx context.Context, tx *gorm.DB, companyID, id string, stage models.DealStage) error {
	db := getDB(d.db, tx)
	updates := map[string]any{"stage": stage, "closed_at": nil}
	if stage.IsClosed() {
		updates["closed_at"] = time.Now()
	}

	result := db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

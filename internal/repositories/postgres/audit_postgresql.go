package postgres

import (
	"context"

	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"gorm.io/gorm"
)

type AuditPostgreSQL struct {
	db *gorm.DB
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{db: db}
}

func (a *AuditPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	db := getDB(a.db, tx)
	return db.WithContext(ctx).Create(entry).Error
}

func (a *AuditPostgreSQL) List(ctx context.Context, tx *gorm.DB, companyID string, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	var (
		entries []*models.AuditLog
		total   int64
	)

	query := getDB(a.db, tx).WithContext(ctx).Model(&models.AuditLog{}).Where("company_id = ?", companyID)
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.EntityType != nil {
		query = query.Where("entity_type = ?", *filters.EntityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(filters.Offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

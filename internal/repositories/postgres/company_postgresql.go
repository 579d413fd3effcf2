package postgres

import (
	"context"

	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"gorm.io/gorm"
)

type CompanyPostgreSQL struct {
	db *gorm.DB
}

func NewCompanyPostgreSQL(db *gorm.DB) repositories.CompanyRepository {
	return &CompanyPostgreSQL{db: db}
}

func (c *CompanyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Company, error) {
	db := getDB(c.db, tx)
	var company models.Company
	if err := db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *CompanyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, company *models.Company) error {
	db := getDB(c.db, tx)
	return db.WithContext(ctx).Create(company).Error
}

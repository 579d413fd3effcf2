package repositories

import (
	"context"

	"github.com/SAP-F-2025/crm-service/internal/models"
	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Quiz, error)
	// GetBySlug is used by the public form and is not tenant scoped.
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Quiz, error)
	List(ctx context.Context, tx *gorm.DB, companyID string, opts ListOptions) ([]*models.Quiz, int64, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, companyID, id string) error

	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *string) (bool, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Company, error)
	Create(ctx context.Context, tx *gorm.DB, company *models.Company) error
}

type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	List(ctx context.Context, tx *gorm.DB, companyID string, filters AuditFilters) ([]*models.AuditLog, int64, error)
}

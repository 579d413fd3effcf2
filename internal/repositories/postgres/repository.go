package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db      *gorm.DB
	company repositories.CompanyRepository
	quiz    repositories.QuizRepository
	lead    repositories.LeadRepository
	deal    repositories.DealRepository
	audit   repositories.AuditRepository
}

func NewRepository(db *gorm.DB) *Repository {
	helpers := NewSharedHelpers(db)
	return &Repository{
		db:      db,
		company: NewCompanyPostgreSQL(db),
		quiz:    NewQuizPostgreSQL(db, helpers),
		lead:    NewLeadPostgreSQL(db, helpers),
		deal:    NewDealPostgreSQL(db),
		audit:   NewAuditPostgreSQL(db),
	}
}

func (r *Repository) Company() repositories.CompanyRepository { return r.company }
func (r *Repository) Quiz() repositories.QuizRepository       { return r.quiz }
func (r *Repository) Lead() repositories.LeadRepository       { return r.lead }
func (r *Repository) Deal() repositories.DealRepository       { return r.deal }
func (r *Repository) Audit() repositories.AuditRepository     { return r.audit }

func (r *Repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository runs transactions inline with a nil tx.
type MockRepository struct {
	company *MockCompanyRepository
	quiz    *MockQuizRepository
	lead    *MockLeadRepository
	deal    *MockDealRepository
	audit   *MockAuditRepository

	transactions int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		company: &MockCompanyRepository{},
		quiz:    &MockQuizRepository{},
		lead:    &MockLeadRepository{},
		deal:    &MockDealRepository{},
		audit:   &MockAuditRepository{},
	}
}

func (m *MockRepository) Company() repositories.CompanyRepository { return m.company }
func (m *MockRepository) Quiz() repositories.QuizRepository       { return m.quiz }
func (m *MockRepository) Lead() repositories.LeadRepository       { return m.lead }
func (m *MockRepository) Deal() repositories.DealRepository       { return m.deal }
func (m *MockRepository) Audit() repositories.AuditRepository     { return m.audit }

func (m *MockRepository) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	m.transactions++
	return fn(nil)
}

func (m *MockRepository) Ping(context.Context) error { return nil }
func (m *MockRepository) Close() error               { return nil }

type MockCompanyRepository struct{ mock.Mock }

func (m *MockCompanyRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Company, error) {
	args := m.Called(ctx, tx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompanyRepository) Create(ctx context.Context, tx *gorm.DB, company *models.Company) error {
	return m.Called(ctx, tx, company).Error(0)
}

type MockQuizRepository struct{ mock.Mock }

func (m *MockQuizRepository) Create(ctx context.Context, tx *gorm.DB, q *models.Quiz) error {
	args := m.Called(ctx, tx, q)
	if q.ID == "" {
		q.ID = "quiz-new"
	}
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Quiz, error) {
	args := m.Called(ctx, tx, companyID, id)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizRepository) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Quiz, error) {
	args := m.Called(ctx, tx, slug)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, tx *gorm.DB, companyID string, opts repositories.ListOptions) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, tx, companyID, opts)
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) Update(ctx context.Context, tx *gorm.DB, q *models.Quiz) error {
	return m.Called(ctx, tx, q).Error(0)
}

func (m *MockQuizRepository) Delete(ctx context.Context, tx *gorm.DB, companyID, id string) error {
	return m.Called(ctx, tx, companyID, id).Error(0)
}

func (m *MockQuizRepository) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *string) (bool, error) {
	args := m.Called(ctx, tx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockLeadRepository struct{ mock.Mock }

func (m *MockLeadRepository) Create(ctx context.Context, tx *gorm.DB, lead *models.Lead) error {
	args := m.Called(ctx, tx, lead)
	if lead.ID == "" {
		lead.ID = "lead-new"
	}
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Lead, error) {
	args := m.Called(ctx, tx, companyID, id)
	if l := args.Get(0); l != nil {
		return l.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, companyID, id string, status models.LeadStatus) error {
	return m.Called(ctx, tx, companyID, id, status).Error(0)
}

func (m *MockLeadRepository) Query(ctx context.Context, tx *gorm.DB, companyID string, predicate analytics.Predicate, opts repositories.ListOptions) ([]*models.Lead, int64, error) {
	args := m.Called(ctx, tx, companyID, predicate, opts)
	return args.Get(0).([]*models.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) Aggregate(ctx context.Context, tx *gorm.DB, companyID string, predicate analytics.Predicate) (*models.LeadStats, error) {
	args := m.Called(ctx, tx, companyID, predicate)
	if s := args.Get(0); s != nil {
		return s.(*models.LeadStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDealRepository struct{ mock.Mock }

func (m *MockDealRepository) Create(ctx context.Context, tx *gorm.DB, deal *models.Deal) error {
	args := m.Called(ctx, tx, deal)
	if deal.ID == "" {
		deal.ID = "deal-new"
	}
	return args.Error(0)
}

func (m *MockDealRepository) ListByLead(ctx context.Context, tx *gorm.DB, companyID, leadID string) ([]*models.Deal, error) {
	args := m.Called(ctx, tx, companyID, leadID)
	return args.Get(0).([]*models.Deal), args.Error(1)
}

func (m *MockDealRepository) UpdateStage(ctx context.Context, tx *gorm.DB, companyID, id string, stage models.DealStage) error {
	return m.Called(ctx, tx, companyID, id, stage).Error(0)
}

type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	return m.Called(ctx, tx, entry).Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, tx *gorm.DB, companyID string, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, tx, companyID, filters)
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) DeletePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

var _ cache.CacheService = (*MockCache)(nil)

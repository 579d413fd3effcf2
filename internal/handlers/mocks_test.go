package handlers

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/services"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// ===== SERVICES =====

type MockQuizService struct{ mock.Mock }

func (m *MockQuizService) Create(ctx context.Context, p *auth.Principal, req *services.CreateQuizRequest, info services.RequestInfo) (*models.Quiz, error) {
	args := m.Called(ctx, p, req, info)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizService) Get(ctx context.Context, p *auth.Principal, id string) (*models.Quiz, error) {
	args := m.Called(ctx, p, id)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizService) List(ctx context.Context, p *auth.Principal, opts repositories.ListOptions) (*services.QuizList, error) {
	args := m.Called(ctx, p, opts)
	if l := args.Get(0); l != nil {
		return l.(*services.QuizList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizService) Update(ctx context.Context, p *auth.Principal, id string, req *services.UpdateQuizRequest, info services.RequestInfo) (*models.Quiz, error) {
	args := m.Called(ctx, p, id, req, info)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizService) Publish(ctx context.Context, p *auth.Principal, id string, info services.RequestInfo) (*models.Quiz, error) {
	args := m.Called(ctx, p, id, info)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizService) Delete(ctx context.Context, p *auth.Principal, id string, info services.RequestInfo) error {
	return m.Called(ctx, p, id, info).Error(0)
}

func (m *MockQuizService) GetPublic(ctx context.Context, slug string) (*services.PublicQuiz, error) {
	args := m.Called(ctx, slug)
	if q := args.Get(0); q != nil {
		return q.(*services.PublicQuiz), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSubmissionService struct{ mock.Mock }

func (m *MockSubmissionService) Submit(ctx context.Context, slug string, req *services.SubmissionRequest) (*services.SubmissionResult, error) {
	args := m.Called(ctx, slug, req)
	if r := args.Get(0); r != nil {
		return r.(*services.SubmissionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAnalyticsService struct{ mock.Mock }

func (m *MockAnalyticsService) Overview(ctx context.Context, p *auth.Principal, token, dateRange string) (*services.AnalyticsOverview, error) {
	args := m.Called(ctx, p, token, dateRange)
	if o := args.Get(0); o != nil {
		return o.(*services.AnalyticsOverview), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) Leads(ctx context.Context, p *auth.Principal, token, dateRange string, opts repositories.ListOptions) (*services.LeadPage, error) {
	args := m.Called(ctx, p, token, dateRange, opts)
	if l := args.Get(0); l != nil {
		return l.(*services.LeadPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) EncodeFilters(ctx context.Context, rows []analytics.FilterRow) (string, error) {
	args := m.Called(ctx, rows)
	return args.String(0), args.Error(1)
}

type MockExportService struct{ mock.Mock }

func (m *MockExportService) ExportLeads(ctx context.Context, p *auth.Principal, req *services.ExportRequest, info services.RequestInfo) (*services.ExportFile, error) {
	args := m.Called(ctx, p, req, info)
	if f := args.Get(0); f != nil {
		return f.(*services.ExportFile), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLeadService struct{ mock.Mock }

func (m *MockLeadService) Get(ctx context.Context, p *auth.Principal, id string) (*models.Lead, error) {
	args := m.Called(ctx, p, id)
	if l := args.Get(0); l != nil {
		return l.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadService) UpdateStatus(ctx context.Context, p *auth.Principal, id string, req *services.UpdateLeadStatusRequest, info services.RequestInfo) error {
	return m.Called(ctx, p, id, req, info).Error(0)
}

func (m *MockLeadService) CreateDeal(ctx context.Context, p *auth.Principal, leadID string, req *services.CreateDealRequest, info services.RequestInfo) (*models.Deal, error) {
	args := m.Called(ctx, p, leadID, req, info)
	if d := args.Get(0); d != nil {
		return d.(*models.Deal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadService) UpdateDealStage(ctx context.Context, p *auth.Principal, dealID string, req *services.UpdateDealStageRequest, info services.RequestInfo) error {
	return m.Called(ctx, p, dealID, req, info).Error(0)
}

type MockAuditService struct{ mock.Mock }

func (m *MockAuditService) List(ctx context.Context, p *auth.Principal, filters repositories.AuditFilters) (*services.AuditPage, error) {
	args := m.Called(ctx, p, filters)
	if page := args.Get(0); page != nil {
		return page.(*services.AuditPage), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockServiceManager struct {
	quiz       *MockQuizService
	submission *MockSubmissionService
	analytics  *MockAnalyticsService
	export     *MockExportService
	lead       *MockLeadService
	audit      *MockAuditService
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		quiz:       &MockQuizService{},
		submission: &MockSubmissionService{},
		analytics:  &MockAnalyticsService{},
		export:     &MockExportService{},
		lead:       &MockLeadService{},
		audit:      &MockAuditService{},
	}
}

func (m *mockServiceManager) Quiz() services.QuizService             { return m.quiz }
func (m *mockServiceManager) Submission() services.SubmissionService { return m.submission }
func (m *mockServiceManager) Analytics() services.AnalyticsService   { return m.analytics }
func (m *mockServiceManager) Export() services.ExportService         { return m.export }
func (m *mockServiceManager) Lead() services.LeadService             { return m.lead }
func (m *mockServiceManager) Audit() services.AuditService           { return m.audit }

// ===== REPOSITORY =====

// stubRepository answers only what the router itself needs.
type stubRepository struct {
	repositories.Repository
	pingErr   error
	companies map[string]bool
}

func (s *stubRepository) Ping(context.Context) error { return s.pingErr }

func (s *stubRepository) Company() repositories.CompanyRepository {
	return stubCompanies{known: s.companies}
}

type stubCompanies struct {
	repositories.CompanyRepository
	known map[string]bool
}

func (s stubCompanies) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.Company, error) {
	if s.known[id] {
		return &models.Company{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ===== AUTH =====

type tokenVerifier map[string]*auth.Principal

func (v tokenVerifier) Verify(_ context.Context, token string) (*auth.Principal, error) {
	p, ok := v[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	copied := *p
	return &copied, nil
}

package services

import (
	"log/slog"

	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/events"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/validator"
)

// ServiceManager hands out the services used by the HTTP layer.
type ServiceManager interface {
	Quiz() QuizService
	Submission() SubmissionService
	Analytics() AnalyticsService
	Export() ExportService
	Lead() LeadService
	Audit() AuditService
}

type serviceManager struct {
	quiz       QuizService
	submission SubmissionService
	analytics  AnalyticsService
	export     ExportService
	lead       LeadService
	audit      AuditService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	analyticsConfig AnalyticsConfig,
	logger *slog.Logger,
	validator *validator.Validator,
) ServiceManager {
	return &serviceManager{
		quiz:       NewQuizService(repo, cacheService, publisher, logger, validator),
		submission: NewSubmissionService(repo, cacheService, publisher, logger, validator),
		analytics:  NewAnalyticsService(repo, cacheService, analyticsConfig, logger, validator),
		export:     NewExportService(repo, publisher, analyticsConfig.Location, logger),
		lead:       NewLeadService(repo, cacheService, logger, validator),
		audit:      NewAuditService(repo, logger),
	}
}

func (m *serviceManager) Quiz() QuizService             { return m.quiz }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Analytics() AnalyticsService   { return m.analytics }
func (m *serviceManager) Export() ExportService         { return m.export }
func (m *serviceManager) Lead() LeadService             { return m.lead }
func (m *serviceManager) Audit() AuditService           { return m.audit }

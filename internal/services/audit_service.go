package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"gorm.io/datatypes"
)

// RequestInfo is the client context recorded alongside audit entries.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

type AuditService interface {
	List(ctx context.Context, p *auth.Principal, filters repositories.AuditFilters) (*AuditPage, error)
}

type AuditPage struct {
	Entries []*models.AuditLog `json:"entries"`
	Total   int64              `json:"total"`
}

type auditService struct {
	repo   repositories.Repository
	logger *ServiceLogger
}

func NewAuditService(repo repositories.Repository, logger *slog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: NewServiceLogger(logger, "audit"),
	}
}

func (s *auditService) List(ctx context.Context, p *auth.Principal, filters repositories.AuditFilters) (page *AuditPage, err error) {
	op := s.logger.Operation(ctx, "list_audit", p.CompanyID)
	defer func() { op.LogResult("", err) }()

	if !p.Can(auth.PermAuditRead) {
		return nil, NewPermissionError(p.UserID, p.CompanyID, "audit_log", "read", "role cannot read the audit log")
	}

	entries, total, err := s.repo.Audit().List(ctx, nil, p.CompanyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return &AuditPage{Entries: entries, Total: total}, nil
}

// newAuditEntry records an action taken by p. Under impersonation the entry
// is written to the impersonated company and names the acting admin.
func newAuditEntry(p *auth.Principal, info RequestInfo, action models.AuditAction, entityType string, entityID *string, changes map[string]any) *models.AuditLog {
	entry := &models.AuditLog{
		CompanyID:      p.CompanyID,
		Action:         action,
		ActorID:        &p.UserID,
		ImpersonatorID: p.ImpersonatorID,
		EntityType:     entityType,
		EntityID:       entityID,
		IPAddress:      info.IPAddress,
		UserAgent:      info.UserAgent,
	}
	if p.Email != "" {
		entry.ActorEmail = &p.Email
	}
	if len(changes) > 0 {
		if data, err := json.Marshal(changes); err == nil {
			entry.Changes = datatypes.JSON(data)
		}
	}
	return entry
}

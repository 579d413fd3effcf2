package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/validator"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LeadService manages a lead's pipeline position and its deals.
type LeadService interface {
	Get(ctx context.Context, p *auth.Principal, id string) (*models.Lead, error)
	UpdateStatus(ctx context.Context, p *auth.Principal, id string, req *UpdateLeadStatusRequest, info RequestInfo) error
	CreateDeal(ctx context.Context, p *auth.Principal, leadID string, req *CreateDealRequest, info RequestInfo) (*models.Deal, error)
	UpdateDealStage(ctx context.Context, p *auth.Principal, dealID string, req *UpdateDealStageRequest, info RequestInfo) error
}

type UpdateLeadStatusRequest struct {
	Status models.LeadStatus `json:"status" validate:"required,lead_status"`
}

type CreateDealRequest struct {
	Title    string           `json:"title" validate:"required,max=200"`
	Stage    models.DealStage `json:"stage" validate:"omitempty,deal_stage"`
	Value    decimal.Decimal  `json:"value"`
	Currency string           `json:"currency" validate:"omitempty,len=3"`
	OwnerID  *string          `json:"owner_id" validate:"omitempty,max=36"`
}

type UpdateDealStageRequest struct {
	Stage models.DealStage `json:"stage" validate:"required,deal_stage"`
}

type leadService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewLeadService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) LeadService {
	return &leadService{
		repo:      repo,
		cache:     cacheService,
		validator: validator,
		logger:    NewServiceLogger(logger, "lead"),
	}
}

func (s *leadService) Get(ctx context.Context, p *auth.Principal, id string) (*models.Lead, error) {
	if !p.Can(auth.PermLeadsRead) {
		return nil, NewPermissionError(p.UserID, id, "lead", "read", "role cannot view leads")
	}
	return s.load(ctx, nil, p.CompanyID, id)
}

func (s *leadService) UpdateStatus(ctx context.Context, p *auth.Principal, id string, req *UpdateLeadStatusRequest, info RequestInfo) (err error) {
	op := s.logger.Operation(ctx, "update_lead_status", p.CompanyID)
	defer func() { op.LogResult(id, err) }()

	if !p.Can(auth.PermLeadsWrite) {
		return NewPermissionError(p.UserID, id, "lead", "update", "role cannot change leads")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Lead().UpdateStatus(ctx, tx, p.CompanyID, id, req.Status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return fmt.Errorf("failed to update lead status: %w", err)
		}
		return s.repo.Audit().Create(ctx, tx, newAuditEntry(p, info, models.AuditLeadUpdated, "lead", &id, map[string]any{
			"status": req.Status,
		}))
	})
	if err != nil {
		return err
	}

	s.invalidateAnalytics(ctx, p.CompanyID)
	return nil
}

func (s *leadService) CreateDeal(ctx context.Context, p *auth.Principal, leadID string, req *CreateDealRequest, info RequestInfo) (deal *models.Deal, err error) {
	op := s.logger.Operation(ctx, "create_deal", p.CompanyID)
	defer func() { op.LogResult(leadID, err) }()

	if !p.Can(auth.PermLeadsWrite) {
		return nil, NewPermissionError(p.UserID, leadID, "deal", "create", "role cannot change leads")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Value.IsNegative() {
		return nil, ValidationErrors{{Field: "value", Message: "must not be negative", Value: req.Value.String(), Rule: "min"}}
	}

	deal = &models.Deal{
		CompanyID: p.CompanyID,
		LeadID:    leadID,
		Title:     req.Title,
		Stage:     req.Stage,
		Value:     req.Value,
		Currency:  req.Currency,
		OwnerID:   req.OwnerID,
	}
	if deal.Stage == "" {
		deal.Stage = models.StageProspecting
	}
	if deal.Currency == "" {
		deal.Currency = "USD"
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		lead, err := s.load(ctx, tx, p.CompanyID, leadID)
		if err != nil {
			return err
		}
		if lead.Status == models.LeadLost {
			return NewBusinessRuleError("deal_on_lost_lead", "Cannot open a deal for a lost lead",
				map[string]interface{}{"lead_id": leadID})
		}
		if err := s.repo.Deal().Create(ctx, tx, deal); err != nil {
			return fmt.Errorf("failed to create deal: %w", err)
		}
		return s.repo.Audit().Create(ctx, tx, newAuditEntry(p, info, models.AuditDealCreated, "deal", &deal.ID, map[string]any{
			"lead_id": leadID,
			"stage":   deal.Stage,
			"value":   deal.Value.String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx, p.CompanyID)
	return deal, nil
}

func (s *leadService) UpdateDealStage(ctx context.Context, p *auth.Principal, dealID string, req *UpdateDealStageRequest, info RequestInfo) (err error) {
	op := s.logger.Operation(ctx, "update_deal_stage", p.CompanyID)
	defer func() { op.LogResult(dealID, err) }()

	if !p.Can(auth.PermLeadsWrite) {
		return NewPermissionError(p.UserID, dealID, "deal", "update", "role cannot change leads")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Deal().UpdateStage(ctx, tx, p.CompanyID, dealID, req.Stage); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to update deal stage: %w", err)
		}
		return s.repo.Audit().Create(ctx, tx, newAuditEntry(p, info, models.AuditDealUpdated, "deal", &dealID, map[string]any{
			"stage": req.Stage,
		}))
	})
	if err != nil {
		return err
	}

	s.invalidateAnalytics(ctx, p.CompanyID)
	return nil
}

func (s *leadService) load(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Lead, error) {
	lead, err := s.repo.Lead().GetByID(ctx, tx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	return lead, nil
}

func (s *leadService) invalidateAnalytics(ctx context.Context, companyID string) {
	if err := s.cache.DeletePattern(ctx, cache.AnalyticsPattern(companyID)); err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to invalidate analytics cache", "company_id", companyID, "error", err)
	}
}

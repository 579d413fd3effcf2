package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/events"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/quiz"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionService turns public quiz submissions into leads.
type SubmissionService interface {
	Submit(ctx context.Context, slug string, req *SubmissionRequest) (*SubmissionResult, error)
}

type SubmissionRequest struct {
	Responses []quiz.RawResponse `json:"responses" validate:"required,min=1,max=200,dive"`
	Metadata  SubmissionMetadata `json:"metadata"`
}

// SubmissionMetadata is the browsing context captured with a submission.
type SubmissionMetadata struct {
	UTMSource   string `json:"utmSource,omitempty" validate:"max=200"`
	UTMMedium   string `json:"utmMedium,omitempty" validate:"max=200"`
	UTMCampaign string `json:"utmCampaign,omitempty" validate:"max=200"`
	Referrer    string `json:"referrer,omitempty" validate:"max=2000"`

	// Filled by the handler, not the client.
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

type SubmissionResult struct {
	LeadID          string  `json:"lead_id"`
	ThankYouMessage string  `json:"thank_you_message,omitempty"`
	RedirectURL     *string `json:"redirect_url,omitempty"`
}

type submissionService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewSubmissionService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher,
	logger *slog.Logger, validator *validator.Validator) SubmissionService {
	return &submissionService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		validator: validator,
		logger:    NewServiceLogger(logger, "submission"),
	}
}

func (s *submissionService) Submit(ctx context.Context, slug string, req *SubmissionRequest) (result *SubmissionResult, err error) {
	if req == nil || len(req.Responses) == 0 {
		return nil, ErrEmptySubmission
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	q, err := loadPublishedQuiz(ctx, s.repo, s.cache, s.logger.Logger(), slug)
	if err != nil {
		return nil, err
	}

	op := s.logger.Operation(ctx, "submit_quiz", q.CompanyID)
	defer func() {
		var leadID string
		if result != nil {
			leadID = result.LeadID
		}
		op.LogResult(leadID, err)
	}()

	cfg := q.Config.Data()
	processed := quiz.Process(cfg, req.Responses)

	meta := req.Metadata
	if meta.UTMSource == "" {
		meta.UTMSource = cfg.Tracking.UTMSource
	}
	if meta.UTMMedium == "" {
		meta.UTMMedium = cfg.Tracking.UTMMedium
	}
	if meta.UTMCampaign == "" {
		meta.UTMCampaign = cfg.Tracking.UTMCampaign
	}
	metadata, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission metadata: %w", err)
	}

	lead := &models.Lead{
		CompanyID: q.CompanyID,
		QuizID:    &q.ID,
		Email:     processed.Contact.Email,
		Phone:     processed.Contact.Phone,
		FirstName: processed.Contact.FirstName,
		LastName:  processed.Contact.LastName,
		Status:    models.LeadNew,
		Source:    models.SourceQuiz,
		Score:     processed.Score,
		Responses: datatypes.NewJSONType(req.Responses),
		Metadata:  datatypes.JSON(metadata),
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Lead().Create(ctx, tx, lead); err != nil {
			return fmt.Errorf("failed to create lead: %w", err)
		}

		changes, _ := json.Marshal(map[string]any{
			"quiz_id": q.ID,
			"score":   processed.Score,
			"source":  models.SourceQuiz,
		})
		entry := &models.AuditLog{
			CompanyID:  q.CompanyID,
			Action:     models.AuditLeadCreated,
			EntityType: "lead",
			EntityID:   &lead.ID,
			Changes:    datatypes.JSON(changes),
			IPAddress:  meta.IPAddress,
			UserAgent:  meta.UserAgent,
		}
		if err := s.repo.Audit().Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCreated(ctx, q, lead)

	if err := s.cache.DeletePattern(ctx, cache.AnalyticsPattern(q.CompanyID)); err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to invalidate analytics cache",
			"company_id", q.CompanyID, "error", err)
	}

	return &SubmissionResult{
		LeadID:          lead.ID,
		ThankYouMessage: cfg.Settings.ThankYouMessage,
		RedirectURL:     cfg.Settings.RedirectURL,
	}, nil
}

// publishCreated announces the lead. The lead is already committed, so a
// broker failure is logged and not returned to the visitor.
func (s *submissionService) publishCreated(ctx context.Context, q *models.Quiz, lead *models.Lead) {
	event := events.NewLeadEvent(events.EventLeadCreated, lead.CompanyID, events.LeadCreatedEvent{
		LeadID:    lead.ID,
		QuizID:    lead.QuizID,
		QuizTitle: q.Title,
		Email:     lead.Email,
		Phone:     lead.Phone,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Score:     lead.Score,
		Source:    string(lead.Source),
	})
	if err := s.publisher.PublishLeadEvent(ctx, event); err != nil {
		s.logger.Logger().ErrorContext(ctx, "Failed to publish lead created event",
			"lead_id", lead.ID, "company_id", lead.CompanyID, "error", err)
	}
}

// loadPublishedQuiz returns the quiz behind a public slug, reading through
// the cache. Drafts and archived quizzes are reported as not accepting
// submissions.
func loadPublishedQuiz(ctx context.Context, repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, slug string) (*models.Quiz, error) {
	key := cache.PublicQuizKey(slug)

	var cached models.Quiz
	if err := cacheService.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	q, err := repo.Quiz().GetBySlug(ctx, nil, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	if !q.IsPublished() {
		return nil, ErrQuizNotPublished
	}

	if err := cacheService.Set(ctx, key, q, publicQuizTTL); err != nil {
		logger.WarnContext(ctx, "Public quiz cache write failed", "key", key, "error", err)
	}
	return q, nil
}

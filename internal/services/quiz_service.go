package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/events"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/quiz"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const publicQuizTTL = 10 * time.Minute

type QuizService interface {
	Create(ctx context.Context, p *auth.Principal, req *CreateQuizRequest, info RequestInfo) (*models.Quiz, error)
	Get(ctx context.Context, p *auth.Principal, id string) (*models.Quiz, error)
	List(ctx context.Context, p *auth.Principal, opts repositories.ListOptions) (*QuizList, error)
	Update(ctx context.Context, p *auth.Principal, id string, req *UpdateQuizRequest, info RequestInfo) (*models.Quiz, error)
	Publish(ctx context.Context, p *auth.Principal, id string, info RequestInfo) (*models.Quiz, error)
	Delete(ctx context.Context, p *auth.Principal, id string, info RequestInfo) error

	// GetPublic returns a published quiz for the anonymous form.
	GetPublic(ctx context.Context, slug string) (*PublicQuiz, error)
}

type CreateQuizRequest struct {
	Title       string      `json:"title" validate:"required,min=1,max=200"`
	Description *string     `json:"description" validate:"omitempty,max=1000"`
	Slug        string      `json:"slug" validate:"required,max=100,slug"`
	Config      quiz.Config `json:"config" validate:"-"`
}

type UpdateQuizRequest struct {
	Title       *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string      `json:"description" validate:"omitempty,max=1000"`
	Slug        *string      `json:"slug" validate:"omitempty,max=100,slug"`
	Config      *quiz.Config `json:"config" validate:"-"`
}

type QuizList struct {
	Quizzes []*models.Quiz `json:"quizzes"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// PublicQuiz is the part of a quiz the anonymous form renders.
type PublicQuiz struct {
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Slug        string         `json:"slug"`
	Questions   quiz.Questions `json:"questions"`
	Settings    quiz.Settings  `json:"settings"`
}

type quizService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
	now       func() time.Time
}

func NewQuizService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher,
	logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		validator: validator,
		logger:    NewServiceLogger(logger, "quiz"),
		now:       time.Now,
	}
}

func (s *quizService) Create(ctx context.Context, p *auth.Principal, req *CreateQuizRequest, info RequestInfo) (q *models.Quiz, err error) {
	op := s.logger.Operation(ctx, "create_quiz", p.CompanyID)
	defer func() { op.LogResult(quizID(q), err) }()

	if !p.Can(auth.PermQuizzesWrite) {
		return nil, NewPermissionError(p.UserID, "", "quiz", "create", "role cannot author quizzes")
	}
	if err := s.validateDefinition(req, req.Config); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, req.Slug, nil); err != nil {
		return nil, err
	}

	q = &models.Quiz{
		CompanyID:   p.CompanyID,
		Title:       req.Title,
		Description: req.Description,
		Slug:        req.Slug,
		Status:      models.QuizDraft,
		Config:      datatypes.NewJSONType(req.Config),
		CreatedBy:   p.UserID,
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Quiz().Create(ctx, tx, q); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		entry := newAuditEntry(p, info, models.AuditQuizCreated, "quiz", &q.ID, map[string]any{
			"title": q.Title,
			"slug":  q.Slug,
		})
		return s.repo.Audit().Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quizService) Get(ctx context.Context, p *auth.Principal, id string) (*models.Quiz, error) {
	if !p.Can(auth.PermQuizzesRead) {
		return nil, NewPermissionError(p.UserID, id, "quiz", "read", "role cannot view quizzes")
	}
	return s.load(ctx, nil, p.CompanyID, id)
}

func (s *quizService) List(ctx context.Context, p *auth.Principal, opts repositories.ListOptions) (*QuizList, error) {
	if !p.Can(auth.PermQuizzesRead) {
		return nil, NewPermissionError(p.UserID, "", "quiz", "list", "role cannot view quizzes")
	}

	quizzes, total, err := s.repo.Quiz().List(ctx, nil, p.CompanyID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return &QuizList{Quizzes: quizzes, Total: total, Limit: opts.Limit, Offset: opts.Offset}, nil
}

func (s *quizService) Update(ctx context.Context, p *auth.Principal, id string, req *UpdateQuizRequest, info RequestInfo) (q *models.Quiz, err error) {
	op := s.logger.Operation(ctx, "update_quiz", p.CompanyID)
	defer func() { op.LogResult(id, err) }()

	if !p.Can(auth.PermQuizzesWrite) {
		return nil, NewPermissionError(p.UserID, id, "quiz", "update", "role cannot author quizzes")
	}

	q, err = s.load(ctx, nil, p.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if q.Status == models.QuizArchived {
		return nil, ErrQuizNotEditable
	}

	cfg := q.Config.Data()
	if req.Config != nil {
		cfg = *req.Config
	}
	if err := s.validateDefinition(req, cfg); err != nil {
		return nil, err
	}

	oldSlug := q.Slug
	changes := map[string]any{}
	if req.Title != nil && *req.Title != q.Title {
		changes["title"] = map[string]string{"from": q.Title, "to": *req.Title}
		q.Title = *req.Title
	}
	if req.Description != nil {
		q.Description = req.Description
		changes["description"] = true
	}
	if req.Slug != nil && *req.Slug != q.Slug {
		if err := s.ensureSlugFree(ctx, *req.Slug, &q.ID); err != nil {
			return nil, err
		}
		changes["slug"] = map[string]string{"from": q.Slug, "to": *req.Slug}
		q.Slug = *req.Slug
	}
	if req.Config != nil {
		q.Config = datatypes.NewJSONType(cfg)
		changes["questions"] = len(cfg.Questions)
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Quiz().Update(ctx, tx, q); err != nil {
			return fmt.Errorf("failed to update quiz: %w", err)
		}
		return s.repo.Audit().Create(ctx, tx, newAuditEntry(p, info, models.AuditQuizUpdated, "quiz", &q.ID, changes))
	})
	if err != nil {
		return nil, err
	}

	s.forgetPublic(ctx, oldSlug, q.Slug)
	return q, nil
}

func (s *quizService) Publish(ctx context.Context, p *auth.Principal, id string, info RequestInfo) (q *models.Quiz, err error) {
	op := s.logger.Operation(ctx, "publish_quiz", p.CompanyID)
	defer func() { op.LogResult(id, err) }()

	if !p.Can(auth.PermQuizzesPublish) {
		return nil, NewPermissionError(p.UserID, id, "quiz", "publish", "role cannot publish quizzes")
	}

	q, err = s.load(ctx, nil, p.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if q.IsPublished() {
		return q, nil
	}
	if q.Status == models.QuizArchived {
		return nil, ErrQuizNotEditable
	}
	if errs := s.validator.Quiz().ValidateConfig(q.Config.Data()); len(errs) > 0 {
		return nil, validator.Prefixed("config", errs)
	}

	now := s.now().UTC()
	q.Status = models.QuizPublished
	q.PublishedAt = &now

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Quiz().Update(ctx, tx, q); err != nil {
			return fmt.Errorf("failed to publish quiz: %w", err)
		}
		return s.repo.Audit().Create(ctx, tx, newAuditEntry(p, info, models.AuditQuizPublished, "quiz", &q.ID, map[string]any{
			"slug": q.Slug,
		}))
	})
	if err != nil {
		return nil, err
	}

	s.forgetPublic(ctx, q.Slug)

	event := events.NewLeadEvent(events.EventQuizPublished, q.CompanyID, events.QuizPublishedEvent{
		QuizID:    q.ID,
		Title:     q.Title,
		Slug:      q.Slug,
		Published: now,
	})
	if err := s.publisher.PublishLeadEvent(ctx, event); err != nil {
		s.logger.Logger().ErrorContext(ctx, "Failed to publish quiz published event", "quiz_id", q.ID, "error", err)
	}
	return q, nil
}

func (s *quizService) Delete(ctx context.Context, p *auth.Principal, id string, info RequestInfo) (err error) {
	op := s.logger.Operation(ctx, "delete_quiz", p.CompanyID)
	defer func() { op.LogResult(id, err) }()

	if !p.Can(auth.PermQuizzesWrite) {
		return NewPermissionError(p.UserID, id, "quiz", "delete", "role cannot author quizzes")
	}

	q, err := s.load(ctx, nil, p.CompanyID, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Quiz().Delete(ctx, tx, p.CompanyID, id); err != nil {
			return fmt.Errorf("failed to delete quiz: %w", err)
		}
		return s.repo.Audit().Create(ctx, tx, newAuditEntry(p, info, models.AuditQuizDeleted, "quiz", &q.ID, map[string]any{
			"title": q.Title,
		}))
	})
	if err != nil {
		return err
	}

	s.forgetPublic(ctx, q.Slug)
	return nil
}

func (s *quizService) GetPublic(ctx context.Context, slug string) (*PublicQuiz, error) {
	q, err := loadPublishedQuiz(ctx, s.repo, s.cache, s.logger.Logger(), slug)
	if err != nil {
		return nil, err
	}

	cfg := q.Config.Data()
	return &PublicQuiz{
		Title:       q.Title,
		Description: q.Description,
		Slug:        q.Slug,
		Questions:   cfg.Questions,
		Settings:    cfg.Settings,
	}, nil
}

func (s *quizService) load(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Quiz, error) {
	q, err := s.repo.Quiz().GetByID(ctx, tx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	return q, nil
}

func (s *quizService) validateDefinition(req interface{}, cfg quiz.Config) error {
	var errs ValidationErrors
	if err := s.validator.ValidateStruct(req); err != nil {
		var ve ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		errs = append(errs, ve...)
	}
	errs = append(errs, validator.Prefixed("config", s.validator.Quiz().ValidateConfig(cfg))...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *quizService) ensureSlugFree(ctx context.Context, slug string, excludeID *string) error {
	taken, err := s.repo.Quiz().ExistsBySlug(ctx, nil, slug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}

func (s *quizService) forgetPublic(ctx context.Context, slugs ...string) {
	for _, slug := range slugs {
		if err := s.cache.Delete(ctx, cache.PublicQuizKey(slug)); err != nil {
			s.logger.Logger().WarnContext(ctx, "Failed to drop cached quiz", "slug", slug, "error", err)
		}
	}
}

func quizID(q *models.Quiz) string {
	if q == nil {
		return ""
	}
	return q.ID
}

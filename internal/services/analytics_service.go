package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/validator"
)

// AnalyticsService answers dashboard queries described by filter tokens.
type AnalyticsService interface {
	// Overview aggregates the company's leads matching the token and range.
	Overview(ctx context.Context, p *auth.Principal, token, dateRange string) (*AnalyticsOverview, error)

	// Leads lists the matching leads, newest first.
	Leads(ctx context.Context, p *auth.Principal, token, dateRange string, opts repositories.ListOptions) (*LeadPage, error)

	// EncodeFilters validates rows and returns the token for a bookmarkable URL.
	EncodeFilters(ctx context.Context, rows []analytics.FilterRow) (string, error)
}

type AnalyticsOverview struct {
	Stats       *models.LeadStats      `json:"stats"`
	Filters     []analytics.FilterRow  `json:"filters"`
	DateRange   analytics.DateRange    `json:"date_range"`
	Ignored     []analytics.DroppedRow `json:"ignored_filters,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
}

type LeadPage struct {
	Leads   []*models.Lead         `json:"leads"`
	Total   int64                  `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
	Ignored []analytics.DroppedRow `json:"ignored_filters,omitempty"`
}

type AnalyticsConfig struct {
	Location *time.Location
	CacheTTL time.Duration
}

type analyticsService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	compiler  *analytics.Compiler
	validator *validator.Validator
	logger    *ServiceLogger
	cacheTTL  time.Duration
}

func NewAnalyticsService(repo repositories.Repository, cacheService cache.CacheService, cfg AnalyticsConfig,
	logger *slog.Logger, validator *validator.Validator) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		cache:     cacheService,
		compiler:  analytics.NewCompiler(cfg.Location),
		validator: validator,
		logger:    NewServiceLogger(logger, "analytics"),
		cacheTTL:  cfg.CacheTTL,
	}
}

func (s *analyticsService) Overview(ctx context.Context, p *auth.Principal, token, dateRange string) (overview *AnalyticsOverview, err error) {
	op := s.logger.Operation(ctx, "analytics_overview", p.CompanyID)
	defer func() { op.LogResult("", err) }()

	if !p.Can(auth.PermAnalyticsRead) {
		return nil, NewPermissionError(p.UserID, p.CompanyID, "analytics", "read", "role cannot view analytics")
	}

	state := analytics.FilterState{
		Rows:      analytics.DeserializeFilters(token),
		DateRange: analytics.ParseDateRange(dateRange),
	}
	key := cache.AnalyticsKey(p.CompanyID, analytics.SerializeFilters(state.Rows), string(state.DateRange))

	var cached AnalyticsOverview
	switch err := s.cache.Get(ctx, key, &cached); {
	case err == nil:
		return &cached, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Logger().WarnContext(ctx, "Analytics cache read failed", "key", key, "error", err)
	}

	predicate := s.compile(ctx, p, state)
	stats, err := s.repo.Lead().Aggregate(ctx, nil, p.CompanyID, predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leads: %w", err)
	}

	overview = &AnalyticsOverview{
		Stats:       stats,
		Filters:     state.Rows,
		DateRange:   state.DateRange,
		Ignored:     predicate.Dropped,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, overview, s.cacheTTL); err != nil {
			s.logger.Logger().WarnContext(ctx, "Analytics cache write failed", "key", key, "error", err)
		}
	}
	return overview, nil
}

func (s *analyticsService) Leads(ctx context.Context, p *auth.Principal, token, dateRange string, opts repositories.ListOptions) (*LeadPage, error) {
	if !p.Can(auth.PermLeadsRead) {
		return nil, NewPermissionError(p.UserID, p.CompanyID, "lead", "list", "role cannot view leads")
	}

	predicate := s.compile(ctx, p, analytics.FilterState{
		Rows:      analytics.DeserializeFilters(token),
		DateRange: analytics.ParseDateRange(dateRange),
	})

	leads, total, err := s.repo.Lead().Query(ctx, nil, p.CompanyID, predicate, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	return &LeadPage{
		Leads:   leads,
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		Ignored: predicate.Dropped,
	}, nil
}

func (s *analyticsService) EncodeFilters(_ context.Context, rows []analytics.FilterRow) (string, error) {
	var errs ValidationErrors
	for i := range rows {
		if err := s.validator.ValidateStruct(&rows[i]); err != nil {
			var ve ValidationErrors
			if !errors.As(err, &ve) {
				return "", err
			}
			errs = append(errs, validator.Prefixed(validator.Indexed("rows", i), ve)...)
			continue
		}
		if !analytics.IsLegal(rows[i].Field, rows[i].Operator) {
			errs = append(errs, ValidationError{
				Field:   validator.Indexed("rows", i) + ".operator",
				Message: fmt.Sprintf("is not allowed for field %s", rows[i].Field),
				Value:   rows[i].Operator,
				Rule:    "filter_operator",
			})
		}
	}
	if len(errs) > 0 {
		return "", errs
	}
	return analytics.SerializeFilters(rows), nil
}

// compile builds the predicate and reports rows that were ignored.
func (s *analyticsService) compile(ctx context.Context, p *auth.Principal, state analytics.FilterState) analytics.Predicate {
	predicate := s.compiler.CompileState(state)
	for _, d := range predicate.Dropped {
		s.logger.Logger().DebugContext(ctx, "Ignoring filter row",
			"company_id", p.CompanyID, "row_id", d.ID, "reason", d.Reason)
	}
	return predicate
}

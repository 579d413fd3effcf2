package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAnalyticsService(repo *MockRepository, c cache.CacheService) AnalyticsService {
	return NewAnalyticsService(repo, c, AnalyticsConfig{Location: time.UTC, CacheTTL: time.Minute}, discardLogger(), validator.New())
}

func sampleStats() *models.LeadStats {
	return &models.LeadStats{
		TotalLeads:    3,
		ByStatus:      map[models.LeadStatus]int64{models.LeadNew: 2, models.LeadConverted: 1},
		BySource:      map[models.LeadSource]int64{models.SourceQuiz: 3},
		AverageScore:  55,
		PipelineValue: decimal.NewFromInt(1200),
		WonValue:      decimal.Zero,
	}
}

func TestAnalyticsService_Overview(t *testing.T) {
	repo := NewMockRepository()
	cacheMock := &MockCache{}
	svc := newAnalyticsService(repo, cacheMock)

	token := analytics.SerializeFilters([]analytics.FilterRow{
		{ID: "r1", Field: analytics.FieldStatus, Operator: analytics.OpEquals, Value: strPtr("NEW")},
		{ID: "r2", Field: analytics.FieldScore, Operator: analytics.OpContains, Value: strPtr("5")},
	})

	cacheMock.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(cache.ErrCacheMiss)
	cacheMock.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(nil)

	var seen analytics.Predicate
	repo.lead.On("Aggregate", mock.Anything, mock.Anything, "company-1", mock.Anything).
		Run(func(args mock.Arguments) { seen = args.Get(3).(analytics.Predicate) }).
		Return(sampleStats(), nil)

	overview, err := svc.Overview(context.Background(), viewer(), token, "7d")
	require.NoError(t, err)

	assert.Equal(t, int64(3), overview.Stats.TotalLeads)
	assert.Equal(t, analytics.RangeLast7, overview.DateRange)
	assert.Len(t, overview.Filters, 2)
	require.Len(t, overview.Ignored, 1)
	assert.Equal(t, "r2", overview.Ignored[0].ID)

	// status row plus the 7 day creation window
	require.Len(t, seen.Clauses, 2)
	assert.Equal(t, analytics.FieldStatus, seen.Clauses[0].Field)
	assert.Equal(t, analytics.FieldCreatedAt, seen.Clauses[1].Field)
	cacheMock.AssertExpectations(t)
}

func TestAnalyticsService_Overview_CacheHit(t *testing.T) {
	repo := NewMockRepository()
	cacheMock := &MockCache{}
	svc := newAnalyticsService(repo, cacheMock)

	key := cache.AnalyticsKey("company-1", "", string(analytics.RangeAll))
	cacheMock.On("Get", mock.Anything, key, mock.AnythingOfType("*services.AnalyticsOverview")).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*AnalyticsOverview) = AnalyticsOverview{Stats: sampleStats(), DateRange: analytics.RangeAll}
		}).
		Return(nil)

	overview, err := svc.Overview(context.Background(), viewer(), "garbage!!", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), overview.Stats.TotalLeads)
	repo.lead.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsService_Overview_CacheErrorFallsThrough(t *testing.T) {
	repo := NewMockRepository()
	cacheMock := &MockCache{}
	svc := newAnalyticsService(repo, cacheMock)

	cacheMock.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	cacheMock.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	repo.lead.On("Aggregate", mock.Anything, mock.Anything, "company-1", mock.Anything).Return(sampleStats(), nil)

	overview, err := svc.Overview(context.Background(), viewer(), "", "30d")
	require.NoError(t, err)
	assert.NotNil(t, overview.Stats)
}

func TestAnalyticsService_Overview_RequiresPermission(t *testing.T) {
	svc := newAnalyticsService(NewMockRepository(), &MockCache{})
	nobody := viewer()
	nobody.Role = "intern"

	_, err := svc.Overview(context.Background(), nobody, "", "")
	assert.True(t, IsUnauthorized(err))
}

func TestAnalyticsService_Leads(t *testing.T) {
	repo := NewMockRepository()
	svc := newAnalyticsService(repo, &MockCache{})

	opts := repositories.ListOptions{Limit: 20, Offset: 40}
	repo.lead.On("Query", mock.Anything, mock.Anything, "company-1", mock.Anything, opts).
		Return([]*models.Lead{{ID: "l1"}}, int64(41), nil)

	page, err := svc.Leads(context.Background(), viewer(), "", "all", opts)
	require.NoError(t, err)
	assert.Equal(t, int64(41), page.Total)
	assert.Len(t, page.Leads, 1)
	assert.Equal(t, 40, page.Offset)
}

func TestAnalyticsService_EncodeFilters(t *testing.T) {
	svc := newAnalyticsService(NewMockRepository(), &MockCache{})

	rows := []analytics.FilterRow{
		{ID: "r1", Field: analytics.FieldSource, Operator: analytics.OpIn, Value: strPtr("QUIZ,REFERRAL")},
	}
	token, err := svc.EncodeFilters(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, rows, analytics.DeserializeFilters(token))

	empty, err := svc.EncodeFilters(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.EncodeFilters(context.Background(), []analytics.FilterRow{
		{ID: "r1", Field: analytics.FieldScore, Operator: analytics.OpContains, Value: strPtr("5")},
		{ID: "", Field: "nope", Operator: analytics.OpEquals},
	})
	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)

	fields := make([]string, 0, len(ve))
	for _, e := range ve {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "rows[0].operator")
	assert.Contains(t, fields, "rows[1].id")
	assert.Contains(t, fields, "rows[1].field")
}

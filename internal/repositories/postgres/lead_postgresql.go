package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var leadSortColumns = []string{"created_at", "updated_at", "score", "status", "source"}

type LeadPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLeadPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.LeadRepository {
	return &LeadPostgreSQL{
		db:      db,
		helpers: helpers,
	}
}

func (l *LeadPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lead *models.Lead) error {
	db := getDB(l.db, tx)
	return db.WithContext(ctx).Create(lead).Error
}

func (l *LeadPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Lead, error) {
	db := getDB(l.db, tx)
	var lead models.Lead
	if err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Preload("Deals").
		First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (l *LeadPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, companyID, id string, status models.LeadStatus) error {
	db := getDB(l.db, tx)
	updates := map[string]any{"status": status}
	if status == models.LeadConverted {
		updates["converted_at"] = gorm.Expr("COALESCE(converted_at, NOW())")
	}

	result := db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (l *LeadPostgreSQL) Query(ctx context.Context, tx *gorm.DB, companyID string, predicate analytics.Predicate, opts repositories.ListOptions) ([]*models.Lead, int64, error) {
	var (
		leads []*models.Lead
		total int64
	)

	query := l.scoped(ctx, tx, companyID, predicate)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	query = l.helpers.ApplyPaginationAndSort(l.scoped(ctx, tx, companyID, predicate), "leads", leadSortColumns,
		opts.SortBy, opts.SortOrder, opts.Limit, opts.Offset)
	if err := query.Find(&leads).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query leads: %w", err)
	}

	return leads, total, nil
}

type groupCount struct {
	Key   string
	Count int64
}

func (l *LeadPostgreSQL) Aggregate(ctx context.Context, tx *gorm.DB, companyID string, predicate analytics.Predicate) (*models.LeadStats, error) {
	stats := &models.LeadStats{
		ByStatus:      make(map[models.LeadStatus]int64),
		BySource:      make(map[models.LeadSource]int64),
		PipelineValue: decimal.Zero,
		WonValue:      decimal.Zero,
	}

	if err := l.scoped(ctx, tx, companyID, predicate).Count(&stats.TotalLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if stats.TotalLeads == 0 {
		return stats, nil
	}

	var byStatus []groupCount
	if err := l.scoped(ctx, tx, companyID, predicate).
		Select("leads.status AS key, COUNT(*) AS count").
		Group("leads.status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group leads by status: %w", err)
	}
	for _, g := range byStatus {
		stats.ByStatus[models.LeadStatus(g.Key)] = g.Count
	}

	var bySource []groupCount
	if err := l.scoped(ctx, tx, companyID, predicate).
		Select("leads.source AS key, COUNT(*) AS count").
		Group("leads.source").
		Scan(&bySource).Error; err != nil {
		return nil, fmt.Errorf("failed to group leads by source: %w", err)
	}
	for _, g := range bySource {
		stats.BySource[models.LeadSource(g.Key)] = g.Count
	}

	if err := l.scoped(ctx, tx, companyID, predicate).
		Select("COALESCE(AVG(leads.score), 0)").
		Scan(&stats.AverageScore).Error; err != nil {
		return nil, fmt.Errorf("failed to average lead score: %w", err)
	}

	stats.ConversionRate = float64(stats.ByStatus[models.LeadConverted]) / float64(stats.TotalLeads) * 100

	leadIDs := l.scoped(ctx, tx, companyID, predicate).Select("leads.id")

	if err := l.dealSum(ctx, tx, companyID, leadIDs, "deals.stage NOT IN ?",
		[]models.DealStage{models.StageClosedWon, models.StageClosedLost}, &stats.PipelineValue); err != nil {
		return nil, err
	}
	if err := l.dealSum(ctx, tx, companyID, leadIDs, "deals.stage = ?", models.StageClosedWon, &stats.WonValue); err != nil {
		return nil, err
	}

	return stats, nil
}

func (l *LeadPostgreSQL) dealSum(ctx context.Context, tx *gorm.DB, companyID string, leadIDs *gorm.DB, cond string, arg any, out *decimal.Decimal) error {
	var row struct {
		Total decimal.Decimal
	}

	db := getDB(l.db, tx)
	if err := db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("deals.company_id = ?", companyID).
		Where("deals.lead_id IN (?)", leadIDs).
		Where(cond, arg).
		Select("COALESCE(SUM(deals.value), 0) AS total").
		Scan(&row).Error; err != nil {
		return fmt.Errorf("failed to sum deal values: %w", err)
	}
	*out = row.Total
	return nil
}

// scoped starts a leads query with the tenant condition first and the
// caller's predicate after it.
func (l *LeadPostgreSQL) scoped(ctx context.Context, tx *gorm.DB, companyID string, predicate analytics.Predicate) *gorm.DB {
	db := getDB(l.db, tx).WithContext(ctx).Model(&models.Lead{})
	db = ForCompany(companyID)(db)
	return WithPredicate(predicate)(db)
}

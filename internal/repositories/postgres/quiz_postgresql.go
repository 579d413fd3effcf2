package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"gorm.io/gorm"
)

var quizSortColumns = []string{"created_at", "updated_at", "title", "status"}

type QuizPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuizPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:      db,
		helpers: helpers,
	}
}

func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := getDB(q.db, tx)
	return db.WithContext(ctx).Create(quiz).Error
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, companyID, id string) (*models.Quiz, error) {
	db := getDB(q.db, tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Quiz, error) {
	db := getDB(q.db, tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, companyID string, opts repositories.ListOptions) ([]*models.Quiz, int64, error) {
	var (
		quizzes []*models.Quiz
		total   int64
	)

	base := func() *gorm.DB {
		return getDB(q.db, tx).WithContext(ctx).Model(&models.Quiz{}).Where("quizzes.company_id = ?", companyID)
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quizzes: %w", err)
	}

	query := q.helpers.ApplyPaginationAndSort(base(), "quizzes", quizSortColumns,
		opts.SortBy, opts.SortOrder, opts.Limit, opts.Offset)
	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}

	if len(quizzes) > 0 {
		if err := q.attachLeadCounts(ctx, tx, quizzes); err != nil {
			return nil, 0, err
		}
	}

	return quizzes, total, nil
}

func (q *QuizPostgreSQL) attachLeadCounts(ctx context.Context, tx *gorm.DB, quizzes []*models.Quiz) error {
	ids := make([]string, 0, len(quizzes))
	for _, quiz := range quizzes {
		ids = append(ids, quiz.ID)
	}

	var counts []groupCount
	if err := getDB(q.db, tx).WithContext(ctx).
		Model(&models.Lead{}).
		Select("quiz_id AS key, COUNT(*) AS count").
		Where("quiz_id IN ?", ids).
		Group("quiz_id").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("failed to count quiz leads: %w", err)
	}

	byQuiz := make(map[string]int, len(counts))
	for _, c := range counts {
		byQuiz[c.Key] = int(c.Count)
	}
	for _, quiz := range quizzes {
		quiz.LeadCount = byQuiz[quiz.ID]
	}
	return nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := getDB(q.db, tx)
	result := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("company_id = ? AND id = ?", quiz.CompanyID, quiz.ID).
		Select("title", "description", "slug", "status", "config", "published_at").
		Updates(quiz)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, companyID, id string) error {
	db := getDB(q.db, tx)
	result := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&models.Quiz{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuizPostgreSQL) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *string) (bool, error) {
	db := getDB(q.db, tx)
	query := db.WithContext(ctx).Model(&models.Quiz{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

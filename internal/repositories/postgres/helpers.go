package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort orders by sortBy when it is one of the allowed
// columns and falls back to created_at otherwise.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, table string, allowed []string, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	column := "created_at"
	for _, c := range allowed {
		if c == sortBy {
			column = c
			break
		}
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	// id breaks ties so that offset pages do not overlap
	query = query.Order(fmt.Sprintf("%s.%s %s, %s.id %s", table, column, order, table, order))

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

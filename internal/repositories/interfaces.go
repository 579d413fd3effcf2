package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups the per-entity repositories behind one handle so that
// services can run several writes in a single transaction.
type Repository interface {
	Company() CompanyRepository
	Quiz() QuizRepository
	Lead() LeadRepository
	Deal() DealRepository
	Audit() AuditRepository

	// Transaction runs fn inside a database transaction. Repositories called
	// with the tx handed to fn take part in it.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type ListOptions struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "score", "status"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type AuditFilters struct {
	Action     *string `json:"action"`
	EntityType *string `json:"entity_type"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

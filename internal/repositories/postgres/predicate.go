package postgres

import (
	"strings"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"gorm.io/gorm"
)

type column struct {
	name    string
	class   analytics.TypeClass
	isArray bool
}

var leadColumns = map[analytics.Field]column{
	analytics.FieldStatus:      {name: "leads.status", class: analytics.ClassEnum},
	analytics.FieldSource:      {name: "leads.source", class: analytics.ClassEnum},
	analytics.FieldScore:       {name: "leads.score", class: analytics.ClassNumber},
	analytics.FieldAssignedTo:  {name: "leads.assigned_to_id", class: analytics.ClassRelation},
	analytics.FieldCreatedAt:   {name: "leads.created_at", class: analytics.ClassDate},
	analytics.FieldConvertedAt: {name: "leads.converted_at", class: analytics.ClassDate},
	analytics.FieldTags:        {name: "leads.tags", class: analytics.ClassString, isArray: true},
}

var dealColumns = map[analytics.Field]column{
	analytics.FieldDealStage:    {name: "deals.stage", class: analytics.ClassEnum},
	analytics.FieldDealValue:    {name: "deals.value", class: analytics.ClassNumber},
	analytics.FieldDealClosedAt: {name: "deals.closed_at", class: analytics.ClassDate},
}

// ForCompany confines a leads query to one tenant.
func ForCompany(companyID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("leads.company_id = ?", companyID)
	}
}

// WithPredicate ANDs every clause onto a leads query. Deal clauses are
// grouped into one EXISTS so that they must all hold for the same deal.
func WithPredicate(p analytics.Predicate) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range p.LeadClauses() {
			col, ok := leadColumns[c.Field]
			if !ok {
				continue
			}
			db = applyClause(db, col, c)
		}

		dealClauses := p.DealClauses()
		if len(dealClauses) == 0 {
			return db
		}

		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("deals").
			Select("1").
			Where("deals.lead_id = leads.id").
			Where("deals.deleted_at IS NULL")
		for _, c := range dealClauses {
			col, ok := dealColumns[c.Field]
			if !ok {
				continue
			}
			sub = applyClause(sub, col, c)
		}
		return db.Where("EXISTS (?)", sub)
	}
}

func applyClause(db *gorm.DB, col column, c analytics.Clause) *gorm.DB {
	if col.isArray {
		return applyArrayClause(db, col, c)
	}

	switch col.class {
	case analytics.ClassNumber:
		return applyNumberClause(db, col, c)
	case analytics.ClassDate:
		if c.From != nil {
			db = db.Where(col.name+" >= ?", *c.From)
		}
		if c.To != nil {
			op := " < ?"
			if c.ToInclusive {
				op = " <= ?"
			}
			db = db.Where(col.name+op, *c.To)
		}
		return db
	}

	switch c.Kind {
	case analytics.KindEq:
		return db.Where(col.name+" = ?", first(c.Values))
	case analytics.KindIn:
		return db.Where(col.name+" IN ?", c.Values)
	case analytics.KindContains:
		return db.Where(col.name+" ILIKE ?", "%"+escapeLike(first(c.Values))+"%")
	case analytics.KindPrefix:
		return db.Where(col.name+" ILIKE ?", escapeLike(first(c.Values))+"%")
	}
	return db
}

var numberComparisons = map[analytics.Kind]string{
	analytics.KindEq:  "=",
	analytics.KindGT:  ">",
	analytics.KindGTE: ">=",
	analytics.KindLT:  "<",
	analytics.KindLTE: "<=",
}

func applyNumberClause(db *gorm.DB, col column, c analytics.Clause) *gorm.DB {
	if c.Kind == analytics.KindRange {
		if len(c.Values) > 0 && c.Values[0] != "" {
			db = db.Where(col.name+" >= CAST(? AS numeric)", c.Values[0])
		}
		if len(c.Values) > 1 && c.Values[1] != "" {
			db = db.Where(col.name+" <= CAST(? AS numeric)", c.Values[1])
		}
		return db
	}
	if op, ok := numberComparisons[c.Kind]; ok {
		return db.Where(col.name+" "+op+" CAST(? AS numeric)", first(c.Values))
	}
	return db
}

// Array columns match when any element satisfies the comparison.
func applyArrayClause(db *gorm.DB, col column, c analytics.Clause) *gorm.DB {
	switch c.Kind {
	case analytics.KindEq:
		return db.Where("? = ANY("+col.name+")", first(c.Values))
	case analytics.KindContains:
		return db.Where("EXISTS (SELECT 1 FROM unnest("+col.name+") AS tag WHERE tag ILIKE ?)", "%"+escapeLike(first(c.Values))+"%")
	case analytics.KindPrefix:
		return db.Where("EXISTS (SELECT 1 FROM unnest("+col.name+") AS tag WHERE tag ILIKE ?)", escapeLike(first(c.Values))+"%")
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

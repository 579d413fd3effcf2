package analytics

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// FilterRow is one clause of the analytics query builder.
type FilterRow struct {
	ID       string   `json:"id" validate:"required,max=64"`
	Field    Field    `json:"field" validate:"required,filter_field"`
	Operator Operator `json:"operator" validate:"required,filter_operator"`
	Value    *string  `json:"value,omitempty" validate:"omitempty,max=500"`
	Value2   *string  `json:"value2,omitempty" validate:"omitempty,max=500"`
}

// DateRange is a shortcut window on the lead creation date.
type DateRange string

const (
	RangeAll       DateRange = "all"
	RangeLast7     DateRange = "7d"
	RangeLast30    DateRange = "30d"
	RangeLast90    DateRange = "90d"
	RangeThisMonth DateRange = "month"
	RangeThisYear  DateRange = "year"
)

// ParseDateRange maps the URL value to a DateRange; unknown values mean "all".
func ParseDateRange(s string) DateRange {
	switch r := DateRange(strings.TrimSpace(s)); r {
	case RangeLast7, RangeLast30, RangeLast90, RangeThisMonth, RangeThisYear:
		return r
	default:
		return RangeAll
	}
}

// FilterState is everything that shapes an analytics view.
type FilterState struct {
	Rows      []FilterRow `json:"rows"`
	DateRange DateRange   `json:"dateRange"`
}

// SerializeFilters encodes rows into a URL-safe token. An empty list encodes
// to "" so callers can omit the query parameter entirely.
func SerializeFilters(rows []FilterRow) string {
	if len(rows) == 0 {
		return ""
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DeserializeFilters decodes a token produced by SerializeFilters. Anything
// that does not decode to a JSON array of rows yields an empty list.
func DeserializeFilters(token string) []FilterRow {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	if token == "" {
		return []FilterRow{}
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return []FilterRow{}
	}

	var rows []FilterRow
	if err := json.Unmarshal(data, &rows); err != nil || rows == nil {
		return []FilterRow{}
	}
	return rows
}

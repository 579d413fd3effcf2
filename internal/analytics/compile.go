package analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the comparison a Clause performs.
type Kind string

const (
	KindEq       Kind = "eq"
	KindContains Kind = "contains"
	KindPrefix   Kind = "prefix"
	KindIn       Kind = "in"
	KindGT       Kind = "gt"
	KindGTE      Kind = "gte"
	KindLT       Kind = "lt"
	KindLTE      Kind = "lte"
	// KindRange bounds a number by Values[0] and Values[1] (inclusive, "" is
	// open) or a date by From (inclusive) and To (exclusive, nil is open).
	KindRange Kind = "range"
)

// Clause is a single storage-independent condition on one field.
type Clause struct {
	Field  Field      `json:"field"`
	Kind   Kind       `json:"kind"`
	Values []string   `json:"values,omitempty"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	// ToInclusive makes To a closed bound. Day-granular bounds are
	// rounded to the next midnight and stay exclusive.
	ToInclusive bool `json:"toInclusive,omitempty"`
}

// DroppedRow names a filter row that contributed nothing and why.
type DroppedRow struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Predicate is the conjunction of all clauses compiled from a filter list.
type Predicate struct {
	Clauses []Clause     `json:"clauses"`
	Dropped []DroppedRow `json:"dropped,omitempty"`
}

// IsEmpty reports whether the predicate matches every lead.
func (p Predicate) IsEmpty() bool {
	return len(p.Clauses) == 0
}

// LeadClauses returns the clauses on the lead itself.
func (p Predicate) LeadClauses() []Clause {
	var out []Clause
	for _, c := range p.Clauses {
		if !IsDealField(c.Field) {
			out = append(out, c)
		}
	}
	return out
}

// DealClauses returns the clauses that must all hold for a single deal of the
// lead.
func (p Predicate) DealClauses() []Clause {
	var out []Clause
	for _, c := range p.Clauses {
		if IsDealField(c.Field) {
			out = append(out, c)
		}
	}
	return out
}

// Compiler turns filter rows into a Predicate. Date presets and date-only
// values are evaluated in Location against Now.
type Compiler struct {
	Now      func() time.Time
	Location *time.Location
}

// NewCompiler returns a Compiler using the wall clock in loc.
func NewCompiler(loc *time.Location) *Compiler {
	if loc == nil {
		loc = time.UTC
	}
	return &Compiler{Now: time.Now, Location: loc}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Compile ANDs every row into one predicate. Rows with an unknown field, an
// operator illegal for the field's class, or unusable values are recorded in
// Dropped and otherwise ignored.
func (c *Compiler) Compile(rows []FilterRow) Predicate {
	p := Predicate{Clauses: []Clause{}}
	for _, row := range rows {
		clause, reason := c.compileRow(row)
		if reason != "" {
			p.Dropped = append(p.Dropped, DroppedRow{ID: row.ID, Reason: reason})
			continue
		}
		p.Clauses = append(p.Clauses, clause)
	}
	return p
}

// CompileState compiles the rows and adds the date range shortcut as a
// creation date clause.
func (c *Compiler) CompileState(state FilterState) Predicate {
	p := c.Compile(state.Rows)
	if clause, ok := c.rangeClause(state.DateRange); ok {
		p.Clauses = append(p.Clauses, clause)
	}
	return p
}

func (c *Compiler) compileRow(row FilterRow) (Clause, string) {
	class, ok := ClassOf(row.Field)
	if !ok {
		return Clause{}, "unknown field"
	}
	if !IsLegal(row.Field, row.Operator) {
		return Clause{}, "operator not allowed for " + string(class) + " field"
	}

	switch class {
	case ClassString, ClassEnum, ClassRelation:
		return compileText(row)
	case ClassNumber:
		return compileNumber(row)
	case ClassDate:
		return c.compileDate(row)
	}
	return Clause{}, "unsupported field class"
}

func compileText(row FilterRow) (Clause, string) {
	value := strings.TrimSpace(deref(row.Value))

	switch row.Operator {
	case OpIn:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return Clause{}, "empty list"
		}
		return Clause{Field: row.Field, Kind: KindIn, Values: items}, ""
	}

	if value == "" {
		return Clause{}, "missing value"
	}
	kind := KindEq
	switch row.Operator {
	case OpContains:
		kind = KindContains
	case OpStartsWith:
		kind = KindPrefix
	}
	return Clause{Field: row.Field, Kind: kind, Values: []string{value}}, ""
}

var numberKinds = map[Operator]Kind{
	OpEquals: KindEq,
	OpGT:     KindGT,
	OpGTE:    KindGTE,
	OpLT:     KindLT,
	OpLTE:    KindLTE,
}

func compileNumber(row FilterRow) (Clause, string) {
	if row.Operator == OpBetween {
		lo, loOK, loErr := parseNumber(row.Value)
		hi, hiOK, hiErr := parseNumber(row.Value2)
		if loErr || hiErr {
			return Clause{}, "invalid number"
		}
		if !loOK && !hiOK {
			return Clause{}, "missing bounds"
		}
		return Clause{Field: row.Field, Kind: KindRange, Values: []string{lo, hi}}, ""
	}

	n, ok, bad := parseNumber(row.Value)
	if bad {
		return Clause{}, "invalid number"
	}
	if !ok {
		return Clause{}, "missing value"
	}
	return Clause{Field: row.Field, Kind: numberKinds[row.Operator], Values: []string{n}}, ""
}

// parseNumber returns the canonical decimal text, whether a value was
// present and whether a present value failed to parse.
func parseNumber(v *string) (string, bool, bool) {
	s := strings.TrimSpace(deref(v))
	if s == "" {
		return "", false, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false, true
	}
	return d.String(), true, false
}

func (c *Compiler) compileDate(row FilterRow) (Clause, string) {
	now := c.now()

	switch row.Operator {
	case OpLast7Days:
		return c.since(row.Field, now, 7), ""
	case OpLast30Days:
		return c.since(row.Field, now, 30), ""
	case OpThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.location())
		end := start.AddDate(0, 1, 0)
		return Clause{Field: row.Field, Kind: KindRange, From: &start, To: &end}, ""
	case OpThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, c.location())
		end := start.AddDate(1, 0, 0)
		return Clause{Field: row.Field, Kind: KindRange, From: &start, To: &end}, ""
	case OpAfter:
		t, dayOnly, ok := c.parseDate(row.Value)
		if !ok {
			return Clause{}, "invalid date"
		}
		if dayOnly {
			t = t.AddDate(0, 0, 1)
		}
		return Clause{Field: row.Field, Kind: KindRange, From: &t}, ""
	case OpBefore:
		t, _, ok := c.parseDate(row.Value)
		if !ok {
			return Clause{}, "invalid date"
		}
		return Clause{Field: row.Field, Kind: KindRange, To: &t}, ""
	case OpBetween:
		clause := Clause{Field: row.Field, Kind: KindRange}
		if strings.TrimSpace(deref(row.Value)) != "" {
			from, _, ok := c.parseDate(row.Value)
			if !ok {
				return Clause{}, "invalid date"
			}
			clause.From = &from
		}
		if strings.TrimSpace(deref(row.Value2)) != "" {
			to, dayOnly, ok := c.parseDate(row.Value2)
			if !ok {
				return Clause{}, "invalid date"
			}
			if dayOnly {
				to = to.AddDate(0, 0, 1)
			}
			clause.To = &to
			clause.ToInclusive = !dayOnly
		}
		if clause.From == nil && clause.To == nil {
			return Clause{}, "missing bounds"
		}
		return clause, ""
	}
	return Clause{}, "unsupported operator"
}

func (c *Compiler) rangeClause(r DateRange) (Clause, bool) {
	now := c.now()
	switch r {
	case RangeLast7:
		return c.since(FieldCreatedAt, now, 7), true
	case RangeLast30:
		return c.since(FieldCreatedAt, now, 30), true
	case RangeLast90:
		return c.since(FieldCreatedAt, now, 90), true
	case RangeThisMonth:
		clause, _ := c.compileDate(FilterRow{Field: FieldCreatedAt, Operator: OpThisMonth})
		return clause, true
	case RangeThisYear:
		clause, _ := c.compileDate(FilterRow{Field: FieldCreatedAt, Operator: OpThisYear})
		return clause, true
	}
	return Clause{}, false
}

// since covers the closed window [now - days, now].
func (c *Compiler) since(f Field, now time.Time, days int) Clause {
	from := now.AddDate(0, 0, -days)
	return Clause{Field: f, Kind: KindRange, From: &from, To: &now, ToInclusive: true}
}

// parseDate accepts RFC 3339 timestamps, datetime-local values and plain
// dates. The second result is true for plain dates, which denote midnight
// in the compiler's location.
func (c *Compiler) parseDate(v *string) (time.Time, bool, bool) {
	s := strings.TrimSpace(deref(v))
	if s == "" {
		return time.Time{}, false, false
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, c.location())
		if err == nil {
			return t, layout == "2006-01-02", true
		}
	}
	return time.Time{}, false, false
}

func (c *Compiler) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.location())
}

func (c *Compiler) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

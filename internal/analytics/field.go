package analytics

import "strings"

// Field is a filterable attribute of a lead or of its deals.
type Field string

const (
	FieldStatus       Field = "status"
	FieldSource       Field = "source"
	FieldScore        Field = "score"
	FieldAssignedTo   Field = "assignedToId"
	FieldCreatedAt    Field = "createdAt"
	FieldConvertedAt  Field = "convertedAt"
	FieldTags         Field = "tags"
	FieldDealStage    Field = "deal.stage"
	FieldDealValue    Field = "deal.value"
	FieldDealClosedAt Field = "deal.closedAt"
)

// TypeClass decides which operators a field accepts.
type TypeClass string

const (
	ClassString   TypeClass = "string"
	ClassEnum     TypeClass = "enum"
	ClassNumber   TypeClass = "number"
	ClassDate     TypeClass = "date"
	ClassRelation TypeClass = "relation"
)

type Operator string

const (
	OpEquals     Operator = "equals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpIn         Operator = "in"
	OpGT         Operator = "gt"
	OpGTE        Operator = "gte"
	OpLT         Operator = "lt"
	OpLTE        Operator = "lte"
	OpBetween    Operator = "between"
	OpAfter      Operator = "after"
	OpBefore     Operator = "before"
	OpLast7Days  Operator = "last7days"
	OpLast30Days Operator = "last30days"
	OpThisMonth  Operator = "thisMonth"
	OpThisYear   Operator = "thisYear"
)

var fieldClasses = map[Field]TypeClass{
	FieldStatus:       ClassEnum,
	FieldSource:       ClassEnum,
	FieldScore:        ClassNumber,
	FieldAssignedTo:   ClassRelation,
	FieldCreatedAt:    ClassDate,
	FieldConvertedAt:  ClassDate,
	FieldTags:         ClassString,
	FieldDealStage:    ClassEnum,
	FieldDealValue:    ClassNumber,
	FieldDealClosedAt: ClassDate,
}

var classOperators = map[TypeClass][]Operator{
	ClassString:   {OpEquals, OpContains, OpStartsWith},
	ClassEnum:     {OpEquals, OpIn},
	ClassNumber:   {OpEquals, OpGT, OpGTE, OpLT, OpLTE, OpBetween},
	ClassDate:     {OpAfter, OpBefore, OpBetween, OpLast7Days, OpLast30Days, OpThisMonth, OpThisYear},
	ClassRelation: {OpEquals},
}

// Fields returns every filterable field in display order.
func Fields() []Field {
	return []Field{
		FieldStatus, FieldSource, FieldScore, FieldAssignedTo, FieldCreatedAt,
		FieldConvertedAt, FieldTags, FieldDealStage, FieldDealValue, FieldDealClosedAt,
	}
}

// ClassOf returns the type class a field is bound to.
func ClassOf(f Field) (TypeClass, bool) {
	c, ok := fieldClasses[f]
	return c, ok
}

// LegalOperators returns the operators accepted by a type class.
func LegalOperators(c TypeClass) []Operator {
	ops := classOperators[c]
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// IsLegal reports whether op may be applied to f.
func IsLegal(f Field, op Operator) bool {
	c, ok := ClassOf(f)
	if !ok {
		return false
	}
	for _, legal := range classOperators[c] {
		if legal == op {
			return true
		}
	}
	return false
}

// IsKnownOperator reports whether op is any operator at all.
func IsKnownOperator(op Operator) bool {
	for _, ops := range classOperators {
		for _, known := range ops {
			if known == op {
				return true
			}
		}
	}
	return false
}

// IsDealField reports whether f is an attribute of a lead's deals.
func IsDealField(f Field) bool {
	return strings.HasPrefix(string(f), "deal.")
}

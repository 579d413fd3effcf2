package analytics

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSerializeFilters_RoundTrip(t *testing.T) {
	rows := []FilterRow{
		{ID: "a", Field: FieldStatus, Operator: OpEquals, Value: strPtr("NEW")},
		{ID: "b", Field: FieldScore, Operator: OpBetween, Value: strPtr("50"), Value2: strPtr("100")},
		{ID: "c", Field: FieldCreatedAt, Operator: OpLast7Days},
		{ID: "d", Field: FieldTags, Operator: OpContains, Value: strPtr("")},
		{ID: "e", Field: FieldSource, Operator: OpIn, Value: strPtr("QUIZ, REFERRAL & co/ü")},
	}

	token := SerializeFilters(rows)
	require.NotEmpty(t, token)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")

	assert.Equal(t, rows, DeserializeFilters(token))
}

func TestSerializeFilters_Empty(t *testing.T) {
	assert.Equal(t, "", SerializeFilters(nil))
	assert.Equal(t, "", SerializeFilters([]FilterRow{}))
}

func TestDeserializeFilters_Lenient(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"not base64", "!!!not-a-token***"},
		{"not json", enc("hello")},
		{"json object", enc(`{"id":"a"}`)},
		{"json null", enc("null")},
		{"array of numbers", enc("[1,2,3]")},
		{"truncated", enc(`[{"id":"a","field":"status"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := DeserializeFilters(tt.token)
			require.NotNil(t, rows)
			assert.Empty(t, rows)
		})
	}
}

func TestDeserializeFilters_AcceptsPadding(t *testing.T) {
	rows := []FilterRow{{ID: "x", Field: FieldStatus, Operator: OpEquals, Value: strPtr("NEW")}}
	padded := base64.URLEncoding.EncodeToString([]byte(`[{"id":"x","field":"status","operator":"equals","value":"NEW"}]`))
	assert.Equal(t, rows, DeserializeFilters(padded))
}

func TestIsLegal(t *testing.T) {
	tests := []struct {
		field Field
		op    Operator
		want  bool
	}{
		{FieldStatus, OpEquals, true},
		{FieldStatus, OpIn, true},
		{FieldStatus, OpGT, false},
		{FieldStatus, OpContains, false},
		{FieldTags, OpContains, true},
		{FieldTags, OpStartsWith, true},
		{FieldTags, OpIn, false},
		{FieldScore, OpBetween, true},
		{FieldScore, OpContains, false},
		{FieldDealValue, OpLTE, true},
		{FieldCreatedAt, OpLast30Days, true},
		{FieldCreatedAt, OpGT, false},
		{FieldAssignedTo, OpEquals, true},
		{FieldAssignedTo, OpIn, false},
		{Field("password"), OpEquals, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, IsLegal(tt.field, tt.op))
		})
	}
}

func TestLegalOperators_ReturnsCopy(t *testing.T) {
	ops := LegalOperators(ClassEnum)
	ops[0] = OpGT
	assert.Equal(t, []Operator{OpEquals, OpIn}, LegalOperators(ClassEnum))
}

func fixedCompiler(t *testing.T) *Compiler {
	t.Helper()
	loc := time.FixedZone("UTC-5", -5*60*60)
	return &Compiler{
		Now:      func() time.Time { return time.Date(2024, time.March, 15, 3, 0, 0, 0, time.UTC) },
		Location: loc,
	}
}

func TestCompile_IllegalOperatorContributesNothing(t *testing.T) {
	c := fixedCompiler(t)

	valid := FilterRow{ID: "ok", Field: FieldStatus, Operator: OpEquals, Value: strPtr("NEW")}
	illegal := FilterRow{ID: "bad", Field: FieldStatus, Operator: OpGT, Value: strPtr("5")}

	with := c.Compile([]FilterRow{valid, illegal})
	without := c.Compile([]FilterRow{valid})

	assert.Equal(t, without.Clauses, with.Clauses)
	require.Len(t, with.Dropped, 1)
	assert.Equal(t, "bad", with.Dropped[0].ID)

	alone := c.Compile([]FilterRow{illegal})
	assert.True(t, alone.IsEmpty())
}

func TestCompile_UnknownField(t *testing.T) {
	p := fixedCompiler(t).Compile([]FilterRow{{ID: "x", Field: "secret", Operator: OpEquals, Value: strPtr("1")}})
	assert.True(t, p.IsEmpty())
	assert.Len(t, p.Dropped, 1)
}

func TestCompile_TextClauses(t *testing.T) {
	c := fixedCompiler(t)
	p := c.Compile([]FilterRow{
		{ID: "1", Field: FieldStatus, Operator: OpEquals, Value: strPtr("QUALIFIED")},
		{ID: "2", Field: FieldSource, Operator: OpIn, Value: strPtr("QUIZ, REFERRAL,,")},
		{ID: "3", Field: FieldTags, Operator: OpContains, Value: strPtr("vip")},
		{ID: "4", Field: FieldTags, Operator: OpStartsWith, Value: strPtr("camp")},
		{ID: "5", Field: FieldAssignedTo, Operator: OpEquals, Value: strPtr("user-1")},
	})

	assert.Equal(t, []Clause{
		{Field: FieldStatus, Kind: KindEq, Values: []string{"QUALIFIED"}},
		{Field: FieldSource, Kind: KindIn, Values: []string{"QUIZ", "REFERRAL"}},
		{Field: FieldTags, Kind: KindContains, Values: []string{"vip"}},
		{Field: FieldTags, Kind: KindPrefix, Values: []string{"camp"}},
		{Field: FieldAssignedTo, Kind: KindEq, Values: []string{"user-1"}},
	}, p.Clauses)
	assert.Empty(t, p.Dropped)
}

func TestCompile_DropsUnusableValues(t *testing.T) {
	c := fixedCompiler(t)
	p := c.Compile([]FilterRow{
		{ID: "empty-in", Field: FieldStatus, Operator: OpIn, Value: strPtr(" , ")},
		{ID: "no-value", Field: FieldStatus, Operator: OpEquals},
		{ID: "nan", Field: FieldScore, Operator: OpGT, Value: strPtr("lots")},
		{ID: "bad-date", Field: FieldCreatedAt, Operator: OpAfter, Value: strPtr("yesterday")},
		{ID: "no-bounds", Field: FieldScore, Operator: OpBetween},
		{ID: "bad-bound", Field: FieldScore, Operator: OpBetween, Value: strPtr("1"), Value2: strPtr("x")},
	})

	assert.True(t, p.IsEmpty())
	var ids []string
	for _, d := range p.Dropped {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"empty-in", "no-value", "nan", "bad-date", "no-bounds", "bad-bound"}, ids)
}

func TestCompile_NumberClauses(t *testing.T) {
	c := fixedCompiler(t)
	p := c.Compile([]FilterRow{
		{ID: "1", Field: FieldScore, Operator: OpGTE, Value: strPtr(" 70 ")},
		{ID: "2", Field: FieldScore, Operator: OpBetween, Value: strPtr("10"), Value2: strPtr("20.50")},
		{ID: "3", Field: FieldDealValue, Operator: OpBetween, Value2: strPtr("1000")},
		{ID: "4", Field: FieldDealValue, Operator: OpBetween, Value: strPtr("500")},
	})

	assert.Equal(t, []Clause{
		{Field: FieldScore, Kind: KindGTE, Values: []string{"70"}},
		{Field: FieldScore, Kind: KindRange, Values: []string{"10", "20.5"}},
		{Field: FieldDealValue, Kind: KindRange, Values: []string{"", "1000"}},
		{Field: FieldDealValue, Kind: KindRange, Values: []string{"500", ""}},
	}, p.Clauses)
	assert.Len(t, p.DealClauses(), 2)
	assert.Len(t, p.LeadClauses(), 2)
}

func TestCompile_DatePresets(t *testing.T) {
	c := fixedCompiler(t)
	loc := c.Location
	// 2024-03-15 03:00 UTC is still 2024-03-14 in the compiler's zone.
	now := time.Date(2024, time.March, 14, 22, 0, 0, 0, loc)

	tests := []struct {
		op          Operator
		from, to    *time.Time
		toInclusive bool
	}{
		{OpLast7Days, timePtr(now.AddDate(0, 0, -7)), timePtr(now), true},
		{OpLast30Days, timePtr(now.AddDate(0, 0, -30)), timePtr(now), true},
		{OpThisMonth, timePtr(time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)), timePtr(time.Date(2024, time.April, 1, 0, 0, 0, 0, loc)), false},
		{OpThisYear, timePtr(time.Date(2024, time.January, 1, 0, 0, 0, 0, loc)), timePtr(time.Date(2025, time.January, 1, 0, 0, 0, 0, loc)), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			p := c.Compile([]FilterRow{{ID: "d", Field: FieldConvertedAt, Operator: tt.op}})
			require.Len(t, p.Clauses, 1)
			cl := p.Clauses[0]
			assert.Equal(t, KindRange, cl.Kind)
			assertTime(t, tt.from, cl.From)
			assertTime(t, tt.to, cl.To)
			assert.Equal(t, tt.toInclusive, cl.ToInclusive)
		})
	}
}

func TestCompile_DateBounds(t *testing.T) {
	c := fixedCompiler(t)
	loc := c.Location

	t.Run("after a day starts the next day", func(t *testing.T) {
		p := c.Compile([]FilterRow{{ID: "a", Field: FieldCreatedAt, Operator: OpAfter, Value: strPtr("2024-01-10")}})
		require.Len(t, p.Clauses, 1)
		assertTime(t, timePtr(time.Date(2024, time.January, 11, 0, 0, 0, 0, loc)), p.Clauses[0].From)
		assert.Nil(t, p.Clauses[0].To)
	})

	t.Run("before a timestamp", func(t *testing.T) {
		p := c.Compile([]FilterRow{{ID: "b", Field: FieldCreatedAt, Operator: OpBefore, Value: strPtr("2024-01-10T12:00:00Z")}})
		require.Len(t, p.Clauses, 1)
		assertTime(t, timePtr(time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)), p.Clauses[0].To)
		assert.Nil(t, p.Clauses[0].From)
	})

	t.Run("between days includes the last day", func(t *testing.T) {
		p := c.Compile([]FilterRow{{ID: "c", Field: FieldDealClosedAt, Operator: OpBetween, Value: strPtr("2024-02-01"), Value2: strPtr("2024-02-29")}})
		require.Len(t, p.Clauses, 1)
		assertTime(t, timePtr(time.Date(2024, time.February, 1, 0, 0, 0, 0, loc)), p.Clauses[0].From)
		assertTime(t, timePtr(time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)), p.Clauses[0].To)
		assert.False(t, p.Clauses[0].ToInclusive)
	})

	t.Run("between timestamps includes the upper instant", func(t *testing.T) {
		p := c.Compile([]FilterRow{{ID: "e", Field: FieldCreatedAt, Operator: OpBetween, Value: strPtr("2024-02-01T00:00:00Z"), Value2: strPtr("2024-02-10T12:00:00Z")}})
		require.Len(t, p.Clauses, 1)
		assertTime(t, timePtr(time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC)), p.Clauses[0].To)
		assert.True(t, p.Clauses[0].ToInclusive)
	})

	t.Run("between with one bound is open", func(t *testing.T) {
		p := c.Compile([]FilterRow{{ID: "d", Field: FieldCreatedAt, Operator: OpBetween, Value2: strPtr("2024-02-29")}})
		require.Len(t, p.Clauses, 1)
		assert.Nil(t, p.Clauses[0].From)
		assert.NotNil(t, p.Clauses[0].To)
	})
}

func TestCompileState_DateRange(t *testing.T) {
	c := fixedCompiler(t)
	state := FilterState{
		Rows:      []FilterRow{{ID: "s", Field: FieldStatus, Operator: OpEquals, Value: strPtr("NEW")}},
		DateRange: RangeLast30,
	}

	p := c.CompileState(state)
	require.Len(t, p.Clauses, 2)
	assert.Equal(t, FieldCreatedAt, p.Clauses[1].Field)
	require.NotNil(t, p.Clauses[1].From)

	state.DateRange = RangeAll
	assert.Len(t, c.CompileState(state).Clauses, 1)
}

func TestParseDateRange(t *testing.T) {
	assert.Equal(t, RangeLast7, ParseDateRange("7d"))
	assert.Equal(t, RangeThisYear, ParseDateRange(" year "))
	assert.Equal(t, RangeAll, ParseDateRange(""))
	assert.Equal(t, RangeAll, ParseDateRange("forever"))
}

func TestFields_AllClassified(t *testing.T) {
	for _, f := range Fields() {
		class, ok := ClassOf(f)
		assert.True(t, ok, f)
		assert.NotEmpty(t, LegalOperators(class), f)
		assert.Equal(t, strings.HasPrefix(string(f), "deal."), IsDealField(f))
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func assertTime(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got), "want %s, got %s", want, got)
}

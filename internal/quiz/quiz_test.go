package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func sampleConfig() Config {
	return Config{
		Version: 1,
		Questions: Questions{
			&RadioQuestion{
				QuestionBase: QuestionBase{ID: "budget", Text: "Budget?", Weight: 5},
				Options: []Option{
					{ID: "low", Label: "Low", Value: "low", Score: 0},
					{ID: "high", Label: "High", Value: "high", Score: 10},
				},
			},
			&EmailQuestion{QuestionBase: QuestionBase{ID: "email", Text: "Email", Weight: 5}},
		},
	}
}

func TestQuestions_JSONRoundTrip(t *testing.T) {
	cfg := sampleConfig()
	cfg.Questions = append(cfg.Questions,
		&NameQuestion{QuestionBase: QuestionBase{ID: "name", Text: "Name", Weight: 1}},
		&ImageGridQuestion{
			QuestionBase: QuestionBase{ID: "style", Text: "Style", Weight: 3},
			Options:      []Option{{ID: "a", Label: "A", Value: "a", Score: 4, ImageURL: strPtr("https://img/a.png")}},
			Columns:      2,
		},
	)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"radio"`)
	assert.Contains(t, string(data), `"type":"image_grid"`)

	var decoded Config
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Questions, 4)

	radio, ok := decoded.Questions[0].(*RadioQuestion)
	require.True(t, ok)
	assert.Equal(t, 5, radio.Weight)
	assert.Len(t, radio.Options, 2)

	grid, ok := decoded.Questions[3].(*ImageGridQuestion)
	require.True(t, ok)
	assert.Equal(t, 2, grid.Columns)
	assert.Equal(t, "https://img/a.png", *grid.Options[0].ImageURL)
}

func TestQuestions_UnknownTypeRejected(t *testing.T) {
	var qs Questions
	err := json.Unmarshal([]byte(`[{"id":"q1","type":"slider","weight":1}]`), &qs)
	assert.Error(t, err)
}

func TestDecodeAnswer(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     Answer
		answered bool
	}{
		{name: "missing", raw: "", want: NullAnswer{}, answered: false},
		{name: "null", raw: "null", want: NullAnswer{}, answered: false},
		{name: "garbage", raw: "{not json", want: NullAnswer{}, answered: false},
		{name: "string", raw: `"hello"`, want: StringAnswer("hello"), answered: true},
		{name: "blank string", raw: `"   "`, want: StringAnswer("   "), answered: false},
		{name: "number", raw: `42`, want: ScalarAnswer{Text: "42"}, answered: true},
		{name: "zero", raw: `0`, want: ScalarAnswer{Text: "0"}, answered: true},
		{name: "bool", raw: `false`, want: ScalarAnswer{Text: "false"}, answered: true},
		{name: "array", raw: `["a",1]`, want: ListAnswer{"a", float64(1)}, answered: true},
		{name: "array empty", raw: `[]`, want: ListAnswer{}, answered: false},
		{name: "array blank strings", raw: `[" ",""]`, want: ListAnswer{" ", ""}, answered: false},
		{name: "array numbers only", raw: `[1,2]`, want: ListAnswer{float64(1), float64(2)}, answered: false},
		{name: "object with value", raw: `{"firstName":"Ana"}`, want: ObjectAnswer{"firstName": "Ana"}, answered: true},
		{name: "object blank", raw: `{"firstName":" ","lastName":""}`, want: ObjectAnswer{"firstName": " ", "lastName": ""}, answered: false},
		{name: "object non-string", raw: `{"age":3}`, want: ObjectAnswer{"age": float64(3)}, answered: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeAnswer(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.answered, Answered(got))
		})
	}
}

func TestBind_SkipsUnknownQuestions(t *testing.T) {
	cfg := sampleConfig()
	bound := Bind(cfg.Questions, []RawResponse{
		{QuestionID: "ghost", Answer: rawJSON(t, "x")},
		{QuestionID: "email", Answer: rawJSON(t, "a@b.com")},
	})

	require.Len(t, bound, 1)
	assert.Equal(t, TypeEmail, bound[0].Question.Type())
}

func TestExtractContactInfo(t *testing.T) {
	questions := Questions{
		&NameQuestion{QuestionBase: QuestionBase{ID: "q1", Weight: 1}},
		&EmailQuestion{QuestionBase: QuestionBase{ID: "q2", Weight: 1}},
		&PhoneQuestion{QuestionBase: QuestionBase{ID: "q3", Weight: 1}},
		&TextQuestion{QuestionBase: QuestionBase{ID: "q4", Weight: 1}},
		&EmailQuestion{QuestionBase: QuestionBase{ID: "q5", Weight: 1}},
	}

	t.Run("structured name and email", func(t *testing.T) {
		info := ExtractContactInfo(questions, []RawResponse{
			{QuestionID: "q1", Answer: rawJSON(t, map[string]string{"firstName": "Ana", "lastName": "Lee"})},
			{QuestionID: "q2", Answer: rawJSON(t, " ANA@EXAMPLE.COM ")},
		})

		require.NotNil(t, info.FirstName)
		require.NotNil(t, info.LastName)
		require.NotNil(t, info.Email)
		assert.Equal(t, "Ana", *info.FirstName)
		assert.Equal(t, "Lee", *info.LastName)
		assert.Equal(t, "ana@example.com", *info.Email)
		assert.Nil(t, info.Phone)
	})

	t.Run("plain string name is split", func(t *testing.T) {
		info := ExtractContactInfo(questions, []RawResponse{
			{QuestionID: "q1", Answer: rawJSON(t, "  Mary   Jane  Watson ")},
		})

		assert.Equal(t, "Mary", *info.FirstName)
		assert.Equal(t, "Jane Watson", *info.LastName)
	})

	t.Run("single token name leaves last name unset", func(t *testing.T) {
		info := ExtractContactInfo(questions, []RawResponse{
			{QuestionID: "q1", Answer: rawJSON(t, "Cher")},
		})

		assert.Equal(t, "Cher", *info.FirstName)
		assert.Nil(t, info.LastName)
	})

	t.Run("blank answers leave fields untouched", func(t *testing.T) {
		info := ExtractContactInfo(questions, []RawResponse{
			{QuestionID: "q2", Answer: rawJSON(t, "first@x.io")},
			{QuestionID: "q5", Answer: rawJSON(t, "   ")},
			{QuestionID: "q3", Answer: rawJSON(t, "")},
		})

		assert.Equal(t, "first@x.io", *info.Email)
		assert.Nil(t, info.Phone)
	})

	t.Run("last write wins", func(t *testing.T) {
		info := ExtractContactInfo(questions, []RawResponse{
			{QuestionID: "q2", Answer: rawJSON(t, "first@x.io")},
			{QuestionID: "q5", Answer: rawJSON(t, "Second@X.io")},
		})

		assert.Equal(t, "second@x.io", *info.Email)
	})

	t.Run("dispatches on question type not answer shape", func(t *testing.T) {
		info := ExtractContactInfo(questions, []RawResponse{
			{QuestionID: "q4", Answer: rawJSON(t, "someone@x.io")},
			{QuestionID: "q2", Answer: rawJSON(t, map[string]string{"email": "obj@x.io"})},
			{QuestionID: "unknown", Answer: rawJSON(t, "ghost@x.io")},
		})

		assert.Equal(t, ContactInfo{}, info)
	})

	t.Run("phone is normalized", func(t *testing.T) {
		info := ExtractContactInfo(questions, []RawResponse{
			{QuestionID: "q3", Answer: rawJSON(t, "(555) 123-4567")},
		})

		assert.Equal(t, "+5551234567", *info.Phone)
	})
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"(555) 123-4567", "+5551234567"},
		{"+44 20 1234", "+44201234"},
		{"0044-20", "+004420"},
		{"ext. 12", "ext.12"},
		{"", ""},
		{" - ( ) ", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Fatalf("NormalizePhone(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestCalculateLeadScore(t *testing.T) {
	cfg := sampleConfig()

	tests := []struct {
		name      string
		responses []RawResponse
		want      int
	}{
		{
			name: "top option and email",
			responses: []RawResponse{
				{QuestionID: "budget", Answer: rawJSON(t, "high"), SelectedOptionID: strPtr("high")},
				{QuestionID: "email", Answer: rawJSON(t, "a@b.com")},
			},
			want: 100,
		},
		{
			name: "zero option and no email",
			responses: []RawResponse{
				{QuestionID: "budget", Answer: rawJSON(t, "low"), SelectedOptionID: strPtr("low")},
			},
			want: 0,
		},
		{
			name: "option matched by value when id absent",
			responses: []RawResponse{
				{QuestionID: "budget", Answer: rawJSON(t, "high")},
			},
			want: 100,
		},
		{
			name: "unmatched option still counts toward max",
			responses: []RawResponse{
				{QuestionID: "budget", Answer: rawJSON(t, "medium")},
				{QuestionID: "email", Answer: rawJSON(t, "a@b.com")},
			},
			// earned 5, max 55
			want: 9,
		},
		{
			name: "unknown selected id does not fall back to value",
			responses: []RawResponse{
				{QuestionID: "budget", Answer: rawJSON(t, "high"), SelectedOptionID: strPtr("nope")},
			},
			want: 0,
		},
		{
			name: "only email answered",
			responses: []RawResponse{
				{QuestionID: "email", Answer: rawJSON(t, "a@b.com")},
			},
			want: 100,
		},
		{
			name:      "no responses",
			responses: nil,
			want:      0,
		},
		{
			name: "unknown questions ignored",
			responses: []RawResponse{
				{QuestionID: "ghost", Answer: rawJSON(t, "x")},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateLeadScore(cfg, tt.responses))
		})
	}
}

func TestCalculateLeadScore_Rounding(t *testing.T) {
	cfg := Config{Questions: Questions{
		&TextQuestion{QuestionBase: QuestionBase{ID: "a", Weight: 1}},
		&TextQuestion{QuestionBase: QuestionBase{ID: "b", Weight: 1}},
		&TextQuestion{QuestionBase: QuestionBase{ID: "c", Weight: 1}},
	}}

	got := CalculateLeadScore(cfg, []RawResponse{
		{QuestionID: "a", Answer: rawJSON(t, "yes")},
		{QuestionID: "b", Answer: rawJSON(t, "yes")},
		{QuestionID: "c", Answer: rawJSON(t, "")},
	})
	assert.Equal(t, 67, got)
}

func TestCalculateLeadScore_ZeroWeights(t *testing.T) {
	cfg := Config{Questions: Questions{
		&TextQuestion{QuestionBase: QuestionBase{ID: "a", Weight: 0}},
		&RadioQuestion{QuestionBase: QuestionBase{ID: "b", Weight: 0}, Options: []Option{{ID: "x", Value: "x", Score: 10}}},
	}}

	got := CalculateLeadScore(cfg, []RawResponse{
		{QuestionID: "a", Answer: rawJSON(t, "yes")},
		{QuestionID: "b", SelectedOptionID: strPtr("x")},
	})
	assert.Equal(t, 0, got)
}

func TestCalculateLeadScore_Bounds(t *testing.T) {
	cfg := sampleConfig()
	answers := []json.RawMessage{nil, rawJSON(t, "high"), rawJSON(t, "low"), rawJSON(t, 3), rawJSON(t, map[string]string{"a": "b"})}

	for _, a := range answers {
		for _, b := range answers {
			got := CalculateLeadScore(cfg, []RawResponse{
				{QuestionID: "budget", Answer: a},
				{QuestionID: "email", Answer: b},
			})
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}

func TestProcess_MatchesIndividualCalls(t *testing.T) {
	cfg := sampleConfig()
	responses := []RawResponse{
		{QuestionID: "budget", SelectedOptionID: strPtr("high")},
		{QuestionID: "email", Answer: rawJSON(t, "Lead@Corp.com")},
	}

	result := Process(cfg, responses)
	assert.Equal(t, CalculateLeadScore(cfg, responses), result.Score)
	assert.Equal(t, ExtractContactInfo(cfg.Questions, responses), result.Contact)
	assert.Equal(t, "lead@corp.com", *result.Contact.Email)
}

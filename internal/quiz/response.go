package quiz

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// RawResponse is a single answer as submitted by the quiz form. The shape of
// Answer depends on the question it refers to and is only interpreted once
// the response has been bound to that question.
type RawResponse struct {
	QuestionID       string          `json:"questionId" validate:"required"`
	Answer           json.RawMessage `json:"answer"`
	SelectedOptionID *string         `json:"selectedOptionId,omitempty"`
}

// Answer is the decoded form of a submitted answer payload.
type Answer interface {
	String() string
	answer()
}

// NullAnswer is a missing, null or undecodable answer.
type NullAnswer struct{}

type StringAnswer string

// ObjectAnswer is a structured answer such as {"firstName": "..", "lastName": ".."}.
type ObjectAnswer map[string]any

// ListAnswer is an array answer such as a multi-select. Its values are
// the elements, so it is answered only when one of them is a non-blank
// string, as for ObjectAnswer.
type ListAnswer []any

// ScalarAnswer holds numbers and booleans in their rendered text form.
type ScalarAnswer struct {
	Text string
}

func (NullAnswer) answer()   {}
func (StringAnswer) answer() {}
func (ObjectAnswer) answer() {}
func (ListAnswer) answer()   {}
func (ScalarAnswer) answer() {}

func (NullAnswer) String() string     { return "" }
func (a StringAnswer) String() string { return string(a) }
func (ObjectAnswer) String() string   { return "[object Object]" }
func (a ListAnswer) String() string   { return renderValue([]any(a)) }
func (a ScalarAnswer) String() string { return a.Text }

// Field returns the trimmed string value stored under key, if any.
func (a ObjectAnswer) Field(key string) (string, bool) {
	v, ok := a[key].(string)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// DecodeAnswer turns a raw JSON payload into an Answer. It never fails:
// anything that is not valid JSON is treated as no answer.
func DecodeAnswer(raw json.RawMessage) Answer {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return NullAnswer{}
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return NullAnswer{}
	}

	switch val := v.(type) {
	case nil:
		return NullAnswer{}
	case string:
		return StringAnswer(val)
	case map[string]any:
		return ObjectAnswer(val)
	case []any:
		return ListAnswer(val)
	default:
		return ScalarAnswer{Text: renderValue(val)}
	}
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = renderValue(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return ""
	}
}

// Answered reports whether an answer carries any content.
func Answered(a Answer) bool {
	switch v := a.(type) {
	case nil, NullAnswer:
		return false
	case StringAnswer:
		return strings.TrimSpace(string(v)) != ""
	case ObjectAnswer:
		for key := range v {
			if _, ok := v.Field(key); ok {
				return true
			}
		}
		return false
	case ListAnswer:
		for _, item := range v {
			if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Response is a submitted answer bound to the question it answers.
type Response struct {
	Question         Question
	Answer           Answer
	SelectedOptionID *string
}

// Bind resolves raw responses against the quiz definition. Responses that
// reference unknown questions are dropped; order is preserved.
func Bind(questions Questions, raw []RawResponse) []Response {
	index := questions.Index()

	bound := make([]Response, 0, len(raw))
	for _, r := range raw {
		q, ok := index[r.QuestionID]
		if !ok {
			continue
		}
		bound = append(bound, Response{
			Question:         q,
			Answer:           DecodeAnswer(r.Answer),
			SelectedOptionID: r.SelectedOptionID,
		})
	}
	return bound
}

package quiz

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	TypeText      QuestionType = "text"
	TypeRadio     QuestionType = "radio"
	TypeImageGrid QuestionType = "image_grid"
	TypeEmail     QuestionType = "email"
	TypePhone     QuestionType = "phone"
	TypeName      QuestionType = "name"
	TypeContact   QuestionType = "contact"
)

// MaxOptionScore is the highest score a choice option may carry.
const MaxOptionScore = 10

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{
	TypeText, TypeRadio, TypeImageGrid, TypeEmail, TypePhone, TypeName, TypeContact,
}

// Question is implemented by the variants declared in this file. Callers
// dispatch on it with a type switch.
type Question interface {
	Type() QuestionType
	Base() *QuestionBase
	question()
}

type QuestionBase struct {
	ID          string  `json:"id" validate:"required"`
	Text        string  `json:"text" validate:"required,max=500"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Required    bool    `json:"required"`
	Weight      int     `json:"weight" validate:"min=1,max=10"`
}

func (b *QuestionBase) Base() *QuestionBase { return b }
func (b *QuestionBase) question()           {}

type Option struct {
	ID       string  `json:"id" validate:"required"`
	Label    string  `json:"label" validate:"required"`
	Value    string  `json:"value"`
	Score    int     `json:"score" validate:"min=0,max=10"`
	ImageURL *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Icon     *string `json:"icon,omitempty"`
}

type TextQuestion struct {
	QuestionBase
	Placeholder string `json:"placeholder,omitempty"`
	Multiline   bool   `json:"multiline,omitempty"`
}

type EmailQuestion struct {
	QuestionBase
	Placeholder string `json:"placeholder,omitempty"`
}

type PhoneQuestion struct {
	QuestionBase
	Placeholder string `json:"placeholder,omitempty"`
}

type NameQuestion struct {
	QuestionBase
	FirstNamePlaceholder string `json:"firstNamePlaceholder,omitempty"`
	LastNamePlaceholder  string `json:"lastNamePlaceholder,omitempty"`
}

type ContactQuestion struct {
	QuestionBase
	Placeholder string `json:"placeholder,omitempty"`
}

type RadioQuestion struct {
	QuestionBase
	Options []Option `json:"options" validate:"required,min=1,dive"`
}

type ImageGridQuestion struct {
	QuestionBase
	Options []Option `json:"options" validate:"required,min=1,dive"`
	Columns int      `json:"columns,omitempty" validate:"omitempty,min=1,max=6"`
}

func (*TextQuestion) Type() QuestionType      { return TypeText }
func (*EmailQuestion) Type() QuestionType     { return TypeEmail }
func (*PhoneQuestion) Type() QuestionType     { return TypePhone }
func (*NameQuestion) Type() QuestionType      { return TypeName }
func (*ContactQuestion) Type() QuestionType   { return TypeContact }
func (*RadioQuestion) Type() QuestionType     { return TypeRadio }
func (*ImageGridQuestion) Type() QuestionType { return TypeImageGrid }

// ChoiceOptions returns the options of a choice question, or false for
// questions answered with free input.
func ChoiceOptions(q Question) ([]Option, bool) {
	switch v := q.(type) {
	case *RadioQuestion:
		return v.Options, true
	case *ImageGridQuestion:
		return v.Options, true
	default:
		return nil, false
	}
}

// NewQuestion returns an empty variant for the given type.
func NewQuestion(t QuestionType) (Question, error) {
	switch t {
	case TypeText:
		return &TextQuestion{}, nil
	case TypeEmail:
		return &EmailQuestion{}, nil
	case TypePhone:
		return &PhoneQuestion{}, nil
	case TypeName:
		return &NameQuestion{}, nil
	case TypeContact:
		return &ContactQuestion{}, nil
	case TypeRadio:
		return &RadioQuestion{}, nil
	case TypeImageGrid:
		return &ImageGridQuestion{}, nil
	default:
		return nil, fmt.Errorf("unsupported question type: %q", t)
	}
}

// Questions is an ordered question list with a type-tagged JSON form.
type Questions []Question

func (qs Questions) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(qs))
	for i, q := range qs {
		if q == nil {
			continue
		}
		body, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		fields["type"], _ = json.Marshal(q.Type())
		tagged, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, tagged)
	}
	return json.Marshal(out)
}

func (qs *Questions) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("questions must be an array: %w", err)
	}

	out := make(Questions, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Type QuestionType `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		q, err := NewQuestion(head.Type)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		if err := json.Unmarshal(raw, q); err != nil {
			return fmt.Errorf("question %d (%s): %w", i, head.Type, err)
		}
		out = append(out, q)
	}

	*qs = out
	return nil
}

// Index maps question ids to their definitions. On duplicate ids the
// later definition wins.
func (qs Questions) Index() map[string]Question {
	index := make(map[string]Question, len(qs))
	for _, q := range qs {
		if q == nil {
			continue
		}
		index[q.Base().ID] = q
	}
	return index
}

type Settings struct {
	ShowProgress    bool    `json:"showProgress"`
	AllowBack       bool    `json:"allowBack"`
	ThankYouMessage string  `json:"thankYouMessage,omitempty"`
	RedirectURL     *string `json:"redirectUrl,omitempty" validate:"omitempty,url"`
	PrimaryColor    string  `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
}

type Tracking struct {
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	PixelID     string `json:"pixelId,omitempty"`
}

// Config is the full definition of a quiz as authored in the builder.
type Config struct {
	Version   int       `json:"version"`
	Questions Questions `json:"questions"`
	Settings  Settings  `json:"settings"`
	Tracking  Tracking  `json:"tracking"`
}

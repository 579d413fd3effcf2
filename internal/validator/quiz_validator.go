package validator

import (
	"fmt"

	"github.com/SAP-F-2025/crm-service/internal/quiz"
	"github.com/go-playground/validator/v10"
)

const maxQuestions = 100

// QuizValidator checks a quiz definition before it is saved
type QuizValidator struct {
	structValidator *validator.Validate
}

func NewQuizValidator(structValidator *validator.Validate) *QuizValidator {
	return &QuizValidator{structValidator: structValidator}
}

// ValidateConfig returns every problem found in cfg, or nil.
func (v *QuizValidator) ValidateConfig(cfg quiz.Config) ValidationErrors {
	var errs ValidationErrors

	if len(cfg.Questions) == 0 {
		errs = append(errs, ValidationError{Field: "questions", Message: "must contain at least one question", Rule: "min"})
	}
	if len(cfg.Questions) > maxQuestions {
		errs = append(errs, ValidationError{Field: "questions", Message: fmt.Sprintf("must contain at most %d questions", maxQuestions), Rule: "max"})
	}

	seen := make(map[string]bool, len(cfg.Questions))
	for i, q := range cfg.Questions {
		if q == nil {
			errs = append(errs, ValidationError{Field: Indexed("questions", i), Message: "is required", Rule: "required"})
			continue
		}
		errs = append(errs, v.validateQuestion(i, q)...)

		id := q.Base().ID
		if id != "" && seen[id] {
			errs = append(errs, ValidationError{
				Field:   Indexed("questions", i) + ".id",
				Message: "must be unique within the quiz",
				Value:   id,
				Rule:    "unique",
			})
		}
		seen[id] = true
	}

	if err := v.structValidator.Struct(cfg.Settings); err != nil {
		errs = append(errs, Prefixed("settings", ToValidationErrors(err))...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *QuizValidator) validateQuestion(i int, q quiz.Question) ValidationErrors {
	prefix := Indexed("questions", i)

	var errs ValidationErrors
	if err := v.structValidator.Struct(q); err != nil {
		errs = append(errs, Prefixed(prefix, ToValidationErrors(err))...)
	}

	options, ok := quiz.ChoiceOptions(q)
	if !ok {
		return errs
	}

	seen := make(map[string]bool, len(options))
	for j, opt := range options {
		if opt.ID != "" && seen[opt.ID] {
			errs = append(errs, ValidationError{
				Field:   prefix + "." + Indexed("options", j) + ".id",
				Message: "must be unique within the question",
				Value:   opt.ID,
				Rule:    "unique",
			})
		}
		seen[opt.ID] = true
	}
	return errs
}

package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/quiz"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct tag validation with quiz authoring rules
type Validator struct {
	structValidator *validator.Validate
	quizValidator   *QuizValidator
}

// New creates a validator with every custom tag registered
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		quizValidator:   NewQuizValidator(structValidator),
	}
}

// ValidateStruct validates struct tags and converts failures to
// ValidationErrors
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Quiz returns the quiz definition validator
func (v *Validator) Quiz() *QuizValidator {
	return v.quizValidator
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("quiz_question_type", oneOf(quiz.QuestionTypes))
	validate.RegisterValidation("lead_status", oneOf(models.LeadStatuses))
	validate.RegisterValidation("lead_source", oneOf(models.LeadSources))
	validate.RegisterValidation("deal_stage", oneOf(models.DealStages))
	validate.RegisterValidation("user_role", oneOf(models.UserRoles))
	validate.RegisterValidation("filter_field", oneOf(analytics.Fields()))
	validate.RegisterValidation("filter_operator", func(fl validator.FieldLevel) bool {
		return analytics.IsKnownOperator(analytics.Operator(fl.Field().String()))
	})
	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	// Report json names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func oneOf[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if string(a) == value {
				return true
			}
		}
		return false
	}
}

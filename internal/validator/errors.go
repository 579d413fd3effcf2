package validator

import (
	"fmt"

	"github.com/SAP-F-2025/crm-service/internal/errors"
)

type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}

// Prefixed nests every field path under prefix, so "weight" reported for the
// third question becomes "questions[2].weight".
func Prefixed(prefix string, errs ValidationErrors) ValidationErrors {
	for i := range errs {
		errs[i].Field = prefix + "." + errs[i].Field
	}
	return errs
}

// Indexed is the path of the i-th element of a list field.
func Indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

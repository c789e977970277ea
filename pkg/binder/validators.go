package binder

import (
	"github.com/go-playground/validator/v10"
	"github.com/shelfscan/shelfscan/pkg/isbn"
)

// isbnValidator ensures the value normalizes to a format-valid ISBN-10 or
// ISBN-13, or is the empty string. The empty string is allowed so that the
// missing-field case can be reported separately from the malformed case; pair
// with `required` when the field must be present.
func isbnValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := isbn.Validate(value)
	return err == nil
}

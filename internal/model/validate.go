package model

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/inventory/internal/apperror"
)

// Validation constants.
// The same bounds are repeated as CHECK constraints in the items table schema.
// Both layers enforce them on purpose: the application gives readable messages,
// the schema protects the file from any other writer.
const (
	MinNameLength        = 3
	MaxNameLength        = 50
	MaxDescriptionLength = 255
)

// LENGTH SEMANTICS:
// go-playground/validator counts string length in runes (utf8.RuneCountInString),
// and SQLite's LENGTH() counts characters of a TEXT value. Counting bytes here
// would reject a 20-letter Cyrillic name that the schema happily accepts.
var (
	nameRule        = fmt.Sprintf("required,min=%d,max=%d", MinNameLength, MaxNameLength)
	descriptionRule = fmt.Sprintf("omitempty,max=%d", MaxDescriptionLength)
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Valid is the validation rule as a pure predicate: the name is present and
// 3..50 characters long, and the description is absent or at most 255
// characters long. All bounds are inclusive.
func Valid(name, description string) bool {
	return Validate(name, description) == nil
}

// Validate applies the same rule as Valid and returns an apperror validation
// error naming the violated constraint and the offending length, e.g.
//
//	name must be between 3 and 50 characters (current length: 1)
func Validate(name, description string) error {
	if err := validate.Var(name, nameRule); err != nil {
		return fieldError("name", err, utf8.RuneCountInString(name))
	}
	if err := validate.Var(description, descriptionRule); err != nil {
		return fieldError("description", err, utf8.RuneCountInString(description))
	}
	return nil
}

func fieldError(field string, err error, length int) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s is invalid", field))
	}

	if ve[0].Tag() == "required" {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s is required", field))
	}

	switch field {
	case "name":
		return apperror.ValidationFailed(field, fmt.Sprintf(
			"name must be between %d and %d characters (current length: %d)",
			MinNameLength, MaxNameLength, length))
	default:
		return apperror.ValidationFailed(field, fmt.Sprintf(
			"description must be at most %d characters (current length: %d)",
			MaxDescriptionLength, length))
	}
}

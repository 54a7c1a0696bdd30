package assignment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"spotgrid/internal/spots"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := spots.ParseDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := spots.ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

// describeValidation turns validator output into one readable line.
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is missing", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s %q is not a valid %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

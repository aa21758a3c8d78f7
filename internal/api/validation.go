package api

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// validationMessage turns validator errors into one readable line.
// ok is false when err is not a validation error.
func validationMessage(err error) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "", false
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; "), true
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "dbhost":
		return "host must contain a dot, or be localhost or an IP address"
	case "min", "max":
		if fe.Field() == "Port" {
			return "port must be between 1 and 65535"
		}
		return fmt.Sprintf("%s must be %s %s", field, map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "regexp":
		return field + " is not a valid regular expression"
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

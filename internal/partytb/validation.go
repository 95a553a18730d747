package partytb

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var filterValidator = newFilterValidator()

func newFilterValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("party_type", func(fl validator.FieldLevel) bool {
		return PartyType(fl.Field().String()).Valid()
	})
	return v
}

// ValidateFilter checks a filter before a report runs. The report pipeline
// itself assumes validated input.
func ValidateFilter(f Filter) error {
	err := filterValidator.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return &filterError{fields: verrs, msg: strings.Join(msgs, "; ")}
}

// filterError matches both ErrInvalidFilter and the underlying
// validator.ValidationErrors.
type filterError struct {
	fields validator.ValidationErrors
	msg    string
}

func (e *filterError) Error() string {
	return ErrInvalidFilter.Error() + ": " + e.msg
}

func (e *filterError) Unwrap() []error {
	return []error{ErrInvalidFilter, e.fields}
}

// FieldErrors maps each invalid field to a message, for form-style callers.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = describe(fe)
		}
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "party_type":
		return fmt.Sprintf("party_type %q is not supported", fe.Value())
	case "gtefield":
		return "to_date must not be before from_date"
	default:
		return fe.Field() + " is invalid"
	}
}

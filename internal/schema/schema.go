// Package schema turns raw request input into normalized values or an
// ordered list of field violations. Every function here is pure.
package schema

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "user-crud-service/pkg/errors"
)

var digitsRegex = regexp.MustCompile(`^\d+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report the wire name of a field rather than the Go name
	v.RegisterTagNameFunc(wireName)

	if err := v.RegisterValidation("digits", isDigits); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("intrange", isIntRange); err != nil {
		panic(err)
	}
	return v
}

// wireName returns the json or form name of a struct field, falling back to
// the Go name.
func wireName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// isDigits accepts strings made only of ASCII decimal digits.
func isDigits(fl validator.FieldLevel) bool {
	return digitsRegex.MatchString(fl.Field().String())
}

// isIntRange parses the field as a base 10 int64 and checks it against the
// inclusive bounds in the param, written "min:max". Either bound may be empty.
func isIntRange(fl validator.FieldLevel) bool {
	n, err := strconv.ParseInt(fl.Field().String(), 10, 64)
	if err != nil {
		return false
	}

	lo, hi, _ := strings.Cut(fl.Param(), ":")
	if lo != "" {
		lower, err := strconv.ParseInt(lo, 10, 64)
		if err != nil || n < lower {
			return false
		}
	}
	if hi != "" {
		upper, err := strconv.ParseInt(hi, 10, 64)
		if err != nil || n > upper {
			return false
		}
	}
	return true
}

// messages maps "field.tag" to the message a client sees.
var messages = map[string]string{
	"name.required":   "Name is required",
	"name.min":        "Name must be at least 2 characters",
	"name.max":        "Name must not exceed 100 characters",
	"name.type":       "Name must be a string",
	"email.required":  "Invalid email format",
	"email.email":     "Invalid email format",
	"email.max":       "Email must not exceed 255 characters",
	"email.type":      "Invalid email format",
	"id.digits":       "ID must be a positive integer",
	"id.intrange":     "ID must be a positive integer",
	"limit.digits":    "Limit must be a positive integer",
	"limit.intrange":  "Limit must be between 1 and 100",
	"offset.digits":   "Offset must be a non-negative integer",
	"offset.intrange": "Offset must be a non-negative integer",
	"sortBy.oneof":    "Sort by must be one of: id, name, email",
	"sortOrder.oneof": "Sort order must be one of: asc, desc",
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return "Invalid value"
}

// check validates s and converts any failure into a validation error whose
// details follow the declaration order of s's fields. A failure already found
// for a field while decoding replaces the validator's verdict on it.
func check(s any, decoded ...apperrors.FieldError) error {
	byField := make(map[string]apperrors.FieldError, len(decoded))
	for _, fe := range decoded {
		byField[fe.Field] = fe
	}

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.NewTechnicalError("failed to validate input", err)
		}
		for _, fe := range verrs {
			if _, ok := byField[fe.Field()]; !ok {
				byField[fe.Field()] = apperrors.FieldError{
					Field:   fe.Field(),
					Message: message(fe.Field(), fe.Tag()),
				}
			}
		}
	}
	if len(byField) == 0 {
		return nil
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	details := make([]apperrors.FieldError, 0, len(byField))
	for i := range t.NumField() {
		if fe, ok := byField[wireName(t.Field(i))]; ok {
			details = append(details, fe)
		}
	}
	return apperrors.NewValidationError(details...)
}

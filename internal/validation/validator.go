package validation

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator with the password policy rule
// registered and json tag names used in error output.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", passwordPolicy)
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// passwordPolicy requires at least 8 characters with an upper-case letter,
// a lower-case letter, a digit and a symbol.
func passwordPolicy(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// FieldErrors flattens validator failures into a field-keyed message map
// for the 422 envelope. Non-validator errors collapse into a generic entry.
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["request"] = []string{"The request is invalid."}
		return out
	}

	for _, fe := range errs {
		field := fe.Field()
		message := messageFor(fe)
		// Confirmation mismatches belong to the password field, not the
		// confirmation field.
		if field == "password_confirmation" && fe.Tag() == "eqfield" {
			field = "password"
		}
		out[field] = append(out[field], message)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", fe.Field())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", fe.Field(), fe.Param())
	case "password_policy":
		return "The password must be at least 8 characters and contain upper and lower case letters, a number and a symbol."
	case "eqfield":
		return "The password confirmation does not match."
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("The %s must match the format %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

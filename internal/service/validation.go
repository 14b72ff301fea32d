package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
)

// NewValidator returns a validator that reports json field names and knows the registrar tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("idcard", validateIDCard)
	_ = v.RegisterValidation("isbn", validateISBN)
	return v
}

// validateIDCard accepts 15 or 18 characters, digits except an optional trailing X.
func validateIDCard(fl validator.FieldLevel) bool {
	return digitsWithCheck(fl.Field().String(), 15, 18)
}

// validateISBN accepts ISBN-10 or ISBN-13 once hyphens and spaces are stripped.
func validateISBN(fl validator.FieldLevel) bool {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(fl.Field().String())
	return digitsWithCheck(cleaned, 10, 13)
}

func digitsWithCheck(value string, lengths ...int) bool {
	ok := false
	for _, l := range lengths {
		if len(value) == l {
			ok = true
		}
	}
	if !ok {
		return false
	}
	for i, r := range value {
		if r >= '0' && r <= '9' {
			continue
		}
		if i == len(value)-1 && (r == 'X' || r == 'x') {
			continue
		}
		return false
	}
	return true
}

// invalid converts validator output into a ValidationError naming the offending fields.
func invalid(err error, subject string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+subject+" payload")
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(parts, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "idcard":
		return fmt.Sprintf("%s must be 15 or 18 digits, optionally ending in X", fe.Field())
	case "isbn":
		return fmt.Sprintf("%s must be a 10 or 13 character ISBN", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("taxcode", func(fl validator.FieldLevel) bool {
		return domain.IsValidTaxCode(fl.Field().String())
	})
	_ = v.RegisterValidation("trxstatus", func(fl validator.FieldLevel) bool {
		s := domain.TransactionStatus(fl.Field().String())
		return domain.IsKnownStatus(domain.VariantPreProcessing, s) || domain.IsKnownStatus(domain.VariantProcessed, s)
	})
	return v
}

// validateStruct runs the validate tags of s and reports the first
// failing field as *domain.ErrValidation.
func validateStruct(s any) error {
	return toValidationError(validate.Struct(s))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &domain.ErrValidation{Field: ve[0].Field(), Message: describe(ve[0])}
	}
	return &domain.ErrValidation{Field: "body", Message: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "taxcode":
		return "invalid tax code"
	case "trxstatus":
		return "unknown transaction status"
	case "email":
		return "invalid email"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

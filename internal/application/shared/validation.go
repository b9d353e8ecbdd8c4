package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	domainshared "github.com/erp/retail/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FutureTolerance is how far past now a date tagged notfuture may lie
const FutureTolerance = 5 * time.Minute

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared command validator. Field names in errors come
// from json tags; decimal.Decimal fields compare as numbers, so gte=0 works on money.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			if !ok {
				return false
			}
			return !t.After(time.Now().Add(FutureTolerance))
		})
		validate = v
	})
	return validate
}

// Validate checks cmd against its struct tags. Failures become a BusinessRule
// error titled "Validation failed" listing every offending field.
func Validate(cmd any) error {
	err := Validator().Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domainshared.NewUnexpectedError(err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return domainshared.NewBusinessRuleError("Validation failed", strings.Join(msgs, "; "))
}

// IsValidationError reports whether err was produced by Validate
func IsValidationError(err error) bool {
	var de *domainshared.DomainError
	return errors.As(err, &de) && de.Kind == domainshared.KindBusinessRule && de.Title == "Validation failed"
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be less than %s", field, fe.Param())
	case "ne":
		return fmt.Sprintf("%s must not be %s", field, fe.Param())
	case "notfuture":
		return field + " cannot be in the future"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// Validator checks request bodies against their validate tags
type Validator struct {
	validate *validator.Validate
}

var (
	validatorOnce sync.Once
	shared        *Validator
)

// GetValidator returns the validator shared by all handlers
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("metric", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseMetric(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("hierarchy", func(fl validator.FieldLevel) bool {
			return domain.HierarchyMode(fl.Field().String()).Valid()
		})
		shared = &Validator{validate: v}
	})
	return shared
}

func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// jsonFieldName reports fields under their wire names
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// FormatValidationError maps each failed field to a user facing message
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"error": ErrMsgInvalidRequestFormat}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return ErrMsgFieldRequired
	case "metric":
		return ErrMsgInvalidMetricError
	case "hierarchy":
		return ErrMsgHierarchyModeError
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	default:
		return ErrMsgInvalidFieldValue
	}
}

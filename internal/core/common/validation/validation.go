// Package validation collects field-level rules for request DTOs and reports
// every failure at once in the AppError validation envelope.
package validation

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/frahmantamala/plant-dashboard/internal"
)

// Rule checks one value; it returns nil when the value passes.
type Rule func(value interface{}) *internal.AppError

type FieldValidator struct {
	FieldName string
	Value     interface{}
	Rules     []Rule
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) add(r Rule) *FieldValidator {
	fv.Rules = append(fv.Rules, r)
	return fv
}

func (fv *FieldValidator) fail(code internal.ErrorCode, format string, args ...interface{}) *internal.AppError {
	return internal.NewValidationFieldError(fv.FieldName, fmt.Sprintf(format, args...), code)
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *string:
		return v == nil || *v == ""
	case int64:
		return v == 0
	case *int64:
		return v == nil
	case time.Time:
		return v.IsZero()
	}
	return false
}

func (fv *FieldValidator) Required() *FieldValidator {
	return fv.add(func(value interface{}) *internal.AppError {
		if isEmpty(value) {
			return fv.fail(internal.ErrCodeValidationFailed, "%s is required", fv.FieldName)
		}
		return nil
	})
}

// MinFloat applies to *float64 values; nil means "not provided" and passes.
func (fv *FieldValidator) MinFloat(min float64, code internal.ErrorCode) *FieldValidator {
	return fv.add(func(value interface{}) *internal.AppError {
		if v, ok := value.(*float64); ok && v != nil && *v < min {
			return fv.fail(code, "%s must be at least %g", fv.FieldName, min)
		}
		return nil
	})
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	return fv.add(func(value interface{}) *internal.AppError {
		if v, ok := value.(string); ok && utf8.RuneCountInString(v) < min {
			return fv.fail(internal.ErrCodeValidationFailed, "%s must be at least %d characters", fv.FieldName, min)
		}
		return nil
	})
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	return fv.MaxLengthCode(max, internal.ErrCodeValidationFailed)
}

func (fv *FieldValidator) MaxLengthCode(max int, code internal.ErrorCode) *FieldValidator {
	return fv.add(func(value interface{}) *internal.AppError {
		if v, ok := value.(string); ok && utf8.RuneCountInString(v) > max {
			return fv.fail(code, "%s must not exceed %d characters", fv.FieldName, max)
		}
		return nil
	})
}

// NotFuture rejects calendar dates after today. The value's date is read in
// its own location and today is the date of now in now's location, so a
// UTC-parsed "YYYY-MM-DD" compares against the local calendar.
func (fv *FieldValidator) NotFuture(now time.Time) *FieldValidator {
	today := calendarDate(now)
	return fv.add(func(value interface{}) *internal.AppError {
		if v, ok := value.(time.Time); ok && calendarDate(v).After(today) {
			return fv.fail(internal.ErrCodeInvalidDate, "%s cannot be in the future", fv.FieldName)
		}
		return nil
	})
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (fv *FieldValidator) Custom(rule Rule) *FieldValidator {
	return fv.add(rule)
}

// Validate runs every rule and merges the failures into one validation error.
func (v *ValidationBuilder) Validate() *internal.AppError {
	var failures []internal.ValidationError

	for _, field := range v.fields {
		for _, rule := range field.Rules {
			appErr := rule(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(internal.ValidationErrors); ok {
				failures = append(failures, details.Errors...)
				continue
			}
			failures = append(failures, internal.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(failures) == 0 {
		return nil
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
		WithDetails(internal.ValidationErrors{Errors: failures})
}

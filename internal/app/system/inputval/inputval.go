// Package inputval provides form input validation using waffle/pantry/validate.
//
// Define an input struct with validate tags, populate it from form values,
// and call Validate to get user-friendly error messages.
//
// Example:
//
//	type RescheduleInput struct {
//	    NewStart string `validate:"required,datetime" label:"New Start Date/Time"`
//	    NewEnd   string `validate:"required,datetime" label:"New End Date/Time"`
//	}
//
//	input := RescheduleInput{
//	    NewStart: r.FormValue("new_start"),
//	    NewEnd:   r.FormValue("new_end"),
//	}
//
//	if res := inputval.Validate(input); res.HasErrors() {
//	    renderWithError(w, r, res.First())
//	    return
//	}
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/waffle/pantry/validate"
)

// DateLayout is the accepted format for calendar dates.
const DateLayout = "2006-01-02"

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// All returns all error messages joined with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Add appends an error that a struct tag cannot express, such as a
// cross-field check.
func (r *Result) Add(field, label, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Label: label, Message: message})
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New(validate.WithStopOnFirstError())

		// datetime: an ERP or browser timestamp
		customValidator.RegisterRuleFunc("datetime", func(value any) bool {
			if s, ok := value.(string); ok {
				return IsValidDatetime(s)
			}
			return false
		}, "datetime")

		// isodate: YYYY-MM-DD
		customValidator.RegisterRuleFunc("isodate", func(value any) bool {
			if s, ok := value.(string); ok {
				return IsValidDate(s)
			}
			return false
		}, "isodate")

		// httpurl: validates that string is a valid http/https URL
		customValidator.RegisterRuleFunc("httpurl", func(value any) bool {
			if s, ok := value.(string); ok {
				return IsValidHTTPURL(s)
			}
			return false
		}, "httpurl")
	})
	return customValidator
}

// Validate validates a struct and returns a Result with user-friendly errors.
// The struct should have `validate` tags for rules and optional `label` tags
// for user-friendly field names.
//
// Rules from pantry/validate: required, oneof, min, max.
// Rules registered here: datetime, isodate, httpurl.
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := getFieldLabels(s)

	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
	}

	return result
}

// getFieldLabels extracts the "label" tag from struct fields.
func getFieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		fieldName := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" && parts[0] != "-" {
				fieldName = parts[0]
			}
		}

		if label := field.Tag.Get("label"); label != "" {
			labels[fieldName] = label
		}
	}

	return labels
}

// formatMessage creates a user-friendly message for a validation rule.
func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "datetime":
		return label + " must be a date and time (YYYY-MM-DD HH:MM)."
	case "isodate":
		return label + " must be a date (YYYY-MM-DD)."
	case "httpurl":
		return label + " must be a valid URL starting with http:// or https://."
	default:
		return label + " is invalid."
	}
}

// IsValidDatetime reports whether s parses as a schedule timestamp.
func IsValidDatetime(s string) bool {
	_, ok := frappe.ParseDatetime(s)
	return ok
}

// IsValidDate reports whether s is a YYYY-MM-DD date.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}

// IsValidHTTPURL checks if the given string is a valid http:// or https:// URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

package models

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid field of a record
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned by Validate when a record is malformed
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) add(field, format string, args ...any) {
	*v = append(*v, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "must not be empty")
	}
}

func (v *ValidationErrors) nonNegative(field string, value float64) {
	if value < 0 {
		v.add(field, "must be greater than or equal to 0")
	}
}

func (v *ValidationErrors) positive(field string, value float64) {
	if value <= 0 {
		v.add(field, "must be greater than 0")
	}
}

func (v *ValidationErrors) maxLen(field, value string, max int) {
	if len([]rune(value)) > max {
		v.add(field, "must be at most %d characters", max)
	}
}

// err returns nil when no field failed
func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

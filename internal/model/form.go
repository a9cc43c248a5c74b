package model

import (
	"fmt"
	"strconv"
	"strings"
)

type FormField string

const (
	FormFieldName     FormField = "name"
	FormFieldDuration FormField = "duration"
	FormFieldCategory FormField = "category"
)

type FormError struct {
	Field   FormField
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type TimerInput struct {
	Name     string
	Duration int
	Category string
}

// ValidateTimerForm checks raw add-form input in field order and returns the
// first problem found.
func ValidateTimerForm(name, durationText, category string) (TimerInput, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return TimerInput{}, &FormError{Field: FormFieldName, Message: "Please enter a timer name"}
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(durationText))
	if err != nil || seconds <= 0 {
		return TimerInput{}, &FormError{Field: FormFieldDuration, Message: "Please enter a valid duration in seconds"}
	}
	trimmedCategory := strings.TrimSpace(category)
	if trimmedCategory == "" {
		return TimerInput{}, &FormError{Field: FormFieldCategory, Message: "Please enter a category"}
	}
	return TimerInput{Name: trimmedName, Duration: seconds, Category: trimmedCategory}, nil
}

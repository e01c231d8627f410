package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// UserFacts are the free-text answers collected by the form.
type UserFacts struct {
	Name    string `json:"name" validate:"required,max=120"`
	Jobs    string `json:"jobs" validate:"max=1000"`
	Hobbies string `json:"hobbies" validate:"max=1000"`
	Decade  string `json:"decade" validate:"max=200"`
}

// Normalized returns a copy with surrounding whitespace removed.
func (f UserFacts) Normalized() UserFacts {
	return UserFacts{
		Name:    strings.TrimSpace(f.Name),
		Jobs:    strings.TrimSpace(f.Jobs),
		Hobbies: strings.TrimSpace(f.Hobbies),
		Decade:  strings.TrimSpace(f.Decade),
	}
}

// HasContext reports whether at least one of Jobs, Hobbies or Decade is set.
func (f UserFacts) HasContext() bool {
	return strings.TrimSpace(f.Jobs) != "" ||
		strings.TrimSpace(f.Hobbies) != "" ||
		strings.TrimSpace(f.Decade) != ""
}

// FieldError is one user-facing validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every failed rule for a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(userFactsContext, UserFacts{})
	})
	return validate
}

func userFactsContext(sl validator.StructLevel) {
	facts, ok := sl.Current().Interface().(UserFacts)
	if !ok {
		return
	}
	if !facts.HasContext() {
		sl.ReportError(facts.Jobs, "Jobs", "jobs", "context_required", "")
	}
}

// Validate checks the facts after trimming. It returns a *ValidationError.
func (f UserFacts) Validate() error {
	err := getValidator().Struct(f.Normalized())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating user facts: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Please tell us your name."
	case "context_required":
		return "Please share at least one of: past jobs, hobbies, or a favorite decade."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}

package validation

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"ezquiz/internal/domain"
	"ezquiz/internal/dto"
)

const maxFileNameLength = 255

// Validator checks request shape before it reaches the service layer.
// Whether a label is actually an option is decided by the service.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCheckAnswerRequest validates the check answer request
func (v *Validator) ValidateCheckAnswerRequest(req *dto.CheckAnswerRequest) error {
	var problems []string
	if req.Ordinal < 1 {
		problems = append(problems, fmt.Sprintf("ordinal must be at least 1, got %d", req.Ordinal))
	}
	if msg := checkLabel("label", req.Label); msg != "" {
		problems = append(problems, msg)
	}
	return combine(problems)
}

// ValidateSubmitAttemptRequest validates every answer of an attempt.
func (v *Validator) ValidateSubmitAttemptRequest(req *dto.SubmitAttemptRequest) error {
	if len(req.Answers) == 0 {
		return domain.NewValidationError("answers must not be empty")
	}

	ordinals := make([]int, 0, len(req.Answers))
	for ordinal := range req.Answers {
		ordinals = append(ordinals, ordinal)
	}
	sort.Ints(ordinals)

	var problems []string
	for _, ordinal := range ordinals {
		if ordinal < 1 {
			problems = append(problems, fmt.Sprintf("ordinal must be at least 1, got %d", ordinal))
			continue
		}
		if msg := checkLabel(fmt.Sprintf("answers[%d]", ordinal), req.Answers[ordinal]); msg != "" {
			problems = append(problems, msg)
		}
	}
	return combine(problems)
}

// ValidateFileName validates the name of an uploaded document.
func (v *Validator) ValidateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return domain.NewValidationError("file name is required")
	case len(name) > maxFileNameLength:
		return domain.NewValidationError(fmt.Sprintf("file name is longer than %d bytes", maxFileNameLength))
	case filepath.Base(name) != name || strings.ContainsAny(name, `/\`):
		return domain.NewValidationError(fmt.Sprintf("file name %q must not contain a path", name))
	}
	return nil
}

// checkLabel reports a problem unless label is exactly one letter.
func checkLabel(field, label string) string {
	if label == "" {
		return field + " is required"
	}
	if utf8.RuneCountInString(label) != 1 {
		return fmt.Sprintf("%s must be a single option label, got %q", field, label)
	}
	return ""
}

func combine(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return domain.NewValidationError(strings.Join(problems, "; "))
}

package assessment

import (
	"fmt"
	"strings"

	"github.com/eadteachers/teachkit/internal/prompts"
)

// Validator checks a decoded batch of generated items.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages and logs,
	// e.g. "structural", "cardinality".
	Name() string

	ValidateMCQs(items []MCQItem) *ValidationError
	ValidateShortAnswers(items []ShortAnswerItem) *ValidationError
}

// ValidationError describes why a generated batch failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regenerating is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks ids, question text, options and the answer
// index of every item.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) fail(format string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
}

func (v *StructuralValidator) ValidateMCQs(items []MCQItem) *ValidationError {
	seen := make(map[int]bool, len(items))
	for i, q := range items {
		if seen[q.ID] {
			return v.fail("duplicate id %d", q.ID)
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Question) == "" {
			return v.fail("item %d: question is empty", i)
		}
		if len(q.Options) != prompts.MCQOptionCount {
			return v.fail("item %d: expected %d options, got %d", i, prompts.MCQOptionCount, len(q.Options))
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return v.fail("item %d: option %d is empty", i, j)
			}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return v.fail("item %d: correctAnswer %d out of range", i, q.CorrectAnswer)
		}
	}
	return nil
}

func (v *StructuralValidator) ValidateShortAnswers(items []ShortAnswerItem) *ValidationError {
	seen := make(map[int]bool, len(items))
	for i, q := range items {
		if seen[q.ID] {
			return v.fail("duplicate id %d", q.ID)
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Question) == "" {
			return v.fail("item %d: question is empty", i)
		}
	}
	return nil
}

// CardinalityValidator enforces the item counts the prompts ask for.
type CardinalityValidator struct {
	MCQ   int
	Short int
}

func (v *CardinalityValidator) Name() string { return "cardinality" }

func (v *CardinalityValidator) ValidateMCQs(items []MCQItem) *ValidationError {
	if len(items) != v.MCQ {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d multiple-choice questions, got %d", v.MCQ, len(items)),
			Retryable: true,
		}
	}
	return nil
}

func (v *CardinalityValidator) ValidateShortAnswers(items []ShortAnswerItem) *ValidationError {
	if len(items) != v.Short {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d short-answer questions, got %d", v.Short, len(items)),
			Retryable: true,
		}
	}
	return nil
}

package domain

import (
	"fmt"
	"time"
)

// ValidationError represents a validation error
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// Option is one labeled answer choice of a question
type Option struct {
	Label   string // "A", "B", "C", "D"
	Content string
}

// Question represents a multiple-choice question parsed from an exam document
type Question struct {
	Ordinal       int    // 1-based position among accepted questions
	Heading       string // text between the question keyword and the colon, e.g. "5 (Ứng dụng)"
	Text          string
	Options       []Option
	CorrectAnswer string
}

// Option returns the option carrying the given label
func (q *Question) Option(label string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// IsCorrect reports whether label is the correct answer of the question
func (q *Question) IsCorrect(label string) bool {
	return label != "" && label == q.CorrectAnswer
}

// Validate validates the question
func (q *Question) Validate() error {
	if len(q.Options) == 0 {
		return NewValidationError(fmt.Sprintf("question %d has no options", q.Ordinal))
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if o.Label == "" {
			return NewValidationError(fmt.Sprintf("question %d has an option without label", q.Ordinal))
		}
		if _, dup := seen[o.Label]; dup {
			return NewValidationError(fmt.Sprintf("question %d has duplicate option label %s", q.Ordinal, o.Label))
		}
		seen[o.Label] = struct{}{}
	}
	if _, ok := seen[q.CorrectAnswer]; !ok {
		return NewValidationError(fmt.Sprintf("question %d correct answer %q is not an option", q.Ordinal, q.CorrectAnswer))
	}
	return nil
}

// Quiz is a titled, ordered set of questions built from one source document.
// A Quiz is never mutated after it has been parsed.
type Quiz struct {
	ID        string
	Title     string
	FileName  string
	Questions []Question
	CreatedAt time.Time
}

// Question returns the question with the given ordinal
func (q *Quiz) Question(ordinal int) (*Question, bool) {
	if ordinal < 1 || ordinal > len(q.Questions) {
		return nil, false
	}
	return &q.Questions[ordinal-1], true
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.ID == "" {
		return NewValidationError("quiz ID is required")
	}
	for i := range q.Questions {
		if q.Questions[i].Ordinal != i+1 {
			return NewValidationError(fmt.Sprintf("question at position %d has ordinal %d", i+1, q.Questions[i].Ordinal))
		}
		if err := q.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// QuestionResult is the outcome of answering one question
type QuestionResult struct {
	Ordinal       int
	Selected      string
	CorrectAnswer string
	Correct       bool
}

// AttemptResult is the graded outcome of answering a quiz
type AttemptResult struct {
	QuizID  string
	Score   int
	Total   int
	Results []QuestionResult
}

// Grade scores the selected labels, keyed by question ordinal, against the quiz.
// Unanswered questions count as incorrect.
func (q *Quiz) Grade(selected map[int]string) *AttemptResult {
	res := &AttemptResult{
		QuizID:  q.ID,
		Total:   len(q.Questions),
		Results: make([]QuestionResult, 0, len(q.Questions)),
	}
	for i := range q.Questions {
		question := &q.Questions[i]
		label := selected[question.Ordinal]
		correct := question.IsCorrect(label)
		if correct {
			res.Score++
		}
		res.Results = append(res.Results, QuestionResult{
			Ordinal:       question.Ordinal,
			Selected:      label,
			CorrectAnswer: question.CorrectAnswer,
			Correct:       correct,
		})
	}
	return res
}

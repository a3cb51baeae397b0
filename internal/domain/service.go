package domain

import "context"

// QuizRepository is the persistence port for parsed quizzes.
// Storage is append-only: saved quizzes are never updated, only deleted.
type QuizRepository interface {
	SaveQuizzes(ctx context.Context, quizzes []*Quiz) error
	ListQuizzes(ctx context.Context) ([]*Quiz, error)
	// GetQuizByID returns nil, nil when no quiz has the given ID.
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	// DeleteQuiz returns a QUIZ_NOT_FOUND DomainError when no quiz has the given ID.
	DeleteQuiz(ctx context.Context, id string) error
}

// AnswerExplainer produces a human-readable explanation of why a question's
// correct answer is correct.
type AnswerExplainer interface {
	// ExplainAnswer always returns displayable text. On failure the text is a
	// fallback message and err describes the cause.
	ExplainAnswer(ctx context.Context, question *Question) (string, error)
}

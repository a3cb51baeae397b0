package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ezquiz/internal/domain"
	"ezquiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// Quoted aliases keep column names lowercase on Oracle, which folds
// unquoted identifiers to upper case.
const selectQuizColumns = `SELECT
		id "id",
		title "title",
		file_name "file_name",
		question_count "question_count",
		questions_json "questions_json",
		created_at "created_at"
	FROM quizzes`

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
	tm *TransactionManager
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db, tm: NewTransactionManager(db)}
}

// SaveQuizzes appends quizzes in one transaction: either all are stored or none.
func (a *QuizDatabaseAdapter) SaveQuizzes(ctx context.Context, quizzes []*domain.Quiz) error {
	if len(quizzes) == 0 {
		return nil
	}

	rows := make([]*models.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q == nil {
			return fmt.Errorf("cannot save nil quiz")
		}
		if err := q.Validate(); err != nil {
			return fmt.Errorf("cannot save quiz %s: %w", q.ID, err)
		}
		rows = append(rows, toModelQuiz(q))
	}

	return a.tm.WithTransaction(ctx, func(ctx context.Context) error {
		exec := GetExecutor(ctx, a.db)
		query := exec.Rebind(`INSERT INTO quizzes (
			id, title, file_name, question_count, questions_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`)
		for _, m := range rows {
			_, err := exec.ExecContext(ctx, query,
				m.ID,
				m.Title,
				m.FileName,
				m.QuestionCount,
				m.Questions,
				m.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to save quiz %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// ListQuizzes returns every stored quiz in creation order.
func (a *QuizDatabaseAdapter) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	var rows []models.Quiz
	query := selectQuizColumns + ` ORDER BY created_at, id`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		q, err := toDomainQuiz(&rows[i])
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, nil
}

// GetQuizByID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)
	var row models.Quiz
	err := exec.GetContext(ctx, &row, exec.Rebind(selectQuizColumns+` WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}
	return toDomainQuiz(&row)
}

// DeleteQuiz implements domain.QuizRepository
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, a.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM quizzes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", id, err)
	}
	if affected == 0 {
		return domain.NewQuizNotFoundError(id)
	}
	return nil
}

func toModelQuiz(q *domain.Quiz) *models.Quiz {
	questions := make(models.QuestionList, 0, len(q.Questions))
	for _, question := range q.Questions {
		options := make([]models.Option, 0, len(question.Options))
		for _, o := range question.Options {
			options = append(options, models.Option{Label: o.Label, Content: o.Content})
		}
		questions = append(questions, models.Question{
			Ordinal:       question.Ordinal,
			Heading:       question.Heading,
			Text:          question.Text,
			Options:       options,
			CorrectAnswer: question.CorrectAnswer,
		})
	}
	return &models.Quiz{
		ID:            q.ID,
		Title:         q.Title,
		FileName:      q.FileName,
		QuestionCount: len(q.Questions),
		Questions:     questions,
		CreatedAt:     q.CreatedAt.UnixMilli(),
	}
}

// toDomainQuiz rejects rows whose stored questions no longer satisfy the
// quiz invariants.
func toDomainQuiz(m *models.Quiz) (*domain.Quiz, error) {
	questions := make([]domain.Question, 0, len(m.Questions))
	for _, question := range m.Questions {
		options := make([]domain.Option, 0, len(question.Options))
		for _, o := range question.Options {
			options = append(options, domain.Option{Label: o.Label, Content: o.Content})
		}
		questions = append(questions, domain.Question{
			Ordinal:       question.Ordinal,
			Heading:       question.Heading,
			Text:          question.Text,
			Options:       options,
			CorrectAnswer: question.CorrectAnswer,
		})
	}

	q := &domain.Quiz{
		ID:        m.ID,
		Title:     m.Title,
		FileName:  m.FileName,
		Questions: questions,
		CreatedAt: time.UnixMilli(m.CreatedAt).UTC(),
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("stored quiz %s is corrupt: %w", m.ID, err)
	}
	return q, nil
}

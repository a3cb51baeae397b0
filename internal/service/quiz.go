package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"ezquiz/internal/cache"
	"ezquiz/internal/config"
	"ezquiz/internal/domain"
	"ezquiz/internal/dto"
	"ezquiz/internal/logger"
	"ezquiz/internal/parser"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Document is an uploaded exam document.
type Document struct {
	FileName string
	Content  []byte
}

// QuizService defines the interface for quiz-related operations
type QuizService interface {
	ImportDocument(ctx context.Context, doc Document) (*dto.ImportResponse, error)
	ImportDocuments(ctx context.Context, docs []Document) ([]*dto.ImportResponse, error)
	ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error)
	GetQuiz(ctx context.Context, id string, revealAnswers bool) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, id string) error
	CheckAnswer(ctx context.Context, quizID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error)
	SubmitAttempt(ctx context.Context, quizID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	ExplainAnswer(ctx context.Context, quizID string, ordinal int) (*dto.ExplanationResponse, error)
}

// quizService implements QuizService
type quizService struct {
	repo        domain.QuizRepository
	parser      *parser.Parser
	explainer   domain.AnswerExplainer // nil disables explanations
	cache       domain.Cache           // nil disables caching
	cacheTTL    time.Duration
	concurrency int
	maxFileSize int64
	sfGroup     singleflight.Group
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	repo domain.QuizRepository,
	p *parser.Parser,
	explainer domain.AnswerExplainer,
	cache domain.Cache,
	cfg *config.Config,
) QuizService {
	concurrency := cfg.Import.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &quizService{
		repo:        repo,
		parser:      p,
		explainer:   explainer,
		cache:       cache,
		cacheTTL:    cfg.Redis.TTL,
		concurrency: concurrency,
		maxFileSize: cfg.Import.MaxFileSize,
	}
}

// ImportDocument parses and stores one document. A document without any
// valid question is refused.
func (s *quizService) ImportDocument(ctx context.Context, doc Document) (*dto.ImportResponse, error) {
	res, err := s.parse(doc)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveQuizzes(ctx, []*domain.Quiz{res.Quiz}); err != nil {
		return nil, domain.NewInternalError("Failed to save quiz", err)
	}

	logger.Get().Info("Imported quiz",
		zap.String("quiz_id", res.Quiz.ID),
		zap.String("file_name", doc.FileName),
		zap.Int("questions", len(res.Quiz.Questions)),
		zap.Int("rejected", len(res.Rejections)))
	return ToImportResponse(res), nil
}

// ImportDocuments parses documents concurrently and stores them together.
// If any document is refused, nothing is stored.
func (s *quizService) ImportDocuments(ctx context.Context, docs []Document) ([]*dto.ImportResponse, error) {
	if len(docs) == 0 {
		return nil, domain.NewInvalidInputError("at least one document is required")
	}

	results := make([]*parser.Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.parse(doc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quizzes := make([]*domain.Quiz, len(results))
	responses := make([]*dto.ImportResponse, len(results))
	for i, res := range results {
		quizzes[i] = res.Quiz
		responses[i] = ToImportResponse(res)
	}
	if err := s.repo.SaveQuizzes(ctx, quizzes); err != nil {
		return nil, domain.NewInternalError("Failed to save quizzes", err)
	}

	logger.Get().Info("Imported quizzes", zap.Int("count", len(quizzes)))
	return responses, nil
}

func (s *quizService) parse(doc Document) (*parser.Result, error) {
	if s.maxFileSize > 0 && int64(len(doc.Content)) > s.maxFileSize {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("file %s exceeds %d bytes", doc.FileName, s.maxFileSize))
	}

	res, err := s.parser.ParseBytes(doc.Content, doc.FileName)
	if err != nil {
		return nil, domain.NewInvalidDocumentError(doc.FileName, err)
	}
	if len(res.Rejections) > 0 {
		logger.Get().Warn("Question blocks rejected",
			zap.String("file_name", doc.FileName),
			zap.Int("rejected", len(res.Rejections)))
	}
	if len(res.Quiz.Questions) == 0 {
		return nil, domain.NewEmptyQuizError(doc.FileName)
	}
	return res, nil
}

// ListQuizzes implements QuizService
func (s *quizService) ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error) {
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}
	resp := &dto.QuizListResponse{Quizzes: make([]dto.QuizSummary, 0, len(quizzes))}
	for _, q := range quizzes {
		resp.Quizzes = append(resp.Quizzes, toSummary(q))
	}
	return resp, nil
}

// GetQuiz implements QuizService
func (s *quizService) GetQuiz(ctx context.Context, id string, revealAnswers bool) (*dto.QuizResponse, error) {
	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToQuizResponse(quiz, revealAnswers), nil
}

// DeleteQuiz removes the quiz and its cached explanations.
func (s *quizService) DeleteQuiz(ctx context.Context, id string) error {
	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteQuiz(ctx, id); err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return domainErr
		}
		return domain.NewInternalError("Failed to delete quiz", err)
	}

	if s.cache != nil && len(quiz.Questions) > 0 {
		keys := make([]string, 0, len(quiz.Questions))
		for _, q := range quiz.Questions {
			keys = append(keys, explanationKey(id, q.Ordinal))
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			logger.Get().Warn("Failed to invalidate cached explanations", zap.String("quiz_id", id), zap.Error(err))
		}
	}

	logger.Get().Info("Deleted quiz", zap.String("quiz_id", id))
	return nil
}

// CheckAnswer implements QuizService
func (s *quizService) CheckAnswer(ctx context.Context, quizID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("request body is required")
	}
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	question, ok := quiz.Question(req.Ordinal)
	if !ok {
		return nil, domain.NewQuestionNotFoundError(quizID, req.Ordinal)
	}
	if _, ok := question.Option(req.Label); !ok {
		return nil, domain.NewInvalidAnswerError(fmt.Sprintf("%q is not an option of question %d", req.Label, req.Ordinal))
	}

	return &dto.CheckAnswerResponse{
		Ordinal:       question.Ordinal,
		Selected:      req.Label,
		Correct:       question.IsCorrect(req.Label),
		CorrectAnswer: question.CorrectAnswer,
	}, nil
}

// SubmitAttempt grades a set of answers. Unanswered questions count as incorrect.
func (s *quizService) SubmitAttempt(ctx context.Context, quizID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("request body is required")
	}
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	ordinals := make([]int, 0, len(req.Answers))
	for ordinal := range req.Answers {
		ordinals = append(ordinals, ordinal)
	}
	sort.Ints(ordinals)
	for _, ordinal := range ordinals {
		label := req.Answers[ordinal]
		question, ok := quiz.Question(ordinal)
		if !ok {
			return nil, domain.NewQuestionNotFoundError(quizID, ordinal)
		}
		if _, ok := question.Option(label); !ok {
			return nil, domain.NewInvalidAnswerError(fmt.Sprintf("%q is not an option of question %d", label, ordinal))
		}
	}

	graded := quiz.Grade(req.Answers)
	resp := &dto.AttemptResponse{
		QuizID:  graded.QuizID,
		Score:   graded.Score,
		Total:   graded.Total,
		Results: make([]dto.CheckAnswerResponse, 0, len(graded.Results)),
	}
	for _, r := range graded.Results {
		resp.Results = append(resp.Results, dto.CheckAnswerResponse{
			Ordinal:       r.Ordinal,
			Selected:      r.Selected,
			Correct:       r.Correct,
			CorrectAnswer: r.CorrectAnswer,
		})
	}
	return resp, nil
}

// ExplainAnswer returns an explanation of the question's correct answer.
// On LLM failure the fallback text is returned and nothing is cached.
func (s *quizService) ExplainAnswer(ctx context.Context, quizID string, ordinal int) (*dto.ExplanationResponse, error) {
	if s.explainer == nil {
		return nil, domain.NewError(domain.ErrLLMServiceError, "Answer explanations are not configured", nil)
	}
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	question, ok := quiz.Question(ordinal)
	if !ok {
		return nil, domain.NewQuestionNotFoundError(quizID, ordinal)
	}

	resp := &dto.ExplanationResponse{QuizID: quizID, Ordinal: ordinal}
	key := explanationKey(quizID, ordinal)
	if text, ok := s.cachedExplanation(ctx, key); ok {
		resp.Explanation, resp.Cached = text, true
		return resp, nil
	}

	type outcome struct {
		text     string
		fallback bool
	}
	// Shared by every caller waiting on key. It outlives any one request and
	// is bounded by the explainer's timeout.
	callCtx := context.WithoutCancel(ctx)
	v, _, _ := s.sfGroup.Do(key, func() (interface{}, error) {
		text, err := s.explainer.ExplainAnswer(callCtx, question)
		if err != nil {
			logger.Get().Warn("Falling back after explanation failure",
				zap.String("quiz_id", quizID),
				zap.Int("ordinal", ordinal),
				zap.Error(err))
			return outcome{text: text, fallback: true}, nil
		}
		if s.cache != nil {
			if err := s.cache.Set(callCtx, key, text, s.cacheTTL); err != nil {
				logger.Get().Warn("Failed to cache explanation", zap.String("key", key), zap.Error(err))
			}
		}
		return outcome{text: text}, nil
	})

	out := v.(outcome)
	resp.Explanation, resp.Fallback = out.text, out.fallback
	return resp, nil
}

func (s *quizService) cachedExplanation(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	text, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Explanation cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return text, true
}

func (s *quizService) getQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	if id == "" {
		return nil, domain.NewInvalidInputError("quiz ID is required")
	}
	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	return quiz, nil
}

func explanationKey(quizID string, ordinal int) string {
	return cache.GenerateCacheKey("explain", "question", quizID, strconv.Itoa(ordinal))
}

func toSummary(q *domain.Quiz) dto.QuizSummary {
	return dto.QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		FileName:      q.FileName,
		QuestionCount: len(q.Questions),
		CreatedAt:     q.CreatedAt,
	}
}

// ToQuizResponse converts a quiz for display. Correct answers are included
// only when revealAnswers is set.
func ToQuizResponse(quiz *domain.Quiz, revealAnswers bool) *dto.QuizResponse {
	resp := &dto.QuizResponse{
		QuizSummary: toSummary(quiz),
		Questions:   make([]dto.QuestionResponse, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		qr := dto.QuestionResponse{
			Ordinal: q.Ordinal,
			Heading: q.Heading,
			Text:    q.Text,
			Options: make([]dto.OptionResponse, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			qr.Options = append(qr.Options, dto.OptionResponse{Label: o.Label, Content: o.Content})
		}
		if revealAnswers {
			qr.CorrectAnswer = q.CorrectAnswer
		}
		resp.Questions = append(resp.Questions, qr)
	}
	return resp
}

// ToImportResponse summarizes a parse result.
func ToImportResponse(res *parser.Result) *dto.ImportResponse {
	resp := &dto.ImportResponse{
		Quiz:       toSummary(res.Quiz),
		Rejections: make([]dto.RejectionResponse, 0, len(res.Rejections)),
	}
	for _, r := range res.Rejections {
		resp.Rejections = append(resp.Rejections, dto.RejectionResponse{
			Block:  r.Block,
			Line:   r.Line,
			Reason: string(r.Reason),
			Detail: r.Detail,
		})
	}
	return resp
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"ezquiz/internal/domain"
	"ezquiz/internal/dto"
	"ezquiz/internal/handler"
	"ezquiz/internal/middleware"
	"ezquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

// MockQuizService
type MockQuizService struct {
	ImportDocumentFunc  func(ctx context.Context, doc service.Document) (*dto.ImportResponse, error)
	ImportDocumentsFunc func(ctx context.Context, docs []service.Document) ([]*dto.ImportResponse, error)
	ListQuizzesFunc     func(ctx context.Context) (*dto.QuizListResponse, error)
	GetQuizFunc         func(ctx context.Context, id string, revealAnswers bool) (*dto.QuizResponse, error)
	DeleteQuizFunc      func(ctx context.Context, id string) error
	CheckAnswerFunc     func(ctx context.Context, quizID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error)
	SubmitAttemptFunc   func(ctx context.Context, quizID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	ExplainAnswerFunc   func(ctx context.Context, quizID string, ordinal int) (*dto.ExplanationResponse, error)
}

func (m *MockQuizService) ImportDocument(ctx context.Context, doc service.Document) (*dto.ImportResponse, error) {
	if m.ImportDocumentFunc != nil {
		return m.ImportDocumentFunc(ctx, doc)
	}
	panic("MockQuizService.ImportDocumentFunc not implemented")
}
func (m *MockQuizService) ImportDocuments(ctx context.Context, docs []service.Document) ([]*dto.ImportResponse, error) {
	if m.ImportDocumentsFunc != nil {
		return m.ImportDocumentsFunc(ctx, docs)
	}
	panic("MockQuizService.ImportDocumentsFunc not implemented")
}
func (m *MockQuizService) ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error) {
	if m.ListQuizzesFunc != nil {
		return m.ListQuizzesFunc(ctx)
	}
	panic("MockQuizService.ListQuizzesFunc not implemented")
}
func (m *MockQuizService) GetQuiz(ctx context.Context, id string, revealAnswers bool) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, id, revealAnswers)
	}
	panic("MockQuizService.GetQuizFunc not implemented")
}
func (m *MockQuizService) DeleteQuiz(ctx context.Context, id string) error {
	if m.DeleteQuizFunc != nil {
		return m.DeleteQuizFunc(ctx, id)
	}
	panic("MockQuizService.DeleteQuizFunc not implemented")
}
func (m *MockQuizService) CheckAnswer(ctx context.Context, quizID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
	if m.CheckAnswerFunc != nil {
		return m.CheckAnswerFunc(ctx, quizID, req)
	}
	panic("MockQuizService.CheckAnswerFunc not implemented")
}
func (m *MockQuizService) SubmitAttempt(ctx context.Context, quizID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	if m.SubmitAttemptFunc != nil {
		return m.SubmitAttemptFunc(ctx, quizID, req)
	}
	panic("MockQuizService.SubmitAttemptFunc not implemented")
}
func (m *MockQuizService) ExplainAnswer(ctx context.Context, quizID string, ordinal int) (*dto.ExplanationResponse, error) {
	if m.ExplainAnswerFunc != nil {
		return m.ExplainAnswerFunc(ctx, quizID, ordinal)
	}
	panic("MockQuizService.ExplainAnswerFunc not implemented")
}

func setupApp(svc service.QuizService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.NewQuizHandler(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func multipartBody(t *testing.T, files map[string]string, order []string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, name := range order {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestImportQuiz_Multipart(t *testing.T) {
	var got service.Document
	mockService := &MockQuizService{
		ImportDocumentFunc: func(ctx context.Context, doc service.Document) (*dto.ImportResponse, error) {
			got = doc
			return &dto.ImportResponse{
				Quiz:       dto.QuizSummary{ID: "q1", Title: "Đề thi", FileName: doc.FileName, QuestionCount: 2},
				Rejections: []dto.RejectionResponse{},
			}, nil
		},
	}
	app := setupApp(mockService)

	body, contentType := multipartBody(t, map[string]string{"de.txt": "**Câu 1: x**"}, []string{"de.txt"})
	req := httptest.NewRequest(http.MethodPost, "/api/quizzes", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var out dto.ImportResponse
	decode(t, resp, &out)
	assert.Equal(t, "q1", out.Quiz.ID)
	assert.Equal(t, "de.txt", got.FileName)
	assert.Equal(t, "**Câu 1: x**", string(got.Content))
}

func TestImportQuiz_MultipleFiles(t *testing.T) {
	mockService := &MockQuizService{
		ImportDocumentsFunc: func(ctx context.Context, docs []service.Document) ([]*dto.ImportResponse, error) {
			out := make([]*dto.ImportResponse, 0, len(docs))
			for _, d := range docs {
				out = append(out, &dto.ImportResponse{Quiz: dto.QuizSummary{FileName: d.FileName}})
			}
			return out, nil
		},
	}
	app := setupApp(mockService)

	body, contentType := multipartBody(t, map[string]string{"a.txt": "a", "b.txt": "b"}, []string{"a.txt", "b.txt"})
	req := httptest.NewRequest(http.MethodPost, "/api/quizzes", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var out dto.BatchImportResponse
	decode(t, resp, &out)
	require.Len(t, out.Imports, 2)
	assert.Equal(t, "a.txt", out.Imports[0].Quiz.FileName)
	assert.Equal(t, "b.txt", out.Imports[1].Quiz.FileName)
}

func TestImportQuiz_RawBody(t *testing.T) {
	mockService := &MockQuizService{
		ImportDocumentFunc: func(ctx context.Context, doc service.Document) (*dto.ImportResponse, error) {
			assert.Equal(t, "de.txt", doc.FileName)
			return nil, domain.NewEmptyQuizError(doc.FileName)
		},
	}
	app := setupApp(mockService)

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes?file_name=de.txt", bytes.NewBufferString("không có gì"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	var out middleware.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "EMPTY_QUIZ", out.Code)
}

func TestImportQuiz_RawBodyWithoutName(t *testing.T) {
	app := setupApp(&MockQuizService{})

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes", bytes.NewBufferString("x"))
	req.Header.Set("Content-Type", "text/plain")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListQuizzes(t *testing.T) {
	mockService := &MockQuizService{
		ListQuizzesFunc: func(ctx context.Context) (*dto.QuizListResponse, error) {
			return &dto.QuizListResponse{Quizzes: []dto.QuizSummary{{ID: "q1"}, {ID: "q2"}}}, nil
		},
	}
	app := setupApp(mockService)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/quizzes", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.QuizListResponse
	decode(t, resp, &out)
	assert.Len(t, out.Quizzes, 2)
}

func TestGetQuiz(t *testing.T) {
	mockService := &MockQuizService{
		GetQuizFunc: func(ctx context.Context, id string, reveal bool) (*dto.QuizResponse, error) {
			if id != "q1" {
				return nil, domain.NewQuizNotFoundError(id)
			}
			q := &dto.QuizResponse{QuizSummary: dto.QuizSummary{ID: id}}
			q.Questions = []dto.QuestionResponse{{Ordinal: 1, Text: "2+2=?"}}
			if reveal {
				q.Questions[0].CorrectAnswer = "B"
			}
			return q, nil
		},
	}
	app := setupApp(mockService)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/quizzes/q1?reveal=true", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.QuizResponse
	decode(t, resp, &out)
	assert.Equal(t, "q1", out.ID)
	assert.Equal(t, "B", out.Questions[0].CorrectAnswer)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/quizzes/zzz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteQuiz(t *testing.T) {
	var deleted string
	mockService := &MockQuizService{
		DeleteQuizFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	app := setupApp(mockService)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/quizzes/q1", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "q1", deleted)
}

func TestCheckAnswer(t *testing.T) {
	mockService := &MockQuizService{
		CheckAnswerFunc: func(ctx context.Context, quizID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
			if req.Label == "Z" {
				return nil, domain.NewInvalidAnswerError("not an option")
			}
			return &dto.CheckAnswerResponse{Ordinal: req.Ordinal, Selected: req.Label, Correct: req.Label == "B", CorrectAnswer: "B"}, nil
		},
	}
	app := setupApp(mockService)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"correct", `{"ordinal":1,"label":"B"}`, fiber.StatusOK},
		{"invalid label", `{"ordinal":1,"label":"Z"}`, fiber.StatusBadRequest},
		{"malformed body", `{"ordinal":`, fiber.StatusBadRequest},
		{"missing label", `{"ordinal":1}`, fiber.StatusBadRequest},
		{"zero ordinal", `{"ordinal":0,"label":"A"}`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/quizzes/q1/check", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestSubmitAttempt(t *testing.T) {
	var got map[int]string
	mockService := &MockQuizService{
		SubmitAttemptFunc: func(ctx context.Context, quizID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
			got = req.Answers
			return &dto.AttemptResponse{QuizID: quizID, Score: 1, Total: 2}, nil
		},
	}
	app := setupApp(mockService)

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/q1/attempts", bytes.NewBufferString(`{"answers":{"1":"B","2":"C"}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[int]string{1: "B", 2: "C"}, got)
	var out dto.AttemptResponse
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Score)
	assert.Equal(t, 2, out.Total)
}

func TestExplainAnswer(t *testing.T) {
	mockService := &MockQuizService{
		ExplainAnswerFunc: func(ctx context.Context, quizID string, ordinal int) (*dto.ExplanationResponse, error) {
			return &dto.ExplanationResponse{QuizID: quizID, Ordinal: ordinal, Explanation: "Vì 2+2=4."}, nil
		},
	}
	app := setupApp(mockService)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/quizzes/q1/questions/3/explanation", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.ExplanationResponse
	decode(t, resp, &out)
	assert.Equal(t, 3, out.Ordinal)
	assert.Equal(t, "Vì 2+2=4.", out.Explanation)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/quizzes/q1/questions/abc/explanation", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestImportQuiz_RejectsPathInFileName(t *testing.T) {
	called := false
	mockService := &MockQuizService{
		ImportDocumentFunc: func(ctx context.Context, doc service.Document) (*dto.ImportResponse, error) {
			called = true
			return &dto.ImportResponse{}, nil
		},
	}
	app := setupApp(mockService)

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes?file_name=..%2Fde.txt", bytes.NewBufferString("**Câu 1: q**"))
	req.Header.Set("Content-Type", "text/plain")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, called)
}

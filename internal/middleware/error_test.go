package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ezquiz/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"quiz not found", domain.NewQuizNotFoundError("q1"), http.StatusNotFound, "QUIZ_NOT_FOUND"},
		{"question not found", domain.NewQuestionNotFoundError("q1", 3), http.StatusNotFound, "QUESTION_NOT_FOUND"},
		{"invalid answer", domain.NewInvalidAnswerError("bad label"), http.StatusBadRequest, "INVALID_ANSWER"},
		{"empty quiz", domain.NewEmptyQuizError("a.txt"), http.StatusUnprocessableEntity, "EMPTY_QUIZ"},
		{"invalid document", domain.NewInvalidDocumentError("a.txt", errors.New("binary")), http.StatusUnprocessableEntity, "INVALID_DOCUMENT"},
		{"llm", domain.NewLLMServiceError(errors.New("down")), http.StatusServiceUnavailable, "LLM_SERVICE_ERROR"},
		{"wrapped internal", errors.Join(errors.New("ctx"), domain.NewInternalError("boom", nil)), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"validation", domain.NewValidationError("quiz ID is required"), http.StatusBadRequest, "INVALID_INPUT"},
		{"fiber", fiber.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "HTTP_ERROR"},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

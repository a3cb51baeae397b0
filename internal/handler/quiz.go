package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"ezquiz/internal/domain"
	"ezquiz/internal/dto"
	"ezquiz/internal/logger"
	"ezquiz/internal/service"
	"ezquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// RegisterRoutes mounts the quiz endpoints on router.
func (h *QuizHandler) RegisterRoutes(router fiber.Router) {
	quizzes := router.Group("/quizzes")
	quizzes.Post("/", h.ImportQuiz)
	quizzes.Get("/", h.ListQuizzes)
	quizzes.Get("/:id", h.GetQuiz)
	quizzes.Delete("/:id", h.DeleteQuiz)
	quizzes.Post("/:id/check", h.CheckAnswer)
	quizzes.Post("/:id/attempts", h.SubmitAttempt)
	quizzes.Get("/:id/questions/:ordinal/explanation", h.ExplainAnswer)
}

// ImportQuiz godoc
// @Summary Import an exam document
// @Description Parses uploaded plain-text documents into quizzes. Accepts a multipart form with one
// @Description or more "file" parts, or a raw text body named by the file_name query parameter.
// @Tags quiz
// @Accept multipart/form-data,plain
// @Produce json
// @Param file formData file false "Exam document"
// @Param file_name query string false "Document name for raw uploads"
// @Success 201 {object} dto.ImportResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) ImportQuiz(c *fiber.Ctx) error {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fileName := c.Query("file_name")
		if fileName == "" {
			return domain.NewInvalidInputError("file_name query parameter is required for raw uploads")
		}
		if err := h.validator.ValidateFileName(fileName); err != nil {
			return err
		}
		resp, err := h.service.ImportDocument(c.UserContext(), service.Document{
			FileName: fileName,
			Content:  c.Body(),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return domain.NewInvalidInputError("invalid multipart form")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return domain.NewInvalidInputError("file is required")
	}

	docs := make([]service.Document, 0, len(files))
	for _, fh := range files {
		if err := h.validator.ValidateFileName(fh.Filename); err != nil {
			return err
		}
		doc, err := readDocument(fh)
		if err != nil {
			logger.Get().Warn("Failed to read uploaded file", zap.String("file_name", fh.Filename), zap.Error(err))
			return domain.NewInvalidInputError(fmt.Sprintf("could not read file %s", fh.Filename))
		}
		docs = append(docs, doc)
	}

	if len(docs) == 1 {
		resp, err := h.service.ImportDocument(c.UserContext(), docs[0])
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}

	imports, err := h.service.ImportDocuments(c.UserContext(), docs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchImportResponse{Imports: imports})
}

func readDocument(fh *multipart.FileHeader) (service.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return service.Document{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.Document{}, err
	}
	return service.Document{FileName: fh.Filename, Content: content}, nil
}

// ListQuizzes godoc
// @Summary List quizzes
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.QuizListResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	resp, err := h.service.ListQuizzes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Correct answers are omitted unless reveal=true.
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Param reveal query bool false "Include correct answers"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	resp, err := h.service.GetQuiz(c.UserContext(), c.Params("id"), c.QueryBool("reveal"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags quiz
// @Param id path string true "Quiz ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.service.DeleteQuiz(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CheckAnswer godoc
// @Summary Check one answer
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.CheckAnswerRequest true "Selected option"
// @Success 200 {object} dto.CheckAnswerResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/check [post]
func (h *QuizHandler) CheckAnswer(c *fiber.Ctx) error {
	var req dto.CheckAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := h.validator.ValidateCheckAnswerRequest(&req); err != nil {
		return err
	}
	resp, err := h.service.CheckAnswer(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAttempt godoc
// @Summary Grade a quiz attempt
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.SubmitAttemptRequest true "Answers keyed by question ordinal"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/attempts [post]
func (h *QuizHandler) SubmitAttempt(c *fiber.Ctx) error {
	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := h.validator.ValidateSubmitAttemptRequest(&req); err != nil {
		return err
	}
	resp, err := h.service.SubmitAttempt(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ExplainAnswer godoc
// @Summary Explain the correct answer of a question
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Param ordinal path int true "Question ordinal"
// @Success 200 {object} dto.ExplanationResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/questions/{ordinal}/explanation [get]
func (h *QuizHandler) ExplainAnswer(c *fiber.Ctx) error {
	ordinal, err := c.ParamsInt("ordinal")
	if err != nil {
		return domain.NewInvalidInputError("ordinal must be an integer")
	}
	resp, err := h.service.ExplainAnswer(c.UserContext(), c.Params("id"), ordinal)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

package explainer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ezquiz/internal/config"
	"ezquiz/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const defaultFallback = "Không thể tạo lời giải thích lúc này."

// NewModel builds the language model for the configured provider.
// An empty provider returns a nil model: explanations are disabled.
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "ollama":
		if cfg.ServerURL == "" {
			return nil, fmt.Errorf("ollama server URL cannot be empty")
		}
		if cfg.Model == "" {
			return nil, fmt.Errorf("ollama model name cannot be empty")
		}
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama LLM client: %w", err)
		}
		return llm, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key cannot be empty")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI LLM client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// llmExplainer implements domain.AnswerExplainer
type llmExplainer struct {
	model    llms.Model
	timeout  time.Duration
	fallback string
	logger   *zap.Logger
}

// NewLLMExplainer wraps model. fallback is returned alongside any error.
func NewLLMExplainer(model llms.Model, timeout time.Duration, fallback string, logger *zap.Logger) domain.AnswerExplainer {
	if fallback == "" {
		fallback = defaultFallback
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmExplainer{
		model:    model,
		timeout:  timeout,
		fallback: fallback,
		logger:   logger,
	}
}

// ExplainAnswer asks the model why the correct answer of q is right.
func (e *llmExplainer) ExplainAnswer(ctx context.Context, q *domain.Question) (string, error) {
	if q == nil {
		return e.fallback, domain.NewInvalidInputError("question is required")
	}

	if e.model == nil {
		return e.fallback, domain.NewLLMServiceError(errors.New("no language model configured"))
	}

	prompt := buildPrompt(q)
	e.logger.Debug("Requesting answer explanation",
		zap.Int("ordinal", q.Ordinal),
		zap.String("correct_answer", q.CorrectAnswer))

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, e.model, prompt, llms.WithTemperature(0.2))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			e.logger.Error("LLM request timed out", zap.Error(err))
			return e.fallback, domain.NewLLMServiceError(fmt.Errorf("LLM request timed out: %w", err))
		}
		e.logger.Error("Failed to get response from LLM", zap.Error(err))
		return e.fallback, domain.NewLLMServiceError(fmt.Errorf("LLM call failed: %w", err))
	}

	text := stripThinking(response)
	if text == "" {
		e.logger.Warn("LLM returned an empty explanation", zap.Int("ordinal", q.Ordinal))
		return e.fallback, domain.NewLLMServiceError(errors.New("empty response from LLM"))
	}
	return text, nil
}

func buildPrompt(q *domain.Question) string {
	var options strings.Builder
	for _, o := range q.Options {
		fmt.Fprintf(&options, "%s. %s\n", o.Label, o.Content)
	}
	return fmt.Sprintf(`Bạn là một trợ lý giáo dục hữu ích. Hãy giải thích ngắn gọn tại sao đáp án %s lại đúng cho câu hỏi sau.

Câu hỏi: %s

Các lựa chọn:
%s
Đáp án đúng: %s

Giải thích (ngắn gọn, dễ hiểu, dưới 100 từ):`, q.CorrectAnswer, q.Text, options.String(), q.CorrectAnswer)
}

// stripThinking drops a <think>...</think> section emitted by reasoning models.
func stripThinking(response string) string {
	cleaned := strings.TrimSpace(response)
	if start := strings.Index(cleaned, "<think>"); start != -1 {
		if end := strings.Index(cleaned, "</think>"); end > start {
			cleaned = cleaned[:start] + cleaned[end+len("</think>"):]
		}
	}
	return strings.TrimSpace(cleaned)
}

package dto

import "time"

// QuizSummary describes a stored quiz without its questions
type QuizSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	FileName      string    `json:"file_name"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuizListResponse lists stored quizzes in creation order
type QuizListResponse struct {
	Quizzes []QuizSummary `json:"quizzes"`
}

// OptionResponse is one answer option
type OptionResponse struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// QuestionResponse represents a question in the API response.
// CorrectAnswer is only set when answers are revealed.
type QuestionResponse struct {
	Ordinal       int              `json:"ordinal"`
	Heading       string           `json:"heading,omitempty"`
	Text          string           `json:"text"`
	Options       []OptionResponse `json:"options"`
	CorrectAnswer string           `json:"correct_answer,omitempty"`
}

// QuizResponse represents a quiz in the API response
type QuizResponse struct {
	QuizSummary
	Questions []QuestionResponse `json:"questions"`
}

// RejectionResponse reports a question block dropped during import
type RejectionResponse struct {
	Block  int    `json:"block"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// ImportResponse is the outcome of importing one document
type ImportResponse struct {
	Quiz       QuizSummary         `json:"quiz"`
	Rejections []RejectionResponse `json:"rejections"`
}

// CheckAnswerRequest selects an option of one question
type CheckAnswerRequest struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`
}

// CheckAnswerResponse reports whether the selected option is correct
type CheckAnswerResponse struct {
	Ordinal       int    `json:"ordinal"`
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// SubmitAttemptRequest maps question ordinals to selected labels.
// Unanswered questions are omitted.
type SubmitAttemptRequest struct {
	Answers map[int]string `json:"answers"`
}

// AttemptResponse is a graded attempt
type AttemptResponse struct {
	QuizID  string                `json:"quiz_id"`
	Score   int                   `json:"score"`
	Total   int                   `json:"total"`
	Results []CheckAnswerResponse `json:"results"`
}

// ExplanationResponse carries the explanation of a question's correct answer.
// Fallback is set when the text is the placeholder shown on LLM failure.
type ExplanationResponse struct {
	QuizID      string `json:"quiz_id"`
	Ordinal     int    `json:"ordinal"`
	Explanation string `json:"explanation"`
	Cached      bool   `json:"cached"`
	Fallback    bool   `json:"fallback"`
}

// BatchImportResponse is the outcome of a multi-file upload, in upload order
type BatchImportResponse struct {
	Imports []*ImportResponse `json:"imports"`
}

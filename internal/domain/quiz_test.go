package domain

import (
	"testing"
)

func sampleQuestion(ordinal int) Question {
	return Question{
		Ordinal: ordinal,
		Text:    "2+2=?",
		Options: []Option{
			{Label: "A", Content: "3"},
			{Label: "B", Content: "4"},
			{Label: "C", Content: "5"},
		},
		CorrectAnswer: "B",
	}
}

func TestQuiz_Validate(t *testing.T) {
	tests := []struct {
		name    string
		quiz    *Quiz
		wantErr bool
		errText string
	}{
		{
			name: "valid quiz",
			quiz: &Quiz{ID: "q1", Questions: []Question{sampleQuestion(1), sampleQuestion(2)}},
		},
		{
			name: "empty quiz is structurally valid",
			quiz: &Quiz{ID: "q1"},
		},
		{
			name:    "missing ID",
			quiz:    &Quiz{Questions: []Question{sampleQuestion(1)}},
			wantErr: true,
			errText: "quiz ID is required",
		},
		{
			name:    "ordinal gap",
			quiz:    &Quiz{ID: "q1", Questions: []Question{sampleQuestion(1), sampleQuestion(3)}},
			wantErr: true,
			errText: "question at position 2 has ordinal 3",
		},
		{
			name: "answer not among options",
			quiz: &Quiz{ID: "q1", Questions: []Question{func() Question {
				q := sampleQuestion(1)
				q.CorrectAnswer = "D"
				return q
			}()}},
			wantErr: true,
			errText: `question 1 correct answer "D" is not an option`,
		},
		{
			name: "duplicate label",
			quiz: &Quiz{ID: "q1", Questions: []Question{func() Question {
				q := sampleQuestion(1)
				q.Options = append(q.Options, Option{Label: "A", Content: "again"})
				return q
			}()}},
			wantErr: true,
			errText: "question 1 has duplicate option label A",
		},
		{
			name: "no options",
			quiz: &Quiz{ID: "q1", Questions: []Question{{Ordinal: 1, Text: "x", CorrectAnswer: "A"}}},
			wantErr: true,
			errText: "question 1 has no options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quiz.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Quiz.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errText != "" {
				validationErr, ok := err.(*ValidationError)
				if !ok {
					t.Errorf("Quiz.Validate() error type = %T, want *ValidationError", err)
				} else if validationErr.message != tt.errText {
					t.Errorf("Quiz.Validate() error text = '%s', want '%s'", validationErr.message, tt.errText)
				}
			}
		})
	}
}

func TestQuiz_Question(t *testing.T) {
	quiz := &Quiz{ID: "q1", Questions: []Question{sampleQuestion(1), sampleQuestion(2)}}

	if q, ok := quiz.Question(2); !ok || q.Ordinal != 2 {
		t.Errorf("Question(2) = %v, %v; want ordinal 2", q, ok)
	}
	for _, ordinal := range []int{0, -1, 3} {
		if _, ok := quiz.Question(ordinal); ok {
			t.Errorf("Question(%d) should not be found", ordinal)
		}
	}
}

func TestQuestion_Option(t *testing.T) {
	q := sampleQuestion(1)
	opt, ok := q.Option("C")
	if !ok || opt.Content != "5" {
		t.Errorf("Option(C) = %v, %v; want content 5", opt, ok)
	}
	if _, ok := q.Option("D"); ok {
		t.Error("Option(D) should not be found")
	}
	if q.IsCorrect("") {
		t.Error("empty selection must not be correct")
	}
	if !q.IsCorrect("B") {
		t.Error("B should be correct")
	}
}

func TestQuiz_Grade(t *testing.T) {
	quiz := &Quiz{ID: "q1", Questions: []Question{sampleQuestion(1), sampleQuestion(2), sampleQuestion(3)}}

	res := quiz.Grade(map[int]string{1: "B", 2: "A"})

	if res.Score != 1 || res.Total != 3 {
		t.Fatalf("Grade() score = %d/%d, want 1/3", res.Score, res.Total)
	}
	if res.QuizID != "q1" {
		t.Errorf("Grade() QuizID = %s, want q1", res.QuizID)
	}
	want := []QuestionResult{
		{Ordinal: 1, Selected: "B", CorrectAnswer: "B", Correct: true},
		{Ordinal: 2, Selected: "A", CorrectAnswer: "B", Correct: false},
		{Ordinal: 3, Selected: "", CorrectAnswer: "B", Correct: false},
	}
	for i, r := range res.Results {
		if r != want[i] {
			t.Errorf("Grade() result[%d] = %+v, want %+v", i, r, want[i])
		}
	}
}

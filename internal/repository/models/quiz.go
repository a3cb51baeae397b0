package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Option is the stored form of an answer option.
type Option struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// Question is the stored form of a parsed question.
type Question struct {
	Ordinal       int      `json:"ordinal"`
	Heading       string   `json:"heading,omitempty"`
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuestionList is stored as a JSON array in a text column.
type QuestionList []Question

// Value implements the driver.Valuer interface
func (l QuestionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (l *QuestionList) Scan(value interface{}) error {
	if value == nil {
		*l = QuestionList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("QuestionList Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(data) == 0 || string(data) == "null" {
		*l = QuestionList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Quiz is a row of the quizzes table.
type Quiz struct {
	ID            string       `db:"id"`
	Title         string       `db:"title"`
	FileName      string       `db:"file_name"`
	QuestionCount int          `db:"question_count"`
	Questions     QuestionList `db:"questions_json"`
	CreatedAt     int64        `db:"created_at"` // unix milliseconds
}

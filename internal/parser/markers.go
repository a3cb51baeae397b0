package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Markers are the literal tokens that give an exam document its structure.
//
// A document written with the default markers looks like:
//
//	### **Đề thi thử**
//	**Câu 1: 2+2=?**
//	A. 3
//	B. 4
//	**Đáp án đúng: B**
type Markers struct {
	// Emphasis wraps titles, question headers and answer markers.
	Emphasis string
	// TitlePrefix precedes the emphasized title on its line.
	TitlePrefix string
	// QuestionKeyword follows Emphasis to open a question block.
	QuestionKeyword string
	// AnswerKeyword follows Emphasis to introduce the correct-answer letter.
	AnswerKeyword string
	// Labels is the option-label alphabet, one rune per label.
	Labels string
	// FallbackExtensions are stripped from the fallback title.
	FallbackExtensions []string
}

// DefaultMarkers returns the markers used by Vietnamese exam documents.
func DefaultMarkers() Markers {
	return Markers{
		Emphasis:           "**",
		TitlePrefix:        "### ",
		QuestionKeyword:    "Câu",
		AnswerKeyword:      "Đáp án đúng",
		Labels:             "ABCD",
		FallbackExtensions: []string{".txt"},
	}
}

// Validate checks that the markers can delimit a document unambiguously.
func (m Markers) Validate() error {
	if m.Emphasis == "" {
		return fmt.Errorf("emphasis marker is required")
	}
	if strings.TrimSpace(m.QuestionKeyword) == "" {
		return fmt.Errorf("question keyword is required")
	}
	if strings.TrimSpace(m.AnswerKeyword) == "" {
		return fmt.Errorf("answer keyword is required")
	}
	if m.Labels == "" {
		return fmt.Errorf("at least one option label is required")
	}
	if !utf8.ValidString(m.Labels) {
		return fmt.Errorf("option labels must be valid UTF-8")
	}
	seen := make(map[rune]struct{})
	for _, r := range m.Labels {
		if _, dup := seen[r]; dup {
			return fmt.Errorf("duplicate option label %q", r)
		}
		seen[r] = struct{}{}
	}
	return nil
}

func (m Markers) blockStart() string {
	return m.Emphasis + m.QuestionKeyword
}

func (m Markers) titleOpen() string {
	return m.TitlePrefix + m.Emphasis
}

func (m Markers) answerOpen() string {
	return m.Emphasis + m.AnswerKeyword
}

func (m Markers) isLabel(r rune) bool {
	return strings.ContainsRune(m.Labels, r)
}

// stripExtension removes the first matching fallback extension, ignoring case.
func (m Markers) stripExtension(name string) string {
	for _, ext := range m.FallbackExtensions {
		if ext == "" || len(name) < len(ext) {
			continue
		}
		cut := len(name) - len(ext)
		if strings.EqualFold(name[cut:], ext) {
			return name[:cut]
		}
	}
	return name
}

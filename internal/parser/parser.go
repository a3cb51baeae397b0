// Package parser converts plain-text exam documents into quizzes.
//
// Parsing never fails on a malformed question block: the block is dropped and
// reported as a Rejection, and parsing continues with the next block.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ezquiz/internal/domain"
	"ezquiz/internal/util"

	"go.uber.org/zap"
)

// ErrNotText is returned by ParseBytes for input that is not UTF-8 text.
var ErrNotText = errors.New("document is not valid UTF-8 text")

// Reason explains why a question block was rejected.
type Reason string

const (
	ReasonMissingPrompt      Reason = "missing_prompt"
	ReasonMissingAnswer      Reason = "missing_answer"
	ReasonNoOptions          Reason = "no_options"
	ReasonDuplicateLabel     Reason = "duplicate_label"
	ReasonAnswerNotInOptions Reason = "answer_not_in_options"
)

// Rejection describes a question block that was dropped.
type Rejection struct {
	Block  int // 0-based index among all question blocks
	Line   int // line of the block-start token
	Reason Reason
	Detail string
}

func (r Rejection) String() string {
	if r.Detail == "" {
		return fmt.Sprintf("block %d (line %d): %s", r.Block, r.Line, r.Reason)
	}
	return fmt.Sprintf("block %d (line %d): %s: %s", r.Block, r.Line, r.Reason, r.Detail)
}

// Result is the outcome of parsing one document.
type Result struct {
	Quiz       *domain.Quiz
	Rejections []Rejection
}

// Parser holds immutable configuration and is safe for concurrent use.
type Parser struct {
	markers Markers
	newID   func() string
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarkers replaces the default document markers.
func WithMarkers(m Markers) Option {
	return func(p *Parser) { p.markers = m }
}

// WithIDGenerator sets the quiz identifier source. It must be safe for
// concurrent use if the parser is shared between goroutines.
func WithIDGenerator(newID func() string) Option {
	return func(p *Parser) { p.newID = newID }
}

// WithClock sets the source of quiz creation times.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithLogger sets the logger used to report rejected blocks at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// New creates a Parser. Without options it recognizes the default markers,
// identifies quizzes with ULIDs and does not log.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{
		markers: DefaultMarkers(),
		newID:   util.NewULID,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.markers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid markers: %w", err)
	}
	if p.newID == nil || p.now == nil || p.logger == nil {
		return nil, errors.New("parser dependencies must not be nil")
	}
	return p, nil
}

// Markers returns the markers the parser recognizes.
func (p *Parser) Markers() Markers {
	return p.markers
}

// ParseBytes decodes data as UTF-8 text and parses it.
func (p *Parser) ParseBytes(data []byte, fileName string) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, ErrNotText
	}
	return p.Parse(string(data), fileName), nil
}

// Parse builds a quiz from document. fallbackTitle names the source document;
// with its extension stripped it becomes the title when the document has none.
func (p *Parser) Parse(document, fallbackTitle string) *Result {
	tokens := p.Tokenize(document)
	title, questions, rejections := build(tokens)
	if title == "" {
		title = p.markers.stripExtension(fallbackTitle)
	}

	for _, r := range rejections {
		p.logger.Debug("Rejected question block",
			zap.String("file_name", fallbackTitle),
			zap.Int("block", r.Block),
			zap.Int("line", r.Line),
			zap.String("reason", string(r.Reason)),
			zap.String("detail", r.Detail))
	}

	return &Result{
		Quiz: &domain.Quiz{
			ID:        p.newID(),
			Title:     title,
			FileName:  fallbackTitle,
			Questions: questions,
			CreatedAt: p.now(),
		},
		Rejections: rejections,
	}
}

// Tokenize returns the token stream Parse works from. Offsets and lines refer
// to the document after byte-order-mark removal and CRLF normalization.
func (p *Parser) Tokenize(document string) []Token {
	return newScanner(normalize(document), p.markers).scan()
}

func normalize(document string) string {
	document = strings.TrimPrefix(document, "\uFEFF")
	return strings.ReplaceAll(document, "\r\n", "\n")
}

// block collects the tokens of one question block.
type block struct {
	index   int
	line    int
	prompt  *Token
	options []Token
	answer  *Token
}

func build(tokens []Token) (string, []domain.Question, []Rejection) {
	var (
		title      string
		titleSeen  bool
		questions  []domain.Question
		rejections []Rejection
		cur        *block
		blocks     int
	)

	flush := func() {
		if cur == nil {
			return
		}
		q, rej := cur.assemble(len(questions) + 1)
		if rej != nil {
			rejections = append(rejections, *rej)
			return
		}
		questions = append(questions, q)
	}

	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case TokenTitle:
			if !titleSeen {
				title, titleSeen = tok.Text, true
			}
		case TokenBlockStart:
			flush()
			cur = &block{index: blocks, line: tok.Line}
			blocks++
		case TokenPrompt:
			if cur != nil && cur.prompt == nil {
				cur.prompt = tok
			}
		case TokenOption:
			if cur != nil {
				cur.options = append(cur.options, *tok)
			}
		case TokenAnswer:
			if cur != nil && cur.answer == nil {
				cur.answer = tok
			}
		}
	}
	flush()

	return title, questions, rejections
}

// assemble turns the block into a question with the given ordinal, or
// explains why it cannot.
func (b *block) assemble(ordinal int) (domain.Question, *Rejection) {
	reject := func(reason Reason, detail string) (domain.Question, *Rejection) {
		return domain.Question{}, &Rejection{Block: b.index, Line: b.line, Reason: reason, Detail: detail}
	}

	switch {
	case b.prompt == nil:
		return reject(ReasonMissingPrompt, "")
	case b.answer == nil:
		return reject(ReasonMissingAnswer, "")
	case len(b.options) == 0:
		return reject(ReasonNoOptions, "")
	}

	options := make([]domain.Option, 0, len(b.options))
	seen := make(map[string]struct{}, len(b.options))
	for _, tok := range b.options {
		if _, dup := seen[tok.Label]; dup {
			return reject(ReasonDuplicateLabel, fmt.Sprintf("label %s on line %d", tok.Label, tok.Line))
		}
		seen[tok.Label] = struct{}{}
		options = append(options, domain.Option{Label: tok.Label, Content: tok.Text})
	}
	if _, ok := seen[b.answer.Label]; !ok {
		return reject(ReasonAnswerNotInOptions, fmt.Sprintf("answer %s", b.answer.Label))
	}

	return domain.Question{
		Ordinal:       ordinal,
		Heading:       b.prompt.Heading,
		Text:          b.prompt.Text,
		Options:       options,
		CorrectAnswer: b.answer.Label,
	}, nil
}

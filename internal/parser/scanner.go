package parser

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a token produced by the scanner.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenTitle
	TokenBlockStart
	TokenPrompt
	TokenOption
	TokenAnswer
)

func (k TokenKind) String() string {
	switch k {
	case TokenTitle:
		return "title"
	case TokenBlockStart:
		return "block_start"
	case TokenPrompt:
		return "prompt"
	case TokenOption:
		return "option"
	case TokenAnswer:
		return "answer"
	default:
		return "text"
	}
}

// Token is a marker or field recognized in a document.
type Token struct {
	Kind    TokenKind
	Pos     int    // byte offset in the normalized document
	Line    int    // 1-based
	Label   string // option and answer tokens
	Heading string // prompt tokens: text between the question keyword and the colon
	Text    string
}

// scanner turns a normalized document into a flat token stream. It knows
// where markers are but not whether a block is complete; that is decided by
// the structural pass in Parse.
type scanner struct {
	m      Markers
	doc    string
	lines  []int // byte offset of each line start
	tokens []Token
}

func newScanner(doc string, m Markers) *scanner {
	s := &scanner{m: m, doc: doc, lines: []int{0}}
	for i := 0; i < len(doc); i++ {
		if doc[i] == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
	return s
}

func (s *scanner) lineAt(pos int) int {
	return sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > pos })
}

func (s *scanner) emit(tok Token) {
	tok.Line = s.lineAt(tok.Pos)
	s.tokens = append(s.tokens, tok)
}

func (s *scanner) scan() []Token {
	s.scanTitle()

	start := s.m.blockStart()
	idx := strings.Index(s.doc, start)
	for idx >= 0 {
		bodyStart := idx + len(start)
		bodyEnd := len(s.doc)
		next := strings.Index(s.doc[bodyStart:], start)
		if next >= 0 {
			bodyEnd = bodyStart + next
		}

		s.emit(Token{Kind: TokenBlockStart, Pos: idx})
		s.scanBlock(bodyStart, bodyEnd)

		if next < 0 {
			break
		}
		idx = bodyEnd
	}
	return s.tokens
}

// scanTitle emits the first title marker closed on its own line.
func (s *scanner) scanTitle() {
	open := s.m.titleOpen()
	from := 0
	for from < len(s.doc) {
		i := strings.Index(s.doc[from:], open)
		if i < 0 {
			return
		}
		at := from + i
		line := s.doc[at+len(open):]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		if j := strings.Index(line, s.m.Emphasis); j >= 0 {
			s.emit(Token{Kind: TokenTitle, Pos: at, Text: strings.TrimSpace(line[:j])})
			return
		}
		from = at + 1
	}
}

// scanBlock tokenizes doc[start:end], the text following a block-start token.
// The prompt runs from the first colon to the next emphasis marker and may
// span lines.
func (s *scanner) scanBlock(start, end int) {
	body := s.doc[start:end]

	colon := strings.IndexByte(body, ':')
	if colon < 0 {
		return
	}
	closing := strings.Index(body[colon+1:], s.m.Emphasis)
	if closing < 0 {
		return
	}
	promptEnd := colon + 1 + closing
	s.emit(Token{
		Kind:    TokenPrompt,
		Pos:     start + colon + 1,
		Heading: strings.TrimSpace(body[:colon]),
		Text:    strings.TrimSpace(body[colon+1 : promptEnd]),
	})

	fieldsStart := promptEnd + len(s.m.Emphasis)
	answerPos, label, found := s.findAnswer(body, fieldsStart)
	regionEnd := len(body)
	if found {
		regionEnd = answerPos
	}
	s.scanOptions(start+fieldsStart, body[fieldsStart:regionEnd])

	if found {
		s.emit(Token{Kind: TokenAnswer, Pos: start + answerPos, Label: label})
	}
}

// findAnswer locates the first well-formed answer marker in body at or after from.
func (s *scanner) findAnswer(body string, from int) (int, string, bool) {
	open := s.m.answerOpen()
	for from < len(body) {
		i := strings.Index(body[from:], open)
		if i < 0 {
			return 0, "", false
		}
		at := from + i
		if label, ok := s.matchAnswer(body[at+len(open):]); ok {
			return at, label, true
		}
		from = at + 1
	}
	return 0, "", false
}

// matchAnswer matches ":<space><LABEL><space><emphasis>" at the start of rest.
func (s *scanner) matchAnswer(rest string) (string, bool) {
	rest = strings.TrimLeftFunc(rest, isInlineSpace)
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	rest = strings.TrimLeftFunc(rest[1:], unicode.IsSpace)
	r, size := utf8.DecodeRuneInString(rest)
	if size == 0 || !s.m.isLabel(r) {
		return "", false
	}
	rest = strings.TrimLeftFunc(rest[size:], isInlineSpace)
	if !strings.HasPrefix(rest, s.m.Emphasis) {
		return "", false
	}
	return string(r), true
}

// scanOptions emits one option or text token per non-blank line of region,
// which begins at byte offset pos of the document.
func (s *scanner) scanOptions(pos int, region string) {
	for _, raw := range strings.Split(region, "\n") {
		linePos := pos
		pos += len(raw) + 1

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if label, content, ok := s.matchOption(line); ok {
			s.emit(Token{Kind: TokenOption, Pos: linePos, Label: label, Text: content})
			continue
		}
		s.emit(Token{Kind: TokenText, Pos: linePos, Text: line})
	}
}

// matchOption matches "<LABEL>.<space><content>".
func (s *scanner) matchOption(line string) (string, string, bool) {
	r, size := utf8.DecodeRuneInString(line)
	if size == 0 || !s.m.isLabel(r) {
		return "", "", false
	}
	rest := line[size:]
	if !strings.HasPrefix(rest, ".") {
		return "", "", false
	}
	return string(r), strings.TrimLeftFunc(rest[1:], unicode.IsSpace), true
}

func isInlineSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

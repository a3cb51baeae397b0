package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenize_Sample(t *testing.T) {
	p := newTestParser(t)

	tokens := p.Tokenize(sampleDoc)

	assert.Equal(t, []TokenKind{
		TokenTitle,
		TokenBlockStart, TokenPrompt, TokenOption, TokenOption, TokenOption, TokenOption, TokenAnswer,
		TokenBlockStart, TokenPrompt, TokenOption, TokenOption, TokenText, TokenOption, TokenAnswer,
	}, kinds(tokens))

	assert.Equal(t, Token{Kind: TokenTitle, Pos: 19, Line: 2, Text: "Đề thi thử Toán"}, tokens[0])
	assert.Equal(t, 5, tokens[1].Line)
	assert.Equal(t, "B", tokens[7].Label)
	assert.Equal(t, 10, tokens[7].Line)
	assert.Equal(t, 12, tokens[8].Line)

	stray := tokens[12]
	assert.Equal(t, "Ghi chú: chọn một", stray.Text)
	assert.Equal(t, 15, stray.Line)
}

func TestTokenize_OptionLines(t *testing.T) {
	p := newTestParser(t)
	doc := "**Câu 1: q**\n  A.   một  \nB.\nC.hai\n**Đáp án đúng: A**"

	tokens := p.Tokenize(doc)

	require.Equal(t, []TokenKind{TokenBlockStart, TokenPrompt, TokenOption, TokenOption, TokenOption, TokenAnswer}, kinds(tokens))
	assert.Equal(t, Token{Kind: TokenOption, Pos: 14, Line: 2, Label: "A", Text: "một"}, tokens[2])
	assert.Equal(t, "", tokens[3].Text)
	assert.Equal(t, "hai", tokens[4].Text)
	assert.Equal(t, 4, tokens[4].Line)
}

func TestTokenize_BlockWithoutPrompt(t *testing.T) {
	p := newTestParser(t)

	tokens := p.Tokenize("**Câu 1 thiếu\nA. x\n**Câu 2: q**\nA. x\n**Đáp án đúng: A**")

	assert.Equal(t, []TokenKind{
		TokenBlockStart,
		TokenBlockStart, TokenPrompt, TokenOption, TokenAnswer,
	}, kinds(tokens))
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "title", TokenTitle.String())
	assert.Equal(t, "block_start", TokenBlockStart.String())
	assert.Equal(t, "prompt", TokenPrompt.String())
	assert.Equal(t, "option", TokenOption.String())
	assert.Equal(t, "answer", TokenAnswer.String())
	assert.Equal(t, "text", TokenText.String())
}

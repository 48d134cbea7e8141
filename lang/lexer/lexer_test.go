package lexer_test

import (
	"testing"

	"github.com/mna/diwa/lang/lexer"
	"github.com/mna/diwa/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var l lexer.Lexer
	l.Init(src)
	var toks []token.Token
	for {
		tok := l.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.DONE || tok.Kind == token.PROBLEM {
			break
		}
	}
	return toks
}

func TestPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, `( ) { } [ ] , . ; : * % / - -- + ++ ! != = == > >= < <=`)
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.LBRACK, token.RBRACK,
		token.COMMA, token.DOT, token.SEMI, token.COLON, token.STAR, token.PERCENT, token.SLASH,
		token.MINUS, token.MINUSMINUS, token.PLUS, token.PLUSPLUS,
		token.BANG, token.BANGEQ, token.EQ, token.EQEQ, token.GT, token.GE, token.LT, token.LE,
		token.DONE,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "token %d (%q)", i, toks[i].Lexeme)
	}
}

func TestKeywords(t *testing.T) {
	src := "at gawain gawin habang ibalik ipakita itigil ito ituloy kada kapag kilalanin mali kung kundiman null o palya sim suriin tama mula uri"
	want := []token.Kind{
		token.AND, token.FUNCTION, token.DO, token.WHILE, token.RETURN, token.PRINT,
		token.BREAK, token.THIS, token.CONTINUE, token.FOR, token.CASE, token.VAR,
		token.FALSE, token.IF, token.ELSE, token.NULL, token.OR, token.DEFAULT,
		token.INIT, token.SWITCH, token.TRUE, token.SUPER, token.CLASS,
	}
	toks := scanAll(t, src)
	require.Len(t, toks, len(want)+1)
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "keyword %d (%q)", i, toks[i].Lexeme)
	}
}

func TestIdentifierNotKeywordPrefix(t *testing.T) {
	toks := scanAll(t, "kilalaninX")
	require.Equal(t, token.IDENT, toks[0].Kind)
	require.Equal(t, "kilalaninX", toks[0].Lexeme)
}

func TestNumberIntegerAndDecimal(t *testing.T) {
	toks := scanAll(t, "42 3.14 7.")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "42", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "3.14", toks[1].Lexeme)
	// "7." has no fractional digit after the dot, so the dot is not consumed
	// as part of the number: a decimal point requires at least one fractional digit.
	require.Equal(t, token.NUMBER, toks[2].Kind)
	require.Equal(t, "7", toks[2].Lexeme)
	require.Equal(t, token.DOT, toks[3].Kind)
}

func TestStringLiteralWithEscape(t *testing.T) {
	toks := scanAll(t, `"hello \"world\""`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `hello "world"`, toks[0].Lexeme)
}

func TestStringSpansNewlinesAndTracksLine(t *testing.T) {
	toks := scanAll(t, "\"a\nb\" ipakita")
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "a\nb", toks[0].Lexeme)
	require.Equal(t, token.Pos(2), toks[1].Line)
}

func TestUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"never closes`)
	last := toks[len(toks)-1]
	require.Equal(t, token.PROBLEM, last.Kind)
}

func TestUnknownByte(t *testing.T) {
	toks := scanAll(t, "@")
	require.Equal(t, token.PROBLEM, toks[0].Kind)
}

func TestCommentToEndOfLine(t *testing.T) {
	toks := scanAll(t, "1 // a comment\n2")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "2", toks[1].Lexeme)
	require.Equal(t, token.Pos(2), toks[1].Line)
}

func TestLineCounting(t *testing.T) {
	toks := scanAll(t, "1\n2\n3")
	require.Equal(t, token.Pos(1), toks[0].Line)
	require.Equal(t, token.Pos(2), toks[1].Line)
	require.Equal(t, token.Pos(3), toks[2].Line)
}

func TestEmptySourceYieldsDone(t *testing.T) {
	toks := scanAll(t, "")
	require.Len(t, toks, 1)
	require.Equal(t, token.DONE, toks[0].Kind)
}

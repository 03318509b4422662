package parser

import (
	"strings"
	"unicode"

	"github.com/antlr4-go/antlr/v4"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokInt
	tokFloat
	tokString
	tokSymbol
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]bool{
	"class": true, "extends": true, "field": true, "constructor": true,
	"method": true, "fixture": true, "test": true,
	"if": true, "then": true, "else": true, "while": true, "for": true,
	"return": true, "assert": true, "skip": true, "new": true, "as": true,
	"nil": true, "true": true, "false": true,
	"int": true, "float": true, "boolean": true, "void": true,
}

// twoCharSymbols must be tried before single characters.
var twoCharSymbols = []string{":=", "!=", "<=", ">="}

const oneCharSymbols = "=<>+-*/&|!(){}[];,."

// lexer splits a Kitten source into tokens. It reads the source through an
// ANTLR character stream, so positions are rune offsets.
type lexer struct {
	in     antlr.CharStream
	report func(pos int, msg string)
}

func newLexer(src string, report func(pos int, msg string)) *lexer {
	return &lexer{in: antlr.NewInputStream(src), report: report}
}

func (l *lexer) peek(offset int) rune {
	c := l.in.LA(offset)
	if c == antlr.TokenEOF {
		return 0
	}
	return rune(c)
}

func (l *lexer) advance() {
	if l.in.LA(1) != antlr.TokenEOF {
		l.in.Consume()
	}
}

func (l *lexer) atEOF() bool {
	return l.in.LA(1) == antlr.TokenEOF
}

// tokens returns every token of the source, ending with tokEOF.
func (l *lexer) tokens() []token {
	var out []token
	for {
		t := l.next()
		out = append(out, t)
		if t.kind == tokEOF {
			return out
		}
	}
}

func (l *lexer) skipSpaceAndComments() {
	for !l.atEOF() {
		c := l.peek(1)
		switch {
		case unicode.IsSpace(c):
			l.advance()
		case c == '/' && l.peek(2) == '/':
			for !l.atEOF() && l.peek(1) != '\n' {
				l.advance()
			}
		case c == '/' && l.peek(2) == '*':
			start := l.in.Index()
			l.advance()
			l.advance()
			for !l.atEOF() && !(l.peek(1) == '*' && l.peek(2) == '/') {
				l.advance()
			}
			if l.atEOF() {
				l.report(start, "unterminated comment")
				return
			}
			l.advance()
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) next() token {
	l.skipSpaceAndComments()
	start := l.in.Index()
	if l.atEOF() {
		return token{kind: tokEOF, pos: start}
	}
	c := l.peek(1)
	switch {
	case unicode.IsLetter(c) || c == '_':
		for unicode.IsLetter(l.peek(1)) || unicode.IsDigit(l.peek(1)) || l.peek(1) == '_' {
			l.advance()
		}
		text := l.in.GetText(start, l.in.Index()-1)
		if keywords[text] {
			return token{kind: tokKeyword, text: text, pos: start}
		}
		return token{kind: tokIdent, text: text, pos: start}
	case unicode.IsDigit(c):
		return l.number(start)
	case c == '"':
		return l.str(start)
	}
	for _, s := range twoCharSymbols {
		if c == rune(s[0]) && l.peek(2) == rune(s[1]) {
			l.advance()
			l.advance()
			return token{kind: tokSymbol, text: s, pos: start}
		}
	}
	l.advance()
	if strings.ContainsRune(oneCharSymbols, c) {
		return token{kind: tokSymbol, text: string(c), pos: start}
	}
	l.report(start, "unexpected character "+string(c))
	return token{kind: tokInvalid, text: string(c), pos: start}
}

func (l *lexer) number(start int) token {
	for unicode.IsDigit(l.peek(1)) {
		l.advance()
	}
	kind := tokInt
	if l.peek(1) == '.' && unicode.IsDigit(l.peek(2)) {
		kind = tokFloat
		l.advance()
		for unicode.IsDigit(l.peek(1)) {
			l.advance()
		}
	}
	return token{kind: kind, text: l.in.GetText(start, l.in.Index()-1), pos: start}
}

func (l *lexer) str(start int) token {
	l.advance()
	var sb strings.Builder
	for {
		c := l.peek(1)
		switch {
		case l.atEOF() || c == '\n':
			l.report(start, "unterminated string literal")
			return token{kind: tokString, text: sb.String(), pos: start}
		case c == '"':
			l.advance()
			return token{kind: tokString, text: sb.String(), pos: start}
		case c == '\\':
			l.advance()
			switch e := l.peek(1); e {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"', '\\':
				sb.WriteRune(e)
			default:
				l.report(l.in.Index()-1, "invalid escape sequence")
			}
			l.advance()
		default:
			sb.WriteRune(c)
			l.advance()
		}
	}
}

// Package lexer tokenizes SQL text into a position-tagged token stream
// (spec §4.1).
package lexer

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/token"
)

// Tokenize scans the entire input and returns its tokens, terminated by
// a single EOF token. It returns the first *sqlerr.ParseError encountered
// (tokenization fails fast, per spec §7).
func Tokenize(sql string) ([]token.Token, error) {
	l := &lexer{input: sql}
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

type lexer struct {
	input string
	pos   int
	last  token.Token
	any   bool
}

func (l *lexer) next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.pos

	if l.pos >= len(l.input) {
		return l.emit(token.EOF, "", "", start)
	}

	ch := l.input[l.pos]

	switch {
	case ch == '\'':
		return l.scanString(start)
	case ch == '"':
		return l.scanQuotedIdent(start)
	case isDigit(ch):
		return l.scanNumber(start)
	case ch == '-' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) && l.minusStartsNumber():
		return l.scanNumber(start)
	case isIdentStart(ch):
		return l.scanIdentOrKeyword(start)
	default:
		return l.scanOperatorOrPunct(start)
	}
}

func (l *lexer) minusStartsNumber() bool {
	if !l.any {
		return true
	}
	return !l.last.IsValueProducing()
}

func (l *lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.pos++
		case ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '-':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case ch == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '*':
			l.pos += 2
			for l.pos+1 < len(l.input) && !(l.input[l.pos] == '*' && l.input[l.pos+1] == '/') {
				l.pos++
			}
			l.pos += 2
			if l.pos > len(l.input) {
				l.pos = len(l.input)
			}
		default:
			return
		}
	}
}

func (l *lexer) emit(kind token.Kind, text, orig string, start int) (token.Token, error) {
	t := token.Token{Kind: kind, Text: text, Orig: orig, Range: pos.Range{Start: start, End: l.pos}}
	l.last = t
	l.any = true
	return t, nil
}

func (l *lexer) scanString(start int) (token.Token, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return token.Token{}, sqlerr.NewParseError(sqlerr.KindUnterminatedStr, pos.Range{Start: start, End: l.pos})
		}
		ch := l.input[l.pos]
		if ch == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				b.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			break
		}
		b.WriteByte(ch)
		l.pos++
	}
	return l.emit(token.STRING, b.String(), "", start)
}

func (l *lexer) scanQuotedIdent(start int) (token.Token, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return token.Token{}, sqlerr.NewParseError(sqlerr.KindUnterminatedIdent, pos.Range{Start: start, End: l.pos})
		}
		ch := l.input[l.pos]
		if ch == '"' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				b.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			break
		}
		b.WriteByte(ch)
		l.pos++
	}
	return l.emit(token.QUOTED_IDENT, b.String(), "", start)
}

func (l *lexer) scanNumber(start int) (token.Token, error) {
	p := l.pos
	if l.input[p] == '-' {
		p++
	}
	for p < len(l.input) && isDigit(l.input[p]) {
		p++
	}
	isFloat := false
	if p < len(l.input) && l.input[p] == '.' {
		isFloat = true
		p++
		for p < len(l.input) && isDigit(l.input[p]) {
			p++
		}
	}
	if p < len(l.input) && (l.input[p] == 'e' || l.input[p] == 'E') {
		q := p + 1
		if q < len(l.input) && (l.input[q] == '+' || l.input[q] == '-') {
			q++
		}
		if q < len(l.input) && isDigit(l.input[q]) {
			isFloat = true
			p = q
			for p < len(l.input) && isDigit(l.input[p]) {
				p++
			}
		}
	}

	bigSuffix := false
	if !isFloat && p < len(l.input) && l.input[p] == 'n' {
		bigSuffix = true
		p++
	}

	text := l.input[l.pos:p]
	numText := text
	if bigSuffix {
		numText = text[:len(text)-1]
	}
	l.pos = p

	t := token.Token{Kind: token.NUMBER, Text: text, Range: pos.Range{Start: start, End: l.pos}}
	if bigSuffix {
		bi, ok := new(big.Int).SetString(numText, 10)
		if !ok {
			return token.Token{}, sqlerr.NewParseError(sqlerr.KindBigIntParse, t.Range, text)
		}
		t.BigInt = bi
		t.IsInt = true
	} else {
		f, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			return token.Token{}, sqlerr.NewParseError(sqlerr.KindInvalidNumber, t.Range, text)
		}
		t.Num = f
		t.IsInt = !isFloat
	}
	l.last = t
	l.any = true
	return t, nil
}

func (l *lexer) scanIdentOrKeyword(start int) (token.Token, error) {
	p := l.pos
	for p < len(l.input) && isIdentPart(l.input[p]) {
		p++
	}
	text := l.input[l.pos:p]
	l.pos = p
	upper := strings.ToUpper(text)
	kind := token.Lookup(upper)
	if kind == token.IDENT {
		return l.emit(token.IDENT, text, "", start)
	}
	t, _ := l.emit(kind, upper, text, start)
	return t, nil
}

var twoCharOps = []string{"<=", ">=", "!=", "<>"}

func (l *lexer) scanOperatorOrPunct(start int) (token.Token, error) {
	rest := l.input[l.pos:]
	for _, op := range twoCharOps {
		if strings.HasPrefix(rest, op) {
			l.pos += 2
			return l.emit(token.OPERATOR, op, "", start)
		}
	}
	ch := l.input[l.pos]
	switch ch {
	case '+', '-', '*', '/', '%', '=', '<', '>':
		l.pos++
		return l.emit(token.OPERATOR, string(ch), "", start)
	case '(', ')', ',', '.':
		l.pos++
		return l.emit(token.PUNCT, string(ch), "", start)
	default:
		if !l.any {
			return token.Token{}, sqlerr.NewParseError(sqlerr.KindMustStartWithSelect, pos.Range{Start: start, End: start + 1})
		}
		l.pos++
		return token.Token{}, sqlerr.NewParseError(sqlerr.KindUnexpectedChar, pos.Range{Start: start, End: l.pos}, ch)
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

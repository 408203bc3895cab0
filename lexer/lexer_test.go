package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/token"
)

func TestTokenizeRoundTripRanges(t *testing.T) {
	sql := "SELECT a, b FROM t WHERE a = 'x''y' -- trailing\n"
	toks, err := Tokenize(sql)
	require.NoError(t, err)
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		surface := sql[tok.Range.Start:tok.Range.End]
		if tok.Kind == token.STRING {
			require.Equal(t, "'x''y'", surface)
			continue
		}
		if token.IsKeyword(tok.Kind) {
			require.Equal(t, tok.Text, upper(surface))
			continue
		}
		require.Equal(t, tok.Text, surface)
	}
}

func upper(s string) string {
	toks, err := Tokenize(s)
	if err != nil || len(toks) == 0 {
		return s
	}
	return toks[0].Text
}

func TestTokenizeNegativeNumberVsMinus(t *testing.T) {
	toks, err := Tokenize("SELECT -1")
	require.NoError(t, err)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "-1", toks[1].Text)

	toks, err = Tokenize("SELECT a - 1")
	require.NoError(t, err)
	// a, -, 1
	require.Equal(t, token.IDENT, toks[1].Kind)
	require.Equal(t, token.OPERATOR, toks[2].Kind)
	require.Equal(t, "-", toks[2].Text)
	require.Equal(t, token.NUMBER, toks[3].Kind)
	require.Equal(t, "1", toks[3].Text)
}

func TestTokenizeBigIntSuffix(t *testing.T) {
	toks, err := Tokenize("SELECT 123n")
	require.NoError(t, err)
	require.NotNil(t, toks[1].BigInt)
	require.Equal(t, "123", toks[1].BigInt.String())
}

func TestTokenizeQuotedIdentifierEscape(t *testing.T) {
	toks, err := Tokenize(`SELECT "a""b"`)
	require.NoError(t, err)
	require.Equal(t, token.QUOTED_IDENT, toks[1].Kind)
	require.Equal(t, `a"b`, toks[1].Text)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize("SELECT 'abc")
	require.Error(t, err)
	var pe *sqlerr.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestTokenizeFirstCharError(t *testing.T) {
	_, err := Tokenize("#bad")
	require.Error(t, err)
}

func TestTokenizeComments(t *testing.T) {
	toks, err := Tokenize("SELECT /* c */ 1 -- trail")
	require.NoError(t, err)
	require.Equal(t, token.SELECT, toks[0].Kind)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, token.EOF, toks[2].Kind)
}

// Package token defines the lexical tokens produced by the tokenizer
// (spec §3 "Token", §4.1).
package token

import (
	"math/big"

	"github.com/tessera-sql/sqlengine/pos"
)

// Kind classifies a token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	IDENT
	NUMBER
	STRING
	QUOTED_IDENT

	OPERATOR
	PUNCT

	keywordBeg
	SELECT
	FROM
	WHERE
	GROUP
	BY
	HAVING
	ORDER
	ASC
	DESC
	NULLS
	FIRST
	LAST
	LIMIT
	OFFSET
	AS
	ALL
	DISTINCT
	TRUE
	FALSE
	NULL
	LIKE
	IN
	NOT
	EXISTS
	BETWEEN
	CASE
	WHEN
	THEN
	ELSE
	END
	JOIN
	INNER
	LEFT
	RIGHT
	FULL
	OUTER
	ON
	POSITIONAL
	IS
	AND
	OR
	INTERVAL
	CAST
	WITH

	// interval units
	SECOND
	MINUTE
	HOUR
	DAY
	MONTH
	YEAR
	keywordEnd
)

var keywords = map[string]Kind{
	"SELECT": SELECT, "FROM": FROM, "WHERE": WHERE, "GROUP": GROUP, "BY": BY,
	"HAVING": HAVING, "ORDER": ORDER, "ASC": ASC, "DESC": DESC, "NULLS": NULLS,
	"FIRST": FIRST, "LAST": LAST, "LIMIT": LIMIT, "OFFSET": OFFSET, "AS": AS,
	"ALL": ALL, "DISTINCT": DISTINCT, "TRUE": TRUE, "FALSE": FALSE, "NULL": NULL,
	"LIKE": LIKE, "IN": IN, "NOT": NOT, "EXISTS": EXISTS, "BETWEEN": BETWEEN,
	"CASE": CASE, "WHEN": WHEN, "THEN": THEN, "ELSE": ELSE, "END": END,
	"JOIN": JOIN, "INNER": INNER, "LEFT": LEFT, "RIGHT": RIGHT, "FULL": FULL,
	"OUTER": OUTER, "ON": ON, "POSITIONAL": POSITIONAL, "IS": IS, "AND": AND,
	"OR": OR, "INTERVAL": INTERVAL, "CAST": CAST, "WITH": WITH,
	"SECOND": SECOND, "MINUTE": MINUTE, "HOUR": HOUR, "DAY": DAY,
	"MONTH": MONTH, "YEAR": YEAR,
}

// Lookup returns the keyword Kind for an upper-cased identifier text, or
// IDENT if it is not a keyword.
func Lookup(upper string) Kind {
	if k, ok := keywords[upper]; ok {
		return k
	}
	return IDENT
}

// IsKeyword reports whether k is one of the reserved words.
func IsKeyword(k Kind) bool { return k > keywordBeg && k < keywordEnd }

// IsIntervalUnit reports whether k names an INTERVAL unit.
func IsIntervalUnit(k Kind) bool {
	switch k {
	case SECOND, MINUTE, HOUR, DAY, MONTH, YEAR:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "identifier"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case QUOTED_IDENT:
		return "quoted identifier"
	case OPERATOR:
		return "operator"
	case PUNCT:
		return "punctuation"
	}
	for text, kind := range keywords {
		if kind == k {
			return text
		}
	}
	return "token"
}

// Token is one lexical unit of the input SQL text.
type Token struct {
	Kind  Kind
	Text  string // canonical text (upper-cased for keywords, unescaped for strings)
	Orig  string // original-case surface text, when it differs from Text
	Range pos.Range

	// Num is populated for NUMBER tokens that parse as a non-bigint
	// numeric literal.
	Num float64
	// BigInt is populated for NUMBER tokens carrying the `n` suffix.
	BigInt *big.Int
	// IsInt reports whether Num (or BigInt) represents an integral value
	// with no decimal point or exponent, used to decide Int64 vs Float64
	// literal typing.
	IsInt bool
}

// IsValueProducing reports whether a token can end an expression that
// produces a value - used by the tokenizer to decide whether a following
// '-' starts a new (negative) number literal or is a binary minus
// (spec §4.1).
func (t Token) IsValueProducing() bool {
	switch t.Kind {
	case IDENT, NUMBER, STRING, QUOTED_IDENT:
		return true
	case PUNCT:
		return t.Text == ")"
	default:
		return false
	}
}

package parser

import "github.com/tessera-sql/sqlengine/udf"

func arity(min int, max int) udf.Arity {
	m := max
	return udf.Arity{Min: min, Max: &m}
}

func variadic(min int) udf.Arity { return udf.Arity{Min: min} }

// builtinArity is the arity table the parser validates scalar and
// aggregate function calls against (spec §4.2 "function argument counts
// satisfy a table {fn -> (min, max?)}"). Names are upper-cased; lookup
// is case-insensitive because validateArity upper-cases the name first.
var builtinArity = map[string]udf.Arity{
	// string family
	"UPPER": arity(1, 1), "LOWER": arity(1, 1), "LENGTH": arity(1, 1),
	"CHAR_LENGTH": arity(1, 1), "SUBSTRING": arity(2, 3), "CONCAT": variadic(1),
	"CONCAT_WS": variadic(2), "TRIM": arity(1, 1), "LTRIM": arity(1, 1),
	"RTRIM": arity(1, 1), "REPLACE": arity(3, 3), "LPAD": arity(3, 3),
	"RPAD": arity(3, 3), "REVERSE": arity(1, 1), "LOCATE": arity(2, 3),
	"INSTR": arity(2, 2), "LEFT": arity(2, 2), "RIGHT": arity(2, 2),
	"REPEAT": arity(2, 2),

	// math family
	"ABS": arity(1, 1), "CEIL": arity(1, 1), "CEILING": arity(1, 1),
	"FLOOR": arity(1, 1), "ROUND": arity(1, 2), "POWER": arity(2, 2),
	"POW": arity(2, 2), "SQRT": arity(1, 1), "MOD": arity(2, 2),
	"RAND": arity(0, 1), "RANDOM": arity(0, 0), "LOG": arity(1, 2),
	"LOG10": arity(1, 1), "LN": arity(1, 1), "SIGN": arity(1, 1),
	"EXP": arity(1, 1),

	// regex family
	"REGEXP_LIKE": arity(2, 3), "REGEXP_REPLACE": arity(3, 4),
	"REGEXP_EXTRACT": arity(2, 3),

	// JSON family
	"JSON_OBJECT": variadic(0), "JSON_VALUE": arity(2, 2),
	"JSON_QUERY": arity(2, 2), "JSON_ARRAY": variadic(0),

	// date/time family
	"DATE_FORMAT": arity(2, 2), "DATEDIFF": arity(2, 2),
	"CURRENT_DATE": arity(0, 0), "CURRENT_TIME": arity(0, 0),
	"CURRENT_TIMESTAMP": arity(0, 0), "NOW": arity(0, 0),

	// conditional family
	"COALESCE": variadic(1), "IFNULL": arity(2, 2), "NULLIF": arity(2, 2),
	"GREATEST": variadic(1), "LEAST": variadic(1),

	// spatial family (pluggable, registered the same way - listed here so
	// parse-time arity checking covers it too)
	"ST_EQUALS": arity(2, 2), "ST_CONTAINS": arity(2, 2),
	"ST_WITHIN": arity(2, 2), "ST_INTERSECTS": arity(2, 2),
	"ST_DISTANCE": arity(2, 2), "ST_GEOMFROMTEXT": arity(1, 1),
	"ST_ASTEXT": arity(1, 1),

	// aggregates
	"COUNT": arity(1, 1), "SUM": arity(1, 1), "AVG": arity(1, 1),
	"MIN": arity(1, 1), "MAX": arity(1, 1), "STDDEV_SAMP": arity(1, 1),
	"STDDEV_POP": arity(1, 1), "JSON_ARRAYAGG": arity(1, 1),
}

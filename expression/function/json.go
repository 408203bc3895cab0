package function

import (
	"encoding/json"
	"strings"

	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/value"
)

func init() {
	JSONFamily.Register("JSON_OBJECT", variadic(0), func(a []argT) (argT, error) {
		if len(a)%2 != 0 {
			return nullV, sqlerr.NewExecutionError(sqlerr.KindInvalidArgument, pos.Range{}, nil, "JSON_OBJECT", "expects an even number of key/value arguments")
		}
		obj := make(map[string]interface{}, len(a)/2)
		for i := 0; i < len(a); i += 2 {
			obj[a[i].String()] = jsonable(a[i+1])
		}
		return value.JSON(obj), nil
	})
	JSONFamily.Register("JSON_ARRAY", variadic(0), func(a []argT) (argT, error) {
		arr := make([]interface{}, len(a))
		for i, v := range a {
			arr[i] = jsonable(v)
		}
		return value.JSON(arr), nil
	})
	JSONFamily.Register("JSON_VALUE", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		doc, err := parseJSONDoc(a[0])
		if err != nil {
			return nullV, err
		}
		v, ok := jsonPathLookup(doc, a[1].String())
		if !ok {
			return nullV, nil
		}
		return scalarize(v), nil
	})
	JSONFamily.Register("JSON_QUERY", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		doc, err := parseJSONDoc(a[0])
		if err != nil {
			return nullV, err
		}
		v, ok := jsonPathLookup(doc, a[1].String())
		if !ok {
			return nullV, nil
		}
		return value.JSON(v), nil
	})
}

func jsonable(v argT) interface{} {
	if v.IsNull() {
		return nil
	}
	if v.Kind() == value.KindJSON {
		return v.JSON()
	}
	return v.String()
}

func parseJSONDoc(v argT) (interface{}, error) {
	if v.Kind() == value.KindJSON {
		return v.JSON(), nil
	}
	var doc interface{}
	if err := json.Unmarshal([]byte(v.String()), &doc); err != nil {
		return nil, sqlerr.NewExecutionError(sqlerr.KindJSONParse, pos.Range{}, nil, "JSON_VALUE/JSON_QUERY", err.Error())
	}
	return doc, nil
}

// jsonPathLookup supports a minimal "$.a.b.c" dotted-path subset,
// sufficient for the path expressions the spec's JSON family examples
// use; array indices are not supported.
func jsonPathLookup(doc interface{}, path string) (interface{}, bool) {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return doc, true
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func scalarize(v interface{}) argT {
	switch t := v.(type) {
	case nil:
		return nullV
	case string:
		return strV(t)
	case bool:
		return boolV(t)
	case float64:
		return floatV(t)
	default:
		return value.JSON(t)
	}
}

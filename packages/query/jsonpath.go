package query

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/tidwall/gjson"
)

var jsonWriteOptions = oj.Options{
	Sort:       true,
	HTMLUnsafe: true,
}

// MatchJSON parses body as JSON and evaluates the JSONPath query against it.
// Exactly one node must match. A matched string is returned verbatim; any
// other value is returned as compact JSON with object keys in document order
// and numbers in their shortest float64 form.
func MatchJSON(body, query string) (string, error) {
	if strings.TrimSpace(body) == "" {
		err := errors.New("unexpected end of JSON input")
		return "", errcode.Wrap(err, errcode.InvalidBody, "invalid JSON: %v", err)
	}
	if err := oj.ValidateString(body); err != nil {
		return "", errcode.Wrap(err, errcode.InvalidBody, "invalid JSON: %v", err)
	}

	x, err := jp.ParseString(query)
	if err != nil {
		return "", errcode.Wrap(err, errcode.InvalidQuery, "invalid JSONPath query: %s", query)
	}

	// gjson decodes every number as float64, like a browser JSON.parse.
	doc := gjson.Parse(body).Value()

	results, err := evalJSONPath(x, doc, query)
	if err != nil {
		return "", err
	}

	if err := checkCardinality(len(results), query); err != nil {
		return "", err
	}

	if s, ok := results[0].(string); ok {
		return s, nil
	}
	return string(appendNode(nil, sourceNode(body, x, doc, results[0]))), nil
}

func evalJSONPath(x jp.Expr, doc any, query string) (results []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = errcode.New(errcode.InvalidQuery, "invalid JSONPath query: %s", query).
				WithContext("panic", r)
		}
	}()

	return x.Get(doc), nil
}

func checkCardinality(n int, query string) error {
	switch {
	case n == 0:
		return errcode.New(errcode.NoMatch, "returned no results: %s", query).
			WithContext("query", query)
	case n > 1:
		return errcode.New(errcode.AmbiguousMatch, "returned more than one result: %s", query).
			WithContext("query", query)
	}
	return nil
}

// sourceNode finds the matched value in the body text so objects keep their
// key order. When the match cannot be located it is rebuilt from the decoded
// value, with sorted keys.
func sourceNode(body string, x jp.Expr, doc, match any) gjson.Result {
	root := gjson.Parse(body)
	if len(x) == 1 {
		if _, ok := x[0].(jp.Root); ok {
			return root
		}
	}

	if locs := locate(x, doc); len(locs) == 1 {
		if node, ok := walk(root, locs[0]); ok {
			return node
		}
	}
	return gjson.Parse(oj.JSON(match, &jsonWriteOptions))
}

func locate(x jp.Expr, doc any) (locs []jp.Expr) {
	defer func() {
		if recover() != nil {
			locs = nil
		}
	}()
	return x.Locate(doc, 2)
}

// walk follows a normalized path of child names and indexes through node.
func walk(node gjson.Result, path jp.Expr) (gjson.Result, bool) {
	for _, frag := range path {
		switch f := frag.(type) {
		case jp.Root, jp.Bracket:
		case jp.Child:
			if !node.IsObject() {
				return gjson.Result{}, false
			}
			node = node.Get(gjson.Escape(string(f)))
		case jp.Nth:
			if !node.IsArray() {
				return gjson.Result{}, false
			}
			elems := node.Array()
			i := int(f)
			if i < 0 {
				i += len(elems)
			}
			if i < 0 || i >= len(elems) {
				return gjson.Result{}, false
			}
			node = elems[i]
		default:
			return gjson.Result{}, false
		}
		if !node.Exists() {
			return gjson.Result{}, false
		}
	}
	return node, true
}

// appendNode writes node as compact JSON. A repeated object key keeps its
// first position and its last value.
func appendNode(buf []byte, node gjson.Result) []byte {
	switch node.Type {
	case gjson.Null:
		return append(buf, "null"...)
	case gjson.False:
		return append(buf, "false"...)
	case gjson.True:
		return append(buf, "true"...)
	case gjson.Number:
		return append(buf, formatNumber(node.Num)...)
	case gjson.String:
		return append(buf, oj.JSON(node.Str, &jsonWriteOptions)...)
	}

	if node.IsArray() {
		buf = append(buf, '[')
		for i, elem := range node.Array() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendNode(buf, elem)
		}
		return append(buf, ']')
	}

	var keys []string
	values := make(map[string]gjson.Result)
	node.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, seen := values[k]; !seen {
			keys = append(keys, k)
		}
		values[k] = value
		return true
	})

	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, oj.JSON(k, &jsonWriteOptions)...)
		buf = append(buf, ':')
		buf = appendNode(buf, values[k])
	}
	return append(buf, '}')
}

// formatNumber renders f the way JSON.stringify does: plain decimals between
// 1e-6 and 1e21, exponent form outside, null for values that overflowed.
func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	// e-07 -> e-7
	if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-2] == '0' {
		s = s[:n-2] + s[n-1:]
	}
	return s
}

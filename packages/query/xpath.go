package query

import (
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// markupDocument is a parsed markup body that XPath can navigate.
type markupDocument interface {
	navigator() xpath.NodeNavigator
	// inner returns the serialized children of the element under nav.
	inner(nav xpath.NodeNavigator) string
}

type xmlDocument struct {
	root *xmlquery.Node
}

func (d xmlDocument) navigator() xpath.NodeNavigator {
	return xmlquery.CreateXPathNavigator(d.root)
}

func (d xmlDocument) inner(nav xpath.NodeNavigator) string {
	if n, ok := nav.(*xmlquery.NodeNavigator); ok {
		return n.Current().OutputXML(false)
	}
	return nav.Value()
}

type htmlDocument struct {
	root *html.Node
}

func (d htmlDocument) navigator() xpath.NodeNavigator {
	return htmlquery.CreateXPathNavigator(d.root)
}

func (d htmlDocument) inner(nav xpath.NodeNavigator) string {
	if n, ok := nav.(*htmlquery.NodeNavigator); ok {
		return htmlquery.OutputHTML(n.Current(), false)
	}
	return nav.Value()
}

// MatchMarkup evaluates an XPath expression against body parsed as markup.
// Exactly one result must match. Elements yield their inner markup,
// attributes their value, text nodes their trimmed text, and scalar
// expressions such as count() their string form. Comments, declarations and
// the document node never match.
func MatchMarkup(body, query string, opts ...Option) (string, error) {
	return matchMarkup(body, strings.TrimSpace(query), newOptions(opts))
}

func matchMarkup(body, query string, o *options) (string, error) {
	expr, err := xpath.Compile(query)
	if err != nil {
		return "", errcode.Wrap(err, errcode.InvalidQuery, "invalid XPath query: %s", query)
	}

	doc, err := parseMarkup(body, o)
	if err != nil {
		return "", err
	}

	results, err := evalXPath(expr, doc, query)
	if err != nil {
		return "", err
	}

	if err := checkCardinality(len(results), query); err != nil {
		return "", err
	}
	return results[0], nil
}

func parseMarkup(body string, o *options) (markupDocument, error) {
	switch o.parser {
	case ParserHTML:
		return parseHTML(body)
	case ParserXML:
		return parseXML(body)
	}

	if strings.Contains(strings.ToLower(o.contentType), "html") {
		return parseHTML(body)
	}
	if doc, err := parseXML(body); err == nil {
		return doc, nil
	}
	return parseHTML(body)
}

func parseXML(body string) (markupDocument, error) {
	root, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return nil, errcode.Wrap(err, errcode.InvalidMarkup, "invalid XML: %v", err)
	}
	return xmlDocument{root: root}, nil
}

func parseHTML(body string) (markupDocument, error) {
	root, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return nil, errcode.Wrap(err, errcode.InvalidMarkup, "invalid HTML: %v", err)
	}
	return htmlDocument{root: root}, nil
}

// evalXPath collects at most two results; more are not needed to decide cardinality.
func evalXPath(expr *xpath.Expr, doc markupDocument, query string) (results []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = errcode.New(errcode.InvalidQuery, "invalid XPath query: %s", query).
				WithContext("panic", r)
		}
	}()

	switch v := expr.Evaluate(doc.navigator()).(type) {
	case *xpath.NodeIterator:
		for len(results) < 2 && v.MoveNext() {
			if value, ok := nodeValue(doc, v.Current()); ok {
				results = append(results, value)
			}
		}
	case string:
		results = append(results, v)
	case float64:
		results = append(results, strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		results = append(results, strconv.FormatBool(v))
	}
	return results, nil
}

// nodeValue returns the value of an element, attribute or text node. Other
// node types (comments, declarations, the document itself) are not results.
func nodeValue(doc markupDocument, nav xpath.NodeNavigator) (string, bool) {
	switch nav.NodeType() {
	case xpath.ElementNode:
		return doc.inner(nav), true
	case xpath.AttributeNode:
		return nav.Value(), true
	case xpath.TextNode:
		return strings.TrimSpace(nav.Value()), true
	default:
		return "", false
	}
}

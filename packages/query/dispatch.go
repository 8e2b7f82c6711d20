package query

import (
	"fmt"
	"strings"
)

// Mode selects the query engine for a body filter.
type Mode string

const (
	// ModeAuto picks JSONPath when the filter starts with "$" and XPath otherwise.
	ModeAuto     Mode = "auto"
	ModeJSONPath Mode = "jsonpath"
	ModeXPath    Mode = "xpath"
)

// Parser selects how markup bodies are parsed for XPath evaluation.
type Parser string

const (
	// ParserAuto uses HTML for html content types, otherwise XML with an HTML fallback.
	ParserAuto Parser = "auto"
	ParserXML  Parser = "xml"
	ParserHTML Parser = "html"
)

// JSONPathRoot is the marker that routes a filter to the JSONPath engine.
const JSONPathRoot = "$"

// ParseMode validates a mode name. An empty name is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeJSONPath, ModeXPath:
		return m, nil
	default:
		return "", fmt.Errorf("unknown query mode %q (expected auto, jsonpath or xpath)", s)
	}
}

// ParseParser validates a markup parser name. An empty name is ParserAuto.
func ParseParser(s string) (Parser, error) {
	switch p := Parser(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ParserAuto:
		return ParserAuto, nil
	case ParserXML, ParserHTML:
		return p, nil
	default:
		return "", fmt.Errorf("unknown markup parser %q (expected auto, xml or html)", s)
	}
}

type options struct {
	mode        Mode
	parser      Parser
	contentType string
}

// Option configures Dispatch and MatchMarkup.
type Option func(*options)

// WithMode forces an engine instead of sniffing the filter.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithParser forces a markup parser.
func WithParser(p Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithContentType passes the response content type, used by ParserAuto.
func WithContentType(ct string) Option {
	return func(o *options) {
		o.contentType = ct
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		mode:   ModeAuto,
		parser: ParserAuto,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IsJSONPath reports whether the trimmed filter starts with the JSONPath root marker.
func IsJSONPath(filter string) bool {
	return strings.HasPrefix(strings.TrimSpace(filter), JSONPathRoot)
}

// Engine returns the engine a filter is routed to under mode.
func Engine(filter string, mode Mode) Mode {
	switch mode {
	case ModeJSONPath, ModeXPath:
		return mode
	}
	if IsJSONPath(filter) {
		return ModeJSONPath
	}
	return ModeXPath
}

// Dispatch evaluates filter against body with the engine chosen by Engine and
// returns the single matched value.
func Dispatch(body, filter string, opts ...Option) (string, error) {
	o := newOptions(opts)
	filter = strings.TrimSpace(filter)

	if Engine(filter, o.mode) == ModeJSONPath {
		return MatchJSON(body, filter)
	}
	return matchMarkup(body, filter, o)
}

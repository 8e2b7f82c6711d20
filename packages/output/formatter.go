package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/abdul-hamid-achik/resptag/packages/store"
)

// Extraction is the outcome of one extract invocation.
type Extraction struct {
	Field     string
	RequestID string
	Filter    string
	Value     string
	Err       error
	Duration  time.Duration
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatList(summaries []store.Summary)
	FormatExchange(req *http.Request, resp *http.Response, body string)
	FormatExtraction(e Extraction)
	FormatError(err error)
	FormatHeader(version string)
}

// New returns the formatter for format ("console" or "json").
func New(format string, opts ...ConsoleOption) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return NewConsoleFormatter(opts...), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected console or json)", format)
	}
}

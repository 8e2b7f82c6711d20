package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/abdul-hamid-achik/resptag/packages/store"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	noColor   bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithErrorWriter sets where errors are written
func WithErrorWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.errWriter = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusColor(code int) func(a ...any) string {
	switch {
	case code == 0:
		return color.New(color.FgRed).SprintFunc()
	case code >= 200 && code < 300:
		return color.New(color.FgGreen).SprintFunc()
	case code >= 300 && code < 400:
		return color.New(color.FgCyan).SprintFunc()
	default:
		return color.New(color.FgYellow).SprintFunc()
	}
}

func (f *ConsoleFormatter) FormatList(summaries []store.Summary) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if len(summaries) == 0 {
		fmt.Fprintf(f.writer, "No requests stored\n")
		return
	}

	for _, s := range summaries {
		status := "---"
		if s.Responses > 0 {
			status = fmt.Sprintf("%3d", s.LatestStatus)
		}
		fmt.Fprintf(f.writer, "%s  %s  %-6s %s\n",
			faint(s.Request.ID),
			statusColor(s.LatestStatus)(status),
			bold(s.Request.Method),
			truncate(s.Request.DisplayName(), 80))
		if f.verbose {
			fmt.Fprintf(f.writer, "    url: %s\n", s.Request.URL)
			fmt.Fprintf(f.writer, "    responses: %d\n", s.Responses)
		}
	}
}

// FormatExchange prints a request with its latest response and decoded body.
func (f *ConsoleFormatter) FormatExchange(req *http.Request, resp *http.Response, body string) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold(req.Method), req.URL)
	if f.verbose {
		for _, h := range req.Headers {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(h.Name), h.Value)
		}
	}
	fmt.Fprintf(f.writer, "\n")

	if resp == nil {
		fmt.Fprintf(f.writer, "No responses for request\n")
		return
	}

	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	fmt.Fprintf(f.writer, "%s %s\n", statusColor(resp.StatusCode)(status), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
	for _, h := range resp.Headers {
		fmt.Fprintf(f.writer, "%s: %s\n", cyan(h.Name), h.Value)
	}

	if body == "" {
		return
	}
	fmt.Fprintf(f.writer, "\n")
	if resp.IsJSON() && gjson.Valid(body) {
		body = gjson.Get(body, "@pretty").Raw
	}
	fmt.Fprintf(f.writer, "%s\n", strings.TrimRight(body, "\n"))
}

// FormatExtraction prints the extracted value alone so it can be piped.
func (f *ConsoleFormatter) FormatExtraction(e Extraction) {
	if e.Err != nil {
		f.FormatError(e.Err)
		return
	}
	fmt.Fprintf(f.writer, "%s\n", e.Value)
	if f.verbose {
		faint := color.New(color.Faint).SprintFunc()
		fmt.Fprintf(f.errWriter, "%s\n", faint(fmt.Sprintf("%s %s %q (%s)", e.Field, e.RequestID, e.Filter, e.Duration)))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	if code := errcode.Code(err); code != "" {
		fmt.Fprintf(f.errWriter, "%s %s\n", red(fmt.Sprintf("Error [%s]:", errcode.Name(code))), errcode.Message(err))
		return
	}
	fmt.Fprintf(f.errWriter, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("resptag"), version)
}

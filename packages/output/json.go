package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/abdul-hamid-achik/resptag/packages/store"
)

// JSONRequest represents request details
type JSONRequest struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Method       string        `json:"method"`
	URL          string        `json:"url"`
	Headers      []http.Header `json:"headers,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	Responses    *int          `json:"responses,omitempty"`
	LatestStatus *int          `json:"latestStatus,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	ID          string        `json:"id"`
	StatusCode  int           `json:"statusCode"`
	Status      string        `json:"status"`
	ContentType string        `json:"contentType,omitempty"`
	Headers     []http.Header `json:"headers,omitempty"`
	Duration    float64       `json:"duration"`
	Body        string        `json:"body,omitempty"`
}

// JSONExchange is a request with its latest response
type JSONExchange struct {
	Request  JSONRequest   `json:"request"`
	Response *JSONResponse `json:"response"`
}

// JSONError describes a failed command
type JSONError struct {
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// JSONExtraction is the outcome of an extraction
type JSONExtraction struct {
	Field     string     `json:"field"`
	RequestID string     `json:"requestId"`
	Filter    string     `json:"filter,omitempty"`
	Value     *string    `json:"value,omitempty"`
	Error     *JSONError `json:"error,omitempty"`
	Duration  float64    `json:"duration"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{writer: os.Stdout}
}

// NewJSONFormatterWithWriter creates a JSON formatter with a custom writer
func NewJSONFormatterWithWriter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func toJSONRequest(req *http.Request) JSONRequest {
	return JSONRequest{
		ID:        req.ID,
		Name:      req.Name,
		Method:    req.Method,
		URL:       req.URL,
		Headers:   req.Headers,
		CreatedAt: req.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func (f *JSONFormatter) FormatList(summaries []store.Summary) {
	out := make([]JSONRequest, 0, len(summaries))
	for _, s := range summaries {
		r := toJSONRequest(s.Request)
		responses, status := s.Responses, s.LatestStatus
		r.Responses = &responses
		r.LatestStatus = &status
		out = append(out, r)
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatExchange(req *http.Request, resp *http.Response, body string) {
	out := JSONExchange{Request: toJSONRequest(req)}
	if resp != nil {
		out.Response = &JSONResponse{
			ID:          resp.ID,
			StatusCode:  resp.StatusCode,
			Status:      resp.Status,
			ContentType: resp.ContentType,
			Headers:     resp.Headers,
			Duration:    float64(resp.Duration.Microseconds()) / 1000,
			Body:        body,
		}
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatExtraction(e Extraction) {
	out := JSONExtraction{
		Field:     e.Field,
		RequestID: e.RequestID,
		Filter:    e.Filter,
		Duration:  float64(e.Duration.Microseconds()) / 1000,
	}
	if e.Err != nil {
		out.Error = toJSONError(e.Err)
	} else {
		value := e.Value
		out.Value = &value
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(struct {
		Error *JSONError `json:"error"`
	}{toJSONError(err)})
}

func (f *JSONFormatter) FormatHeader(string) {}

func toJSONError(err error) *JSONError {
	out := &JSONError{Message: errcode.Message(err)}
	if code := errcode.Code(err); code != "" {
		out.Kind = errcode.Name(code)
		out.Code = string(code)
	}
	return out
}

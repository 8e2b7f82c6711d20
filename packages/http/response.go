package http

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Header is a single response or request header. Order is significant and
// duplicates are kept as separate entries.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Response is a captured HTTP response. A zero StatusCode means no response
// was received.
type Response struct {
	ID          string
	RequestID   string
	StatusCode  int
	Status      string
	ContentType string
	Headers     []Header
	Body        []byte
	Duration    time.Duration
	CreatedAt   time.Time
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header returns the first header value whose name matches key case-insensitively.
func (r *Response) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			return h.Value
		}
	}
	return ""
}

// IsJSON reports whether the body is JSON, by content type or by content.
func (r *Response) IsJSON() bool {
	if strings.Contains(r.ContentType, "json") {
		return true
	}
	return len(r.Body) > 0 && gjson.ValidBytes(r.Body)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

package http

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Request is a request that can be sent and stored. Headers keep the order
// they were given in.
type Request struct {
	ID        string
	Name      string
	Method    string
	URL       string
	Headers   []Header
	Body      string
	Timeout   time.Duration
	CreatedAt time.Time
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method: strings.ToUpper(method),
		URL:    requestURL,
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	for i, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			r.Headers[i].Value = value
			return r
		}
	}
	r.Headers = append(r.Headers, Header{Name: key, Value: value})
	return r
}

// Header returns the first value of the named header, or "".
func (r *Request) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			return h.Value
		}
	}
	return ""
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// DisplayName returns the request name, or "METHOD URL" when unnamed.
func (r *Request) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s %s", r.Method, r.URL)
}

// ParseHeader splits a "Name: value" header line.
func ParseHeader(line string) (Header, error) {
	name, value, found := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return Header{}, fmt.Errorf("invalid header %q (expected \"Name: value\")", line)
	}
	return Header{Name: name, Value: strings.TrimSpace(value)}, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

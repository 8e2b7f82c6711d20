// Package proxy provides an HTTP proxy that records requests and responses
// into a store so values can later be extracted from them.
package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	rhttp "github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/rs/zerolog"
)

// Redacted replaces the value of sanitized headers.
const Redacted = "<redacted>"

// Sink persists a recorded exchange.
type Sink interface {
	SaveExchange(ctx context.Context, req *rhttp.Request, resp *rhttp.Response) error
}

// Recorder is an HTTP proxy that records requests
type Recorder struct {
	sink        Sink
	port        int
	targetURL   string
	logger      zerolog.Logger
	exclude     []string
	sanitize    []string // Headers to redact
	deduplicate bool

	mutex    sync.Mutex
	seen     map[string]bool
	recorded int
}

// Option is a functional option for Recorder
type Option func(*Recorder)

// WithPort sets the proxy port
func WithPort(port int) Option {
	return func(r *Recorder) {
		r.port = port
	}
}

// WithTargetURL sets the target URL to proxy to
func WithTargetURL(target string) Option {
	return func(r *Recorder) {
		r.targetURL = target
	}
}

// WithLogger sets the logger for recorded and skipped exchanges
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recorder) {
		r.logger = l
	}
}

// WithExclude sets paths to exclude from recording
func WithExclude(paths []string) Option {
	return func(r *Recorder) {
		r.exclude = paths
	}
}

// WithSanitize sets headers to redact
func WithSanitize(headers []string) Option {
	return func(r *Recorder) {
		r.sanitize = headers
	}
}

// WithDeduplicate records only the first exchange per method and path
func WithDeduplicate(enabled bool) Option {
	return func(r *Recorder) {
		r.deduplicate = enabled
	}
}

// NewRecorder creates a new recording proxy saving into sink
func NewRecorder(sink Sink, opts ...Option) *Recorder {
	r := &Recorder{
		sink:     sink,
		port:     8080,
		logger:   zerolog.Nop(),
		sanitize: []string{"Authorization", "Cookie", "X-Api-Key", "Api-Key"},
		seen:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type pendingKey struct{}

type pending struct {
	start time.Time
	body  []byte
	path  string
}

// Handler returns the recording reverse proxy handler.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.targetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}

	target, err := url.Parse(r.targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid target URL: %s", r.targetURL)
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
		},
		ModifyResponse: r.recordResponse,
	}

	return r.wrap(proxy), nil
}

// Start starts the recording proxy
func (r *Recorder) Start() error {
	return r.StartWithContext(context.Background())
}

// StartWithContext starts the proxy and shuts it down when ctx is done
func (r *Recorder) StartWithContext(ctx context.Context) error {
	handler, err := r.Handler()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", r.port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	r.logger.Info().
		Str("listen", fmt.Sprintf("http://localhost:%d", r.port)).
		Str("target", r.targetURL).
		Msg("recording proxy starting")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Count returns how many exchanges were saved.
func (r *Recorder) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.recorded
}

func (r *Recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.shouldExclude(req.URL.Path) {
			r.logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("excluded")
			next.ServeHTTP(w, req)
			return
		}

		var bodyBytes []byte
		if req.Body != nil {
			bodyBytes, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		p := &pending{start: time.Now(), body: bodyBytes, path: req.URL.Path}
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), pendingKey{}, p)))
	})
}

func (r *Recorder) recordResponse(resp *http.Response) error {
	p, ok := resp.Request.Context().Value(pendingKey{}).(*pending)
	if !ok {
		return nil
	}

	var bodyBytes []byte
	if resp.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	out := resp.Request
	if r.deduplicate && !r.markSeen(out.Method+":"+p.path) {
		r.logger.Debug().Str("method", out.Method).Str("path", p.path).Msg("skipped duplicate")
		return nil
	}

	req := rhttp.NewRequest(out.Method, out.URL.String())
	req.Name = out.Method + " " + p.path
	req.Headers = r.sanitizeHeaders(out.Header)
	req.Body = string(p.body)
	req.CreatedAt = p.start

	recorded := &rhttp.Response{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     r.sanitizeHeaders(resp.Header),
		Body:        bodyBytes,
		Duration:    time.Since(p.start),
		CreatedAt:   time.Now(),
	}

	// A failed save must not break the proxied exchange.
	if err := r.sink.SaveExchange(context.WithoutCancel(out.Context()), req, recorded); err != nil {
		r.logger.Error().Err(err).Str("method", out.Method).Str("path", p.path).Msg("failed to record exchange")
		return nil
	}

	r.mutex.Lock()
	r.recorded++
	r.mutex.Unlock()

	r.logger.Info().
		Str("id", req.ID).
		Str("method", out.Method).
		Str("path", p.path).
		Int("status", resp.StatusCode).
		Dur("duration", recorded.Duration).
		Msg("recorded")

	return nil
}

func (r *Recorder) markSeen(key string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.seen[key] {
		return false
	}
	r.seen[key] = true
	return true
}

func (r *Recorder) shouldExclude(path string) bool {
	for _, exclude := range r.exclude {
		if exclude != "" && strings.Contains(path, exclude) {
			return true
		}
	}
	return false
}

func (r *Recorder) sanitizeHeaders(h http.Header) []rhttp.Header {
	headers := rhttp.FlattenHeaders(h)
	for i := range headers {
		for _, s := range r.sanitize {
			if strings.EqualFold(headers[i].Name, s) {
				headers[i].Value = Redacted
				break
			}
		}
	}
	return headers
}

package capture

import (
	"context"
	"strings"

	"github.com/abdul-hamid-achik/resptag/packages/charset"
	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/abdul-hamid-achik/resptag/packages/query"
	"github.com/abdul-hamid-achik/resptag/packages/transform"
	"github.com/rs/zerolog"
)

// Field selects which part of a response is extracted.
type Field string

const (
	FieldBody   Field = "body"
	FieldRaw    Field = "raw"
	FieldHeader Field = "header"
)

// Fields lists the selectors in display order.
func Fields() []Field {
	return []Field{FieldBody, FieldRaw, FieldHeader}
}

func (f Field) valid() bool {
	switch f {
	case FieldBody, FieldRaw, FieldHeader:
		return true
	}
	return false
}

// Host looks up stored requests and responses. Not found is reported as a
// nil value with a nil error.
type Host interface {
	RequestByID(ctx context.Context, id string) (*http.Request, error)
	LatestResponse(ctx context.Context, requestID string) (*http.Response, error)
	ResponseBody(ctx context.Context, resp *http.Response) ([]byte, error)
}

// Params are the inputs of one extraction.
type Params struct {
	Field          Field
	RequestID      string
	Filter         string
	Function       transform.Name
	FunctionParams string
}

// Extractor runs extractions against a Host.
type Extractor struct {
	host             Host
	logger           zerolog.Logger
	mode             query.Mode
	parser           query.Parser
	strictTransforms bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for state and fallback events.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithQueryMode forces the body query engine instead of sniffing the filter.
func WithQueryMode(m query.Mode) Option {
	return func(e *Extractor) {
		e.mode = m
	}
}

// WithMarkupParser selects the parser used for XPath queries.
func WithMarkupParser(p query.Parser) Option {
	return func(e *Extractor) {
		e.parser = p
	}
}

// WithStrictTransforms reports invalid transform parameters as InvalidParams
// errors instead of returning the validation message as the result.
func WithStrictTransforms(strict bool) Option {
	return func(e *Extractor) {
		e.strictTransforms = strict
	}
}

// NewExtractor returns an Extractor reading from host. By default the query
// engine is sniffed from the filter and transform failures are returned as
// the result.
func NewExtractor(host Host, opts ...Option) *Extractor {
	e := &Extractor{
		host:   host,
		logger: zerolog.Nop(),
		mode:   query.ModeAuto,
		parser: query.ParserAuto,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract validates p, loads the latest response of the request and returns
// the single value selected by p.
func (e *Extractor) Extract(ctx context.Context, p Params) (string, error) {
	filter := strings.TrimSpace(p.Filter)
	if err := e.validate(p, filter); err != nil {
		return "", err
	}

	resp, err := e.fetch(ctx, p.RequestID)
	if err != nil {
		return "", err
	}

	log := e.logger.With().Str("request", p.RequestID).Str("field", string(p.Field)).Logger()

	if p.Field == FieldHeader {
		log.Debug().Str("header", filter).Msg("matching header")
		return MatchHeader(resp.Headers, filter)
	}

	text, err := e.decodeBody(ctx, resp, log)
	if err != nil {
		return "", err
	}

	if p.Field == FieldRaw {
		return text, nil
	}

	log.Debug().
		Str("engine", string(query.Engine(filter, e.mode))).
		Str("filter", filter).
		Msg("querying body")

	match, err := query.Dispatch(text, filter,
		query.WithMode(e.mode),
		query.WithParser(e.parser),
		query.WithContentType(resp.ContentType),
	)
	if err != nil {
		return "", err
	}

	return e.postTransform(match, p.Function, p.FunctionParams)
}

func (e *Extractor) validate(p Params, filter string) error {
	if !p.Field.valid() {
		return errcode.New(errcode.InvalidField, "invalid response field %q", p.Field)
	}
	if strings.TrimSpace(p.RequestID) == "" {
		return errcode.New(errcode.MissingRequestID, "no request specified")
	}
	if p.Field != FieldRaw && filter == "" {
		return errcode.New(errcode.MissingFilter, "no %s filter specified", p.Field)
	}
	if p.Field == FieldBody {
		if _, err := transform.ParseName(string(p.Function)); err != nil {
			return errcode.Wrap(err, errcode.InvalidTransform, "invalid function name %q", p.Function)
		}
	}
	return nil
}

func (e *Extractor) fetch(ctx context.Context, id string) (*http.Response, error) {
	req, err := e.host.RequestByID(ctx, id)
	if err != nil {
		return nil, errcode.Wrap(err, errcode.HostFailure, "could not load request %s: %v", id, err)
	}
	if req == nil {
		return nil, errcode.New(errcode.RequestNotFound, "could not find request %s", id)
	}
	e.logger.Debug().Str("request", id).Str("name", req.DisplayName()).Msg("request fetched")

	resp, err := e.host.LatestResponse(ctx, id)
	if err != nil {
		return nil, errcode.Wrap(err, errcode.HostFailure, "could not load response for %s: %v", id, err)
	}
	if resp == nil {
		return nil, errcode.New(errcode.NoResponse, "no responses for request")
	}
	if resp.StatusCode == 0 {
		return nil, errcode.New(errcode.NoSuccessfulResponse, "no successful responses for request")
	}
	e.logger.Debug().Str("request", id).Int("status", resp.StatusCode).Msg("response fetched")

	return resp, nil
}

func (e *Extractor) decodeBody(ctx context.Context, resp *http.Response, log zerolog.Logger) (string, error) {
	body, err := e.host.ResponseBody(ctx, resp)
	if err != nil {
		return "", errcode.Wrap(err, errcode.HostFailure, "could not load response body: %v", err)
	}

	d := charset.Decode(resp.ContentType, body)
	if d.Fallback {
		log.Warn().Err(d.Err).Str("charset", d.Charset).Msg("failed to decode body, using raw bytes")
	}
	return d.Text, nil
}

func (e *Extractor) postTransform(match string, name transform.Name, params string) (string, error) {
	if name == "" {
		name = transform.None
	}

	res := transform.Evaluate(match, name, params)
	if !res.OK() && e.strictTransforms {
		return "", errcode.Wrap(res.Err, errcode.InvalidParams, "%s", res.Err.Error())
	}

	// match is a string, so the result is too
	out, _ := res.Compat().(string)
	return out, nil
}

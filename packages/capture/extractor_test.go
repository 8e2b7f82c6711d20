package capture

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/abdul-hamid-achik/resptag/packages/query"
	"github.com/abdul-hamid-achik/resptag/packages/transform"
	goerrors "github.com/agilira/go-errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	requests  map[string]*http.Request
	responses map[string]*http.Response
	err       error
	bodyErr   error
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		requests:  map[string]*http.Request{},
		responses: map[string]*http.Response{},
	}
}

func (h *fakeHost) add(id string, resp *http.Response) {
	h.requests[id] = &http.Request{ID: id, Method: "GET", URL: "https://example.com/" + id}
	if resp != nil {
		resp.RequestID = id
		h.responses[id] = resp
	}
}

func (h *fakeHost) RequestByID(_ context.Context, id string) (*http.Request, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.requests[id], nil
}

func (h *fakeHost) LatestResponse(_ context.Context, id string) (*http.Response, error) {
	return h.responses[id], nil
}

func (h *fakeHost) ResponseBody(_ context.Context, resp *http.Response) ([]byte, error) {
	if h.bodyErr != nil {
		return nil, h.bodyErr
	}
	return resp.Body, nil
}

func okResponse(contentType, body string, headers ...http.Header) *http.Response {
	return &http.Response{
		StatusCode:  200,
		Status:      "200 OK",
		ContentType: contentType,
		Headers:     headers,
		Body:        []byte(body),
	}
}

func TestExtract_Body(t *testing.T) {
	host := newFakeHost()
	host.add("json", okResponse("application/json", `{"items":[{"id":42,"name":"hello world"}],"dup":[1,1]}`))
	host.add("xml", okResponse("application/xml", `<root><id>7</id><item lang="en">a</item></root>`))
	host.add("html", okResponse("text/html; charset=utf-8", `<html><body><h1 class="t">Title</h1></body></html>`))

	tests := []struct {
		name     string
		params   Params
		expected string
	}{
		{
			name:     "jsonpath number",
			params:   Params{Field: FieldBody, RequestID: "json", Filter: "$.items[0].id"},
			expected: "42",
		},
		{
			name:     "jsonpath string with padded filter",
			params:   Params{Field: FieldBody, RequestID: "json", Filter: "  $.items[0].name  ", Function: transform.None},
			expected: "hello world",
		},
		{
			name:     "xpath element",
			params:   Params{Field: FieldBody, RequestID: "xml", Filter: "/root/id"},
			expected: "7",
		},
		{
			name:     "xpath attribute",
			params:   Params{Field: FieldBody, RequestID: "xml", Filter: "/root/item/@lang"},
			expected: "en",
		},
		{
			name:     "xpath on html",
			params:   Params{Field: FieldBody, RequestID: "html", Filter: "//h1"},
			expected: "Title",
		},
		{
			name: "substring",
			params: Params{
				Field: FieldBody, RequestID: "json", Filter: "$.items[0].name",
				Function: transform.SubString, FunctionParams: "0,5",
			},
			expected: "hello",
		},
		{
			name: "substring with empty params",
			params: Params{
				Field: FieldBody, RequestID: "json", Filter: "$.items[0].name",
				Function: transform.SubString,
			},
			expected: "hello world",
		},
	}

	ex := NewExtractor(host)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtract_RawIgnoresFilter(t *testing.T) {
	host := newFakeHost()
	host.add("r1", okResponse("text/plain", "plain body"))

	for _, filter := range []string{"", "$.ignored", "//ignored"} {
		got, err := NewExtractor(host).Extract(context.Background(), Params{
			Field: FieldRaw, RequestID: "r1", Filter: filter,
		})
		require.NoError(t, err)
		assert.Equal(t, "plain body", got)
	}
}

func TestExtract_RawDecodesCharset(t *testing.T) {
	host := newFakeHost()
	host.add("latin1", &http.Response{
		StatusCode:  200,
		ContentType: "text/plain; charset=iso-8859-1",
		Body:        []byte{'c', 'a', 'f', 0xe9},
	})

	got, err := NewExtractor(host).Extract(context.Background(), Params{Field: FieldRaw, RequestID: "latin1"})

	require.NoError(t, err)
	assert.Equal(t, "café", got)
}

func TestExtract_DecodeFallbackLogsWarning(t *testing.T) {
	host := newFakeHost()
	host.add("odd", okResponse("text/plain; charset=x-not-a-charset", "still here"))

	var buf bytes.Buffer
	ex := NewExtractor(host, WithLogger(zerolog.New(&buf)))
	got, err := ex.Extract(context.Background(), Params{Field: FieldRaw, RequestID: "odd"})

	require.NoError(t, err)
	assert.Equal(t, "still here", got)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "x-not-a-charset")
}

func TestExtract_Header(t *testing.T) {
	host := newFakeHost()
	host.add("h1", okResponse("text/plain", "",
		http.Header{Name: "Content-Type", Value: "text/plain"},
		http.Header{Name: "x-request-id", Value: "abc-123"},
	))

	got, err := NewExtractor(host).Extract(context.Background(), Params{
		Field: FieldHeader, RequestID: "h1", Filter: "X-Request-Id",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc-123", got)
}

func TestExtract_TransformCompatibility(t *testing.T) {
	host := newFakeHost()
	host.add("s", okResponse("application/json", `{"msg":"hello"}`))
	params := Params{
		Field: FieldBody, RequestID: "s", Filter: "$.msg",
		Function: transform.SubString, FunctionParams: "3,1",
	}

	got, err := NewExtractor(host).Extract(context.Background(), params)
	require.NoError(t, err)
	assert.Contains(t, got, "startIndex,endIndex")

	_, err = NewExtractor(host, WithStrictTransforms(true)).Extract(context.Background(), params)
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.InvalidParams))

	host.add("n", okResponse("application/json", `{"n":12345}`))
	got, err = NewExtractor(host).Extract(context.Background(), Params{
		Field: FieldBody, RequestID: "n", Filter: "$.n",
		Function: transform.SubString, FunctionParams: "0,2",
	})
	require.NoError(t, err)
	assert.Equal(t, "12", got)
}

func TestExtract_ForcedQueryMode(t *testing.T) {
	host := newFakeHost()
	host.add("x", okResponse("application/xml", `<a><b>1</b></a>`))

	_, err := NewExtractor(host, WithQueryMode(query.ModeJSONPath)).Extract(context.Background(), Params{
		Field: FieldBody, RequestID: "x", Filter: "/a/b",
	})

	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.InvalidBody))
}

func TestExtract_Errors(t *testing.T) {
	host := newFakeHost()
	host.add("ok", okResponse("application/json", `{"a":[1,1],"b":"x"}`))
	host.add("noresp", nil)
	host.add("zero", &http.Response{StatusCode: 0})
	host.add("noheaders", okResponse("text/plain", ""))
	host.add("badjson", okResponse("application/json", `{"a":`))

	tests := []struct {
		name   string
		params Params
		code   goerrors.ErrorCode
		msg    string
	}{
		{"invalid field", Params{Field: "cookie", RequestID: "ok", Filter: "x"}, errcode.InvalidField, "invalid response field"},
		{"missing id", Params{Field: FieldBody, Filter: "$.a"}, errcode.MissingRequestID, "no request specified"},
		{"missing body filter", Params{Field: FieldBody, RequestID: "ok", Filter: "   "}, errcode.MissingFilter, "no body filter specified"},
		{"missing header filter", Params{Field: FieldHeader, RequestID: "ok"}, errcode.MissingFilter, "no header filter specified"},
		{"unknown transform", Params{Field: FieldBody, RequestID: "ok", Filter: "$.b", Function: "UPPER"}, errcode.InvalidTransform, "UPPER"},
		{"request not found", Params{Field: FieldRaw, RequestID: "missing"}, errcode.RequestNotFound, "could not find request missing"},
		{"no response", Params{Field: FieldRaw, RequestID: "noresp"}, errcode.NoResponse, "no responses for request"},
		{"no status", Params{Field: FieldRaw, RequestID: "zero"}, errcode.NoSuccessfulResponse, "no successful responses"},
		{"no headers", Params{Field: FieldHeader, RequestID: "noheaders", Filter: "Date"}, errcode.NoHeaders, "no headers available"},
		{"ambiguous", Params{Field: FieldBody, RequestID: "ok", Filter: "$.a[*]"}, errcode.AmbiguousMatch, "returned more than one result"},
		{"no match", Params{Field: FieldBody, RequestID: "ok", Filter: "$.c"}, errcode.NoMatch, "returned no results: $.c"},
		{"invalid body", Params{Field: FieldBody, RequestID: "badjson", Filter: "$.a"}, errcode.InvalidBody, "invalid JSON"},
	}

	ex := NewExtractor(host)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ex.Extract(context.Background(), tt.params)
			require.Error(t, err)
			assert.Equal(t, tt.code, errcode.Code(err))
			assert.Contains(t, errcode.Message(err), tt.msg)
		})
	}
}

func TestExtract_FilterValidatedBeforeLookup(t *testing.T) {
	host := newFakeHost()

	_, err := NewExtractor(host).Extract(context.Background(), Params{Field: FieldBody, RequestID: "missing"})

	assert.True(t, errcode.Is(err, errcode.MissingFilter))
}

func TestExtract_HostFailure(t *testing.T) {
	host := newFakeHost()
	host.err = errors.New("database is locked")

	_, err := NewExtractor(host).Extract(context.Background(), Params{Field: FieldRaw, RequestID: "r"})

	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.HostFailure))
	assert.Contains(t, errcode.Message(err), "database is locked")

	host.err = nil
	host.add("r", okResponse("text/plain", "x"))
	host.bodyErr = errors.New("body gone")

	_, err = NewExtractor(host).Extract(context.Background(), Params{Field: FieldRaw, RequestID: "r"})
	assert.True(t, errcode.Is(err, errcode.HostFailure))
}

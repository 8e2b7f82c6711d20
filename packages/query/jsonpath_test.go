package query

import (
	"testing"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsBody = `{
  "name": "catalog",
  "count": 2,
  "active": true,
  "owner": null,
  "meta": {"b": [true, null], "a": 1},
  "items": [
    {"id": 42, "title": "first", "price": 1.5},
    {"id": 43, "title": "second", "price": 2}
  ],
  "tags": [{"v": "x"}, {"v": "x"}]
}`

func TestMatchJSON_SingleResult(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"string verbatim", "$.name", "catalog"},
		{"nested string", "$.items[1].title", "second"},
		{"integer", "$.items[0].id", "42"},
		{"float", "$.items[0].price", "1.5"},
		{"boolean", "$.active", "true"},
		{"object keeps document key order", "$.meta", `{"b":[true,null],"a":1}`},
		{"filter expression", "$.items[?(@.id == 43)].title", "second"},
		{"recursive descent", "$..items[?(@.id == 42)].title", "first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchJSON(itemsBody, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatchJSON_Numbers(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		query    string
		expected string
	}{
		{"beyond int64", `{"a":12345678901234567890}`, "$.a", "12345678901234567000"},
		{"long fraction", `{"b":1.000000000000000000000001}`, "$.b", "1"},
		{"exponent", `{"c":1.5e3}`, "$.c", "1500"},
		{"tiny", `{"d":0.0000001}`, "$.d", "1e-7"},
		{"huge", `{"e":1e21}`, "$.e", "1e+21"},
		{"negative zero", `{"f":-0}`, "$.f", "0"},
		{"nested in array", `{"g":[12345678901234567890, 0.1]}`, "$.g", "[12345678901234567000,0.1]"},
		{"filter on float", `{"h":[{"id":1.0,"v":"one"},{"id":2,"v":"two"}]}`, "$.h[?(@.id == 1)].v", "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchJSON(tt.body, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatchJSON_ObjectSerialization(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		query    string
		expected string
	}{
		{"document order", `{"o":{"b":1,"a":2}}`, "$.o", `{"b":1,"a":2}`},
		{"whole document", `{ "z" : [ 1 , "x" ], "y": {} }`, "$", `{"z":[1,"x"],"y":{}}`},
		{"repeated key keeps last value", `{"o":{"k":1,"j":2,"k":3}}`, "$.o", `{"k":3,"j":2}`},
		{"dotted key", `{"a.b":{"y":1,"x":2}}`, "$['a.b']", `{"y":1,"x":2}`},
		{"negative index", `{"l":[{"q":1},{"s":2,"r":3}]}`, "$.l[-1]", `{"s":2,"r":3}`},
		{"escaped strings", `{"o":{"t":"a\"b\n"}}`, "$.o", `{"t":"a\"b\n"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchJSON(tt.body, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatchJSON_StringWithMarkupIsNotEscaped(t *testing.T) {
	got, err := MatchJSON(`{"wrap": {"html": "<b>&</b>"}}`, "$.wrap")
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<b>&</b>"}`, got)
}

func TestMatchJSON_NoMatch(t *testing.T) {
	_, err := MatchJSON(itemsBody, "$.missing")
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.NoMatch))
	assert.Contains(t, errcode.Message(err), "returned no results: $.missing")
}

func TestMatchJSON_AmbiguousMatch(t *testing.T) {
	t.Run("wildcard over items", func(t *testing.T) {
		_, err := MatchJSON(itemsBody, "$.items[*].id")
		require.Error(t, err)
		assert.True(t, errcode.Is(err, errcode.AmbiguousMatch))
	})

	t.Run("two equal siblings", func(t *testing.T) {
		_, err := MatchJSON(itemsBody, "$.tags[*].v")
		require.Error(t, err)
		assert.True(t, errcode.Is(err, errcode.AmbiguousMatch))
		assert.Contains(t, errcode.Message(err), "returned more than one result")
	})
}

func TestMatchJSON_InvalidBody(t *testing.T) {
	for _, body := range []string{`{"name": `, `<html></html>`, ``, `   `} {
		_, err := MatchJSON(body, "$.name")
		require.Error(t, err, "body %q", body)
		assert.True(t, errcode.Is(err, errcode.InvalidBody), "body %q", body)
		assert.Contains(t, errcode.Message(err), "invalid JSON: ")
	}
}

func TestMatchJSON_InvalidQuery(t *testing.T) {
	_, err := MatchJSON(itemsBody, "$.items[")
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.InvalidQuery))
	assert.Contains(t, errcode.Message(err), "invalid JSONPath query: $.items[")
}

func TestMatchJSON_RootOfScalarDocument(t *testing.T) {
	got, err := MatchJSON(`"just a string"`, "$")
	require.NoError(t, err)
	assert.Equal(t, "just a string", got)
}

package query

import (
	"testing"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsJSONPath(t *testing.T) {
	assert.True(t, IsJSONPath("$.id"))
	assert.True(t, IsJSONPath("   $..id"))
	assert.True(t, IsJSONPath("$"))
	assert.False(t, IsJSONPath("//id"))
	assert.False(t, IsJSONPath("id.$"))
	assert.False(t, IsJSONPath(""))
}

func TestEngine(t *testing.T) {
	assert.Equal(t, ModeJSONPath, Engine("$.a", ModeAuto))
	assert.Equal(t, ModeXPath, Engine("//a", ModeAuto))
	assert.Equal(t, ModeXPath, Engine("$.a", ModeXPath))
	assert.Equal(t, ModeJSONPath, Engine("//a", ModeJSONPath))
	assert.Equal(t, ModeXPath, Engine("//a", ""))
}

func TestDispatch_RoutesBySniff(t *testing.T) {
	got, err := Dispatch(`{"items":[{"id":42}]}`, "  $.items[0].id  ")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = Dispatch(`<r><id>7</id></r>`, "//id")
	require.NoError(t, err)
	assert.Equal(t, "7", got)
}

func TestDispatch_JSONFilterOnMarkupBody(t *testing.T) {
	_, err := Dispatch(`<r><id>7</id></r>`, "$.id")
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.InvalidBody))
}

func TestDispatch_ForcedMode(t *testing.T) {
	_, err := Dispatch(`<r><id>7</id></r>`, "//id", WithMode(ModeJSONPath))
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.InvalidBody))

	got, err := Dispatch(`<r><id>7</id></r>`, "//id", WithMode(ModeXPath))
	require.NoError(t, err)
	assert.Equal(t, "7", got)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"AUTO", ModeAuto, false},
		{"jsonpath", ModeJSONPath, false},
		{" xpath ", ModeXPath, false},
		{"css", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParser(t *testing.T) {
	p, err := ParseParser("HTML")
	require.NoError(t, err)
	assert.Equal(t, ParserHTML, p)

	p, err = ParseParser("")
	require.NoError(t, err)
	assert.Equal(t, ParserAuto, p)

	_, err = ParseParser("yaml")
	assert.Error(t, err)
}

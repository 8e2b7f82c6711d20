package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_None(t *testing.T) {
	assert.Equal(t, "hello", Apply("hello", None, "0,2"))
	assert.Equal(t, 42, Apply(42, None, ""))
	assert.Nil(t, Apply(nil, None, ""))

	m := map[string]any{"a": 1}
	assert.Equal(t, m, Apply(m, None, ""))
}

func TestApply_NonStringPassesThrough(t *testing.T) {
	assert.Equal(t, 3.5, Apply(3.5, SubString, "0,1"))
	assert.Equal(t, []int{1, 2}, Apply([]int{1, 2}, SubString, "0,1"))
}

func TestApply_SubString(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		params   string
		expected string
	}{
		{"prefix", "hello world", "0,5", "hello"},
		{"middle", "hello world", "6,11", "world"},
		{"spaces around bounds", "hello world", " 1 , 4 ", "ell"},
		{"end past length is clamped", "hello", "2,100", "llo"},
		{"start past length", "hello", "10,20", ""},
		{"negative start is clamped", "hello", "-3,2", "he"},
		{"characters not bytes", "héllo", "0,2", "hé"},
		{"utf-16 code units", "😀abc", "0,2", "😀"},
		{"after a surrogate pair", "😀abc", "2,4", "ab"},
		{"fractional start", "hello world", "1.5,3", "el"},
		{"extra comma ignored", "hello world", "0,5,7", "hello"},
		{"trailing text ignored", "hello world", "3px,5", "lo"},
		{"explicit plus sign", "hello", "+1,3", "el"},
		{"hex bounds", "hello world", "0x1,0x3", "el"},
		{"huge end saturates", "hello", "1,99999999999999999999999", "ello"},
		{"empty params is identity", "hello", "", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Apply(tt.data, SubString, tt.params))
		})
	}
}

func TestApply_SubStringInvalidParamsReturnsMessage(t *testing.T) {
	for _, params := range []string{"3,1", "2,2", "abc", "1", "a,b", "1,", " ", ",2", "-,2", "0x,2", "px3,5", "1.9,1"} {
		got := Apply("hello", SubString, params)
		msg, ok := got.(string)
		require.True(t, ok, "params %q", params)
		assert.Contains(t, msg, "startIndex,endIndex", "params %q", params)
		assert.Contains(t, msg, "startIndex < endIndex", "params %q", params)
	}
}

func TestEvaluate_SubStringInvalidParamsIsDistinguishable(t *testing.T) {
	r := Evaluate("hello", SubString, "3,1")

	require.False(t, r.OK())
	var pe *ParamsError
	require.ErrorAs(t, r.Err, &pe)
	assert.Equal(t, SubString, pe.Transform)
	assert.Equal(t, "3,1", pe.Params)
	assert.Nil(t, r.Value)
}

func TestEvaluate_UnknownTransform(t *testing.T) {
	r := Evaluate("hello", Name("UPPER"), "")
	assert.False(t, r.OK())
	assert.Equal(t, "hello", r.Compat())
}

func TestParseName(t *testing.T) {
	n, err := ParseName("")
	require.NoError(t, err)
	assert.Equal(t, None, n)

	n, err = ParseName("SUB_STRING")
	require.NoError(t, err)
	assert.Equal(t, SubString, n)

	_, err = ParseName("sub_string")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []Name{None, SubString}, Names())
}

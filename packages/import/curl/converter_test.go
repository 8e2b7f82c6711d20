package curl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	rhttp "github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleGet(t *testing.T) {
	parsed, err := Parse(`curl https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, "GET", parsed.Method)
	assert.Equal(t, "https://api.example.com/users", parsed.URL)
	assert.Equal(t, "get_users", parsed.Name)
}

func TestParse_PostWithData(t *testing.T) {
	parsed, err := Parse(`curl -X POST https://api.example.com/users -d '{"name":"John"}'`)
	require.NoError(t, err)

	assert.Equal(t, "POST", parsed.Method)
	assert.Equal(t, `{"name":"John"}`, parsed.Body)
}

func TestParse_ImplicitPost(t *testing.T) {
	parsed, err := Parse(`curl -d "name=John" https://api.example.com/users`)
	require.NoError(t, err)
	assert.Equal(t, "POST", parsed.Method)
}

func TestParse_ExplicitMethodWinsOverData(t *testing.T) {
	parsed, err := Parse(`curl -X PUT -d "a=1" https://api.example.com/users/1`)
	require.NoError(t, err)
	assert.Equal(t, "PUT", parsed.Method)
}

func TestParse_WithHeaders(t *testing.T) {
	parsed, err := Parse(`curl -H "Content-Type: application/json" -H "Authorization: Bearer token123" https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, []rhttp.Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Authorization", Value: "Bearer token123"},
	}, parsed.Headers)
}

func TestParse_Shortcuts(t *testing.T) {
	parsed, err := Parse(`curl -A "agent/1" -e https://ref.example.com -b "a=1" -k -L https://api.example.com/`)
	require.NoError(t, err)

	assert.Equal(t, []rhttp.Header{
		{Name: "User-Agent", Value: "agent/1"},
		{Name: "Referer", Value: "https://ref.example.com"},
		{Name: "Cookie", Value: "a=1"},
	}, parsed.Headers)
	assert.True(t, parsed.Insecure)
	assert.True(t, parsed.FollowRedirects)
	assert.Equal(t, "https://api.example.com/", parsed.URL)
	assert.Equal(t, "get_root", parsed.Name)
}

func TestParse_SkipsUnknownFlags(t *testing.T) {
	parsed, err := Parse(`curl --max-time 10 --compressed https://api.example.com/items`)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/items", parsed.URL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want string
	}{
		{"bare curl", "curl", "no URL specified"},
		{"no url", "curl -X POST", "no URL found"},
		{"missing value", "curl https://example.com -H", "missing value for -H"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestToRequest_BasicAuth(t *testing.T) {
	parsed, err := Parse(`curl -u admin:password123 https://api.example.com/admin`)
	require.NoError(t, err)
	assert.Equal(t, "admin:password123", parsed.BasicAuth)

	req := parsed.ToRequest()
	assert.Equal(t, "Basic YWRtaW46cGFzc3dvcmQxMjM=", req.Header("Authorization"))
	assert.Equal(t, "get_admin", req.Name)
}

func TestToRequest_ExplicitAuthorizationKept(t *testing.T) {
	parsed, err := Parse(`curl -u a:b -H "Authorization: Bearer x" https://api.example.com/`)
	require.NoError(t, err)

	req := parsed.ToRequest()
	assert.Equal(t, "Bearer x", req.Header("Authorization"))
	assert.Len(t, req.Headers, 1)
}

func TestParseReader_Continuations(t *testing.T) {
	input := `# exported
curl -X POST https://api.example.com/users/new \
  -H "Content-Type: application/json" \
  -d '{"a":1}'

curl https://api.example.com/health
`
	requests, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, "POST", requests[0].Method)
	assert.Equal(t, "post_users_new", requests[0].Name)
	assert.Equal(t, "application/json", requests[0].Header("content-type"))
	assert.Equal(t, `{"a":1}`, requests[0].Body)

	assert.Equal(t, "GET", requests[1].Method)
	assert.Equal(t, "https://api.example.com/health", requests[1].URL)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.sh")
	require.NoError(t, os.WriteFile(path, []byte("curl https://example.com/a\ncurl -X POST\n"), 0644))

	_, err := ParseFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command 2")

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.sh"))
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"-H", "X-A: a b", "-d", `{"q":"it's"}`, `a"b`},
		tokenize(`-H "X-A: a b" -d '{"q":"it'\''s"}' a\"b`),
	)
}

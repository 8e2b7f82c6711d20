package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.IsDefault())
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, time.Second, cfg.RetryDelayDuration())
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetStrictTransforms())
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestFindAndLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".resptag.json", `{"database": "data/x.db", "queryMode": "xpath", "validateSSL": false}`)

	cfg, err := FindAndLoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "data/x.db", cfg.Database)
	assert.Equal(t, "xpath", cfg.QueryMode)
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, 30000, cfg.Timeout)
}

func TestFindAndLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".resptag.yaml", `
timeout: 5000
strictTransforms: true
markupParser: html
headers:
  User-Agent: resptag
`)

	cfg, err := FindAndLoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.True(t, cfg.GetStrictTransforms())
	assert.Equal(t, "html", cfg.MarkupParser)
	assert.Equal(t, map[string]string{"User-Agent": "resptag"}, cfg.Headers)
}

func TestFindAndLoadConfig_JSONWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".resptag.yml", "retries: 9\n")
	writeFile(t, dir, "resptag.json", `{"retries": 2}`)

	cfg, err := FindAndLoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Retries)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.json", `{"timeout": `)

	_, err := LoadConfig(path)

	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"Accept": "*/*"}

	merged := base.Merge(&Config{
		Database:         "other.db",
		Retries:          3,
		StrictTransforms: BoolPtr(true),
		Headers:          map[string]string{"X-Trace": "1"},
	})

	assert.Equal(t, "other.db", merged.Database)
	assert.Equal(t, 3, merged.Retries)
	assert.True(t, merged.GetStrictTransforms())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"Accept": "*/*", "X-Trace": "1"}, merged.Headers)
	assert.Equal(t, map[string]string{"Accept": "*/*"}, base.Headers)

	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.LogFile = "resptag.log"
			require.NoError(t, cfg.SaveConfig(path))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, "resptag.log", loaded.LogFile)
			assert.Equal(t, cfg.Database, loaded.Database)
		})
	}
}

package logx

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		verbose  bool
		expected zerolog.Level
		wantErr  bool
	}{
		{"default", "", false, zerolog.WarnLevel, false},
		{"verbose default", "", true, zerolog.DebugLevel, false},
		{"explicit wins over verbose", "error", true, zerolog.ErrorLevel, false},
		{"case insensitive", " INFO ", false, zerolog.InfoLevel, false},
		{"invalid", "loud", false, zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.level, tt.verbose)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNew_ConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "warn", NoColor: true, Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Str("charset", "x-unknown").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "charset=x-unknown")
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "resptag.log")
	var buf bytes.Buffer

	logger, closer, err := New(Options{Verbose: true, NoColor: true, Console: &buf, File: path})
	require.NoError(t, err)

	logger.Debug().Str("request", "req_1").Msg("request fetched")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"request":"req_1"`)
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Options{Level: "chatty"})

	assert.Error(t, err)
}

// Package logx builds the zerolog logger used across resptag.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name. Empty means "warn", or "debug" when Verbose is set.
	Level   string
	Verbose bool
	NoColor bool
	// File, when set, also writes JSON logs to a rotating file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Console overrides the console destination; stderr when nil.
	Console io.Writer
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(name string, verbose bool) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		if verbose {
			return zerolog.DebugLevel, nil
		}
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// New returns a logger writing to the console and, optionally, a rotating file.
// The returned closer releases the log file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level, opts.Verbose)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    opts.NoColor,
		TimeFormat: time.Kitchen,
	}}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, closer, nil
}

// SetGlobal makes l the logger behind the zerolog/log package.
func SetGlobal(l zerolog.Logger) {
	log.Logger = l
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

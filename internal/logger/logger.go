// Package logger configures the global zerolog logger.
package logger

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

// Options controls Setup
type Options struct {
	Level      string
	Pretty     bool // human-readable console output instead of JSON
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Setup points the global logger at stderr and, when File is set, at a
// size-rotated file as well. The returned closer flushes the file.
func Setup(opts Options) (io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stderr
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	if opts.File == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	rotator := NewRotator(opts)
	// An empty write opens the file so a bad path is reported now, not on the first log line
	if _, err := rotator.Write(nil); err != nil {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nopCloser{}, fmt.Errorf("opening log file, using stderr only: %w", err)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, rotator)).With().Timestamp().Logger()
	return rotator, nil
}

// NewRotator returns the size-rotated file sink for opts.File. Backups carry a
// timestamp suffix and only MaxBackups of them are kept.
func NewRotator(opts Options) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

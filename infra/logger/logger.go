package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/studytime/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Infow(string, map[string]any)  {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// Options controls the output of loggers created by New.
type Options struct {
	// Level is a zerolog level name ("debug", "info", ...). Empty keeps info.
	Level string
	// Format is "json" or "console". Empty selects console when APP_ENV=dev.
	Format string
	Out    io.Writer
	// File, when set, receives a copy of every entry and is rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu      sync.RWMutex
	current = Options{}
	file    *lumberjack.Logger
)

// Configure sets the options used by subsequent calls to New.
func Configure(opts Options) error {
	if opts.Level != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return err
		}
		zerolog.SetGlobalLevel(lvl)
	}
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
	}
	current = opts
	return nil
}

// Close closes the rotating log file, if any. Loggers created earlier keep
// writing to it; lumberjack reopens the file on the next write.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	return file.Close()
}

// New returns a Logger for the given component.
func New(component string) Logger {
	mu.RLock()
	opts := current
	f := file
	mu.RUnlock()
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Format == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		opts.Format = "console"
	}
	if f != nil {
		return newTeeLogger(component, opts, f)
	}
	return NewZerologLogger(component, opts)
}

// newTeeLogger writes formatted entries to opts.Out and JSON entries to the
// rotating file.
func newTeeLogger(component string, opts Options, f io.Writer) Logger {
	var out io.Writer = opts.Out
	if opts.Format == "console" {
		out = zerolog.ConsoleWriter{Out: opts.Out, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(zerolog.MultiLevelWriter(out, f)).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

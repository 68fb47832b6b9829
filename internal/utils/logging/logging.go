// Package logging provides leveled console and file logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/regex"

	"github.com/rs/zerolog"
)

var (
	// Level is the configured debug level. D messages above it are dropped.
	Level = 0

	mu      sync.Mutex
	console io.Writer = os.Stderr
	file    io.Writer
	logger  = build()
)

// Init sets the debug level and the console destination.
func Init(debugLevel int, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	Level = debugLevel
	if w != nil {
		console = w
	}
	logger = build()
}

// SetupFile opens (or creates) the log file and tees all output into it.
// Closing the result stops writing to the file.
func SetupFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, consts.PermsLogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}

	mu.Lock()
	file = stripWriter{f}
	logger = build()
	mu.Unlock()

	current().Info().Msgf("=========== %v ===========", time.Now().Format(time.RFC1123Z))
	return fileCloser{f}, nil
}

// fileCloser detaches the log file before closing it.
type fileCloser struct {
	f *os.File
}

func (c fileCloser) Close() error {
	mu.Lock()
	file = nil
	logger = build()
	mu.Unlock()
	return c.f.Close()
}

func build() zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
	if file != nil {
		w = zerolog.MultiLevelWriter(w, file)
	}
	lvl := zerolog.InfoLevel
	if Level > 0 {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func current() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := logger
	return &l
}

// I logs an info message.
func I(format string, args ...any) {
	current().Info().Msgf(format, args...)
}

// S logs a success message.
func S(format string, args ...any) {
	current().Info().Bool("success", true).Msgf(format, args...)
}

// W logs a warning.
func W(format string, args ...any) {
	current().Warn().Msgf(format, args...)
}

// E logs an error with the caller's location.
func E(format string, args ...any) {
	ev := current().Error()
	withCaller(ev, 2).Msgf(format, args...)
}

// D logs a debug message when l is within the configured debug level.
func D(l int, format string, args ...any) {
	mu.Lock()
	enabled := l <= Level
	mu.Unlock()
	if !enabled {
		return
	}
	ev := current().Debug().Int("lvl", l)
	withCaller(ev, 2).Msgf(format, args...)
}

func withCaller(ev *zerolog.Event, skip int) *zerolog.Event {
	pc, f, line, ok := runtime.Caller(skip)
	if !ok {
		return ev
	}
	fn := "unknown"
	if rf := runtime.FuncForPC(pc); rf != nil {
		fn = filepath.Base(rf.Name())
	}
	return ev.Str("function", fn).Str("file", filepath.Base(f)).Int("line", line)
}

// stripWriter removes ANSI escape codes before writing to the log file.
type stripWriter struct {
	w io.Writer
}

func (s stripWriter) Write(p []byte) (int, error) {
	clean := regex.AnsiEscape().ReplaceAll(p, nil)
	if _, err := s.w.Write(clean); err != nil {
		return 0, err
	}
	return len(p), nil
}

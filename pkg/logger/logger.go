package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Level is the severity of a log line.
type Level uint32

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetLevel sets the global minimum level: "debug", "info", "warn" or "error".
// Unknown values leave the level at info.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// UseJSONOutput switches from the console writer to plain JSON lines,
// for running under a supervisor that collects structured logs.
func UseJSONOutput() {
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Log writes one structured line. fields may be nil; err may be nil.
// The caller's file:line is attached so call sites don't need to identify
// themselves in the message.
func Log(level Level, fields map[string]string, err error, msg string) {
	var ev *zerolog.Event

	switch level {
	case LevelError:
		ev = log.Error()
	case LevelWarn:
		ev = log.Warn()
	default:
		ev = log.Info()
	}

	if _, file, line, ok := runtime.Caller(1); ok {
		ev = ev.Str("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}

	for k, v := range fields {
		ev = ev.Str(k, v)
	}

	if err != nil {
		ev = ev.Err(err)
	}

	ev.Msg(msg)
}

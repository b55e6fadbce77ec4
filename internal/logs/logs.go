// Package logs builds the process logger. Log output always goes to
// stderr as text so it never mixes with program OUTPUT on stdout; when a
// trace file is configured a JSON handler is fanned in alongside.
package logs

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

var level = new(slog.LevelVar)

// SetLevel adjusts the process log level by name. Unknown names fall
// back to info.
func SetLevel(name string) {
	switch name {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// New builds a logger writing text to w. When traceFile is non-empty the
// file is opened for append and receives every record as JSON at debug
// level, regardless of the terminal level. The returned closer owns the
// trace file.
func New(w io.Writer, traceFile string) (*slog.Logger, io.Closer, error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}

	var closer io.Closer
	if traceFile != "" {
		f, err := os.OpenFile(traceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closer = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/eleven-am/barrier/internal/ports"
)

type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatHCLog Format = "hclog"
)

type Options struct {
	Format Format
	Level  ports.LogLevel
	Output io.Writer
}

// NewLogger builds the process logger. Barrier output goes to stderr by
// default so stdout only carries the READY marker.
func NewLogger(opts Options) (*slog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := opts.Level.SlogLevel()

	switch opts.Format {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), nil
	case FormatHCLog:
		return slog.New(NewHCLogHandler("barrier", opts.Level, out)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

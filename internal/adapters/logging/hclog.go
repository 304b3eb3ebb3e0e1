package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/eleven-am/barrier/internal/ports"
	"github.com/hashicorp/go-hclog"
)

// HCLogHandler is a slog.Handler that renders records through go-hclog.
type HCLogHandler struct {
	logger hclog.Logger
	group  string
}

func NewHCLogHandler(name string, level ports.LogLevel, out io.Writer) *HCLogHandler {
	return &HCLogHandler{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:   name,
			Level:  hclog.LevelFromString(string(level)),
			Output: out,
		}),
	}
}

func WrapHCLog(logger hclog.Logger) *HCLogHandler {
	return &HCLogHandler{logger: logger}
}

func (h *HCLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	switch toHCLogLevel(level) {
	case hclog.Trace:
		return h.logger.IsTrace()
	case hclog.Debug:
		return h.logger.IsDebug()
	case hclog.Info:
		return h.logger.IsInfo()
	case hclog.Warn:
		return h.logger.IsWarn()
	default:
		return h.logger.IsError()
	}
}

func (h *HCLogHandler) Handle(_ context.Context, record slog.Record) error {
	args := make([]interface{}, 0, record.NumAttrs()*2)
	record.Attrs(func(attr slog.Attr) bool {
		args = h.appendAttr(args, attr)
		return true
	})
	h.logger.Log(toHCLogLevel(record.Level), record.Message, args...)
	return nil
}

func (h *HCLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	args := make([]interface{}, 0, len(attrs)*2)
	for _, attr := range attrs {
		args = h.appendAttr(args, attr)
	}
	return &HCLogHandler{logger: h.logger.With(args...), group: h.group}
}

func (h *HCLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &HCLogHandler{logger: h.logger, group: h.qualify(name)}
}

func (h *HCLogHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *HCLogHandler) appendAttr(args []interface{}, attr slog.Attr) []interface{} {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		nested := &HCLogHandler{logger: h.logger, group: h.qualify(attr.Key)}
		for _, member := range value.Group() {
			args = nested.appendAttr(args, member)
		}
		return args
	}
	return append(args, h.qualify(attr.Key), value.Any())
}

func toHCLogLevel(level slog.Level) hclog.Level {
	switch {
	case level < slog.LevelDebug:
		return hclog.Trace
	case level < slog.LevelInfo:
		return hclog.Debug
	case level < slog.LevelWarn:
		return hclog.Info
	case level < slog.LevelError:
		return hclog.Warn
	default:
		return hclog.Error
	}
}

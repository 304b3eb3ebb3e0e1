package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/eleven-am/barrier/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFormats(t *testing.T) {
	for _, format := range []Format{"", FormatText, FormatJSON, FormatHCLog} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(Options{Format: format, Level: ports.LogLevelInfo, Output: &buf})
			require.NoError(t, err)

			logger.Info("quorum reached", "peers", 2)
			out := buf.String()
			assert.Contains(t, out, "quorum reached")
			assert.Contains(t, out, "peers")
		})
	}
}

func TestNewLoggerUnknownFormat(t *testing.T) {
	_, err := NewLogger(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestHCLogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHCLogHandler("barrier", ports.LogLevelWarn, &buf))

	logger.Info("hidden")
	logger.Warn("shown", "peer_id", "node-b")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "peer_id=node-b")
	assert.Contains(t, out, "[WARN]")
}

func TestHCLogHandlerGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHCLogHandler("barrier", ports.LogLevelDebug, &buf)).
		With("component", "listener").
		WithGroup("quorum")

	logger.Debug("peer ready", "size", 1, slog.Group("peer", "id", "node-c"))

	out := buf.String()
	assert.Contains(t, out, "component=listener")
	assert.Contains(t, out, "quorum.size=1")
	assert.Contains(t, out, "quorum.peer.id=node-c")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

package ports

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/eleven-am/barrier/internal/xjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		entry := map[string]any{}
		require.NoError(t, xjson.Unmarshal(line, &entry))
		out = append(out, entry)
	}
	return out
}

func TestStructuredLoggerBaseAttrs(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "barrier", "1.0.0", "node-a")

	sl.Info("resolved", FieldPeerID, "node-b", "count", 2)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "barrier", entries[0][FieldComponent])
	assert.Equal(t, "1.0.0", entries[0][FieldVersion])
	assert.Equal(t, "node-a", entries[0][FieldNodeID])
	assert.Equal(t, "node-b", entries[0][FieldPeerID])
	assert.Equal(t, float64(2), entries[0]["count"])
}

func TestOperationLoggerCompleteAndFail(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "barrier", "", "node-a")
	op := sl.WithOperation("rendezvous", "req-1")

	op.Complete("done")
	op.Fail("failed", errors.New("boom"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "rendezvous", entries[0][FieldOperation])
	assert.Equal(t, "req-1", entries[0][FieldRequestID])
	assert.Equal(t, "completed", entries[0][FieldStatus])

	assert.Equal(t, "failed", entries[1][FieldStatus])
	assert.Equal(t, "boom", entries[1][FieldError])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestLogLevelSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogLevelDebug.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogLevelWarn.SlogLevel())
	assert.Equal(t, slog.LevelError, LogLevelError.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogLevel("bogus").SlogLevel())
}

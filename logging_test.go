package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLogHandler(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(NewLogHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Debug("hidden")
	logger.With("run", "abc").WithGroup("station").Info("station failed", "id", "MIDDLEBURY 1", "polygons", 2)

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " INFO station failed run=abc station.id=\"MIDDLEBURY 1\" station.polygons=2")
}

func TestLogLevelFromString(t *testing.T) {
	for _, c := range []struct {
		in    string
		level LogLevel
	}{
		{"debug", LOG_DEBUG}, {"INFO", LOG_INFO}, {"", LOG_INFO}, {"warning", LOG_WARN}, {"error", LOG_ERROR},
	} {
		level, err := LogLevelFromString(c.in)
		assert.NoError(t, err)
		assert.Equal(t, c.level, level)
	}
	_, err := LogLevelFromString("loud")
	assert.Error(t, err)
	assert.Equal(t, slog.LevelWarn, LOG_WARN.Level())
}

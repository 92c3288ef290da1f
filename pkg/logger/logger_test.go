package logger

import (
	"bytes"
	"concept_review_backend/internal/config"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewAddsServiceFields(t *testing.T) {
	var file, console bytes.Buffer
	log := New(&config.Config{Server: config.ServerConfig{Mode: "release"}}, zapcore.AddSync(&file), zapcore.AddSync(&console))

	log.Info("Survey response saved", zap.String("student_id", "S1"))
	log.Debug("hidden")
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "release", entry["mode"])
	assert.Equal(t, "S1", entry["student_id"])
	assert.Equal(t, "INFO", entry["level"])

	assert.Contains(t, console.String(), "Survey response saved")
}

func TestNewDebugMode(t *testing.T) {
	var file bytes.Buffer
	log := New(&config.Config{Server: config.ServerConfig{Mode: "debug"}}, zapcore.AddSync(&file), zapcore.AddSync(&bytes.Buffer{}))

	log.Debug("visible")
	require.NoError(t, log.Sync())
	assert.Contains(t, file.String(), "visible")
}

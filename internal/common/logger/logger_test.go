package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"trip-assistant/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestZapWrapper_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"component": "chat"})

	log.Info("turn handled", map[string]interface{}{"sessionId": "abc"})
	log.WithError(errors.New("boom")).Error("turn failed", nil)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "turn handled", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "chat", ctx["component"])
		assert.Equal(t, "abc", ctx["sessionId"])

		assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	}
}

func TestNew_DoesNotPanic(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log := NewZapAdapter(New("debug", format))
		assert.NotPanics(t, func() { log.Debug("hello", nil) })
	}
	assert.NotPanics(t, func() { NewNoOpLogger().Warn("quiet", nil) })
}

func TestFromConfig_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.log")
	l := FromConfig(config.LoggingConfig{Level: "WARN", Format: "json", Output: path})

	l.Info("dropped")
	l.Warn("kept", zap.String("sessionId", "s-1"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"sessionId":"s-1"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

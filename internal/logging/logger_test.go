package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/netguard/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(&bytes.Buffer{}, config.LogConfig{Level: tt.level}, "")
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestComponent_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(newLogger(&buf, config.LogConfig{Level: "info", Format: "json"}, "1.2.3"), "expander")

	logger.Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "expander", line["component"])
	assert.Equal(t, "netguardd", line["service"])
	assert.Equal(t, "1.2.3", line["version"])
	assert.Equal(t, "hello", line["message"])
}

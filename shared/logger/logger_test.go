package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"pms/config"
	"pms/shared/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	t.Helper()

	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()
	originalTimeFormat := zerolog.TimeFieldFormat

	t.Cleanup(func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
		zerolog.TimeFieldFormat = originalTimeFormat
	})
}

func TestInitLogger(t *testing.T) {
	restore(t)

	logger.InitLogger()

	assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())
}

func TestErrorWithStack(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	log.Logger = log.Output(&buf)

	logger.ErrorWithStack(errors.New("test error"))

	assert.Contains(t, buf.String(), "test error")
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{name: "debug level", logLevel: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "info level", logLevel: "info", expectedLevel: zerolog.InfoLevel},
		{name: "error level", logLevel: "error", expectedLevel: zerolog.ErrorLevel},
		{name: "disabled level", logLevel: "disabled", expectedLevel: zerolog.Disabled},
		{name: "invalid level falls back to info", logLevel: "invalid_level", expectedLevel: zerolog.InfoLevel},
		{name: "empty level falls back to info", logLevel: "", expectedLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(t)

			log.Logger = log.Output(&bytes.Buffer{})

			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.logLevel

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("production writes json with component", func(t *testing.T) {
		restore(t)
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		cfg := &config.Config{}
		cfg.Server.Env = "production"
		cfg.App.Name = "pms"

		var buf bytes.Buffer
		l := logger.New(&buf, cfg, "worker")
		l.Info().Str("group_booking_id", "gb-1").Msg("exported")

		line := map[string]any{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "worker", line["component"])
		assert.Equal(t, "pms", line["app"])
		assert.Equal(t, "gb-1", line["group_booking_id"])
		assert.Equal(t, "exported", line["message"])
	})

	t.Run("development writes console lines", func(t *testing.T) {
		restore(t)
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		cfg := &config.Config{}
		cfg.Server.Env = "development"

		var buf bytes.Buffer
		l := logger.New(&buf, cfg, "app")
		l.Info().Msg("ready")

		assert.Contains(t, buf.String(), "ready")
		assert.False(t, json.Valid(buf.Bytes()))
	})
}

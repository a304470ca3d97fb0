package logger_test

import (
	"testing"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := logger.New(config.AppConfig{Env: "production", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = logger.New(config.AppConfig{Env: "development", LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	_, err = logger.New(config.AppConfig{LogLevel: "loud"})
	assert.Error(t, err)
}

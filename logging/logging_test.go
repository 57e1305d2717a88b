package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/actuarial/reinsurance-engine/config"
	"github.com/actuarial/reinsurance-engine/logging"
)

func TestNew_Level(t *testing.T) {
	logger, err := logging.New(config.LogConfig{Level: "WARN", Encoding: "json"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Fallbacks(t *testing.T) {
	logger, err := logging.New(config.LogConfig{Level: "chatty", Encoding: "xml", Sampling: true})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

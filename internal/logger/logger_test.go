package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevels(t *testing.T) {
	require.NoError(t, Init(Config{Level: "info"}))
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())

	require.NoError(t, Init(Config{Level: "error", Debug: true}))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	assert.Error(t, Init(Config{Level: "loud"}))
}

func TestSetLevelString(t *testing.T) {
	require.NoError(t, Init(Config{}))
	require.NoError(t, SetLevelString("debug"))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
	assert.Error(t, SetLevelString("nope"))
}

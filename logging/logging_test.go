package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BuildsLoggerAtRequestedLevel(t *testing.T) {
	logger, err := New("debug", true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(-1)) // zapcore.DebugLevel
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("not-a-level", true)
	assert.Error(t, err)
}

func TestTurnFields_CarriesAllThreeCoordinates(t *testing.T) {
	fields := TurnFields("session-1", "universe-1", "actor-1")
	assert.Len(t, fields, 3)
}

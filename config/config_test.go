package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsApplyWithoutEnvFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./data/truth.db", cfg.TruthStorePath)
	assert.Equal(t, 64, cfg.MaxSessions)
	assert.Equal(t, 5000, cfg.LLMTimeoutMS)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TTA_MAX_SESSIONS", "8")
	t.Setenv("TTA_LOG_JSON", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxSessions)
	assert.False(t, cfg.LogJSON)
}

func TestLoad_MissingEnvFileIsNotAnError(t *testing.T) {
	_, err := Load("/nonexistent/path/to/.env")
	require.NoError(t, err)
}

package physics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/ability"
)

func TestDefault_IsNeutral(t *testing.T) {
	overlay := Default("universe-1")
	assert.Equal(t, 10, overlay.ScaleDamage(10))
	assert.True(t, overlay.CritsOn(20))
	assert.False(t, overlay.CritsOn(19))
	assert.True(t, overlay.AllowsSource(ability.SourceMagic))
}

func TestLoad_ParsesOverlayAndAppliesZeroDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	content := "universe_id: low-magic-1\ndisallowed_sources: [magic]\ndamage_multiplier: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	overlay, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "low-magic-1", overlay.UniverseID)
	assert.False(t, overlay.AllowsSource(ability.SourceMagic))
	assert.True(t, overlay.AllowsSource(ability.SourceMartial))
	assert.Equal(t, 5, overlay.ScaleDamage(10))
	assert.Equal(t, 20, overlay.CriticalThreshold)
}

func TestScaleDamage_NeverGoesNegative(t *testing.T) {
	overlay := Default("universe-1")
	overlay.DamageMultiplier = -1
	assert.Equal(t, 0, overlay.ScaleDamage(10))
}

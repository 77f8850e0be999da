package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(1280*720*4), cfg.FrameBytes())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 640\nheight: 360\nfilter: noir\nburn_in: true\n"), 0644))

	t.Chdir(dir)
	t.Setenv("CUTLINE_FPS", "25")
	t.Setenv("CUTLINE_DUCK_UNDER_VIDEO", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 360, cfg.Height)
	assert.Equal(t, 25, cfg.FPS)
	assert.Equal(t, "noir", cfg.Filter)
	assert.True(t, cfg.BurnIn)
	assert.False(t, cfg.DuckUnderVideo)
	assert.Equal(t, 0.3, cfg.SeekTolerance)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CUTLINE_PAGE_DURATION=2.5\n"), 0644))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("CUTLINE_PAGE_DURATION") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.PageDuration)
}

func TestApplyEnvErrors(t *testing.T) {
	cases := map[string]string{
		"CUTLINE_WIDTH":       "wide",
		"CUTLINE_DUCK_VOLUME": "loud",
		"CUTLINE_BURN_IN":     "maybe",
	}
	for key, val := range cases {
		cfg := Default()
		err := cfg.applyEnv(func(k string) (string, bool) {
			if k == key {
				return val, true
			}
			return "", false
		})
		assert.Error(t, err, key)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"odd width", func(c *Config) { c.Width = 641 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"duck volume", func(c *Config) { c.DuckVolume = 1.5 }},
		{"tolerance", func(c *Config) { c.SeekTolerance = -1 }},
		{"page duration", func(c *Config) { c.PageDuration = 0 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mod(cfg)
		assert.Error(t, cfg.Validate(), tc.name)
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyPreset("9:16"))
	assert.Equal(t, 720, cfg.Width)
	assert.Equal(t, 1280, cfg.Height)
	assert.Error(t, cfg.ApplyPreset("cinemascope"))
}

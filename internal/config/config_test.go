package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"localhost:5173", "localhost:3000"}, cfg.Origins())
	assert.Equal(t, slog.LevelInfo, cfg.Level())

	s := cfg.Sketch()
	assert.Equal(t, 0.02, s.LineDiameter)
	assert.Equal(t, 5, s.InterpolationSteps)
	assert.Equal(t, 0.02, s.MinPointDistance)
	assert.Equal(t, 0.3, s.PointOffset)
	assert.Equal(t, 2, s.RefineThreshold)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LINE_DIAMETER", "0.05")
	t.Setenv("ALLOWED_ORIGINS", " example.com , ,app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 0.05, cfg.Sketch().LineDiameter)
	assert.Equal(t, []string{"example.com", "app.example.com"}, cfg.Origins())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("INTERPOLATION_STEPS", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLevelFallsBack(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFileOverridesEnv(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "arsketch.toml", "port = 7070\nline_diameter = 0.04\n"},
		{"yaml", "arsketch.yaml", "port: 7070\nline_diameter: 0.04\n"},
		{"json", "arsketch.json", `{"port": 7070, "lineDiameter": 0.04}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			t.Setenv("CONFIG_FILE", path)
			t.Setenv("PORT", "9090")
			t.Setenv("POINT_OFFSET", "0.5")

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, 7070, cfg.Port)
			assert.Equal(t, 0.04, cfg.LineDiameter)
			// Keys missing from the file keep their environment values.
			assert.Equal(t, 0.5, cfg.PointOffset)
			assert.Equal(t, 5, cfg.InterpolationSteps)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(dir, "nope.toml"))
		_, err := Load()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := filepath.Join(dir, "arsketch.ini")
		require.NoError(t, os.WriteFile(path, []byte("port=1"), 0o600))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.ErrorContains(t, err, "unsupported")
	})

	t.Run("invalid value from file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("interpolation_steps = 0\n"), 0o600))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})
}

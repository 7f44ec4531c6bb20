package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiscore.yaml")
	content := `listen: 0.0.0.0:8080
storage:
  backend: file
  base_path: /var/lib/hiscore/board
strict: true
max_entries: 10
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Listen)
	assert.Equal(t, "/var/lib/hiscore/board", cfg.Storage.BasePath)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 10, cfg.MaxEntries)
	assert.Equal(t, 64, cfg.MaxNameLength, "unset fields keep defaults")
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 0.0.0.0:8080\n"), 0644))

	t.Setenv("HISCORE_LISTEN", "127.0.0.1:9999")
	t.Setenv("HISCORE_STORAGE_BASE_PATH", "env_scores")
	t.Setenv("HISCORE_STRICT", "true")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
	assert.Equal(t, "env_scores", cfg.Storage.BasePath)
	assert.True(t, cfg.Strict)
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "Malformed YAML", content: "listen: [\n"},
		{name: "Zero Entries", content: "max_entries: 0\n"},
		{name: "Unknown Backend", content: "storage:\n  backend: s3\n  base_path: x\n"},
		{name: "Redis Without URL", content: "storage:\n  backend: redis\n  base_path: x\n"},
		{name: "Postgres Without DSN", content: "storage:\n  backend: postgres\n  base_path: x\n"},
		{name: "Empty Base Path", content: "storage:\n  backend: file\n  base_path: \"\"\n"},
		{name: "Unknown Log Format", content: "log:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hiscore.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiscore.yaml")
	cfg := Default()
	cfg.Strict = true
	cfg.MetricsAddr = "127.0.0.1:9100"

	require.NoError(t, SaveTo(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWithWorkingDir(t *testing.T) {
	cfg := Default()
	cfg.WithWorkingDir("/tmp/run-1")
	assert.Equal(t, filepath.Join("/tmp/run-1", "hide_high_scores"), cfg.Storage.BasePath)

	cfg = Default()
	cfg.Storage.BasePath = "/abs/scores"
	cfg.WithWorkingDir("/tmp/run-1")
	assert.Equal(t, "/abs/scores", cfg.Storage.BasePath)

	cfg = Default()
	cfg.WithWorkingDir("")
	assert.Equal(t, "hide_high_scores", cfg.Storage.BasePath)
}

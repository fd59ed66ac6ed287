package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp moves the test into an empty directory and points $HOME at
// another one so no real config file leaks into the search path.
func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 47.3464, cfg.Map.CenterLat, 1e-9)
	assert.InDelta(t, -121.9861, cfg.Map.CenterLon, 1e-9)
	assert.Equal(t, "open-street-map", cfg.Map.Style)
	assert.InDelta(t, 9.0, cfg.Map.Zoom, 1e-9)
	assert.Equal(t, 1000, cfg.Map.Width)
	assert.Equal(t, 1000, cfg.Map.Height)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "housing-eda/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 24, cfg.Fetch.CacheTTLHours)
	assert.Equal(t, "data/housing-eda.db", cfg.Store.Path)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
map:
  zoom: 11
  style: carto-positron
data:
  dir: /tmp/housing
`
	require.NoError(t, os.WriteFile(".housing-eda.yaml", []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 11.0, cfg.Map.Zoom, 1e-9)
	assert.Equal(t, "carto-positron", cfg.Map.Style)
	assert.Equal(t, "/tmp/housing", cfg.Data.Dir)

	// Untouched keys keep their defaults.
	assert.Equal(t, 1000, cfg.Map.Width)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadExplicitFile(t *testing.T) {
	chdirTemp(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	chdirTemp(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)

	t.Setenv("HOUSING_EDA_LOG_LEVEL", "warn")
	t.Setenv("HOUSING_EDA_MAP_ZOOM", "12.5")
	t.Setenv("HOUSING_EDA_SERVER_ADDR", ":3000")
	t.Setenv("HOUSING_EDA_FETCH_MAX_RETRIES", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.InDelta(t, 12.5, cfg.Map.Zoom, 1e-9)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
}

func TestValidateDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidateBadZoom(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Map.Zoom = 30

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map.zoom must be between 0 and 22")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Map.CenterLat = 120
	cfg.Map.Width = 0
	cfg.Fetch.TimeoutSecs = 0
	cfg.Fetch.MaxRetries = 0
	cfg.Data.Dir = ""
	cfg.Store.Path = ""

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map.center_lat must be between -90 and 90")
	assert.Contains(t, err.Error(), "map.width and map.height must be > 0")
	assert.Contains(t, err.Error(), "fetch.timeout_secs must be > 0")
	assert.Contains(t, err.Error(), "fetch.max_retries must be between 1 and 10")
	assert.Contains(t, err.Error(), "data.dir is required")
	assert.Contains(t, err.Error(), "store.path is required")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shout", Format: "json"})
	assert.Error(t, err)
}

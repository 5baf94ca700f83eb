package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentCompanies)
	assert.Equal(t, 2015, cfg.Export.YearFirst)
	assert.Equal(t, 2023, cfg.Export.YearLast)
	assert.Equal(t, ".", cfg.Export.OutputDir)
	assert.InDelta(t, 50.0, cfg.Catalog.LookupRatePerSec, 0.001)
	assert.Equal(t, 10, cfg.Catalog.LookupBurst)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
  database_url: export.db
log:
  level: debug
  format: console
server:
  port: 9090
export:
  year_first: 2018
  year_last: 2024
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "export.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2018, cfg.Export.YearFirst)
	assert.Equal(t, 2024, cfg.Export.YearLast)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentCompanies)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DISCLOSURE_STORE_DRIVER", "postgres")
	t.Setenv("DISCLOSURE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("DISCLOSURE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
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
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = "postgres://localhost/disclosure"
	cfg.Export.YearFirst = 2015
	cfg.Export.YearLast = 2023
	cfg.Batch.MaxConcurrentCompanies = 4
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateExport_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("export"))
}

func TestValidateExport_MissingDB(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateExport_SQLiteNeedsFixture(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "export.db"

	err := cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.fixture_path is required")

	cfg.Catalog.FixturePath = "catalog.json"
	assert.NoError(t, cfg.Validate("export"))
}

func TestValidateExport_BadYearRange(t *testing.T) {
	cfg := validDefaults()
	cfg.Export.YearLast = 2014

	err := cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "year range")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrentCompanies = 0
	err := cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_companies must be between 1 and 50")

	cfg.Batch.MaxConcurrentCompanies = 51
	err = cfg.Validate("export")
	assert.Error(t, err)

	cfg.Batch.MaxConcurrentCompanies = 50
	assert.NoError(t, cfg.Validate("export"))
}

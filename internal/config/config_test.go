package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sanimport.db", cfg.Store.DatabaseURL)
	assert.True(t, cfg.Import.Create)
	assert.Equal(t, "smart", cfg.Import.RoleMode)
	assert.Equal(t, "prefer-device-alias", cfg.Import.ConflictPolicy)
	assert.Equal(t, "detect", cfg.Import.ZoneTypeMode)
	assert.Equal(t, 5, cfg.Import.SubmitMaxAttempts)
	assert.Equal(t, 6, cfg.Import.RefreshMaxAttempts)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SANIMPORT_STORE_DRIVER", "postgres")
	t.Setenv("SANIMPORT_IMPORT_CONFLICT_POLICY", "prefer-fcalias")
	t.Setenv("SANIMPORT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "prefer-fcalias", cfg.Import.ConflictPolicy)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"store:\n"+
			"  driver: postgres\n"+
			"  database_url: postgres://localhost/san\n"+
			"import:\n"+
			"  role_mode: static\n",
	), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/san", cfg.Store.DatabaseURL)
	assert.Equal(t, "static", cfg.Import.RoleMode)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "chatty", Format: "json"}))
}

func TestInitLogger_Console(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}

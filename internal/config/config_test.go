package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/regulus-console/internal/config"
	"github.com/stretchr/testify/require"
)

var regulusVars = []string{
	"APP_NAME", "ENV", "REGULUS_LOG_LEVEL", "REGULUS_DATA_FOLDER", "REGULUS_API_BASE_URL",
	"REGULUS_DEVICE_ID", "REGULUS_FORWARDED_FOR", "REGULUS_RATE_LIMIT", "REGULUS_REFRESH_INTERVAL",
	"REGULUS_PAGE_SIZE", "REGULUS_STORE_KEY", "REGULUS_CONFIG",
}

// clearEnv blanks every variable the package reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range regulusVars {
		t.Setenv(v, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg := config.New()

	require.Equal(t, "Regulus", cfg.GetAppName())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "info", cfg.GetLogLevel())
	require.Equal(t, "http://localhost:8000", cfg.GetAPIBaseURL())
	require.Equal(t, "regulus-ui", cfg.GetDeviceID())
	require.Equal(t, "127.0.0.1", cfg.GetForwardedFor())
	require.Zero(t, cfg.GetRateLimit())
	require.Equal(t, 5*time.Second, cfg.GetRefreshInterval())
	require.Equal(t, 50, cfg.GetPageSize())
	require.Empty(t, cfg.GetStoreKey())
	require.Equal(t, ".regulus", filepath.Base(cfg.GetDataFolder()))
}

func TestFileLayer(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api_base_url = "https://aml.example.com/"
device_id = "ops-console"
rate_limit = 2.5
refresh_interval = "30s"
page_size = 100
data_folder = "/var/lib/regulus"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://aml.example.com", cfg.GetAPIBaseURL())
	require.Equal(t, "ops-console", cfg.GetDeviceID())
	require.Equal(t, 2.5, cfg.GetRateLimit())
	require.Equal(t, 30*time.Second, cfg.GetRefreshInterval())
	require.Equal(t, 100, cfg.GetPageSize())
	require.Equal(t, "/var/lib/regulus", cfg.GetDataFolder())
	require.Equal(t, "127.0.0.1", cfg.GetForwardedFor())
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api_base_url = "https://file.example.com"
refresh_interval = "30s"
store_key = "from-file"
`)
	t.Setenv("REGULUS_API_BASE_URL", "https://env.example.com")
	t.Setenv("REGULUS_REFRESH_INTERVAL", "2s")
	t.Setenv("REGULUS_STORE_KEY", "from-env")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.GetAPIBaseURL())
	require.Equal(t, 2*time.Second, cfg.GetRefreshInterval())
	require.Equal(t, "from-env", cfg.GetStoreKey())
}

func TestUnreadableValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REGULUS_REFRESH_INTERVAL", "soon")
	t.Setenv("REGULUS_RATE_LIMIT", "fast")
	t.Setenv("REGULUS_PAGE_SIZE", "-3")

	cfg := config.New()
	require.Equal(t, 5*time.Second, cfg.GetRefreshInterval())
	require.Zero(t, cfg.GetRateLimit())
	require.Equal(t, 50, cfg.GetPageSize())
}

func TestLoad(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		require.Equal(t, "http://localhost:8000", cfg.GetAPIBaseURL())
	})

	t.Run("malformed file", func(t *testing.T) {
		clearEnv(t)
		_, err := config.Load(writeConfig(t, `api_base_url = `))
		require.Error(t, err)
	})

	t.Run("default path honours REGULUS_CONFIG", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `device_id = "via-env-path"`)
		t.Setenv("REGULUS_CONFIG", path)

		cfg, err := config.Load("")
		require.NoError(t, err)
		require.Equal(t, "via-env-path", cfg.GetDeviceID())
	})
}

func TestWriteFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, config.WriteFile(path, &config.File{APIBaseURL: "https://aml.example.com", PageSize: 25}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	f, err := config.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://aml.example.com", f.APIBaseURL)
	require.Equal(t, 25, f.PageSize)
}

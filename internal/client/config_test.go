package client

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T, args ...string) (Config, error) {
	t.Helper()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return LoadConfig(fs, args)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "client.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(serverURLEnv, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadTestConfig(t)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Layers(t *testing.T) {
	path := writeConfigFile(t, `
server_url = "http://file:5001/api"
timeout = "3s"
filter = "active"
`)
	t.Setenv(serverURLEnv, "")

	cfg, err := loadTestConfig(t, "-config", path)
	require.NoError(t, err)
	assert.Equal(t, "http://file:5001/api", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "active", cfg.Filter)

	t.Setenv(serverURLEnv, "http://env:5001/api")
	cfg, err = loadTestConfig(t, "-config", path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:5001/api", cfg.ServerURL)

	cfg, err = loadTestConfig(t, "-config", path, "-server", "http://flag:5001/api", "-timeout", "1s", "-filter", "completed")
	require.NoError(t, err)
	assert.Equal(t, "http://flag:5001/api", cfg.ServerURL)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, "completed", cfg.Filter)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv(serverURLEnv, "")

	_, err := loadTestConfig(t, "-config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = loadTestConfig(t, "-config", writeConfigFile(t, `timeout = [`))
	assert.Error(t, err)

	_, err = loadTestConfig(t, "-config", writeConfigFile(t, `filter = "done"`))
	assert.Error(t, err)

	_, err = loadTestConfig(t, "-config", writeConfigFile(t, `timeout = "-1s"`))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OWARE_SERVICE_BASE_URL", "http://localhost:8000/")

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.Service.BaseURL)
	assert.Zero(t, c.Service.Timeout)
	assert.Equal(t, 3, c.AI.DefaultDepth)
	assert.Equal(t, ":8090", c.Bridge.Addr)
	assert.Equal(t, "oware:render", c.Mirror.Channel)
	assert.Empty(t, c.Mirror.RedisURL)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Setenv("OWARE_SERVICE_BASE_URL", "")
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	t.Setenv("OWARE_SERVICE_BASE_URL", "localhost:8000")
	_, err = Load(nil)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OWARE_SERVICE_BASE_URL", "https://oware.example")
	t.Setenv("OWARE_SERVICE_TIMEOUT", "1500ms")
	t.Setenv("OWARE_AI_DEFAULT_DEPTH", "6")
	t.Setenv("OWARE_MIRROR_REDIS_URL", "redis://localhost:6379/0")

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, c.Service.Timeout)
	assert.Equal(t, 6, c.AI.DefaultDepth)
	assert.Equal(t, "redis://localhost:6379/0", c.Mirror.RedisURL)
}

func TestLoadFileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oware.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  base_url: http://file.example
  headers:
    X-Session-Id: abc
ai:
  default_depth: 4
bridge:
  addr: ":9000"
`), 0o644))
	t.Setenv("OWARE_CONFIG", path)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("depth", 0, "")
	fs.String("addr", "", "")
	require.NoError(t, fs.Parse([]string{"--depth", "7"}))

	c, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example", c.Service.BaseURL)
	assert.Equal(t, "abc", c.Service.Headers["x-session-id"])
	assert.Equal(t, 7, c.AI.DefaultDepth)
	assert.Equal(t, ":9000", c.Bridge.Addr, "unset flag keeps file value")
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("OWARE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load(nil)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobal clears the installed configuration for the duration of a test
func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	orig := global
	global = nil
	globalMu.Unlock()

	t.Cleanup(func() {
		globalMu.Lock()
		global = orig
		globalMu.Unlock()
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: gpt-4o
  timeout: 3s
browser:
  engine: rod
  headless: true
  click_timeout: 2s
  blocked_hosts:
    - "*.doubleclick.net"
voice:
  listen_timeout: 7s
favorites:
  path: /tmp/favs.json
youtube:
  settle_delay: 0s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, EngineRod, cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 2*time.Second, cfg.Browser.ClickTimeout)
	assert.Equal(t, []string{"*.doubleclick.net"}, cfg.Browser.BlockedHosts)
	assert.Equal(t, 7*time.Second, cfg.Voice.ListenTimeout)
	assert.Equal(t, "/tmp/favs.json", cfg.Favorites.Path)
	assert.Equal(t, time.Duration(0), cfg.YouTube.SettleDelay)

	// untouched sections keep defaults
	assert.Equal(t, "https://www.google.com", cfg.Browser.StartURL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "llm: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown engine", func(c *Config) { c.Browser.Engine = "selenium" }},
		{"bad start url", func(c *Config) { c.Browser.StartURL = "not a url" }},
		{"zero click timeout", func(c *Config) { c.Browser.ClickTimeout = 0 }},
		{"zero llm timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad voice", func(c *Config) { c.Voice.TTSVoice = "robot" }},
		{"empty favorites path", func(c *Config) { c.Favorites.Path = "" }},
		{"negative settle", func(c *Config) { c.YouTube.SettleDelay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInitializeInstallsGlobal(t *testing.T) {
	resetGlobal(t)
	assert.False(t, IsInitialized())
	assert.Nil(t, GetLLM())

	path := writeConfig(t, "llm:\n  model: from-file\n")
	require.NoError(t, Initialize(path))

	assert.True(t, IsInitialized())
	assert.Equal(t, "from-file", GetLLM().Model)
}

func TestInitializeRejectsInvalid(t *testing.T) {
	resetGlobal(t)

	path := writeConfig(t, "browser:\n  engine: lynx\n")
	assert.Error(t, Initialize(path))
	assert.False(t, IsInitialized())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VOXBROWSE_TEST_VAR=from-dotenv\n"), 0600))
	t.Setenv("VOXBROWSE_TEST_VAR", "")
	os.Unsetenv("VOXBROWSE_TEST_VAR")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("VOXBROWSE_TEST_VAR"))
}

package main

import (
	"testing"

	appconfig "github.com/entrhq/voxbrowse/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", Config{Mode: modeText}, false},
		{"tui with rod", Config{Mode: modeTUI, Engine: appconfig.EngineRod}, false},
		{"serve", Config{Mode: modeServe, Engine: appconfig.EnginePlaywright}, false},
		{"unknown mode", Config{Mode: "gui"}, true},
		{"unknown engine", Config{Mode: modeText, Engine: "selenium"}, true},
		{"bad log level", Config{Mode: modeText, LogLevel: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyToOverridesOnlySetFlags(t *testing.T) {
	cfg := appconfig.Default()
	(&Config{Mode: modeText}).applyTo(cfg)
	assert.Equal(t, appconfig.Default(), cfg)

	(&Config{
		Mode:          modeVoice,
		Engine:        appconfig.EngineRod,
		Headless:      true,
		FavoritesPath: "/tmp/favs.json",
		Addr:          ":9000",
		LogLevel:      "debug",
	}).applyTo(cfg)

	assert.Equal(t, appconfig.EngineRod, cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/favs.json", cfg.Favorites.Path)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Voice.Enabled)
}

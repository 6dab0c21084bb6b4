// Package config loads voxbrowse settings from a YAML file, the environment and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Browser engines.
const (
	EnginePlaywright = "playwright"
	EngineRod        = "rod"
)

// Config is the complete voxbrowse configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Browser   BrowserConfig   `yaml:"browser"`
	Voice     VoiceConfig     `yaml:"voice"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
}

// LLMConfig configures the OpenAI-compatible endpoint used for intent
// resolution and page descriptions.
type LLMConfig struct {
	Model            string        `yaml:"model"`
	BaseURL          string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey           string        `yaml:"api_key"`
	DescriptionModel string        `yaml:"description_model"` // optional; if empty, descriptions use Model
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
}

// BrowserConfig selects and tunes the automation engine.
type BrowserConfig struct {
	Engine         string        `yaml:"engine" validate:"oneof=playwright rod"`
	Headless       bool          `yaml:"headless"`
	StartURL       string        `yaml:"start_url" validate:"required,url"`
	DefaultTimeout time.Duration `yaml:"default_timeout" validate:"gt=0"`
	ClickTimeout   time.Duration `yaml:"click_timeout" validate:"gt=0"`
	BlockedHosts   []string      `yaml:"blocked_hosts"`
}

// VoiceConfig configures speech capture and synthesis.
type VoiceConfig struct {
	Enabled            bool          `yaml:"enabled"`
	ListenTimeout      time.Duration `yaml:"listen_timeout" validate:"gt=0"`
	PollInterval       time.Duration `yaml:"poll_interval" validate:"gt=0"`
	RecorderCommand    []string      `yaml:"recorder_command"`
	PlayerCommand      []string      `yaml:"player_command"`
	TTSModel           string        `yaml:"tts_model"`
	TTSVoice           string        `yaml:"tts_voice" validate:"omitempty,oneof=alloy echo fable onyx nova shimmer"`
	TranscriptionModel string        `yaml:"transcription_model"`
	Language           string        `yaml:"language" validate:"omitempty,len=2"`
}

// FavoritesConfig locates the favorites file.
type FavoritesConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LoggingConfig sets log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// YouTubeConfig tunes result scraping.
type YouTubeConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay" validate:"gte=0"`
}

// Dir returns ~/.voxbrowse, the home of the config, favorites and logs.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".voxbrowse"
	}
	return filepath.Join(home, ".voxbrowse")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Timeout: 10 * time.Second,
		},
		Browser: BrowserConfig{
			Engine:         EnginePlaywright,
			Headless:       false,
			StartURL:       "https://www.google.com",
			DefaultTimeout: 30 * time.Second,
			ClickTimeout:   5 * time.Second,
		},
		Voice: VoiceConfig{
			ListenTimeout:      5 * time.Second,
			PollInterval:       500 * time.Millisecond,
			RecorderCommand:    []string{"sox", "-q", "-d", "-c", "1", "-r", "16000", "{output}", "silence", "1", "0.1", "1%", "1", "1.5", "1%"},
			PlayerCommand:      []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "{input}"},
			TTSModel:           "tts-1",
			TTSVoice:           "alloy",
			TranscriptionModel: "whisper-1",
			Language:           "en",
		},
		Favorites: FavoritesConfig{
			Path: filepath.Join(Dir(), "favorites.json"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8765",
		},
		YouTube: YouTubeConfig{
			SettleDelay: 2 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints across all sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

var (
	// global is the configuration loaded at startup
	global   *Config
	globalMu sync.Mutex
)

// Initialize loads and validates the configuration at path and installs it globally.
// This should be called once at application startup.
func Initialize(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	globalMu.Lock()
	global = cfg
	globalMu.Unlock()
	return nil
}

// Global returns the global configuration.
// Panics if Initialize has not been called.
func Global() *Config {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return global
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global != nil
}

// GetLLM returns the LLM section from global config.
// Returns nil if config is not initialized.
func GetLLM() *LLMConfig {
	if !IsInitialized() {
		return nil
	}
	return &Global().LLM
}

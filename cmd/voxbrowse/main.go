// Package main provides the voxbrowse voice and text browser assistant.
// It opens a browser, greets the user and turns typed or spoken commands into
// browser actions, optionally through a terminal UI or an HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/entrhq/voxbrowse/pkg/config"
	"github.com/entrhq/voxbrowse/pkg/logging"
)

const version = "0.1.0" // Version of voxbrowse

// Run modes.
const (
	modeText  = "text"
	modeVoice = "voice"
	modeTUI   = "tui"
	modeServe = "serve"
)

// Config holds the command line configuration. Empty values fall back to the
// config file.
type Config struct {
	ConfigPath    string
	Mode          string
	Addr          string
	APIKey        string
	BaseURL       string
	Model         string
	Engine        string
	Headless      bool
	FavoritesPath string
	LogLevel      string
	ShowActions   bool
	ShowVersion   bool
}

func main() {
	// .env values must be visible to flag defaults and provider lookup
	if err := appconfig.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("voxbrowse v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil && !errors.Is(runErr, context.Canceled) {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ConfigPath, "config", appconfig.DefaultPath(), "Path to the YAML configuration file")
	flag.StringVar(&config.Mode, "mode", modeText, "Front end: text, voice, tui or serve")
	flag.StringVar(&config.Addr, "addr", "", "Listen address for serve mode (default from config)")
	flag.StringVar(&config.APIKey, "api-key", "", "LLM API key (or set OPENAI_API_KEY / GROQ_API_KEY)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI-compatible API base URL (or set OPENAI_BASE_URL)")
	flag.StringVar(&config.Model, "model", "", "LLM model used to resolve commands")
	flag.StringVar(&config.Engine, "engine", "", "Browser engine: playwright or rod (default from config)")
	flag.BoolVar(&config.Headless, "headless", false, "Run the browser without a window")
	flag.StringVar(&config.FavoritesPath, "favorites", "", "Path to the favorites file (default from config)")
	flag.StringVar(&config.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	flag.BoolVar(&config.ShowActions, "show-actions", true, "Print the browser action behind each reply")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "voxbrowse - A voice and text browser assistant\n\n")
		fmt.Fprintf(os.Stderr, "Usage: voxbrowse [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key (commands, descriptions, speech)\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "  GROQ_API_KEY       Groq API key, used when OPENAI_API_KEY is unset\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  voxbrowse                                # Typed commands\n")
		fmt.Fprintf(os.Stderr, "  voxbrowse -mode voice                    # Spoken commands\n")
		fmt.Fprintf(os.Stderr, "  voxbrowse -mode tui -engine rod\n")
		fmt.Fprintf(os.Stderr, "  voxbrowse -mode serve -addr :8765 -headless\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	switch c.Mode {
	case modeText, modeVoice, modeTUI, modeServe:
	default:
		return fmt.Errorf("unknown mode %q (want text, voice, tui or serve)", c.Mode)
	}
	switch c.Engine {
	case "", appconfig.EnginePlaywright, appconfig.EngineRod:
	default:
		return fmt.Errorf("unknown engine %q (want playwright or rod)", c.Engine)
	}
	if c.LogLevel != "" {
		if err := logging.SetLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

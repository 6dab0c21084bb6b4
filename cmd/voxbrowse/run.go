package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/voxbrowse/pkg/browser"
	appconfig "github.com/entrhq/voxbrowse/pkg/config"
	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/executor/cli"
	"github.com/entrhq/voxbrowse/pkg/executor/tui"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/entrhq/voxbrowse/pkg/llm/openai"
	"github.com/entrhq/voxbrowse/pkg/llm/tokenizer"
	"github.com/entrhq/voxbrowse/pkg/llmintent"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/server"
	"github.com/entrhq/voxbrowse/pkg/speech"
	"github.com/entrhq/voxbrowse/pkg/youtube"
	"golang.org/x/sync/errgroup"
)

// session is everything a front end needs.
type session struct {
	cfg        *appconfig.Config
	dispatcher *dispatch.Dispatcher
	tuiSpeaker *tui.Speaker
	voice      *speech.Switch
	listener   speech.Listener
	logger     *logging.Logger
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	cfg := appconfig.Global()
	config.applyTo(cfg)

	if config.LogLevel == "" {
		if err := logging.SetLevel(cfg.Logging.Level); err != nil {
			return err
		}
	}

	logger, err := logging.NewLogger("voxbrowse")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()

	s, err := newSession(ctx, config, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.dispatcher.Close(); err != nil {
			logger.Warnf("Failed to close browser: %v", err)
		}
	}()

	switch config.Mode {
	case modeTUI:
		return s.runTUI(ctx)
	case modeServe:
		return s.runServe(ctx)
	case modeVoice:
		return s.runVoice(ctx, config.ShowActions)
	default:
		return s.runText(ctx, config.ShowActions)
	}
}

// applyTo overrides file configuration with the flags that were set.
func (c *Config) applyTo(cfg *appconfig.Config) {
	if c.Engine != "" {
		cfg.Browser.Engine = c.Engine
	}
	if c.Headless {
		cfg.Browser.Headless = true
	}
	if c.FavoritesPath != "" {
		cfg.Favorites.Path = c.FavoritesPath
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if c.Mode == modeVoice {
		cfg.Voice.Enabled = true
	}
}

// newSession builds the collaborators and greets the user.
//
//nolint:gocyclo
func newSession(ctx context.Context, config *Config, cfg *appconfig.Config, logger *logging.Logger) (*session, error) {
	s := &session{cfg: cfg, logger: logger}

	provider, err := appconfig.BuildProvider(config.Model, config.BaseURL, config.APIKey)
	switch {
	case errors.Is(err, appconfig.ErrNoAPIKey):
		logger.Warnf("No LLM API key configured; using built-in command matching only")
		fmt.Fprintln(os.Stderr, "No LLM API key found: running with built-in command matching only.")
	case err != nil:
		return nil, err
	}

	if cfg.Voice.Enabled {
		if provider == nil {
			if config.Mode == modeVoice {
				return nil, errors.New("voice mode requires an API key for speech recognition")
			}
			logger.Warnf("Voice output disabled: no API key")
		} else {
			client := speech.NewOpenAIClient(provider.GetAPIKey(), provider.GetBaseURL())
			s.voice = speech.NewSwitch(speech.NewOpenAISpeaker(client, cfg.Voice.TTSModel, cfg.Voice.TTSVoice, cfg.Voice.PlayerCommand, logger))
			s.listener = speech.NewWhisperListener(client, cfg.Voice.TranscriptionModel, cfg.Voice.Language, cfg.Voice.RecorderCommand, logger)
		}
	}

	b, err := launchBrowser(cfg, logger)
	if err != nil {
		return nil, err
	}
	policy, err := browser.NewPolicy(cfg.Browser.BlockedHosts)
	if err != nil {
		_ = b.Quit()
		return nil, fmt.Errorf("invalid blocked hosts: %w", err)
	}
	guarded := browser.Guard(b, policy)

	store := favorites.NewStore(favorites.NewFileStorage(cfg.Favorites.Path), favorites.WithLogger(logger))

	speakers := speech.Multi{}
	switch config.Mode {
	case modeTUI:
		s.tuiSpeaker = tui.NewSpeaker()
		speakers = append(speakers, s.tuiSpeaker)
	case modeServe:
		// replies are returned in the HTTP response
	default:
		speakers = append(speakers, speech.NewConsole(os.Stdout))
	}
	if s.voice != nil {
		speakers = append(speakers, s.voice)
	}

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithLLMTimeout(cfg.LLM.Timeout),
		dispatch.WithClickTimeout(cfg.Browser.ClickTimeout),
		dispatch.WithWaitTimeout(cfg.Browser.DefaultTimeout),
		dispatch.WithYouTubeOptions(
			youtube.WithLogger(logger),
			youtube.WithSettleDelay(cfg.YouTube.SettleDelay),
			youtube.WithWaitTimeout(cfg.Browser.DefaultTimeout),
		),
	}
	if provider != nil {
		opts = append(opts, llmOptions(provider, cfg, logger)...)
	}

	s.dispatcher = dispatch.New(guarded, store, speakers, opts...)
	s.dispatcher.Start(ctx, cfg.Browser.StartURL)
	return s, nil
}

// llmOptions wires the resolver and describer to provider.
func llmOptions(provider *openai.Provider, cfg *appconfig.Config, logger *logging.Logger) []dispatch.Option {
	intentOpts := []llmintent.Option{llmintent.WithLogger(logger)}
	if tok, err := tokenizer.New(); err != nil {
		logger.Warnf("Tokenizer unavailable, page descriptions are not budgeted: %v", err)
	} else {
		intentOpts = append(intentOpts, llmintent.WithTokenizer(tok))
	}

	describerOpts := append([]llmintent.Option{llmintent.WithModel(cfg.LLM.DescriptionModel)}, intentOpts...)
	logger.Infof("LLM enabled: model %s", provider.GetModel())

	return []dispatch.Option{
		dispatch.WithResolver(llmintent.NewResolver(provider, intentOpts...)),
		dispatch.WithDescriber(llmintent.NewDescriber(provider, describerOpts...)),
	}
}

// launchBrowser starts the configured engine.
func launchBrowser(cfg *appconfig.Config, logger *logging.Logger) (browser.Browser, error) {
	opts := browser.Options{
		Headless:       cfg.Browser.Headless,
		DefaultTimeout: cfg.Browser.DefaultTimeout,
		Logger:         logger,
	}
	if cfg.Browser.Engine == appconfig.EngineRod {
		b, err := browser.LaunchRod(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		return b, nil
	}
	b, err := browser.LaunchPlaywright(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return b, nil
}

func (s *session) cliExecutor(showActions bool) *cli.Executor {
	opts := []cli.ExecutorOption{
		cli.WithShowActions(showActions),
		cli.WithLogger(s.logger),
		cli.WithPollInterval(s.cfg.Voice.PollInterval),
	}
	if s.voice != nil {
		opts = append(opts, cli.WithVoiceSwitch(s.voice))
	}
	if s.listener != nil {
		opts = append(opts, cli.WithListener(s.listener, s.cfg.Voice.ListenTimeout))
	}
	return cli.NewExecutor(s.dispatcher, opts...)
}

func (s *session) runText(ctx context.Context, showActions bool) error {
	if err := s.cliExecutor(showActions).Run(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}
	return nil
}

func (s *session) runVoice(ctx context.Context, showActions bool) error {
	if err := s.cliExecutor(showActions).RunVoice(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}
	return nil
}

func (s *session) runTUI(ctx context.Context) error {
	opts := []tui.Option{tui.WithLogger(s.logger)}
	if s.voice != nil {
		opts = append(opts, tui.WithVoiceSwitch(s.voice))
	}
	if err := tui.NewExecutor(s.dispatcher, s.tuiSpeaker, opts...).Run(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}
	return nil
}

// runServe serves the HTTP API and, when a microphone is configured, listens
// for spoken commands at the same time. Either one closing the session stops both.
func (s *session) runServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := server.New(s.dispatcher,
		server.WithLogger(s.logger),
		server.WithCloseHook(cancel),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, s.cfg.Server.Addr)
	})
	if s.listener != nil {
		g.Go(func() error {
			err := s.cliExecutor(false).RunVoice(gctx)
			cancel()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	fmt.Printf("voxbrowse API listening on http://%s\n", s.cfg.Server.Addr)
	return g.Wait()
}

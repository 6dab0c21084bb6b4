// Package tui provides a terminal user interface for voxbrowse built on
// Bubble Tea.
//
// The package is split into:
// - executor.go: program lifecycle and the speaker bridge
// - model.go: model state and messages
// - update.go: Update and key handling
// - view.go: rendering
// - styles.go: colors and styles
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/speech"
)

// Handler resolves and executes one utterance.
type Handler interface {
	Handle(ctx context.Context, utterance string) dispatch.Outcome
}

// Speaker shows spoken lines in the running program. Lines spoken before the
// program starts are queued and shown once it does.
type Speaker struct {
	mu      sync.Mutex
	program *tea.Program
	pending []string
}

// NewSpeaker returns a Speaker to hand to the dispatcher.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Speak implements speech.Speaker.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	p := s.program
	if p == nil {
		s.pending = append(s.pending, text)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	p.Send(spokenMsg{text: text})
	return nil
}

func (s *Speaker) attach(p *tea.Program) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
	pending := s.pending
	s.pending = nil
	return pending
}

func (s *Speaker) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = nil
}

// Executor runs the interactive interface.
type Executor struct {
	handler Handler
	speaker *Speaker
	voice   *speech.Switch
	logger  *logging.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithVoiceSwitch lets /mute and /unmute control audio output.
func WithVoiceSwitch(s *speech.Switch) Option {
	return func(e *Executor) { e.voice = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates a TUI executor. speaker must be the Speaker the
// handler speaks through.
func NewExecutor(handler Handler, speaker *Speaker, opts ...Option) *Executor {
	e := &Executor{
		handler: handler,
		speaker: speaker,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts the TUI and blocks until the user exits or the session closes.
func (e *Executor) Run(ctx context.Context) error {
	m := newModel(ctx, e.handler)
	m.voice = e.voice
	m.logger = e.logger
	m.copy = clipboard.WriteAll

	program := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	for _, line := range e.speaker.attach(program) {
		m.lastReply = line
		m.content.WriteString(assistantStyle.Render("Assistant: "+line) + "\n")
	}
	defer e.speaker.detach()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}

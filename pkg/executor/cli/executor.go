// Package cli provides the terminal front ends for voxbrowse: a typed
// command loop and a voice loop.
//
// Example usage:
//
//	d := dispatch.New(b, store, speech.NewConsole(os.Stdout))
//	executor := cli.NewExecutor(d,
//	    cli.WithShowActions(true),
//	)
//
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/speech"
)

// Handler resolves and executes one utterance.
type Handler interface {
	Handle(ctx context.Context, utterance string) dispatch.Outcome
}

const (
	// DefaultListenTimeout is how long the voice loop waits for speech to start.
	DefaultListenTimeout = 5 * time.Second
	// DefaultPollInterval is the pause between two listens.
	DefaultPollInterval = 500 * time.Millisecond
)

// Executor runs turn-by-turn sessions against a Handler. Replies are spoken by
// the handler's own speaker; the executor only prints what the user said and,
// optionally, the browser actions taken.
type Executor struct {
	handler Handler
	reader  *bufio.Reader
	writer  io.Writer
	logger  *logging.Logger

	listener      speech.Listener
	listenTimeout time.Duration
	pollInterval  time.Duration
	paused        atomic.Bool

	// voice is muted and unmuted by /mute and /unmute. Nil disables the commands.
	voice *speech.Switch

	showActions bool
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowActions prints the browser action behind each reply.
func WithShowActions(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showActions = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithListener enables RunVoice. timeout bounds each listen.
func WithListener(l speech.Listener, timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.listener = l
		if timeout > 0 {
			e.listenTimeout = timeout
		}
	}
}

// WithPollInterval sets the pause between two listens.
func WithPollInterval(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.pollInterval = d
	}
}

// WithVoiceSwitch lets /mute and /unmute control audio output.
func WithVoiceSwitch(s *speech.Switch) ExecutorOption {
	return func(e *Executor) {
		e.voice = s
	}
}

// NewExecutor creates a new CLI executor for the given handler.
func NewExecutor(handler Handler, opts ...ExecutorOption) *Executor {
	e := &Executor{
		handler:       handler,
		reader:        bufio.NewReader(os.Stdin),
		writer:        os.Stdout,
		logger:        logging.Discard(),
		listenTimeout: DefaultListenTimeout,
		pollInterval:  DefaultPollInterval,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SetListening pauses or resumes the voice loop. A paused loop keeps polling
// but does not capture audio.
func (e *Executor) SetListening(on bool) {
	e.paused.Store(!on)
}

// Listening reports whether the voice loop captures audio.
func (e *Executor) Listening() bool {
	return !e.paused.Load()
}

// Run reads typed commands until the user exits, input ends or the session closes.
func (e *Executor) Run(ctx context.Context) error {
	fmt.Fprintln(e.writer, "voxbrowse")
	fmt.Fprintln(e.writer, "Type a command and press Enter. Type 'exit' or 'quit' to end the session.")
	fmt.Fprintln(e.writer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, "> ")
		input, err := e.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "exit" || input == "quit" {
			e.handle(ctx, "close browser")
			return nil
		}

		if strings.HasPrefix(input, "/") {
			e.slashCommand(input)
			continue
		}

		if out := e.handle(ctx, input); out.Close {
			return nil
		}
	}
}

// RunVoice listens for spoken commands until the session closes or ctx is cancelled.
func (e *Executor) RunVoice(ctx context.Context) error {
	if e.listener == nil {
		return errors.New("voice mode requires a listener")
	}

	fmt.Fprintln(e.writer, "voxbrowse is listening. Say 'close browser' to end the session.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if e.paused.Load() {
			if !e.pause(ctx) {
				return ctx.Err()
			}
			continue
		}

		e.logger.Debugf("Listening...")
		text, err := e.listener.Listen(ctx, e.listenTimeout)
		switch {
		case err == nil:
			fmt.Fprintf(e.writer, "You said: %s\n", text)
			if out := e.handle(ctx, text); out.Close {
				return nil
			}
		case errors.Is(err, speech.ErrNoSpeech):
			e.logger.Debugf("No speech detected")
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			e.logger.Warnf("Error listening: %v", err)
		}

		if !e.pause(ctx) {
			return ctx.Err()
		}
	}
}

func (e *Executor) pause(ctx context.Context) bool {
	if e.pollInterval <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(e.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Executor) handle(ctx context.Context, input string) dispatch.Outcome {
	out := e.handler.Handle(ctx, input)
	if e.showActions && out.Action != "" {
		fmt.Fprintf(e.writer, "[%s]\n", out.Action)
	}
	if !out.Handled() {
		e.logger.Debugf("Command not recognized: %s", input)
	}
	return out
}

func (e *Executor) slashCommand(input string) {
	switch input {
	case "/mute", "/unmute":
		if e.voice == nil {
			fmt.Fprintln(e.writer, "Voice output is not enabled.")
			return
		}
		e.voice.SetEnabled(input == "/unmute")
		if e.voice.Enabled() {
			fmt.Fprintln(e.writer, "Voice output on.")
		} else {
			fmt.Fprintln(e.writer, "Voice output muted.")
		}
	case "/pause", "/resume":
		e.SetListening(input == "/resume")
		if e.Listening() {
			fmt.Fprintln(e.writer, "Listening resumed.")
		} else {
			fmt.Fprintln(e.writer, "Listening paused.")
		}
	default:
		fmt.Fprintf(e.writer, "Unknown command: %s (try /mute, /unmute, /pause or /resume)\n", input)
	}
}

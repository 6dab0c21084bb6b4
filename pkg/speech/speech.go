// Package speech holds the voice collaborators: speakers that turn replies
// into audio or text, and listeners that turn microphone input into utterances.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoSpeech is returned by a Listener when nothing intelligible was heard
// before the timeout. Hosts treat it as "no command", not as a failure.
var ErrNoSpeech = errors.New("speech: nothing heard")

// Speaker voices a reply. Speak blocks until the text has been delivered.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, text string) error

// Speak calls f.
func (f SpeakerFunc) Speak(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Listener captures one utterance, waiting at most timeout for speech to start.
type Listener interface {
	Listen(ctx context.Context, timeout time.Duration) (string, error)
}

// Multi speaks through every speaker in order and joins their errors.
type Multi []Speaker

// Speak implements Speaker.
func (m Multi) Speak(ctx context.Context, text string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Speak(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Switch forwards to a speaker while enabled. The zero value is disabled.
type Switch struct {
	speaker Speaker
	enabled atomic.Bool
}

// NewSwitch returns an enabled Switch around s.
func NewSwitch(s Speaker) *Switch {
	sw := &Switch{speaker: s}
	sw.enabled.Store(true)
	return sw
}

// SetEnabled turns forwarding on or off.
func (s *Switch) SetEnabled(on bool) {
	s.enabled.Store(on)
}

// Enabled reports whether replies are forwarded.
func (s *Switch) Enabled() bool {
	return s.enabled.Load()
}

// Speak implements Speaker. A disabled switch drops the text.
func (s *Switch) Speak(ctx context.Context, text string) error {
	if s.speaker == nil || !s.enabled.Load() {
		return nil
	}
	return s.speaker.Speak(ctx, text)
}

// Console writes each reply as an "Assistant:" line.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Speak implements Speaker.
func (c *Console) Speak(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "Assistant: %s\n", text)
	return err
}

// Recorder keeps every spoken line in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Speak implements Speaker.
func (r *Recorder) Speak(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
	return nil
}

// Lines returns a copy of everything spoken so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Last returns the most recent line, or "" when nothing was spoken.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

// Reset forgets every recorded line.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}

// Script is a Listener that replays canned utterances, then reports ErrNoSpeech.
type Script struct {
	mu    sync.Mutex
	items []string
}

// NewScript returns a listener that hears items in order. An empty item is heard as silence.
func NewScript(items ...string) *Script {
	return &Script{items: items}
}

// Listen implements Listener.
func (s *Script) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", ErrNoSpeech
	}
	next := s.items[0]
	s.items = s.items[1:]
	if next == "" {
		return "", ErrNoSpeech
	}
	return next, nil
}

// Remaining reports how many utterances are left.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Package dispatch turns utterances into browser actions.
//
// Handle resolves one utterance in a fixed order: a pending yes/no question,
// the stop-reading fast path, the language model (when configured), and
// finally a deterministic phrase table ending in keyword heuristics. Every
// spoken reply goes through the configured speaker and is also returned in the
// Outcome so text front ends can show it.
package dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/voxbrowse/pkg/browser"
	"github.com/entrhq/voxbrowse/pkg/command"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/entrhq/voxbrowse/pkg/intent"
	"github.com/entrhq/voxbrowse/pkg/llmintent"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/speech"
	"github.com/entrhq/voxbrowse/pkg/youtube"
)

// Defaults for the timeouts the dispatcher applies.
const (
	DefaultLLMTimeout      = 10 * time.Second
	DefaultDescribeTimeout = 30 * time.Second
	DefaultClickTimeout    = 5 * time.Second
	DefaultWaitTimeout     = 10 * time.Second
)

// Outcome reports what one utterance did.
type Outcome struct {
	// Intent is the command that was executed, or command.Unrecognized.
	Intent command.Intent
	// Spoken holds every line spoken while handling the utterance, in order.
	Spoken []string
	// Action summarizes the browser side effects, e.g. "navigate https://x.com".
	Action string
	// Close is set once the user asked to end the session.
	Close bool
}

// Reply joins the spoken lines.
func (o Outcome) Reply() string {
	return strings.Join(o.Spoken, " ")
}

// Handled reports whether the utterance resolved to a command.
func (o Outcome) Handled() bool {
	return o.Intent != nil && o.Intent.Kind() != command.KindUnrecognized
}

// turn collects the side effects of one Handle call.
type turn struct {
	spoken  []string
	actions []string
	close   bool
}

// Dispatcher owns the browser session and the conversation state.
type Dispatcher struct {
	browser    browser.Browser
	favorites  *favorites.Store
	classifier *intent.Classifier
	resolver   *llmintent.Resolver
	describer  *llmintent.Describer
	youtube    *youtube.Controller
	speaker    speech.Speaker
	logger     *logging.Logger
	session    *Session

	llmTimeout      time.Duration
	describeTimeout time.Duration
	clickTimeout    time.Duration
	waitTimeout     time.Duration
	youtubeOpts     []youtube.Option

	// mu serializes Handle; turn is only touched while it is held.
	mu   sync.Mutex
	turn *turn

	readMu     sync.Mutex
	readerDone chan struct{}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithResolver enables language model intent resolution.
func WithResolver(r *llmintent.Resolver) Option {
	return func(d *Dispatcher) { d.resolver = r }
}

// WithDescriber enables language model page descriptions.
func WithDescriber(desc *llmintent.Describer) Option {
	return func(d *Dispatcher) { d.describer = desc }
}

// WithLLMTimeout bounds each intent resolution call.
func WithLLMTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.llmTimeout = t }
}

// WithDescribeTimeout bounds each description call.
func WithDescribeTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.describeTimeout = t }
}

// WithClickTimeout bounds each click attempt.
func WithClickTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.clickTimeout = t }
}

// WithWaitTimeout bounds waits for form fields.
func WithWaitTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.waitTimeout = t }
}

// WithYouTubeOptions passes options through to the YouTube controller.
func WithYouTubeOptions(opts ...youtube.Option) Option {
	return func(d *Dispatcher) { d.youtubeOpts = append(d.youtubeOpts, opts...) }
}

// New returns a Dispatcher driving b. Replies go to speaker.
func New(b browser.Browser, store *favorites.Store, speaker speech.Speaker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		browser:         b,
		favorites:       store,
		classifier:      intent.NewClassifier(store),
		speaker:         speaker,
		logger:          logging.Discard(),
		session:         &Session{},
		llmTimeout:      DefaultLLMTimeout,
		describeTimeout: DefaultDescribeTimeout,
		clickTimeout:    DefaultClickTimeout,
		waitTimeout:     DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	ytOpts := append([]youtube.Option{youtube.WithLogger(d.logger)}, d.youtubeOpts...)
	d.youtube = youtube.New(b, speech.SpeakerFunc(d.say), ytOpts...)
	return d
}

// Favorites returns the favorites store.
func (d *Dispatcher) Favorites() *favorites.Store { return d.favorites }

// YouTube returns the YouTube controller.
func (d *Dispatcher) YouTube() *youtube.Controller { return d.youtube }

// Session returns the conversation state.
func (d *Dispatcher) Session() *Session { return d.session }

// Start opens startURL and speaks the greeting.
func (d *Dispatcher) Start(ctx context.Context, startURL string) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.turn = &turn{}
	defer func() { d.turn = nil }()

	if startURL != "" {
		if err := d.browser.Navigate(ctx, startURL); err != nil {
			d.logger.Errorf("Error opening start page %s: %v", startURL, err)
		} else {
			d.act("navigate " + startURL)
		}
	}
	_ = d.say(ctx, Greeting)
	return Outcome{Spoken: d.turn.spoken, Action: strings.Join(d.turn.actions, "; ")}
}

// Handle resolves and executes one utterance. Calls are serialized.
func (d *Dispatcher) Handle(ctx context.Context, utterance string) Outcome {
	text := intent.Normalize(utterance)
	if text == "" {
		return Outcome{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.turn = &turn{}
	defer func() { d.turn = nil }()

	d.logger.Infof("Processing command: %s", text)
	in := d.dispatch(ctx, text)
	d.logger.Debugf("Resolved %s", command.Describe(in))

	return Outcome{
		Intent: in,
		Spoken: d.turn.spoken,
		Action: strings.Join(d.turn.actions, "; "),
		Close:  d.turn.close,
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, text string) command.Intent {
	lower := strings.ToLower(text)

	if in, ok := d.answerPending(ctx, lower); ok {
		return in
	}

	if stopReadingPattern.MatchString(lower) {
		d.stopReading(ctx)
		return command.StopReading{}
	}

	if in, ok := d.resolveWithLLM(ctx, text); ok {
		return in
	}

	return d.resolveDeterministic(ctx, text, lower)
}

// answerPending consumes a yes or no for the outstanding question. A yes wins
// when both appear. Anything else leaves the question open and resolves normally.
func (d *Dispatcher) answerPending(ctx context.Context, lower string) (command.Intent, bool) {
	pending, ok := d.session.Pending()
	if !ok {
		return nil, false
	}

	switch {
	case affirmativeAnswer.MatchString(lower):
		d.session.ClearPending()
		in := command.YoutubePlay{Position: pending.Position}
		d.execute(ctx, in)
		return in, true
	case negativeAnswer.MatchString(lower):
		d.session.ClearPending()
		_ = d.say(ctx, "Video playback cancelled.")
		return command.DeclineConfirmation{}, true
	}
	return nil, false
}

func (d *Dispatcher) resolveWithLLM(ctx context.Context, text string) (command.Intent, bool) {
	if !d.resolver.Available() {
		return nil, false
	}

	lctx, cancel := context.WithTimeout(ctx, d.llmTimeout)
	in, err := d.resolver.Resolve(lctx, text)
	cancel()
	if err != nil {
		d.logger.Warnf("LLM intent resolution failed, using phrase rules: %v", err)
		return nil, false
	}

	d.logger.Infof("LLM resolved command: %s", command.Describe(in))
	if !d.execute(ctx, in) {
		d.logger.Infof("LLM command %s not executable, using phrase rules", command.Describe(in))
		return nil, false
	}
	return in, true
}

// say speaks text and records it for the current Outcome.
func (d *Dispatcher) say(ctx context.Context, text string) error {
	if d.turn != nil {
		d.turn.spoken = append(d.turn.spoken, text)
	}
	if d.speaker == nil {
		return nil
	}
	if err := d.speaker.Speak(ctx, text); err != nil {
		d.logger.Warnf("Failed to speak: %v", err)
		return err
	}
	return nil
}

func (d *Dispatcher) act(action string) {
	if d.turn != nil {
		d.turn.actions = append(d.turn.actions, action)
	}
}

// Close stops any read-aloud and quits the browser.
func (d *Dispatcher) Close() error {
	d.stopAndWait()
	return d.browser.Quit()
}

// Package youtube searches YouTube in the shared browser and keeps the most
// recent result list so videos can be described and played by position.
package youtube

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/voxbrowse/pkg/browser"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/speech"
)

const (
	searchBoxSelector = "input[name=search_query]"
	resultsSelector   = "#contents"
	clickSelector     = "#video-title"

	// DefaultSettleDelay is how long results get to render after the container appears.
	DefaultSettleDelay = 2 * time.Second
	// DefaultWaitTimeout bounds each wait for the search box and results.
	DefaultWaitTimeout = 10 * time.Second

	usageHint = "You can say 'Tell me about video number X' or 'Play video number X'."
)

// Controller owns the current result list. Every method reports progress
// through the speaker and never returns an error; the bool result tells the
// caller whether the action succeeded.
type Controller struct {
	browser     browser.Browser
	speaker     speech.Speaker
	logger      *logging.Logger
	settleDelay time.Duration
	waitTimeout time.Duration

	mu     sync.RWMutex
	videos []Video
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithSettleDelay sets the pause between the results container appearing and scraping.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) { c.settleDelay = d }
}

// WithWaitTimeout sets the element wait bound.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Controller) { c.waitTimeout = d }
}

// New returns a Controller with an empty result list.
func New(b browser.Browser, speaker speech.Speaker, opts ...Option) *Controller {
	c := &Controller{
		browser:     b,
		speaker:     speaker,
		logger:      logging.Discard(),
		settleDelay: DefaultSettleDelay,
		waitTimeout: DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Videos returns a copy of the current result list.
func (c *Controller) Videos() []Video {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Video, len(c.videos))
	copy(out, c.videos)
	return out
}

// Replace swaps in a new result list, renumbering positions densely from 1.
func (c *Controller) Replace(videos []Video) {
	next := make([]Video, len(videos))
	copy(next, videos)
	for i := range next {
		next[i].Position = i + 1
	}
	c.mu.Lock()
	c.videos = next
	c.mu.Unlock()
}

func (c *Controller) say(ctx context.Context, text string) {
	if err := c.speaker.Speak(ctx, text); err != nil {
		c.logger.Warnf("Failed to speak: %v", err)
	}
}

// Search opens YouTube if needed, submits query and caches the results.
func (c *Controller) Search(ctx context.Context, query string) bool {
	current, err := c.browser.CurrentURL(ctx)
	if err != nil || !strings.Contains(current, "youtube.com") {
		c.logger.Infof("Navigating to YouTube from %s", current)
		if err := c.browser.Navigate(ctx, Base); err != nil {
			c.logger.Errorf("Error navigating to YouTube: %v", err)
			c.say(ctx, "I couldn't open YouTube.")
			return false
		}
	}

	if err := c.browser.Fill(ctx, searchBoxSelector, query, true, c.waitTimeout); err != nil {
		c.logger.Errorf("Error searching YouTube: %v", err)
		c.say(ctx, "I had trouble searching YouTube.")
		return false
	}
	if err := c.browser.WaitFor(ctx, resultsSelector, c.waitTimeout); err != nil {
		c.logger.Errorf("Error waiting for YouTube results: %v", err)
		c.say(ctx, "I had trouble searching YouTube.")
		return false
	}

	c.say(ctx, fmt.Sprintf("Searching YouTube for %s", query))
	c.logger.Infof("Searched YouTube for: %s", query)

	if !c.settle(ctx) {
		return false
	}

	source, err := c.browser.PageSource(ctx)
	if err != nil {
		c.logger.Errorf("Error reading YouTube results: %v", err)
		c.say(ctx, "I had trouble reading the search results.")
		source = ""
	}
	videos := ParseResults(source)
	c.Replace(videos)
	c.logger.Infof("Parsed %d videos from YouTube search results", len(videos))

	if len(videos) == 0 {
		c.say(ctx, "I couldn't find any videos for your search.")
		return false
	}
	c.say(ctx, fmt.Sprintf("I found %d videos. %s", len(videos), usageHint))
	return true
}

func (c *Controller) settle(ctx context.Context) bool {
	if c.settleDelay <= 0 {
		return true
	}
	timer := time.NewTimer(c.settleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// lookup validates position against the current list, speaking the correction when it is out of range.
func (c *Controller) lookup(ctx context.Context, position int, verb string) (Video, bool) {
	videos := c.Videos()
	if len(videos) == 0 {
		c.say(ctx, fmt.Sprintf("I don't have any videos to %s. Try searching first.", verb))
		return Video{}, false
	}
	if position < 1 || position > len(videos) {
		c.say(ctx, fmt.Sprintf("Please specify a video between 1 and %d.", len(videos)))
		return Video{}, false
	}
	return videos[position-1], true
}

// Describe speaks the details of the video at position and asks whether to play it.
// The caller owns any confirmation state.
func (c *Controller) Describe(ctx context.Context, position int) bool {
	v, ok := c.lookup(ctx, position, "describe")
	if !ok {
		return false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Video %d: %s", position, v.Title)
	if v.Channel != "" {
		fmt.Fprintf(&b, ", by %s", v.Channel)
	}
	if v.Duration != "" {
		fmt.Fprintf(&b, ", %s long", v.Duration)
	}
	if v.Views != "" {
		fmt.Fprintf(&b, ", %s", v.Views)
	}
	if v.Description != "" {
		fmt.Fprintf(&b, ". Description: %s", v.Description)
	}

	c.logger.Infof("Describing video %d: %s", position, v.Title)
	c.say(ctx, b.String())
	c.say(ctx, "Would you like to play this video?")
	return true
}

// Play opens the video at position, by URL when known and otherwise by
// clicking the matching title on the results page.
func (c *Controller) Play(ctx context.Context, position int) bool {
	v, ok := c.lookup(ctx, position, "play")
	if !ok {
		return false
	}

	if v.URL != "" {
		if err := c.browser.Navigate(ctx, v.URL); err != nil {
			c.logger.Errorf("Error playing video %d: %v", position, err)
			c.say(ctx, fmt.Sprintf("I had trouble playing video %d.", position))
			return false
		}
		c.logger.Infof("Playing video %d: %s", position, v.Title)
		c.say(ctx, fmt.Sprintf("Playing video: %s", v.Title))
		return true
	}

	if err := c.browser.ClickNth(ctx, clickSelector, position-1, c.waitTimeout); err != nil {
		c.logger.Warnf("Could not click video %d: %v", position, err)
		c.say(ctx, "I couldn't find a way to play this video.")
		return false
	}
	c.logger.Infof("Playing video %d by clicking: %s", position, v.Title)
	c.say(ctx, fmt.Sprintf("Playing video: %s", v.Title))
	return true
}

// Summarize speaks the result count and the first five titles.
func (c *Controller) Summarize(ctx context.Context) bool {
	videos := c.Videos()
	if len(videos) == 0 {
		c.say(ctx, "I don't have any videos to summarize. Try searching first.")
		return false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d videos. ", len(videos))
	for i, v := range videos {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "Video %d: %s. ", i+1, v.Title)
	}
	if len(videos) > 5 {
		fmt.Fprintf(&b, "And %d more videos.", len(videos)-5)
	}

	c.say(ctx, strings.TrimSpace(b.String()))
	c.say(ctx, usageHint)
	return true
}

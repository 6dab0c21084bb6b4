// Package browser is the automation collaborator the dispatcher drives.
//
// The dispatcher only ever sees the Browser interface. Two engines implement
// it: Playwright (the default) and Rod with stealth patches. Guard wraps either
// one with a host deny-list.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/voxbrowse/pkg/logging"
)

var (
	// ErrNotFound is returned when no element matched a locator before the timeout.
	ErrNotFound = errors.New("browser: element not found")

	// ErrBlocked is returned by Guard when a navigation targets a denied host.
	ErrBlocked = errors.New("browser: host blocked by policy")

	// ErrClosed is returned for calls made after Quit.
	ErrClosed = errors.New("browser: closed")
)

// Default settings shared by the engines.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// Strategy selects how a Locator finds its element.
type Strategy int

const (
	// StrategyCSS matches a CSS selector.
	StrategyCSS Strategy = iota
	// StrategyLinkText matches an anchor whose text contains the value.
	StrategyLinkText
	// StrategyButtonText matches a button whose text contains the value.
	StrategyButtonText
	// StrategyAnyText matches any element whose text contains the value.
	StrategyAnyText
)

func (s Strategy) String() string {
	switch s {
	case StrategyCSS:
		return "css"
	case StrategyLinkText:
		return "link text"
	case StrategyButtonText:
		return "button text"
	case StrategyAnyText:
		return "any text"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Locator identifies an element on the current page.
// Text strategies match case-insensitively on a substring.
type Locator struct {
	Strategy Strategy
	Value    string
}

// CSS returns a selector locator.
func CSS(selector string) Locator { return Locator{Strategy: StrategyCSS, Value: selector} }

// LinkText returns a partial link text locator.
func LinkText(text string) Locator { return Locator{Strategy: StrategyLinkText, Value: text} }

// ButtonText returns a button text locator.
func ButtonText(text string) Locator { return Locator{Strategy: StrategyButtonText, Value: text} }

// AnyText returns a locator matching any element by text.
func AnyText(text string) Locator { return Locator{Strategy: StrategyAnyText, Value: text} }

func (l Locator) String() string {
	return fmt.Sprintf("%s %q", l.Strategy, l.Value)
}

// Browser is the set of page operations the assistant needs.
//
// Implementations must be safe for use by one command goroutine plus the
// read-aloud goroutine, which only calls PageSource.
type Browser interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// ExecuteScript runs js as the body of a function in the page and returns its result.
	ExecuteScript(ctx context.Context, js string) (any, error)

	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Refresh(ctx context.Context) error

	// CurrentURL returns the address of the current page.
	CurrentURL(ctx context.Context) (string, error)

	// PageSource returns the serialized DOM of the current page.
	PageSource(ctx context.Context) (string, error)

	// Click clicks the first element matched by loc once it becomes clickable.
	// It returns an error wrapping ErrNotFound when nothing matched within timeout.
	Click(ctx context.Context, loc Locator, timeout time.Duration) error

	// ClickNth clicks the n-th (0-based) element matching selector.
	ClickNth(ctx context.Context, selector string, n int, timeout time.Duration) error

	// Fill replaces the value of the input matching selector, pressing Enter when submit is set.
	Fill(ctx context.Context, selector, value string, submit bool, timeout time.Duration) error

	// WaitFor blocks until an element matches selector.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// Quit closes the browser and releases the engine.
	Quit() error
}

// Options configures an engine at launch.
type Options struct {
	Headless       bool
	DefaultTimeout time.Duration
	ViewportWidth  int
	ViewportHeight int
	Logger         *logging.Logger
}

func (o *Options) defaults() {
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = DefaultTimeout
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = DefaultViewportHeight
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
}

// ClickStrategies is the order in which ClickByText tries locators.
var ClickStrategies = []Strategy{StrategyLinkText, StrategyButtonText, StrategyAnyText}

// ClickByText clicks the element best matching text: a partial link text match
// first, then a button, then any element. Each attempt waits up to timeout.
// It returns the strategy that succeeded, or an error joining every failure.
func ClickByText(ctx context.Context, b Browser, text string, timeout time.Duration) (Strategy, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty click target", ErrNotFound)
	}

	var errs []error
	for _, s := range ClickStrategies {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		err := b.Click(ctx, Locator{Strategy: s, Value: text}, timeout)
		if err == nil {
			return s, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s, err))
	}
	return 0, fmt.Errorf("click %q: %w", text, errors.Join(errs...))
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

// functionBody wraps a script body so both engines evaluate it the same way.
func functionBody(js string) string {
	return "() => { " + js + " }"
}

// Package browsertest provides an in-memory browser.Browser for tests.
package browsertest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/entrhq/voxbrowse/pkg/browser"
)

// Call records one method invocation.
type Call struct {
	Method string
	Args   []string
}

// Browser records every call and serves canned pages.
// The zero value is ready to use and starts on about:blank.
type Browser struct {
	mu sync.Mutex

	// Pages maps a URL to the source served once it is the current page.
	Pages map[string]string
	// Source is served when the current URL has no entry in Pages.
	Source string

	// ClickFunc decides the outcome of Click. Nil means every click succeeds.
	ClickFunc func(browser.Locator) error
	// ClickNthErr, FillErr, WaitErr and NavigateErr are returned by those methods when set.
	ClickNthErr error
	FillErr     error
	WaitErr     error
	NavigateErr error
	// ScriptResult is returned by ExecuteScript.
	ScriptResult any

	history []string
	index   int
	calls   []Call
	closed  bool
}

// New returns a fake browser already showing startURL.
func New(startURL string) *Browser {
	return &Browser{history: []string{startURL}}
}

func (b *Browser) record(method string, args ...string) {
	b.calls = append(b.calls, Call{Method: method, Args: args})
}

func (b *Browser) url() string {
	if len(b.history) == 0 {
		return "about:blank"
	}
	return b.history[b.index]
}

// Navigate implements browser.Browser.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Navigate", url)
	if b.closed {
		return browser.ErrClosed
	}
	if b.NavigateErr != nil {
		return b.NavigateErr
	}
	if len(b.history) > 0 {
		b.history = b.history[:b.index+1]
	}
	b.history = append(b.history, url)
	b.index = len(b.history) - 1
	return nil
}

// ExecuteScript implements browser.Browser.
func (b *Browser) ExecuteScript(ctx context.Context, js string) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("ExecuteScript", js)
	if b.closed {
		return nil, browser.ErrClosed
	}
	return b.ScriptResult, nil
}

// Back implements browser.Browser.
func (b *Browser) Back(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Back")
	if b.index > 0 {
		b.index--
	}
	return nil
}

// Forward implements browser.Browser.
func (b *Browser) Forward(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Forward")
	if b.index < len(b.history)-1 {
		b.index++
	}
	return nil
}

// Refresh implements browser.Browser.
func (b *Browser) Refresh(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Refresh")
	return nil
}

// CurrentURL implements browser.Browser.
func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url(), nil
}

// PageSource implements browser.Browser.
func (b *Browser) PageSource(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if src, ok := b.Pages[b.url()]; ok {
		return src, nil
	}
	return b.Source, nil
}

// Click implements browser.Browser.
func (b *Browser) Click(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Click", loc.Strategy.String(), loc.Value)
	if b.ClickFunc != nil {
		return b.ClickFunc(loc)
	}
	return nil
}

// ClickNth implements browser.Browser.
func (b *Browser) ClickNth(ctx context.Context, selector string, n int, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("ClickNth", selector, strconv.Itoa(n))
	return b.ClickNthErr
}

// Fill implements browser.Browser.
func (b *Browser) Fill(ctx context.Context, selector, value string, submit bool, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Fill", selector, value, strconv.FormatBool(submit))
	return b.FillErr
}

// WaitFor implements browser.Browser.
func (b *Browser) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("WaitFor", selector)
	return b.WaitErr
}

// Quit implements browser.Browser.
func (b *Browser) Quit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Quit")
	b.closed = true
	return nil
}

// SetSource replaces the fallback page source.
func (b *Browser) SetSource(src string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Source = src
}

// Calls returns a copy of every recorded call.
func (b *Browser) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallsTo returns the recorded calls of one method.
func (b *Browser) CallsTo(method string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Navigations returns every URL passed to Navigate.
func (b *Browser) Navigations() []string {
	var out []string
	for _, c := range b.CallsTo("Navigate") {
		out = append(out, c.Args[0])
	}
	return out
}

// Scripts returns every script passed to ExecuteScript.
func (b *Browser) Scripts() []string {
	var out []string
	for _, c := range b.CallsTo("ExecuteScript") {
		out = append(out, c.Args[0])
	}
	return out
}

// Closed reports whether Quit was called.
func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// ClickOnly returns a ClickFunc that succeeds only for the given strategy.
func ClickOnly(s browser.Strategy) func(browser.Locator) error {
	return func(loc browser.Locator) error {
		if loc.Strategy == s {
			return nil
		}
		return fmt.Errorf("%w: %s", browser.ErrNotFound, loc)
	}
}

var _ browser.Browser = (*Browser)(nil)

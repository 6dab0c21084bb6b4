package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Rod drives a local Chrome over CDP with stealth patches applied to the page.
type Rod struct {
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	timeout time.Duration
	logger  *logging.Logger
	closed  bool
}

// LaunchRod starts Chrome through the rod launcher and opens a stealth page.
func LaunchRod(opts Options) (*Rod, error) {
	opts.defaults()

	l := launcher.New().
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", opts.ViewportWidth, opts.ViewportHeight))

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	opts.Logger.Infof("Launched Chrome via rod (headless=%t)", opts.Headless)
	return &Rod{
		browser: b,
		lnch:    l,
		page:    page,
		timeout: opts.DefaultTimeout,
		logger:  opts.Logger,
	}, nil
}

func (r *Rod) current(ctx context.Context, timeout time.Duration) (*rod.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	return r.page.Context(ctx).Timeout(timeout), nil
}

// Navigate implements Browser.
func (r *Rod) Navigate(ctx context.Context, url string) error {
	page, err := r.current(ctx, r.timeout)
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		r.logger.Warnf("Wait load timeout for %s: %v", url, err)
	}
	return nil
}

// ExecuteScript implements Browser.
func (r *Rod) ExecuteScript(ctx context.Context, js string) (any, error) {
	page, err := r.current(ctx, r.timeout)
	if err != nil {
		return nil, err
	}
	res, err := page.Eval(functionBody(js))
	if err != nil {
		return nil, fmt.Errorf("browser: eval: %w", err)
	}
	return res.Value.Val(), nil
}

// Back implements Browser.
func (r *Rod) Back(ctx context.Context) error {
	page, err := r.current(ctx, r.timeout)
	if err != nil {
		return err
	}
	if err := page.NavigateBack(); err != nil {
		return fmt.Errorf("browser: back: %w", err)
	}
	return nil
}

// Forward implements Browser.
func (r *Rod) Forward(ctx context.Context) error {
	page, err := r.current(ctx, r.timeout)
	if err != nil {
		return err
	}
	if err := page.NavigateForward(); err != nil {
		return fmt.Errorf("browser: forward: %w", err)
	}
	return nil
}

// Refresh implements Browser.
func (r *Rod) Refresh(ctx context.Context) error {
	page, err := r.current(ctx, r.timeout)
	if err != nil {
		return err
	}
	if err := page.Reload(); err != nil {
		return fmt.Errorf("browser: reload: %w", err)
	}
	return nil
}

// CurrentURL implements Browser.
func (r *Rod) CurrentURL(ctx context.Context) (string, error) {
	page, err := r.current(ctx, r.timeout)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

// PageSource implements Browser.
func (r *Rod) PageSource(ctx context.Context) (string, error) {
	page, err := r.current(ctx, r.timeout)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return html, nil
}

func (r *Rod) find(page *rod.Page, loc Locator) (*rod.Element, error) {
	switch loc.Strategy {
	case StrategyLinkText:
		return page.ElementR("a", textRegex(loc.Value))
	case StrategyButtonText:
		return page.ElementR(buttonSelector, textRegex(loc.Value))
	case StrategyAnyText:
		return page.ElementX(containsTextXPath(loc.Value))
	default:
		return page.Element(loc.Value)
	}
}

// Click implements Browser.
func (r *Rod) Click(ctx context.Context, loc Locator, timeout time.Duration) error {
	page, err := r.current(ctx, timeout)
	if err != nil {
		return err
	}
	el, err := r.find(page, loc)
	if err != nil {
		return r.wrap("click", loc.String(), err)
	}
	return r.wrap("click", loc.String(), el.Click(proto.InputMouseButtonLeft, 1))
}

// ClickNth implements Browser.
func (r *Rod) ClickNth(ctx context.Context, selector string, n int, timeout time.Duration) error {
	page, err := r.current(ctx, timeout)
	if err != nil {
		return err
	}
	target := fmt.Sprintf("%s #%d", selector, n)

	// Element waits for the first match; Elements does not wait.
	if _, err := page.Element(selector); err != nil {
		return r.wrap("click", target, err)
	}
	els, err := page.Elements(selector)
	if err != nil {
		return r.wrap("click", target, err)
	}
	if n < 0 || n >= len(els) {
		return fmt.Errorf("%w: click %s (only %d present)", ErrNotFound, target, len(els))
	}
	return r.wrap("click", target, els[n].Click(proto.InputMouseButtonLeft, 1))
}

// Fill implements Browser.
func (r *Rod) Fill(ctx context.Context, selector, value string, submit bool, timeout time.Duration) error {
	page, err := r.current(ctx, timeout)
	if err != nil {
		return err
	}
	el, err := page.Element(selector)
	if err != nil {
		return r.wrap("fill", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return r.wrap("fill", selector, err)
	}
	if err := el.Input(value); err != nil {
		return r.wrap("fill", selector, err)
	}
	if submit {
		if err := el.Type(input.Enter); err != nil {
			return fmt.Errorf("browser: submit: %w", err)
		}
	}
	return nil
}

// WaitFor implements Browser.
func (r *Rod) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	page, err := r.current(ctx, timeout)
	if err != nil {
		return err
	}
	_, err = page.Element(selector)
	return r.wrap("wait", selector, err)
}

// Quit implements Browser. Safe to call more than once.
func (r *Rod) Quit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.browser.Close()
	r.lnch.Cleanup()
	r.logger.Infof("Rod browser closed")
	if err != nil {
		return fmt.Errorf("browser: close: %w", err)
	}
	return nil
}

func (r *Rod) wrap(op, target string, err error) error {
	if err == nil {
		return nil
	}
	var notFound *rod.ElementNotFoundError
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, op, target)
	}
	return fmt.Errorf("browser: %s %s: %w", op, target, err)
}

// textRegex builds the case-insensitive JS regex literal rod's ElementR expects.
func textRegex(text string) string {
	return "/" + regexp.QuoteMeta(text) + "/i"
}

const (
	upperAlpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerAlpha = "abcdefghijklmnopqrstuvwxyz"
)

// containsTextXPath matches the innermost elements whose own text contains text, ignoring case.
func containsTextXPath(text string) string {
	return fmt.Sprintf(
		"//body//*[not(self::script or self::style)][contains(translate(text(), '%s', '%s'), %s)]",
		upperAlpha, lowerAlpha, xpathLiteral(strings.ToLower(text)),
	)
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+part+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

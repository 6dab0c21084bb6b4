package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

const buttonSelector = "button, [role=button], input[type=submit], input[type=button]"

// Playwright drives Chromium through playwright-go.
type Playwright struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration
	logger  *logging.Logger
	closed  bool
}

// LaunchPlaywright installs the driver if needed, launches Chromium and opens a blank page.
func LaunchPlaywright(opts Options) (*Playwright, error) {
	opts.defaults()

	// Keep driver output away from the terminal front ends.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(millis(opts.DefaultTimeout))

	opts.Logger.Infof("Launched Chromium via playwright (headless=%t)", opts.Headless)
	return &Playwright{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		timeout: opts.DefaultTimeout,
		logger:  opts.Logger,
	}, nil
}

func (p *Playwright) current() (playwright.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	return p.page, nil
}

// Navigate implements Browser.
func (p *Playwright) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := p.current()
	if err != nil {
		return err
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(millis(p.timeout)),
	}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// ExecuteScript implements Browser.
func (p *Playwright) ExecuteScript(ctx context.Context, js string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := p.current()
	if err != nil {
		return nil, err
	}
	result, err := page.Evaluate(functionBody(js))
	if err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}
	return result, nil
}

// Back implements Browser.
func (p *Playwright) Back(ctx context.Context) error {
	page, err := p.current()
	if err != nil {
		return err
	}
	if _, err := page.GoBack(); err != nil {
		return fmt.Errorf("back failed: %w", err)
	}
	return nil
}

// Forward implements Browser.
func (p *Playwright) Forward(ctx context.Context) error {
	page, err := p.current()
	if err != nil {
		return err
	}
	if _, err := page.GoForward(); err != nil {
		return fmt.Errorf("forward failed: %w", err)
	}
	return nil
}

// Refresh implements Browser.
func (p *Playwright) Refresh(ctx context.Context) error {
	page, err := p.current()
	if err != nil {
		return err
	}
	if _, err := page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// CurrentURL implements Browser.
func (p *Playwright) CurrentURL(ctx context.Context) (string, error) {
	page, err := p.current()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}

// PageSource implements Browser.
func (p *Playwright) PageSource(ctx context.Context) (string, error) {
	page, err := p.current()
	if err != nil {
		return "", err
	}
	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("content failed: %w", err)
	}
	return html, nil
}

func (p *Playwright) locate(page playwright.Page, loc Locator) playwright.Locator {
	switch loc.Strategy {
	case StrategyLinkText:
		return page.Locator("a", playwright.PageLocatorOptions{HasText: loc.Value}).First()
	case StrategyButtonText:
		return page.Locator(buttonSelector, playwright.PageLocatorOptions{HasText: loc.Value}).First()
	case StrategyAnyText:
		return page.GetByText(loc.Value).First()
	default:
		return page.Locator(loc.Value).First()
	}
}

// Click implements Browser.
func (p *Playwright) Click(ctx context.Context, loc Locator, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := p.current()
	if err != nil {
		return err
	}
	err = p.locate(page, loc).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	return p.wrap("click", loc.String(), err)
}

// ClickNth implements Browser.
func (p *Playwright) ClickNth(ctx context.Context, selector string, n int, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := p.current()
	if err != nil {
		return err
	}
	err = page.Locator(selector).Nth(n).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	return p.wrap("click", fmt.Sprintf("%s #%d", selector, n), err)
}

// Fill implements Browser.
func (p *Playwright) Fill(ctx context.Context, selector, value string, submit bool, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := p.current()
	if err != nil {
		return err
	}
	input := page.Locator(selector).First()
	if err := input.Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(millis(timeout)),
	}); err != nil {
		return p.wrap("fill", selector, err)
	}
	if submit {
		if err := input.Press("Enter"); err != nil {
			return fmt.Errorf("submit failed: %w", err)
		}
	}
	return nil
}

// WaitFor implements Browser.
func (p *Playwright) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := p.current()
	if err != nil {
		return err
	}
	err = page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	return p.wrap("wait", selector, err)
}

// Quit implements Browser. Safe to call more than once.
func (p *Playwright) Quit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	// Ignore errors, continue cleanup
	_ = p.page.Close()
	_ = p.context.Close()
	_ = p.browser.Close()
	if err := p.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	p.logger.Infof("Playwright browser closed")
	return nil
}

func (p *Playwright) wrap(op, target string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, op, target)
	}
	return fmt.Errorf("%s %s failed: %w", op, target, err)
}

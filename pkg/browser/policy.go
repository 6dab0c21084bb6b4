package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// Policy decides which hosts the assistant may navigate to.
// Patterns are globs over the lower-cased host with '.' as separator,
// so "*.example.com" matches one label and "**.example.com" any depth.
type Policy struct {
	patterns []string
	denied   []glob.Glob
}

// NewPolicy compiles the denied host patterns.
func NewPolicy(denied []string) (*Policy, error) {
	p := &Policy{}
	for _, pattern := range denied {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid blocked host pattern '%s': %w", pattern, err)
		}
		p.patterns = append(p.patterns, pattern)
		p.denied = append(p.denied, g)
	}
	return p, nil
}

// Allowed reports whether rawURL may be opened. URLs without a host
// (about:blank, data:) are allowed.
func (p *Policy) Allowed(rawURL string) bool {
	if p == nil || len(p.denied) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return true
	}
	for _, g := range p.denied {
		if g.Match(host) {
			return false
		}
	}
	return true
}

// Patterns returns the compiled patterns in configuration order.
func (p *Policy) Patterns() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.patterns))
	copy(out, p.patterns)
	return out
}

// Guard returns a Browser that refuses navigations the policy denies.
// A nil or empty policy returns b unchanged.
func Guard(b Browser, p *Policy) Browser {
	if p == nil || len(p.denied) == 0 {
		return b
	}
	return &guarded{Browser: b, policy: p}
}

type guarded struct {
	Browser
	policy *Policy
}

func (g *guarded) Navigate(ctx context.Context, rawURL string) error {
	if !g.policy.Allowed(rawURL) {
		return fmt.Errorf("%w: %s", ErrBlocked, rawURL)
	}
	return g.Browser.Navigate(ctx, rawURL)
}

// Clicks can navigate too; check where they landed and step back off a denied host.
func (g *guarded) Click(ctx context.Context, loc Locator, timeout time.Duration) error {
	if err := g.Browser.Click(ctx, loc, timeout); err != nil {
		return err
	}
	return g.checkLanding(ctx)
}

func (g *guarded) ClickNth(ctx context.Context, selector string, n int, timeout time.Duration) error {
	if err := g.Browser.ClickNth(ctx, selector, n, timeout); err != nil {
		return err
	}
	return g.checkLanding(ctx)
}

func (g *guarded) checkLanding(ctx context.Context) error {
	current, err := g.Browser.CurrentURL(ctx)
	if err != nil || g.policy.Allowed(current) {
		return nil
	}
	_ = g.Browser.Back(ctx)
	return fmt.Errorf("%w: %s", ErrBlocked, current)
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/entrhq/voxbrowse/pkg/browser"
	"github.com/entrhq/voxbrowse/pkg/command"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/entrhq/voxbrowse/pkg/page"
)

// execute runs in and reports whether it was executable. Intents missing a
// required parameter, naming an unknown category or left unrecognized are
// not; everything else counts as handled even when the browser failed, since
// the user has already been told.
func (d *Dispatcher) execute(ctx context.Context, in command.Intent) bool {
	switch v := in.(type) {
	case command.OpenWebsite:
		if strings.TrimSpace(v.Target) == "" {
			return false
		}
		d.openWebsite(ctx, v.Target)

	case command.Search:
		if strings.TrimSpace(v.Query) == "" {
			return false
		}
		d.search(ctx, v.Query)

	case command.Scroll:
		if v.Direction != command.DirectionUp && v.Direction != command.DirectionDown {
			return false
		}
		d.scroll(ctx, v.Direction)

	case command.Click:
		if strings.TrimSpace(v.Target) == "" {
			return false
		}
		d.click(ctx, v.Target)

	case command.Navigate:
		if v.Direction != command.DirectionBack && v.Direction != command.DirectionForward {
			return false
		}
		d.navigate(ctx, v.Direction)

	case command.Refresh:
		if err := d.browser.Refresh(ctx); err != nil {
			d.logger.Errorf("Error refreshing page: %v", err)
			return true
		}
		d.act("refresh")

	case command.ReadAloud:
		d.startReading(ctx)

	case command.StopReading:
		d.stopReading(ctx)

	case command.SetFavorite:
		if v.Category == "" || v.Site == "" {
			return false
		}
		d.setFavorite(ctx, v.Category, v.Site)

	case command.OpenCategory:
		target, ok := d.favorites.Get(v.Category)
		if !ok {
			return false
		}
		_ = d.say(ctx, "Opening "+v.Category)
		d.goTo(ctx, target)

	case command.ListFavorites:
		_ = d.say(ctx, "Your favorites are: "+d.favorites.ListAll())

	case command.CloseBrowser:
		d.closeBrowser(ctx)

	case command.DescribePage:
		d.describePage(ctx)

	case command.DescribeContent:
		if v.Content == "" {
			return false
		}
		d.describeContent(ctx, v.Content)

	case command.YoutubeSearch:
		if strings.TrimSpace(v.Query) == "" {
			return false
		}
		d.youtube.Search(ctx, v.Query)

	case command.YoutubeDescribe:
		if v.Position <= 0 {
			return false
		}
		if d.youtube.Describe(ctx, v.Position) {
			d.session.SetPending(Confirmation{Action: command.KindYoutubePlay, Position: v.Position})
		}

	case command.YoutubePlay:
		if v.Position <= 0 {
			return false
		}
		d.youtube.Play(ctx, v.Position)

	case command.YoutubeList:
		d.youtube.Summarize(ctx)

	case command.Help:
		_ = d.say(ctx, helpText)

	case command.DeclineConfirmation:
		d.session.ClearPending()
		_ = d.say(ctx, "Video playback cancelled.")

	default:
		return false
	}
	return true
}

// resolveTarget turns what the user said after "open" into a URL.
func (d *Dispatcher) resolveTarget(target string) string {
	target = strings.TrimSpace(target)
	if favorites.HasScheme(target) {
		return target
	}
	if u, ok := d.favorites.Get(strings.ToLower(target)); ok {
		return u
	}
	if !strings.Contains(target, " ") {
		if strings.Contains(target, ".") {
			return "https://" + target
		}
		return "https://" + target + ".com"
	}
	return searchEngineURL + "/search?q=" + url.QueryEscape(target)
}

func (d *Dispatcher) openWebsite(ctx context.Context, target string) {
	u := d.resolveTarget(target)
	d.logger.Infof("Opening website: %s", u)
	d.goTo(ctx, u)
}

// goTo navigates and reports failures aloud.
func (d *Dispatcher) goTo(ctx context.Context, u string) bool {
	if err := d.browser.Navigate(ctx, u); err != nil {
		d.logger.Errorf("Error opening %s: %v", u, err)
		if errors.Is(err, browser.ErrBlocked) {
			_ = d.say(ctx, "That website is blocked.")
		} else {
			_ = d.say(ctx, "I couldn't open that website.")
		}
		return false
	}
	d.act("navigate " + u)
	return true
}

func (d *Dispatcher) search(ctx context.Context, query string) {
	current, err := d.browser.CurrentURL(ctx)
	if err != nil || !strings.HasPrefix(current, searchEngineURL) {
		if !d.goTo(ctx, searchEngineURL) {
			return
		}
	}
	if err := d.browser.Fill(ctx, "[name=q]", query, true, d.waitTimeout); err != nil {
		d.logger.Errorf("Error searching for %s: %v", query, err)
		_ = d.say(ctx, "I had trouble searching for that.")
		return
	}
	d.logger.Infof("Searched for: %s", query)
	d.act("search " + query)
}

func (d *Dispatcher) scroll(ctx context.Context, direction string) {
	step := scrollStep
	if direction == command.DirectionUp {
		step = -scrollStep
	}
	if _, err := d.browser.ExecuteScript(ctx, fmt.Sprintf("window.scrollBy(0, %d);", step)); err != nil {
		d.logger.Errorf("Error scrolling %s: %v", direction, err)
		return
	}
	d.act("scroll " + direction)
}

// click tries link, button and then any element. Failures are only logged.
func (d *Dispatcher) click(ctx context.Context, target string) {
	strategy, err := browser.ClickByText(ctx, d.browser, target, d.clickTimeout)
	if err != nil {
		d.logger.Warnf("Could not find element to click: %s: %v", target, err)
		return
	}
	d.logger.Infof("Clicked %s by %s", target, strategy)
	d.act(fmt.Sprintf("click %q", target))
}

func (d *Dispatcher) navigate(ctx context.Context, direction string) {
	var err error
	if direction == command.DirectionBack {
		err = d.browser.Back(ctx)
	} else {
		err = d.browser.Forward(ctx)
	}
	if err != nil {
		d.logger.Errorf("Error navigating %s: %v", direction, err)
		return
	}
	d.act(direction)
}

func (d *Dispatcher) setFavorite(ctx context.Context, category, site string) {
	u, err := d.favorites.Set(category, site)
	if err != nil {
		d.logger.Errorf("Error saving favorite %s: %v", category, err)
		_ = d.say(ctx, fmt.Sprintf("Set %s favorite to %s, but I couldn't save it.", category, u))
		return
	}
	_ = d.say(ctx, fmt.Sprintf("Set %s favorite to %s", category, u))
	d.act("set favorite " + category)
}

func (d *Dispatcher) closeBrowser(ctx context.Context) {
	d.turn.close = true
	d.stopAndWait()
	_ = d.say(ctx, Farewell)
	if err := d.browser.Quit(); err != nil {
		d.logger.Errorf("Error closing browser: %v", err)
	}
	d.act("close")
}

// currentPage extracts the structured content of the current page.
func (d *Dispatcher) currentPage(ctx context.Context) (*page.Info, error) {
	source, err := d.browser.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	current, err := d.browser.CurrentURL(ctx)
	if err != nil {
		current = ""
	}
	return page.Extract(source, current), nil
}

func (d *Dispatcher) describePage(ctx context.Context) {
	_ = d.say(ctx, "Analyzing the page content...")

	info, err := d.currentPage(ctx)
	if err != nil {
		d.logger.Errorf("Error reading page: %v", err)
		_ = d.say(ctx, "I had trouble analyzing this page.")
		return
	}

	if d.describer.Available() {
		dctx, cancel := context.WithTimeout(ctx, d.describeTimeout)
		desc, err := d.describer.DescribePage(dctx, info)
		cancel()
		if err == nil {
			_ = d.say(ctx, desc)
			return
		}
		d.logger.Warnf("LLM page description failed, using template: %v", err)
	}
	_ = d.say(ctx, page.DescribeTemplate(info))
}

func (d *Dispatcher) describeContent(ctx context.Context, name string) {
	kind, ok := page.ParseKind(name)
	if !ok {
		_ = d.say(ctx, fmt.Sprintf("I don't know how to describe %s", name))
		return
	}

	info, err := d.currentPage(ctx)
	if err != nil {
		d.logger.Errorf("Error reading page: %v", err)
		_ = d.say(ctx, "I had trouble analyzing this page.")
		return
	}
	if len(info.Items(kind)) == 0 {
		_ = d.say(ctx, fmt.Sprintf("I didn't find any %s on this page.", kind))
		return
	}

	if d.describer.Available() {
		dctx, cancel := context.WithTimeout(ctx, d.describeTimeout)
		desc, err := d.describer.DescribeContent(dctx, kind, info)
		cancel()
		if err == nil {
			_ = d.say(ctx, desc)
			return
		}
		d.logger.Warnf("LLM %s description failed, using template: %v", kind, err)
	}
	_ = d.say(ctx, page.DescribeKindTemplate(kind, info))
}

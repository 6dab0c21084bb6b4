package dispatch

import (
	"context"
	"strconv"
	"strings"

	"github.com/entrhq/voxbrowse/pkg/command"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/entrhq/voxbrowse/pkg/intent"
)

// resolveDeterministic walks the phrase table top to bottom. The first rule
// that matches decides the intent, which is then executed.
func (d *Dispatcher) resolveDeterministic(ctx context.Context, text, lower string) command.Intent {
	in := d.match(text, lower)
	if in.Kind() == command.KindUnrecognized {
		d.logger.Infof("Command not recognized: %s", text)
		return in
	}
	d.execute(ctx, in)
	return in
}

func (d *Dispatcher) match(text, lower string) command.Intent {
	if containsAny(lower, readAloudPhrases) {
		return command.ReadAloud{}
	}

	for _, re := range youtubeSearchPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if q := trimUtterance(m[1]); q != "" {
				return command.YoutubeSearch{Query: q}
			}
		}
	}

	if m := videoPositionPattern.FindStringSubmatch(lower); m != nil {
		pos := videoPosition(m[1])
		if containsAny(lower, describeVideoWords) {
			return command.YoutubeDescribe{Position: pos}
		}
		return command.YoutubePlay{Position: pos}
	}

	if containsAny(lower, listVideoPhrases) {
		return command.YoutubeList{}
	}

	if favorites.IsSetCommand(lower) {
		if category, site, ok := favorites.ParseSetCommand(lower); ok {
			return command.SetFavorite{Category: category, Site: site}
		}
	}

	if category, ok := favorites.ParseOpenCategory(lower); ok {
		if _, exists := d.favorites.Get(category); exists {
			return command.OpenCategory{Category: category}
		}
	}

	if favorites.IsListCommand(lower) {
		return command.ListFavorites{}
	}

	if strings.Contains(lower, "open") {
		if m := openPattern.FindStringSubmatch(lower); m != nil {
			if target := trimUtterance(m[1]); target != "" {
				return command.OpenWebsite{Target: target}
			}
		}
	} else if strings.Contains(lower, "go to") {
		if m := goToPattern.FindStringSubmatch(lower); m != nil {
			if target := trimUtterance(m[1]); target != "" {
				return command.OpenWebsite{Target: target}
			}
		}
	}

	if strings.Contains(lower, "scroll") {
		switch {
		case strings.Contains(lower, "down"):
			return command.Scroll{Direction: command.DirectionDown}
		case strings.Contains(lower, "up"):
			return command.Scroll{Direction: command.DirectionUp}
		}
		return command.Unrecognized{Text: text}
	}

	if strings.Contains(lower, "click") {
		if target := trimUtterance(clickPrefix.ReplaceAllString(text, "")); target != "" {
			return command.Click{Target: target}
		}
		return command.Unrecognized{Text: text}
	}

	if strings.Contains(lower, "back") || strings.Contains(lower, "previous page") {
		return command.Navigate{Direction: command.DirectionBack}
	}
	if strings.Contains(lower, "forward") || strings.Contains(lower, "next page") {
		return command.Navigate{Direction: command.DirectionForward}
	}

	if strings.Contains(lower, "search for") {
		if q := trimUtterance(strings.ReplaceAll(lower, "search for", "")); q != "" {
			return command.Search{Query: q}
		}
	}

	if strings.Contains(lower, "refresh") || strings.Contains(lower, "reload") {
		return command.Refresh{}
	}

	if strings.Contains(lower, "close browser") || strings.Contains(lower, "exit") {
		return command.CloseBrowser{}
	}

	if containsAny(lower, describePagePhrases) {
		return command.DescribePage{}
	}

	for _, p := range contentPatterns {
		if p.re.MatchString(lower) {
			return command.DescribeContent{Content: p.kind}
		}
	}

	if containsAny(lower, helpPhrases) {
		return command.Help{}
	}

	if category, ok := d.classifier.Classify(lower); ok {
		if _, exists := d.favorites.Get(category); exists {
			d.logger.Infof("Heuristics matched %s intent, opening %s", intent.Intent(category), category)
			return command.OpenCategory{Category: category}
		}
		d.logger.Debugf("Heuristics chose %s intent (category %q) but no favorite is set", intent.Intent(category), category)
	}

	return command.Unrecognized{Text: text}
}

func videoPosition(s string) int {
	if n, ok := videoPositions[strings.ToLower(s)]; ok {
		return n
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

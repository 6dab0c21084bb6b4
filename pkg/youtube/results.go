package youtube

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Base is the site root; relative watch links are resolved against it.
const Base = "https://www.youtube.com"

// MaxResults caps how many search results are kept.
const MaxResults = 10

const (
	rendererSelector       = "ytd-video-renderer"
	nestedRendererSelector = "#contents ytd-item-section-renderer ytd-video-renderer"
	titleSelector          = "#video-title, .title-and-badge a"
	channelSelector        = "#channel-name, .ytd-channel-name"
	viewsSelector          = ".metadata-stats .style-scope, .ytd-video-meta-block .ytd-video-meta-block"
	durationSelector       = ".ytd-thumbnail-overlay-time-status-renderer, span.ytd-thumbnail-overlay-time-status-renderer"
	descriptionSelector    = "#description-text, .description-text"
)

// Video is one search result. Position is 1-based and dense within a result list.
type Video struct {
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Channel     string `json:"channel,omitempty"`
	Views       string `json:"views,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ParseResults scrapes a results page. Unparseable input yields no videos.
func ParseResults(rawHTML string) []Video {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	renderers := doc.Find(rendererSelector)
	if renderers.Length() == 0 {
		renderers = doc.Find(nestedRendererSelector)
	}

	var videos []Video
	renderers.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		titleLink := s.Find(titleSelector).First()
		v := Video{
			Position:    len(videos) + 1,
			Title:       text(titleLink),
			Channel:     text(s.Find(channelSelector).First()),
			Views:       text(s.Find(viewsSelector).First()),
			Duration:    text(s.Find(durationSelector).First()),
			Description: text(s.Find(descriptionSelector).First()),
			URL:         absolute(titleLink.AttrOr("href", "")),
		}
		videos = append(videos, v)
		return len(videos) < MaxResults
	})
	return videos
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func absolute(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/watch") {
		return Base + href
	}
	return href
}

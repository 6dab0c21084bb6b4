// Package command defines the closed set of browser commands an utterance can resolve to.
package command

import (
	"fmt"
	"strconv"
)

// Kind identifies an Intent variant.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindOpenWebsite
	KindSearch
	KindScroll
	KindClick
	KindNavigate
	KindRefresh
	KindReadAloud
	KindStopReading
	KindSetFavorite
	KindOpenCategory
	KindListFavorites
	KindCloseBrowser
	KindDescribePage
	KindDescribeContent
	KindYoutubeSearch
	KindYoutubeDescribe
	KindYoutubePlay
	KindYoutubeList
	KindHelp
	KindDeclineConfirmation
)

var kindNames = map[Kind]string{
	KindUnrecognized:        "unrecognized",
	KindOpenWebsite:         "open_website",
	KindSearch:              "search",
	KindScroll:              "scroll",
	KindClick:               "click",
	KindNavigate:            "navigate",
	KindRefresh:             "refresh",
	KindReadAloud:           "read_aloud",
	KindStopReading:         "stop_reading",
	KindSetFavorite:         "set_favorite",
	KindOpenCategory:        "open_category",
	KindListFavorites:       "list_favorites",
	KindCloseBrowser:        "close_browser",
	KindDescribePage:        "describe_page",
	KindDescribeContent:     "describe_content",
	KindYoutubeSearch:       "youtube_search",
	KindYoutubeDescribe:     "youtube_describe",
	KindYoutubePlay:         "youtube_play",
	KindYoutubeList:         "youtube_list",
	KindHelp:                "help",
	KindDeclineConfirmation: "decline_confirmation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText renders the kind by name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Direction values for Scroll and Navigate.
const (
	DirectionUp      = "up"
	DirectionDown    = "down"
	DirectionBack    = "back"
	DirectionForward = "forward"
)

// Intent is one resolved command. The set of implementations is closed.
type Intent interface {
	Kind() Kind
	isIntent()
}

type (
	// OpenWebsite navigates to Target: a URL, a site name or free text.
	OpenWebsite struct{ Target string }

	// Search runs Query on the web search engine.
	Search struct{ Query string }

	// Scroll moves the page up or down.
	Scroll struct{ Direction string }

	// Click clicks the element whose text contains Target.
	Click struct{ Target string }

	// Navigate moves through history, back or forward.
	Navigate struct{ Direction string }

	// Refresh reloads the page.
	Refresh struct{}

	// ReadAloud starts reading the page text.
	ReadAloud struct{}

	// StopReading interrupts read-aloud.
	StopReading struct{}

	// SetFavorite binds Category to Site.
	SetFavorite struct{ Category, Site string }

	// OpenCategory opens the favorite bound to Category.
	OpenCategory struct{ Category string }

	// ListFavorites speaks every favorite.
	ListFavorites struct{}

	// CloseBrowser ends the session.
	CloseBrowser struct{}

	// DescribePage summarizes the current page.
	DescribePage struct{}

	// DescribeContent summarizes one kind of content on the page: products,
	// videos, images, music, articles or links.
	DescribeContent struct{ Content string }

	// YoutubeSearch searches YouTube for Query.
	YoutubeSearch struct{ Query string }

	// YoutubeDescribe describes the result at Position (1-based) and asks to play it.
	YoutubeDescribe struct{ Position int }

	// YoutubePlay plays the result at Position (1-based).
	YoutubePlay struct{ Position int }

	// YoutubeList summarizes the current results.
	YoutubeList struct{}

	// Help speaks the command overview.
	Help struct{}

	// DeclineConfirmation answers a pending question with no.
	DeclineConfirmation struct{}

	// Unrecognized is an utterance no resolver understood.
	Unrecognized struct{ Text string }
)

func (OpenWebsite) Kind() Kind         { return KindOpenWebsite }
func (Search) Kind() Kind              { return KindSearch }
func (Scroll) Kind() Kind              { return KindScroll }
func (Click) Kind() Kind               { return KindClick }
func (Navigate) Kind() Kind            { return KindNavigate }
func (Refresh) Kind() Kind             { return KindRefresh }
func (ReadAloud) Kind() Kind           { return KindReadAloud }
func (StopReading) Kind() Kind         { return KindStopReading }
func (SetFavorite) Kind() Kind         { return KindSetFavorite }
func (OpenCategory) Kind() Kind        { return KindOpenCategory }
func (ListFavorites) Kind() Kind       { return KindListFavorites }
func (CloseBrowser) Kind() Kind        { return KindCloseBrowser }
func (DescribePage) Kind() Kind        { return KindDescribePage }
func (DescribeContent) Kind() Kind     { return KindDescribeContent }
func (YoutubeSearch) Kind() Kind       { return KindYoutubeSearch }
func (YoutubeDescribe) Kind() Kind     { return KindYoutubeDescribe }
func (YoutubePlay) Kind() Kind         { return KindYoutubePlay }
func (YoutubeList) Kind() Kind         { return KindYoutubeList }
func (Help) Kind() Kind                { return KindHelp }
func (DeclineConfirmation) Kind() Kind { return KindDeclineConfirmation }
func (Unrecognized) Kind() Kind        { return KindUnrecognized }

func (OpenWebsite) isIntent()         {}
func (Search) isIntent()              {}
func (Scroll) isIntent()              {}
func (Click) isIntent()               {}
func (Navigate) isIntent()            {}
func (Refresh) isIntent()             {}
func (ReadAloud) isIntent()           {}
func (StopReading) isIntent()         {}
func (SetFavorite) isIntent()         {}
func (OpenCategory) isIntent()        {}
func (ListFavorites) isIntent()       {}
func (CloseBrowser) isIntent()        {}
func (DescribePage) isIntent()        {}
func (DescribeContent) isIntent()     {}
func (YoutubeSearch) isIntent()       {}
func (YoutubeDescribe) isIntent()     {}
func (YoutubePlay) isIntent()         {}
func (YoutubeList) isIntent()         {}
func (Help) isIntent()                {}
func (DeclineConfirmation) isIntent() {}
func (Unrecognized) isIntent()        {}

// Describe renders an intent for logs and transcripts.
func Describe(in Intent) string {
	switch v := in.(type) {
	case nil:
		return "none"
	case OpenWebsite:
		return fmt.Sprintf("%s(%q)", v.Kind(), v.Target)
	case Search:
		return fmt.Sprintf("%s(%q)", v.Kind(), v.Query)
	case Scroll:
		return fmt.Sprintf("%s(%s)", v.Kind(), v.Direction)
	case Click:
		return fmt.Sprintf("%s(%q)", v.Kind(), v.Target)
	case Navigate:
		return fmt.Sprintf("%s(%s)", v.Kind(), v.Direction)
	case SetFavorite:
		return fmt.Sprintf("%s(%s=%q)", v.Kind(), v.Category, v.Site)
	case OpenCategory:
		return fmt.Sprintf("%s(%s)", v.Kind(), v.Category)
	case DescribeContent:
		return fmt.Sprintf("%s(%s)", v.Kind(), v.Content)
	case YoutubeSearch:
		return fmt.Sprintf("%s(%q)", v.Kind(), v.Query)
	case YoutubeDescribe:
		return fmt.Sprintf("%s(%d)", v.Kind(), v.Position)
	case YoutubePlay:
		return fmt.Sprintf("%s(%d)", v.Kind(), v.Position)
	case Unrecognized:
		return fmt.Sprintf("%s(%q)", v.Kind(), v.Text)
	default:
		return in.Kind().String()
	}
}

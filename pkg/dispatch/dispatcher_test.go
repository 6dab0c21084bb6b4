package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entrhq/voxbrowse/pkg/browser"
	"github.com/entrhq/voxbrowse/pkg/browser/browsertest"
	"github.com/entrhq/voxbrowse/pkg/command"
	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/entrhq/voxbrowse/pkg/llmintent"
	"github.com/entrhq/voxbrowse/pkg/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYouTubeSearchDescribeAndConfirm(t *testing.T) {
	f := newFixture(t)
	f.browser.Pages = map[string]string{youtube.Base: youtubeResults}

	out := f.handle("search youtube for cats")
	assert.Equal(t, command.YoutubeSearch{Query: "cats"}, out.Intent)
	assert.Equal(t, []string{youtube.Base}, f.browser.Navigations())
	assert.Contains(t, out.Spoken, "Searching YouTube for cats")
	assert.Contains(t, out.Reply(), "I found 3 videos.")
	require.Len(t, f.d.YouTube().Videos(), 3)

	out = f.handle("tell me about video 2")
	assert.Equal(t, command.YoutubeDescribe{Position: 2}, out.Intent)
	assert.Equal(t, []string{
		"Video 2: Cats versus cucumbers, by Veggie Lab",
		"Would you like to play this video?",
	}, out.Spoken)
	pending, ok := f.d.Session().Pending()
	require.True(t, ok)
	assert.Equal(t, 2, pending.Position)

	out = f.handle("yes")
	assert.Equal(t, command.YoutubePlay{Position: 2}, out.Intent)
	assert.Equal(t, []string{"Playing video: Cats versus cucumbers"}, out.Spoken)
	navs := f.browser.Navigations()
	assert.Equal(t, youtube.Base+"/watch?v=two", navs[len(navs)-1])

	_, ok = f.d.Session().Pending()
	assert.False(t, ok)
}

func TestDeclineConfirmation(t *testing.T) {
	f := newFixture(t)
	f.browser.Pages = map[string]string{youtube.Base: youtubeResults}

	f.handle("search youtube for cats")
	f.handle("describe the first video")
	before := len(f.browser.Navigations())

	out := f.handle("no thanks")
	assert.Equal(t, command.DeclineConfirmation{}, out.Intent)
	assert.Equal(t, []string{"Video playback cancelled."}, out.Spoken)
	assert.Len(t, f.browser.Navigations(), before)

	_, ok := f.d.Session().Pending()
	assert.False(t, ok)
}

func TestConfirmationAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   command.Intent
	}{
		{"yes and no plays", "okay no", command.YoutubePlay{Position: 2}},
		{"play it wins over don't", "don't play it", command.YoutubePlay{Position: 2}},
		{"not now declines", "not now", command.DeclineConfirmation{}},
		{"cancel declines", "cancel", command.DeclineConfirmation{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.browser.Pages = map[string]string{youtube.Base: youtubeResults}
			f.handle("search youtube for cats")
			f.handle("tell me about video 2")

			out := f.handle(tt.answer)
			assert.Equal(t, tt.want, out.Intent)

			_, ok := f.d.Session().Pending()
			assert.False(t, ok)
		})
	}
}

func TestUnrelatedCommandKeepsConfirmationPending(t *testing.T) {
	f := newFixture(t)
	f.browser.Pages = map[string]string{youtube.Base: youtubeResults}

	f.handle("search youtube for cats")
	f.handle("tell me about video 3")

	out := f.handle("scroll down")
	assert.Equal(t, command.Scroll{Direction: command.DirectionDown}, out.Intent)

	pending, ok := f.d.Session().Pending()
	require.True(t, ok)
	assert.Equal(t, 3, pending.Position)

	out = f.handle("sure")
	assert.Equal(t, command.YoutubePlay{Position: 3}, out.Intent)
}

func TestDescribeFailureLeavesNoConfirmation(t *testing.T) {
	f := newFixture(t)

	out := f.handle("tell me about video 2")
	assert.Equal(t, []string{"I don't have any videos to describe. Try searching first."}, out.Spoken)

	_, ok := f.d.Session().Pending()
	assert.False(t, ok)
}

func TestPlayWithoutResults(t *testing.T) {
	f := newFixture(t)

	out := f.handle("play video number 2")
	assert.Equal(t, command.YoutubePlay{Position: 2}, out.Intent)
	assert.Equal(t, []string{"I don't have any videos to play. Try searching first."}, out.Spoken)
	assert.Empty(t, f.browser.Navigations())
}

func TestSetAndOpenFavorite(t *testing.T) {
	f := newFixture(t)

	out := f.handle("set favorite music to spotify")
	assert.Equal(t, command.SetFavorite{Category: "music", Site: "spotify"}, out.Intent)
	assert.Equal(t, []string{"Set music favorite to https://spotify.com"}, out.Spoken)

	url, ok := f.d.Favorites().Get("music")
	require.True(t, ok)
	assert.Equal(t, "https://spotify.com", url)
	assert.Positive(t, f.storage.Saves())

	out = f.handle("open category music")
	assert.Equal(t, command.OpenCategory{Category: "music"}, out.Intent)
	assert.Equal(t, []string{"Opening music"}, out.Spoken)
	assert.Equal(t, []string{"https://spotify.com"}, f.browser.Navigations())
	assert.Equal(t, "navigate https://spotify.com", out.Action)
}

func TestSetFavoriteSaveFailureStillBinds(t *testing.T) {
	f := newFixture(t)
	f.storage.Err = errors.New("disk full")

	out := f.handle("for news use bbc.com")
	assert.Equal(t, []string{"Set news favorite to https://bbc.com, but I couldn't save it."}, out.Spoken)

	url, ok := f.d.Favorites().Get("news")
	require.True(t, ok)
	assert.Equal(t, "https://bbc.com", url)
}

func TestListFavorites(t *testing.T) {
	f := newFixture(t)

	out := f.handle("list my favorites")
	assert.Equal(t, command.ListFavorites{}, out.Intent)
	require.Len(t, out.Spoken, 1)
	assert.Equal(t, "Your favorites are: "+f.d.Favorites().ListAll(), out.Spoken[0])
	assert.Contains(t, out.Spoken[0], "videos is set to https://www.youtube.com")
}

func TestOpenWebsiteTargets(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
	}{
		{"single word", "open google", "https://google.com"},
		{"dotted host", "go to github.com", "https://github.com"},
		{"with scheme", "open https://example.org/path", "https://example.org/path"},
		{"favorite category", "open videos", "https://www.youtube.com"},
		{"site suffix", "open wikipedia website", "https://wikipedia.com"},
		{"multi word", "open the best pizza place", "https://www.google.com/search?q=the+best+pizza+place"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			out := f.handle(tt.utterance)
			assert.Equal(t, command.KindOpenWebsite, out.Intent.Kind())
			assert.Equal(t, []string{tt.want}, f.browser.Navigations())
		})
	}
}

func TestOpenBlockedWebsite(t *testing.T) {
	fake := browsertest.New(startURL)
	policy, err := browser.NewPolicy([]string{"*.facebook.com"})
	require.NoError(t, err)

	d := dispatch.New(browser.Guard(fake, policy), favorites.NewStore(favorites.NewMemoryStorage(nil)), nil)

	out := d.Handle(context.Background(), "open www.facebook.com")
	assert.Equal(t, []string{"That website is blocked."}, out.Spoken)
	assert.Empty(t, fake.Navigations())
	assert.Empty(t, out.Action)
}

func TestScroll(t *testing.T) {
	f := newFixture(t)

	f.handle("scroll down")
	f.handle("please scroll up a little")

	assert.Equal(t, []string{"window.scrollBy(0, 500);", "window.scrollBy(0, -500);"}, f.browser.Scripts())
}

func TestScrollWithoutDirectionIsUnrecognized(t *testing.T) {
	f := newFixture(t)

	out := f.handle("scroll")
	assert.Equal(t, command.KindUnrecognized, out.Intent.Kind())
	assert.Empty(t, f.browser.Scripts())
}

func TestClickFallsBackToButtonText(t *testing.T) {
	f := newFixture(t)
	f.browser.ClickFunc = browsertest.ClickOnly(browser.StrategyButtonText)

	out := f.handle("Click on Sign In")
	assert.Equal(t, command.Click{Target: "Sign In"}, out.Intent)

	calls := f.browser.CallsTo("Click")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"link text", "Sign In"}, calls[0].Args)
	assert.Equal(t, []string{"button text", "Sign In"}, calls[1].Args)
	assert.Equal(t, `click "Sign In"`, out.Action)
}

func TestClickFailureIsOnlyLogged(t *testing.T) {
	f := newFixture(t)
	f.browser.ClickFunc = func(loc browser.Locator) error { return browser.ErrNotFound }

	out := f.handle("click subscribe")
	assert.Equal(t, command.Click{Target: "subscribe"}, out.Intent)
	assert.Empty(t, out.Spoken)
	assert.Empty(t, out.Action)
	assert.Len(t, f.browser.CallsTo("Click"), len(browser.ClickStrategies))
}

func TestHistoryNavigation(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, command.Navigate{Direction: command.DirectionBack}, f.handle("go back").Intent)
	assert.Equal(t, command.Navigate{Direction: command.DirectionBack}, f.handle("previous page").Intent)
	assert.Equal(t, command.Navigate{Direction: command.DirectionForward}, f.handle("next page").Intent)
	assert.Equal(t, command.Refresh{}, f.handle("reload the page").Intent)

	assert.Len(t, f.browser.CallsTo("Back"), 2)
	assert.Len(t, f.browser.CallsTo("Forward"), 1)
	assert.Len(t, f.browser.CallsTo("Refresh"), 1)
}

func TestSearchOnSearchEngine(t *testing.T) {
	f := newFixture(t)

	out := f.handle("search for golang tutorials")
	assert.Equal(t, command.Search{Query: "golang tutorials"}, out.Intent)
	assert.Empty(t, f.browser.Navigations())

	fills := f.browser.CallsTo("Fill")
	require.Len(t, fills, 1)
	assert.Equal(t, []string{"[name=q]", "golang tutorials", "true"}, fills[0].Args)
}

func TestSearchFromAnotherSiteNavigatesFirst(t *testing.T) {
	f := newFixture(t)

	f.handle("open example.com")
	f.handle("search for weather")

	assert.Equal(t, []string{"https://example.com", "https://www.google.com"}, f.browser.Navigations())
	assert.Len(t, f.browser.CallsTo("Fill"), 1)
}

func TestHelp(t *testing.T) {
	f := newFixture(t)

	out := f.handle("what can I say")
	assert.Equal(t, command.Help{}, out.Intent)
	require.Len(t, out.Spoken, 1)
	assert.Contains(t, out.Spoken[0], "You can use the following commands")
	assert.Contains(t, out.Spoken[0], "Say Close browser when you're done.")
}

func TestCloseBrowser(t *testing.T) {
	for _, utterance := range []string{"close browser", "exit"} {
		t.Run(utterance, func(t *testing.T) {
			f := newFixture(t)

			out := f.handle(utterance)
			assert.Equal(t, command.CloseBrowser{}, out.Intent)
			assert.True(t, out.Close)
			assert.Equal(t, []string{dispatch.Farewell}, out.Spoken)
			assert.True(t, f.browser.Closed())
		})
	}
}

func TestHeuristicOpensCategory(t *testing.T) {
	f := newFixture(t)

	out := f.handle("I want to watch something fun")
	assert.Equal(t, command.OpenCategory{Category: "videos"}, out.Intent)
	assert.Equal(t, []string{"Opening videos"}, out.Spoken)
	assert.Equal(t, []string{"https://www.youtube.com"}, f.browser.Navigations())
}

func TestUnrecognized(t *testing.T) {
	f := newFixture(t)

	out := f.handle("blorp")
	assert.Equal(t, command.Unrecognized{Text: "blorp"}, out.Intent)
	assert.False(t, out.Handled())
	assert.Empty(t, out.Spoken)
	assert.Empty(t, f.browser.Calls())
}

func TestEmptyUtterance(t *testing.T) {
	f := newFixture(t)

	out := f.handle("   ")
	assert.Nil(t, out.Intent)
	assert.Empty(t, f.browser.Calls())
}

func TestStopWhenNotReadingIsSilent(t *testing.T) {
	f := newFixture(t)

	out := f.handle("stop")
	assert.Equal(t, command.StopReading{}, out.Intent)
	assert.Empty(t, out.Spoken)
}

func TestDescribePageTemplate(t *testing.T) {
	f := newFixture(t)
	f.browser.SetSource(`<html><head><title>Bikes</title></head><body><img alt="A red bicycle" src="b.png"></body></html>`)

	out := f.handle("what's on this page")
	assert.Equal(t, command.DescribePage{}, out.Intent)
	require.Len(t, out.Spoken, 2)
	assert.Equal(t, "Analyzing the page content...", out.Spoken[0])
	assert.NotEmpty(t, out.Spoken[1])
}

func TestDescribePageWithLLM(t *testing.T) {
	provider := &fakeProvider{reply: `{"description": "A page with one bicycle picture."}`}
	f := newFixture(t, dispatch.WithDescriber(llmintent.NewDescriber(provider)))
	f.browser.SetSource(`<html><body><img alt="A red bicycle" src="b.png"></body></html>`)

	out := f.handle("describe this page")
	assert.Equal(t, []string{"Analyzing the page content...", "A page with one bicycle picture."}, out.Spoken)
	assert.Equal(t, 1, provider.calls())
}

func TestDescribePageLLMFailureUsesTemplate(t *testing.T) {
	provider := &fakeProvider{err: errors.New("service unavailable")}
	f := newFixture(t, dispatch.WithDescriber(llmintent.NewDescriber(provider)))
	f.browser.SetSource(`<html><body><img alt="A red bicycle" src="b.png"></body></html>`)

	out := f.handle("describe this page")
	require.Len(t, out.Spoken, 2)
	assert.NotEmpty(t, out.Spoken[1])
	assert.NotContains(t, out.Spoken[1], "service unavailable")
}

func TestDescribeContent(t *testing.T) {
	f := newFixture(t)
	f.browser.SetSource(`<html><body><img alt="A red bicycle" src="b.png"></body></html>`)

	out := f.handle("describe the images")
	assert.Equal(t, command.DescribeContent{Content: "images"}, out.Intent)
	require.Len(t, out.Spoken, 1)
	assert.Contains(t, out.Spoken[0], "Image 1 shows A red bicycle")

	out = f.handle("tell me about the products")
	assert.Equal(t, command.DescribeContent{Content: "products"}, out.Intent)
	assert.Equal(t, []string{"I didn't find any products on this page."}, out.Spoken)
}

func TestLLMResolvesCommand(t *testing.T) {
	provider := &fakeProvider{reply: `{"command": "Scroll down/up", "parameters": {"direction": "down"}}`}
	f := newFixture(t, dispatch.WithResolver(llmintent.NewResolver(provider)))

	out := f.handle("move the page lower")
	assert.Equal(t, command.Scroll{Direction: command.DirectionDown}, out.Intent)
	assert.Equal(t, []string{"window.scrollBy(0, 500);"}, f.browser.Scripts())
	assert.Equal(t, 1, provider.calls())
}

func TestLLMUnexecutableIntentFallsThrough(t *testing.T) {
	provider := &fakeProvider{reply: `{"command": "Open website", "parameters": {}}`}
	f := newFixture(t, dispatch.WithResolver(llmintent.NewResolver(provider)))

	out := f.handle("open example.com")
	assert.Equal(t, command.OpenWebsite{Target: "example.com"}, out.Intent)
	assert.Equal(t, []string{"https://example.com"}, f.browser.Navigations())
	assert.Equal(t, 1, provider.calls())
}

func TestLLMErrorFallsThrough(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	f := newFixture(t, dispatch.WithResolver(llmintent.NewResolver(provider)), dispatch.WithLLMTimeout(time.Second))

	out := f.handle("refresh")
	assert.Equal(t, command.Refresh{}, out.Intent)
	assert.Len(t, f.browser.CallsTo("Refresh"), 1)

	out = f.handle("open google")
	assert.Equal(t, command.OpenWebsite{Target: "google"}, out.Intent)
	assert.Equal(t, []string{"https://google.com"}, f.browser.Navigations())
	assert.Equal(t, 2, provider.calls())
}

func TestLLMSkippedForStopAndConfirmation(t *testing.T) {
	provider := &fakeProvider{reply: `{"command": "Refresh page", "parameters": {}}`}
	f := newFixture(t, dispatch.WithResolver(llmintent.NewResolver(provider)))

	f.handle("be quiet")
	assert.Equal(t, 0, provider.calls())

	f.d.Session().SetPending(dispatch.Confirmation{Action: command.KindYoutubePlay, Position: 1})
	out := f.handle("nope")
	assert.Equal(t, command.DeclineConfirmation{}, out.Intent)
	assert.Equal(t, 0, provider.calls())
}

func TestStart(t *testing.T) {
	f := newFixture(t)

	out := f.d.Start(context.Background(), "https://example.org")
	assert.Equal(t, []string{dispatch.Greeting}, out.Spoken)
	assert.Equal(t, []string{"https://example.org"}, f.browser.Navigations())
	assert.Equal(t, []string{dispatch.Greeting}, f.speaker.Lines())
}

func TestSpokenLinesReachSpeaker(t *testing.T) {
	f := newFixture(t)

	out := f.handle("help")
	assert.Equal(t, out.Spoken, f.speaker.Lines())
}

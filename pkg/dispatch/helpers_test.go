package dispatch_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/entrhq/voxbrowse/pkg/browser/browsertest"
	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/entrhq/voxbrowse/pkg/llm"
	"github.com/entrhq/voxbrowse/pkg/speech"
	"github.com/entrhq/voxbrowse/pkg/types"
	"github.com/entrhq/voxbrowse/pkg/youtube"
)

const startURL = "https://www.google.com"

type fixture struct {
	d       *dispatch.Dispatcher
	browser *browsertest.Browser
	speaker *speech.Recorder
	storage *favorites.MemoryStorage
}

func newFixture(t *testing.T, opts ...dispatch.Option) *fixture {
	t.Helper()

	f := &fixture{
		browser: browsertest.New(startURL),
		speaker: &speech.Recorder{},
		storage: favorites.NewMemoryStorage(nil),
	}
	store := favorites.NewStore(f.storage)
	opts = append([]dispatch.Option{
		dispatch.WithYouTubeOptions(youtube.WithSettleDelay(0)),
	}, opts...)
	f.d = dispatch.New(f.browser, store, f.speaker, opts...)
	t.Cleanup(f.d.WaitReading)
	return f
}

func (f *fixture) handle(text string) dispatch.Outcome {
	return f.d.Handle(context.Background(), text)
}

// fakeProvider answers every completion with reply, or err when set.
type fakeProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	users []string
}

func (p *fakeProvider) Complete(ctx context.Context, messages []*types.Message, opts ...llm.CompletionOption) (*types.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range messages {
		if m.Role == types.RoleUser {
			p.users = append(p.users, m.Content)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return types.NewAssistantMessage(p.reply), nil
}

func (p *fakeProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Name: "fake", Provider: "fake"}
}

func (p *fakeProvider) GetModel() string   { return "fake" }
func (p *fakeProvider) GetBaseURL() string { return "" }

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}

// gatedSpeaker blocks on every line starting with "Paragraph" until released.
type gatedSpeaker struct {
	mu      sync.Mutex
	lines   []string
	started chan string
	release chan struct{}
}

func newGatedSpeaker() *gatedSpeaker {
	return &gatedSpeaker{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedSpeaker) Speak(ctx context.Context, text string) error {
	g.mu.Lock()
	g.lines = append(g.lines, text)
	g.mu.Unlock()

	if strings.HasPrefix(text, "Paragraph") {
		g.started <- text
		<-g.release
	}
	return nil
}

func (g *gatedSpeaker) paragraphs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, l := range g.lines {
		if strings.HasPrefix(l, "Paragraph") {
			out = append(out, l)
		}
	}
	return out
}

const youtubeResults = `<html><body><div id="contents">
  <ytd-video-renderer>
    <a id="video-title" href="/watch?v=one">Funny cats compilation</a>
    <div id="channel-name">Cat Channel</div>
  </ytd-video-renderer>
  <ytd-video-renderer>
    <a id="video-title" href="/watch?v=two">Cats versus cucumbers</a>
    <div id="channel-name">Veggie Lab</div>
  </ytd-video-renderer>
  <ytd-video-renderer>
    <a id="video-title" href="/watch?v=three">Sleepy kittens</a>
    <div id="channel-name">Nap Time</div>
  </ytd-video-renderer>
</div></body></html>`

const articlePage = `<html><head><title>Reading</title></head><body>
<p>Paragraph one has plenty of words to read.</p>
<p>Paragraph two has plenty of words to read.</p>
<p>Paragraph three has plenty of words to read.</p>
</body></html>`

package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/entrhq/voxbrowse/pkg/browser/browsertest"
	"github.com/entrhq/voxbrowse/pkg/command"
	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAloudSpeaksEveryParagraph(t *testing.T) {
	f := newFixture(t)
	f.browser.SetSource(articlePage)

	out := f.handle("read this page")
	assert.Equal(t, command.ReadAloud{}, out.Intent)
	assert.Equal(t, []string{"Beginning to read the page"}, out.Spoken)

	f.d.WaitReading()
	assert.False(t, f.d.Session().Reading())
	assert.Equal(t, []string{
		"Beginning to read the page",
		"Paragraph one has plenty of words to read.",
		"Paragraph two has plenty of words to read.",
		"Paragraph three has plenty of words to read.",
	}, f.speaker.Lines())
}

func TestReadAloudNothingToRead(t *testing.T) {
	f := newFixture(t)
	f.browser.SetSource(`<html><body><p>Too short.</p></body></html>`)

	out := f.handle("read aloud")
	assert.Equal(t, []string{"Beginning to read the page", "I didn't find anything to read on this page."}, out.Spoken)
	assert.False(t, f.d.Session().Reading())
}

func newGatedDispatcher(t *testing.T) (*dispatch.Dispatcher, *gatedSpeaker) {
	t.Helper()
	fake := browsertest.New(startURL)
	fake.SetSource(articlePage)
	speaker := newGatedSpeaker()
	d := dispatch.New(fake, favorites.NewStore(favorites.NewMemoryStorage(nil)), speaker)
	return d, speaker
}

func waitStarted(t *testing.T, s *gatedSpeaker) string {
	t.Helper()
	select {
	case p := <-s.started:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("reader never started a paragraph")
		return ""
	}
}

func TestStopReadingAfterCurrentParagraph(t *testing.T) {
	d, speaker := newGatedDispatcher(t)
	ctx := context.Background()

	d.Handle(ctx, "start reading")
	first := waitStarted(t, speaker)
	assert.Equal(t, "Paragraph one has plenty of words to read.", first)
	require.True(t, d.Session().Reading())

	out := d.Handle(ctx, "stop reading")
	assert.Equal(t, command.StopReading{}, out.Intent)
	assert.Equal(t, []string{"Stopped reading"}, out.Spoken)
	assert.True(t, d.Session().StopRequested())

	close(speaker.release)
	d.WaitReading()

	assert.False(t, d.Session().Reading())
	assert.Equal(t, []string{first}, speaker.paragraphs())
}

func TestNewReadReplacesPreviousReader(t *testing.T) {
	d, speaker := newGatedDispatcher(t)
	ctx := context.Background()

	d.Handle(ctx, "read this page")
	waitStarted(t, speaker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Handle(ctx, "read the page")
	}()

	// The second read waits for the first reader, which is parked on its first paragraph.
	require.Eventually(t, d.Session().StopRequested, 5*time.Second, 10*time.Millisecond)
	close(speaker.release)
	<-done
	d.WaitReading()

	assert.False(t, d.Session().Reading())
	// One paragraph from the interrupted reader, then the full page again.
	assert.Len(t, speaker.paragraphs(), 4)
}

func TestCloseStopsReader(t *testing.T) {
	d, speaker := newGatedDispatcher(t)

	d.Handle(context.Background(), "read this to me")
	waitStarted(t, speaker)
	close(speaker.release)

	require.NoError(t, d.Close())
	assert.False(t, d.Session().Reading())
	assert.LessOrEqual(t, len(speaker.paragraphs()), 3)
}

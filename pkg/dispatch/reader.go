package dispatch

import (
	"context"

	"github.com/entrhq/voxbrowse/pkg/page"
)

// startReading speaks the page text paragraph by paragraph in the background.
// A read already in progress is stopped first and waited for.
func (d *Dispatcher) startReading(ctx context.Context) {
	d.stopAndWait()

	source, err := d.browser.PageSource(ctx)
	if err != nil {
		d.logger.Errorf("Error reading page: %v", err)
		_ = d.say(ctx, "I couldn't read this page.")
		return
	}
	paragraphs := page.Paragraphs(source)

	_ = d.say(ctx, "Beginning to read the page")
	if len(paragraphs) == 0 {
		_ = d.say(ctx, "I didn't find anything to read on this page.")
		return
	}

	done := make(chan struct{})
	d.readMu.Lock()
	d.readerDone = done
	d.readMu.Unlock()

	d.session.beginReading()
	d.act("read aloud")

	// The reader outlives the command that started it.
	go d.read(context.WithoutCancel(ctx), paragraphs, done)
}

func (d *Dispatcher) read(ctx context.Context, paragraphs []string, done chan struct{}) {
	defer close(done)
	defer d.session.endReading()

	for i, p := range paragraphs {
		if d.session.StopRequested() {
			break
		}
		if d.speaker != nil {
			if err := d.speaker.Speak(ctx, p); err != nil {
				d.logger.Warnf("Error reading paragraph %d: %v", i+1, err)
				break
			}
		}
		if d.session.StopRequested() {
			break
		}
	}
	d.logger.Infof("Finished reading page or reading was stopped")
}

// stopReading asks the reader to stop after the chunk it is speaking.
func (d *Dispatcher) stopReading(ctx context.Context) {
	if !d.session.Reading() {
		d.logger.Debugf("Stop requested with nothing being read")
		return
	}
	d.session.RequestStop()
	_ = d.say(ctx, "Stopped reading")
	d.act("stop reading")
}

// stopAndWait stops the reader, if any, and blocks until it exits.
func (d *Dispatcher) stopAndWait() {
	d.readMu.Lock()
	done := d.readerDone
	d.readMu.Unlock()
	if done == nil {
		return
	}
	d.session.RequestStop()
	<-done
}

// WaitReading blocks until the current read-aloud, if any, finishes.
func (d *Dispatcher) WaitReading() {
	d.readMu.Lock()
	done := d.readerDone
	d.readMu.Unlock()
	if done != nil {
		<-done
	}
}

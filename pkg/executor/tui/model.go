package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/speech"
)

// model represents the state of the TUI application.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Dispatcher integration
	ctx     context.Context
	handler Handler
	voice   *speech.Switch
	logger  *logging.Logger

	// copy writes the last reply to the system clipboard
	copy func(string) error

	// Content buffer rendered in the viewport
	content *strings.Builder

	// UI state
	busy      bool
	lastReply string
	notice    string

	// Window dimensions
	width  int
	height int
	ready  bool

	shouldQuit bool
}

// spokenMsg carries one line the assistant said.
type spokenMsg struct{ text string }

// outcomeMsg reports that the dispatcher finished an utterance.
type outcomeMsg struct{ out dispatch.Outcome }

func newModel(ctx context.Context, handler Handler) *model {
	ta := textarea.New()
	ta.Placeholder = "Type a command, e.g. open google"
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.CharLimit = 500
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &model{
		viewport: viewport.New(80, 20),
		textarea: ta,
		spinner:  sp,
		ctx:      ctx,
		handler:  handler,
		logger:   logging.Discard(),
		content:  &strings.Builder{},
	}
}

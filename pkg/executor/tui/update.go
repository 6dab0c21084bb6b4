package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the cursor blink and the spinner.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.shouldQuit {
		return m, tea.Quit
	}

	var (
		tiCmd      tea.Cmd
		vpCmd      tea.Cmd
		spinnerCmd tea.Cmd
	)
	m.spinner, spinnerCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg, spinnerCmd)

	case tea.MouseMsg:
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, tea.Batch(vpCmd, spinnerCmd)

	case spokenMsg:
		m.lastReply = msg.text
		m.appendLine(assistantStyle.Render("Assistant: " + msg.text))
		return m, spinnerCmd

	case outcomeMsg:
		return m.handleOutcome(msg)
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
}

func (m *model) handleKeyPress(msg tea.KeyMsg, spinnerCmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.shouldQuit = true
		return m, tea.Quit

	case tea.KeyCtrlY:
		m.copyLastReply()
		return m, spinnerCmd

	case tea.KeyPgUp, tea.KeyPgDown:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, tea.Batch(vpCmd, spinnerCmd)

	case tea.KeyEnter:
		return m.submit(spinnerCmd)
	}

	var tiCmd tea.Cmd
	m.textarea, tiCmd = m.textarea.Update(msg)
	return m, tea.Batch(tiCmd, spinnerCmd)
}

// submit sends the typed command to the dispatcher in the background.
func (m *model) submit(spinnerCmd tea.Cmd) (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" || m.busy {
		return m, spinnerCmd
	}
	m.textarea.Reset()
	m.notice = ""
	m.appendLine(userStyle.Render("You: ") + input)

	switch input {
	case "/mute", "/unmute":
		m.toggleVoice(input == "/unmute")
		return m, spinnerCmd
	case "exit", "quit":
		input = "close browser"
	}

	m.busy = true
	m.recalculateLayout()

	ctx, handler := m.ctx, m.handler
	run := func() tea.Msg {
		return outcomeMsg{out: handler.Handle(ctx, input)}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m *model) handleOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	out := msg.out

	if out.Action != "" {
		m.appendLine(actionStyle.Render("  ↳ " + out.Action))
	}
	if !out.Handled() {
		m.logger.Debugf("Command not recognized")
	}
	m.recalculateLayout()

	if out.Close {
		m.shouldQuit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) toggleVoice(on bool) {
	if m.voice == nil {
		m.notice = "Voice output is not enabled."
		return
	}
	m.voice.SetEnabled(on)
	if on {
		m.notice = "Voice output on."
	} else {
		m.notice = "Voice output muted."
	}
}

func (m *model) copyLastReply() {
	if m.lastReply == "" {
		m.notice = "Nothing to copy yet."
		return
	}
	if m.copy == nil {
		return
	}
	if err := m.copy(m.lastReply); err != nil {
		m.logger.Warnf("Failed to copy to clipboard: %v", err)
		m.notice = errorStyle.Render("Could not copy to clipboard.")
		return
	}
	m.notice = "Copied last reply to clipboard."
}

func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.viewport.Width = m.width - 4
	m.textarea.SetWidth(m.width - 8)
	m.ready = true
	m.recalculateLayout()
	return m, nil
}

// calculateViewportHeight leaves room for the header, tips, input box and status bar.
func (m *model) calculateViewportHeight() int {
	headerHeight := 3
	inputHeight := m.textarea.Height() + 2
	statusBarHeight := 1
	loadingHeight := 0
	if m.busy {
		loadingHeight = 1
	}

	viewportHeight := m.height - headerHeight - inputHeight - statusBarHeight - loadingHeight
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	return viewportHeight
}

func (m *model) appendLine(line string) {
	m.content.WriteString(line)
	m.content.WriteString("\n")
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

func (m *model) recalculateLayout() {
	m.viewport.Height = m.calculateViewportHeight()
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

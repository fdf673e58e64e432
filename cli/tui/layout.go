package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/malonaz/qachat/cli/tui/styles"
)

const (
	titleHeight  = 1
	statusHeight = 1
)

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	content := m.textarea.Value()
	lineCount := strings.Count(content, "\n") + 1

	newHeight := lineCount
	if newHeight < styles.MinTextareaHeight {
		newHeight = styles.MinTextareaHeight
	}
	if newHeight > styles.MaxTextareaHeight {
		newHeight = styles.MaxTextareaHeight
	}

	if m.textarea.Height() != newHeight {
		m.textarea.SetHeight(newHeight)
		m.recalculateLayout()
	}
}

// mainWidth is the width left of the sidebar.
func (m *Model) mainWidth() int {
	return max(m.width-styles.SidebarStyle.GetHorizontalFrameSize()-styles.SidebarWidth, 1)
}

// recalculateLayout adjusts viewport and textarea dimensions based on current state.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	m.layoutStreaming = m.chat.Streaming()
	viewportHeight := m.height - titleHeight - statusHeight
	if !m.layoutStreaming {
		viewportHeight -= m.textarea.Height() + styles.TextAreaStyle.GetVerticalFrameSize()
	} else {
		viewportHeight--
	}
	if viewportHeight < styles.MinViewportHeight {
		viewportHeight = styles.MinViewportHeight
	}

	viewportWidth := m.mainWidth()
	rendererWidth := max(viewportWidth-styles.MessageHorizontalFrameSize()-styles.UserMessageStyle.GetMarginLeft(), 10)
	if err := m.renderer.SetWidth(rendererWidth); err != nil {
		log.Warn("resizing renderer", "error", err)
	}

	if !m.ready {
		m.viewport = viewport.New(viewportWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
	}
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()

	m.textarea.SetWidth(viewportWidth - styles.TextAreaStyle.GetHorizontalFrameSize())
}

// refreshViewport re-renders the messages, following the bottom if it was visible.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
}

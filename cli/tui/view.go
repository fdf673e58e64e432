package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/malonaz/qachat/cli/tui/styles"
	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/router"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var view string
	switch m.route.Name {
	case router.Login.Name:
		view = m.renderLogin()
	case router.Chat.Name:
		if !m.ready {
			return "Initializing..."
		}
		view = m.renderChat()
	default:
		return "Initializing..."
	}
	return m.alert.Render(view)
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.LoginTitleStyle.Render("qachat"))
	b.WriteString("\n\n")
	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")
	if m.authenticating {
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " Signing in...")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
	}
	b.WriteString(styles.HelpStyle.Render("\nEnter to log in, Ctrl+R to register, Ctrl+C to quit"))
	box := styles.LoginBoxStyle.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderChat() string {
	var main strings.Builder
	main.WriteString(styles.TitleStyle.Width(m.mainWidth()).Render(m.renderTitle()))
	main.WriteString("\n")
	main.WriteString(m.viewport.View())
	main.WriteString("\n")
	if m.chat.Streaming() {
		main.WriteString(fmt.Sprintf("%s Answering... (Ctrl+C to stop)\n", m.spinner.View()))
	} else {
		main.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
		main.WriteString("\n")
	}
	main.WriteString(m.renderStatus())

	sidebar := styles.SidebarStyle
	if m.focusedComponent == FocusSidebar {
		sidebar = styles.SidebarFocusedStyle
	}
	sidebar = sidebar.Height(max(m.height, 1))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar.Render(m.renderSidebar()), main.String())
}

func (m *Model) renderTitle() string {
	session := m.auth.Session()
	title := "New conversation"
	if id, ok := m.chat.Active(); ok {
		title = id
		for _, conversation := range m.chat.Conversations() {
			if conversation.ID == id && conversation.Title != "" {
				title = conversation.Title
				break
			}
		}
	}
	return fmt.Sprintf(" 👤 %s │ 💬 %s ", session.Username, title)
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != nil:
		return styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.confirmDelete:
		return styles.ErrorStyle.Render("Delete this conversation? (y/n)")
	case m.renaming:
		return m.rename.View()
	case m.focusedComponent == FocusSidebar:
		return styles.DimTextStyle.Render("↑/↓ move · enter open · r rename · d delete · g reload · tab input")
	default:
		return styles.DimTextStyle.Render("ctrl+n new · alt+w copy · ctrl+l logout · tab conversations")
	}
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	conversations := m.chat.Conversations()
	if len(conversations) == 0 {
		b.WriteString(styles.DimTextStyle.PaddingLeft(1).Render("no conversations"))
		return b.String()
	}
	active, _ := m.chat.Active()
	for i, conversation := range conversations {
		title := conversation.Title
		if title == "" {
			title = "(untitled)"
		}
		line := styles.Truncate(title, styles.SidebarWidth-3)
		style := styles.ConversationStyle
		switch {
		case conversation.ID == active:
			style = styles.ConversationActiveStyle
		case i == m.cursor && m.focusedComponent == FocusSidebar:
			style = styles.ConversationCursorStyle
		}
		prefix := "  "
		if i == m.cursor && m.focusedComponent == FocusSidebar {
			prefix = "› "
		}
		b.WriteString(style.Render(prefix + line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessages() string {
	var b strings.Builder
	if m.chat.Loading() {
		b.WriteString(styles.DimTextStyle.Render("Loading messages..."))
		return b.String()
	}

	for i, message := range m.chat.Messages() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch message.Role {
		case api.RoleUser:
			b.WriteString(styles.UserMessageStyle.Render(m.renderer.Render(message.Content)))
		default:
			if message.Thinking != "" {
				b.WriteString(styles.ThoughtLabelStyle.Render("💭 Thinking:"))
				b.WriteString("\n")
				b.WriteString(styles.ThoughtStyle.Render(message.Thinking))
				b.WriteString("\n")
			}
			b.WriteString(styles.AIMessageStyle.Render(m.renderer.Render(message.Content)))
			if len(message.Sources) > 0 {
				b.WriteString("\n")
				b.WriteString(styles.SourcesStyle.Render("📚 " + strings.Join(message.Sources, ", ")))
			}
		}
	}

	if m.currentReasoning.Len() > 0 || m.currentAnswer.Len() > 0 {
		b.WriteString("\n\n")
		if m.currentReasoning.Len() > 0 {
			b.WriteString(styles.ThoughtLabelStyle.Render("💭 Thinking:"))
			b.WriteString("\n")
			b.WriteString(styles.ThoughtStyle.Render(m.currentReasoning.String()))
			b.WriteString("\n")
		}
		if m.currentAnswer.Len() > 0 {
			b.WriteString(styles.AIMessageStyle.Render(m.renderer.RenderStreaming(m.currentAnswer.String())))
		}
		b.WriteString(styles.SpinnerStyle.Render("▋"))
	}
	return b.String()
}

package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	// Textarea
	MinTextareaHeight    = 3
	MaxTextareaHeight    = 12
	DefaultTextareaWidth = 80
	TextAreaPaddingLeft  = 1

	// Viewport
	MinViewportHeight = 1

	// Sidebar
	SidebarWidth = 32

	// Layout
	MessagePaddingLeft = 2

	// Login form
	LoginWidth = 40

	// Help
	HelpMarginTop = 1

	// Truncation
	TruncateSuffix       = "..."
	TruncateSuffixLength = 3
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7C3AED") // Purple
	SecondaryColor = lipgloss.Color("#06B6D4") // Cyan
	AccentColor    = lipgloss.Color("#F59E0B") // Amber
	SuccessColor   = lipgloss.Color("#10B981") // Green
	ErrorColor     = lipgloss.Color("#EF4444") // Red
	MutedColor     = lipgloss.Color("#6B7280") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light gray
	DimTextColor   = lipgloss.Color("#9CA3AF") // Dim gray
	ThoughtColor   = lipgloss.Color("#FCD34D")
	BorderColor    = lipgloss.Color("#4B5563")
)

// Title bar
var (
	TitleStyle = lipgloss.NewStyle().
		Background(PrimaryColor).
		Foreground(TextColor).
		Bold(true)
)

// Messages.
var (
	messageStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	UserMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(PrimaryColor).
				MarginLeft(10)

	AIMessageStyle = lipgloss.NewStyle().
			Inherit(messageStyle).
			BorderForeground(SecondaryColor).
			MarginRight(10)

	ThoughtLabelStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Italic(true)

	ThoughtStyle = lipgloss.NewStyle().
			Foreground(ThoughtColor).
			Italic(true).
			PaddingLeft(MessagePaddingLeft)

	SourcesStyle = lipgloss.NewStyle().
			Foreground(DimTextColor).
			Italic(true).
			PaddingLeft(MessagePaddingLeft)

	DimTextStyle = lipgloss.NewStyle().
			Foreground(DimTextColor)
)

// Sidebar
var (
	SidebarStyle = lipgloss.NewStyle().
			Width(SidebarWidth).
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(BorderColor)

	SidebarFocusedStyle = lipgloss.NewStyle().
				Inherit(SidebarStyle).
				BorderForeground(PrimaryColor)

	ConversationStyle = lipgloss.NewStyle().
				Foreground(DimTextColor).
				PaddingLeft(1)

	ConversationCursorStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(1)

	ConversationActiveStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true).
				PaddingLeft(1)
)

// Login form
var (
	LoginBoxStyle = lipgloss.NewStyle().
			Width(LoginWidth).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)

	LoginTitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

// Error
var (
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
)

// Input area
var (
	TextAreaStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		PaddingLeft(TextAreaPaddingLeft)
)

// Spinner
var (
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)
)

// Help text
var (
	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true).
		MarginTop(HelpMarginTop)
)

// MessageHorizontalFrameSize returns the horizontal frame size of AI messages.
func MessageHorizontalFrameSize() int {
	return AIMessageStyle.GetHorizontalFrameSize()
}

// Truncate truncates a string to the specified number of runes with a suffix.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= TruncateSuffixLength {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-TruncateSuffixLength]) + TruncateSuffix
}

package tui

import "github.com/charmbracelet/lipgloss"

var (
	// updated on every tea.WindowSizeMsg
	terminalWidth  = 100
	terminalHeight = 30

	primaryColor       = lipgloss.AdaptiveColor{Light: "#6B1E2E", Dark: "#C9A227"}
	primarySubtleColor = lipgloss.AdaptiveColor{Light: "#9C6B5A", Dark: "#8A7440"}
	secondaryColor     = lipgloss.AdaptiveColor{Light: "#7A1F1F", Dark: "#B23A48"}
	whiteColor         = lipgloss.AdaptiveColor{Light: "#2C2416", Dark: "#F4EBD9"}
	greyColor          = lipgloss.AdaptiveColor{Light: "#8A8070", Dark: "#5A5348"}
	dangerColor        = lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF5C6C"}

	campusboardLogo = lipgloss.NewStyle().
			Border(lipgloss.InnerHalfBlockBorder(), true).
			BorderForeground(primaryColor).
			Background(primaryColor).
			Foreground(lipgloss.AdaptiveColor{Light: "#F4EBD9", Dark: "#2C2416"}).
			Padding(0, 1).
			MarginBottom(1).
			Align(lipgloss.Center).
			Italic(true).
			Render("Campusboard")

	tabStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(greyColor).
			Foreground(greyColor).
			Padding(0, 2)
	activeTabStyle = tabStyle.
			BorderForeground(primaryColor).
			Foreground(primaryColor).
			Bold(true)

	tabContainerStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(primaryColor)

	statusTextStyle = lipgloss.NewStyle().
			Foreground(whiteColor).
			Padding(0, 1)
	unreadDotStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(greyColor).
			Foreground(greyColor).
			Padding(0, 1).
			Margin(1, 0)
	activeInputStyle = inputStyle.
				Border(lipgloss.ThickBorder(), false, false, true, false).
				BorderForeground(primaryColor).
				Foreground(primaryColor)

	infoTxtStyle = lipgloss.NewStyle().
			Margin(1, 0).
			Foreground(whiteColor).
			Faint(true)
	helpTxtStyle = lipgloss.NewStyle().
			Foreground(greyColor).
			Italic(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Padding(0, 1)
	activeCategoryStyle = categoryStyle.
				Background(primaryColor).
				Foreground(lipgloss.AdaptiveColor{Light: "#F4EBD9", Dark: "#2C2416"})
	catalogNumberStyle = lipgloss.NewStyle().
				Foreground(primarySubtleColor).
				Italic(true)

	conversationContainerStyle = lipgloss.NewStyle().
					Border(lipgloss.NormalBorder(), false, true, false, false).
					BorderForeground(greyColor).
					Padding(0, 1)
	chatHeaderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(greyColor).
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1)
	chatTxtareaStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), true, false, false, false).
				BorderForeground(greyColor)
	chatBubbleLStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(greyColor).
				Foreground(whiteColor).
				Padding(0, 1)
	chatBubbleRStyle = chatBubbleLStyle.
				BorderForeground(primaryColor)
	pendingBubbleStyle = chatBubbleRStyle.
				BorderForeground(greyColor).
				Faint(true)
	daySeparatorStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Italic(true)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), true).
			BorderForeground(primaryColor).
			Foreground(whiteColor).
			Padding(0, 1).
			Width(44)
	errContainerStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder(), true).
				BorderForeground(dangerColor).
				Foreground(whiteColor).
				Padding(0, 1).
				Width(60)
	errHeaderStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)
)

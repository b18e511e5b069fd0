package tui

import (
	"github.com/M0hammadUsman/campusboard/internal/notify"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func renderToast(n notify.Notification) string {
	title := "New message"
	if n.Sender != "" {
		title += " from " + n.Sender
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(primaryColor).Bold(true).Render(title),
		"You have received a new direct message.",
		helpTxtStyle.Render("ctrl+o view messages • esc dismiss"),
	)
	return toastStyle.Render(body)
}

func renderErr(e *errMsg, timer string) string {
	h := lipgloss.JoinHorizontal(lipgloss.Left,
		errHeaderStyle.Render("Something went wrong"),
		lipgloss.NewStyle().Foreground(dangerColor).MarginLeft(2).Render(timer),
	)
	// 56 fits errContainerStyle's width minus its frame
	d := ansi.Wordwrap(e.err, 56, " ")
	return errContainerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, h, d))
}

package tui

import (
	"strings"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ChatViewportModel struct {
	vp    viewport.Model
	msgs  []*domain.Message
	usrID string
}

func InitialChatViewport() ChatViewportModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true
	return ChatViewportModel{vp: vp}
}

func (m ChatViewportModel) Update(msg tea.Msg) (ChatViewportModel, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m ChatViewportModel) View() string {
	return m.vp.View()
}

func (m *ChatViewportModel) setSize(w, h int) {
	m.vp.Width = w
	m.vp.Height = max(1, h)
	m.vp.SetContent(m.renderMessages())
}

// setMessages re-renders, following the bottom when messages were appended
func (m *ChatViewportModel) setMessages(msgs []*domain.Message) {
	follow := m.vp.AtBottom() || len(msgs) != len(m.msgs)
	m.msgs = msgs
	m.vp.SetContent(m.renderMessages())
	if follow {
		m.vp.GotoBottom()
	}
}

func (m *ChatViewportModel) renderMessages() string {
	var sb strings.Builder
	var prevDay string
	cb := lipgloss.NewStyle().Width(max(0, m.vp.Width-2))
	for _, msg := range m.msgs {
		day := msg.CreatedAt.Local().Format(time.DateOnly)
		if day != prevDay {
			prevDay = day
			sb.WriteString("\n")
			sb.WriteString(cb.Align(lipgloss.Center).Render(daySeparatorStyle.Render(msg.CreatedAt.Local().Format("January 02, 2006"))))
			sb.WriteString("\n")
		}
		align := lipgloss.Left
		if msg.SenderID == m.usrID {
			align = lipgloss.Right
		}
		sb.WriteString("\n")
		sb.WriteString(cb.Align(align).Render(m.renderBubble(msg)))
	}
	return sb.String()
}

func (m *ChatViewportModel) renderBubble(msg *domain.Message) string {
	txtWidth := max(1, min(m.vp.Width-20, lipgloss.Width(msg.Content)+2))
	sentAt := lipgloss.NewStyle().Faint(true).Foreground(whiteColor).Render(msg.CreatedAt.Local().Format(time.Kitchen))
	if msg.SenderID != m.usrID {
		bubble := chatBubbleLStyle.Width(txtWidth).Render(msg.Content)
		return lipgloss.JoinHorizontal(lipgloss.Center, bubble, " ", sentAt)
	}
	style, status := chatBubbleRStyle, "⁑"
	switch {
	case msg.Pending:
		style, status = pendingBubbleStyle, "⁎"
	case msg.Read:
		status = "⁂"
	}
	status = lipgloss.NewStyle().Faint(true).Foreground(primaryColor).Render(status)
	return lipgloss.JoinHorizontal(lipgloss.Center, status, " ", sentAt, " ", style.Width(txtWidth).Render(msg.Content))
}

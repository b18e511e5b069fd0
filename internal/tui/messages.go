package tui

import (
	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

const (
	messagesConversation = "messagesConversation"
	messagesChat         = "messagesChat"
)

// MessagesModel puts the conversation list next to the open chat
type MessagesModel struct {
	conversation ConversationModel
	chat         ChatModel
	chatFocused  bool
}

func InitialMessagesModel(c *client.Client) MessagesModel {
	return MessagesModel{
		conversation: InitialConversationModel(c),
		chat:         InitialChatModel(c),
	}
}

func (m MessagesModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m MessagesModel) Update(msg tea.Msg) (MessagesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" && m.chatFocused && !m.chat.chatTxtarea.Focused() {
			m.setFocus(false)
			return m, nil
		}
		var cmd tea.Cmd
		if m.chatFocused {
			m.chat, cmd = m.chat.Update(msg)
		} else {
			m.conversation, cmd = m.conversation.Update(msg)
		}
		return m, cmd
	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft {
			if zone.Get(messagesConversation).InBounds(msg) {
				m.setFocus(false)
			} else if zone.Get(messagesChat).InBounds(msg) && m.chat.convID != "" {
				m.setFocus(true)
			}
		}
	case openConversationMsg:
		m.setFocus(true)
	case loginStateMsg:
		m.chat.close()
		m.setFocus(false)
	}
	cmds := make([]tea.Cmd, 2)
	m.conversation, cmds[0] = m.conversation.Update(msg)
	m.chat, cmds[1] = m.chat.Update(msg)
	return m, tea.Batch(cmds...)
}

func (m MessagesModel) View() string {
	convo := zone.Mark(messagesConversation, m.conversation.View())
	chat := zone.Mark(messagesChat, m.chat.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, convo, chat)
}

func (m *MessagesModel) setFocus(chat bool) {
	m.chatFocused = chat
	m.conversation.focus = !chat
	m.chat.focus = chat
	if !chat {
		m.chat.chatTxtarea.Blur()
	}
}

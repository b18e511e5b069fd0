package tui

import (
	"time"

	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/M0hammadUsman/campusboard/internal/notify"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ChatModel struct {
	chatTxtarea  textarea.Model
	chatViewport ChatViewportModel
	convID       string
	conv         *domain.Conversation
	// the post this conversation was started in response to
	respondingTo *domain.Post
	focus        bool
	// a send is in flight, further sends wait for its result to keep the order
	sending      bool
	// latest message timestamp already marked read, newer unread messages get marked while shown
	readThrough  time.Time
	client       *client.Client
}

type sendResultMsg struct {
	convID  string
	content string
	err     error
}

func InitialChatModel(c *client.Client) ChatModel {
	return ChatModel{
		chatTxtarea:  newChatTxtArea(),
		chatViewport: InitialChatViewport(),
		client:       c,
	}
}

func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateDimensions()
		m.render()
		return m, nil
	case inboxMsg:
		m.setConversation(msg.in)
		if m.conv != nil && m.conv.Unread && m.conv.Timestamp.After(m.readThrough) &&
			m.client.Deriver.View() == notify.ViewMessages {
			cmd := m.markAsRead()
			return m, cmd
		}
		return m, nil
	case openConversationMsg:
		if msg.id != m.convID {
			m.respondingTo = msg.post
			m.readThrough = time.Time{}
		}
		m.convID = msg.id
		m.setConversation(m.client.Sync.Snapshot())
		m.updateDimensions()
		cmd := tea.Batch(m.chatTxtarea.Focus(), m.markAsRead())
		return m, cmd
	case tea.KeyMsg:
		if !m.focus || m.convID == "" {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+s":
			if m.sending {
				return m, nil
			}
			content := m.chatTxtarea.Value()
			m.chatTxtarea.Reset()
			m.sending = true
			return m, m.sendMessage(content)
		case "esc":
			m.chatTxtarea.Blur()
			return m, nil
		case "ctrl+t":
			cmd := m.chatTxtarea.Focus()
			return m, cmd
		}
		if !m.chatTxtarea.Focused() {
			var cmd tea.Cmd
			m.chatViewport, cmd = m.chatViewport.Update(msg)
			return m, cmd
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chatViewport, cmd = m.chatViewport.Update(msg)
		return m, cmd
	case sendResultMsg:
		m.sending = false
		if msg.err == nil {
			return m, nil
		}
		// give the text back for another try unless something new was typed meanwhile
		if msg.convID == m.convID && m.chatTxtarea.Value() == "" {
			m.chatTxtarea.SetValue(msg.content)
		}
		return m, func() tea.Msg { return newErrMsg("Unable to send message", msg.err) }
	}
	var cmd tea.Cmd
	m.chatTxtarea, cmd = m.chatTxtarea.Update(msg)
	return m, cmd
}

func (m ChatModel) View() string {
	if m.conv == nil {
		return lipgloss.NewStyle().
			Width(chatWidth()).
			Height(terminalHeight-8).
			Align(lipgloss.Center).
			AlignVertical(lipgloss.Center).
			Render(helpTxtStyle.Render("pick a conversation, or respond to a post on the board"))
	}
	h := chatHeaderStyle.Width(chatWidth()).Render(m.conv.Participant)
	if m.respondingTo != nil && len(m.conv.Messages) == 0 {
		h = lipgloss.JoinVertical(lipgloss.Left, h,
			infoTxtStyle.Render("Responding to "+m.respondingTo.CatalogNumber+": "+firstLine(m.respondingTo.Content)))
	}
	ta := chatTxtareaStyle.Width(chatWidth()).Render(m.chatTxtarea.View())
	help := helpTxtStyle.Render("ctrl+s send • esc stop typing • ctrl+t type")
	if m.sending {
		help = helpTxtStyle.Render("sending...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, h, m.chatViewport.View(), ta, help)
}

// setConversation picks the open conversation out of in & re-renders it
func (m *ChatModel) setConversation(in *domain.Inbox) {
	if m.convID == "" {
		return
	}
	c := in.Get(m.convID)
	if c == nil {
		// a refresh that does not contain it yet, keep what is shown
		return
	}
	m.conv = c
	m.chatViewport.usrID = in.UserID
	m.render()
}

func (m *ChatModel) render() {
	if m.conv != nil {
		m.chatViewport.setMessages(m.conv.Messages)
	}
}

func (m *ChatModel) close() {
	m.convID = ""
	m.conv = nil
	m.respondingTo = nil
	m.sending = false
	m.readThrough = time.Time{}
	m.chatTxtarea.Reset()
	m.chatTxtarea.Blur()
}

func newChatTxtArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = ""
	ta.CharLimit = domain.MaxMessageBytes
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Cursor.Style = lipgloss.NewStyle().Foreground(primaryColor)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle().Foreground(whiteColor)
	return ta
}

func (m *ChatModel) updateDimensions() {
	m.chatTxtarea.SetWidth(chatWidth() - chatTxtareaStyle.GetHorizontalFrameSize())
	m.chatViewport.setSize(chatWidth(), terminalHeight-18)
}

func (m ChatModel) sendMessage(content string) tea.Cmd {
	id := m.convID
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		// the placeholder & its confirmation arrive through the inbox broadcast
		_, err := m.client.Sync.SendMessage(ctx, id, content)
		return sendResultMsg{convID: id, content: content, err: err}
	}
}

func (m *ChatModel) markAsRead() tea.Cmd {
	if m.conv == nil || !m.conv.Unread {
		return nil
	}
	m.readThrough = m.conv.Timestamp
	id := m.convID
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		if err := m.client.Sync.MarkConversationAsRead(ctx, id); err != nil {
			return newErrMsg("Unable to mark the conversation as read", err)
		}
		return nil
	}
}

func chatWidth() int {
	return max(20, terminalWidth-conversationWidth()-8)
}

package tui

import (
	"time"

	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

const conversationNewBar = "conversationNewBar"

type conversationItem struct{ c *domain.Conversation }

func (i conversationItem) Title() string {
	t := zone.Mark(i.c.ID, i.c.Participant)
	if i.c.Unread {
		t = unreadDotStyle.Render("● ") + t
	}
	return t
}

func (i conversationItem) Description() string {
	if i.c.LastMessage == "" {
		return "no messages yet"
	}
	return i.c.Timestamp.Local().Format(time.Kitchen) + " " + firstLine(i.c.LastMessage)
}

func (i conversationItem) FilterValue() string { return i.c.Participant }

type ConversationModel struct {
	conversationList list.Model
	// username to start a new conversation with
	newConvo textinput.Model
	loading  bool
	focus    bool
	client   *client.Client
}

func InitialConversationModel(c *client.Client) ConversationModel {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor).
		BorderStyle(lipgloss.ThickBorder())
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(primarySubtleColor).
		BorderForeground(primaryColor).
		BorderStyle(lipgloss.ThickBorder())

	l := list.New(nil, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("conversation", "conversations")
	l.Styles.NoItems = l.Styles.NoItems.
		Margin(1, 1).
		Foreground(primarySubtleColor).
		SetString("No conversations, ctrl+n to start one")

	ti := textinput.New()
	ti.Prompt = "@"
	ti.CharLimit = 32
	ti.Placeholder = "username, then enter"
	ti.TextStyle = lipgloss.NewStyle().Foreground(primaryColor)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ConversationModel{
		conversationList: l,
		newConvo:         ti,
		focus:            true,
		client:           c,
	}
}

func (m ConversationModel) Update(msg tea.Msg) (ConversationModel, tea.Cmd) {
	m.conversationList.KeyMap = conversationListKeyMap(m.focus && !m.newConvo.Focused())
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.conversationList.SetSize(conversationWidth()-4, terminalHeight-12)
		m.newConvo.Width = conversationWidth() - 8
		return m, nil
	case inboxMsg:
		m.loading = m.client.Sync.Loading()
		cmd := m.setConversations(msg.in)
		return m, cmd
	case tea.KeyMsg:
		if !m.focus {
			return m, nil
		}
		if m.newConvo.Focused() {
			switch msg.String() {
			case "enter":
				username := m.newConvo.Value()
				m.newConvo.Reset()
				m.newConvo.Blur()
				return m, m.openWith(username, nil)
			case "esc":
				m.newConvo.Reset()
				m.newConvo.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.newConvo, cmd = m.newConvo.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+n":
			cmd := m.newConvo.Focus()
			return m, cmd
		case "enter":
			if item, ok := m.conversationList.SelectedItem().(conversationItem); ok {
				return m, openConversation(item.c.ID, nil)
			}
		}
	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft {
			if zone.Get(conversationNewBar).InBounds(msg) {
				cmd := m.newConvo.Focus()
				return m, cmd
			}
			for i, item := range m.conversationList.VisibleItems() {
				c := item.(conversationItem).c
				if zone.Get(c.ID).InBounds(msg) {
					m.conversationList.Select(i)
					return m, openConversation(c.ID, nil)
				}
			}
		}
	}
	var cmd tea.Cmd
	m.conversationList, cmd = m.conversationList.Update(msg)
	return m, cmd
}

func (m ConversationModel) View() string {
	bar := inputStyle.Width(conversationWidth() - 4)
	if m.newConvo.Focused() {
		bar = activeInputStyle.Width(conversationWidth() - 4)
	}
	s := zone.Mark(conversationNewBar, bar.Render(m.newConvo.View()))
	l := m.conversationList.View()
	if m.loading && len(m.conversationList.Items()) == 0 {
		l = helpTxtStyle.Render("getting conversations...")
	}
	return conversationContainerStyle.
		Width(conversationWidth()).
		Height(terminalHeight - 8).
		Render(lipgloss.JoinVertical(lipgloss.Left, s, l))
}

// setConversations replaces the items keeping the selection on the same conversation
func (m *ConversationModel) setConversations(in *domain.Inbox) tea.Cmd {
	var selID string
	if item, ok := m.conversationList.SelectedItem().(conversationItem); ok {
		selID = item.c.ID
	}
	items := make([]list.Item, len(in.Conversations))
	sel := 0
	for i, c := range in.Conversations {
		items[i] = conversationItem{c}
		if c.ID == selID {
			sel = i
		}
	}
	cmd := m.conversationList.SetItems(items)
	m.conversationList.Select(sel)
	return cmd
}

func (m ConversationModel) openWith(username string, post *domain.Post) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		id, err := m.client.Sync.OpenConversationWith(ctx, username)
		if err != nil {
			return newErrMsg("Unable to open the conversation", err)
		}
		return openConversationMsg{id: id, post: post}
	}
}

func openConversation(id string, post *domain.Post) tea.Cmd {
	return func() tea.Msg { return openConversationMsg{id: id, post: post} }
}

func conversationListKeyMap(enabled bool) list.KeyMap {
	km := list.DefaultKeyMap()
	if !enabled {
		kb := key.NewBinding() // disable keybindings when out of focus
		km.CursorUp = kb
		km.CursorDown = kb
		km.NextPage = kb
		km.PrevPage = kb
		km.GoToStart = kb
		km.GoToEnd = kb
		km.ShowFullHelp = kb
	}
	return km
}

func conversationWidth() int {
	return max(24, terminalWidth/3)
}

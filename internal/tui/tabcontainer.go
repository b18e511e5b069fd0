package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/M0hammadUsman/campusboard/internal/notify"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

const (
	boardTab = iota
	messagesTab
	composeTab
)

type subscription struct {
	inboxToken, postsToken, loginToken int
	inboxes                            <-chan *domain.Inbox
	posts                              <-chan []*domain.Post
	logins                             <-chan *domain.User
}

// TabContainerModel -> main TUI model for this application
type TabContainerModel struct {
	feed      FeedModel
	messages  MessagesModel
	compose   ComposeModel
	login     LoginModel
	tabs      []string
	activeTab int
	usr       *domain.User
	toast     *notify.Notification
	errMsg    *errMsg
	timer     timer.Model
	stopwatch stopwatch.Model
	spinner   spinner.Model
	client    *client.Client
	sub       subscription
}

func InitialTabContainerModel(c *client.Client) TabContainerModel {
	var sub subscription
	sub.inboxToken, sub.inboxes = c.Sync.Inboxes.Subscribe()
	sub.postsToken, sub.posts = c.Board.Posts.Subscribe()
	sub.loginToken, sub.logins = c.Session.LoginState.Subscribe()
	usr, _ := c.Session.CurrentUser(context.Background())
	return TabContainerModel{
		feed:     InitialFeedModel(c),
		messages: InitialMessagesModel(c),
		compose:  InitialComposeModel(c),
		login:    InitialLoginModel(c),
		tabs: []string{
			"📌 BOARD",
			"💭 MESSAGES",
			"✎ COMPOSE",
		},
		usr:       usr,
		timer:     timer.New(0),
		stopwatch: stopwatch.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Points), spinner.WithStyle(lipgloss.NewStyle().Foreground(primaryColor))),
		client:    c,
		sub:       sub,
	}
}

func (m TabContainerModel) Init() tea.Cmd {
	return tea.Batch(
		m.feed.Init(),
		m.messages.Init(),
		m.compose.Init(),
		m.login.Init(),
		m.stopwatch.Init(),
		m.spinner.Tick,
		m.listenInbox(),
		m.listenPosts(),
		m.listenLogin(),
		m.listenNotifications(),
	)
}

func (m TabContainerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		terminalWidth = msg.Width
		terminalHeight = msg.Height
		cmd := m.updateAll(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.unsubBroadcasts()
			return m, tea.Quit
		case "ctrl+right":
			cmd := m.setTab(min(m.activeTab+1, len(m.tabs)-1))
			return m, cmd
		case "ctrl+left":
			cmd := m.setTab(max(m.activeTab-1, 0))
			return m, cmd
		case "ctrl+o":
			if m.toast != nil {
				n := *m.toast
				m.toast = nil
				// entering messages while notifying marks the conversation read
				cmd := m.setTab(messagesTab)
				return m, tea.Batch(cmd, openConversation(n.ConversationID, nil))
			}
		case "ctrl+x":
			if m.usr != nil {
				return m, m.signOut()
			}
		case "esc":
			if m.errMsg != nil {
				m.errMsg = nil
				return m, nil
			}
			if m.toast != nil {
				m.toast = nil
				m.client.Deriver.Dismiss()
				return m, nil
			}
		}
		cmd := m.updateActive(msg)
		return m, cmd

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft {
			for i, t := range m.tabs {
				if zone.Get(t).InBounds(msg) {
					cmd := m.setTab(i)
					return m, cmd
				}
			}
		}
		cmd := m.updateActive(msg)
		return m, cmd

	case inboxMsg:
		var cmd tea.Cmd
		m.messages, cmd = m.messages.Update(msg)
		return m, tea.Batch(cmd, m.listenInbox())

	case postsMsg:
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return m, tea.Batch(cmd, m.listenPosts())

	case loginStateMsg:
		m.usr = msg.usr
		m.toast = nil
		cmds := []tea.Cmd{m.listenLogin(), m.updateAll(msg)}
		if msg.usr == nil {
			cmds = append(cmds, m.setTab(boardTab))
		}
		return m, tea.Batch(cmds...)

	case notificationMsg:
		n := notify.Notification(msg)
		if current, ok := m.client.Deriver.Current(); ok && current == n {
			m.toast = &n
		}
		return m, m.listenNotifications()

	case respondToPostMsg:
		if m.usr == nil {
			cmd := m.setTab(messagesTab)
			return m, cmd
		}
		if msg.post.UserID == m.usr.ID {
			return m, func() tea.Msg { return &errMsg{err: "That's your own post"} }
		}
		cmd := m.setTab(messagesTab)
		return m, tea.Batch(cmd, m.messages.conversation.openWith(msg.post.Author, msg.post))

	case postCreatedMsg:
		var cmd tea.Cmd
		m.compose, cmd = m.compose.Update(msg)
		tabCmd := m.setTab(boardTab)
		return m, tea.Batch(cmd, tabCmd, m.statusCmd("Pinned as "+msg.post.CatalogNumber))

	case *errMsg:
		m.errMsg = msg
		m.timer = timer.New(3 * time.Second)
		cmd := m.updateAll(msg)
		return m, tea.Batch(m.timer.Init(), cmd)

	case statusMsg:
		cmd := m.feed.posts.NewStatusMessage(string(msg))
		return m, cmd

	case timer.TickMsg:
		if m.timer.ID() == msg.ID {
			var cmd tea.Cmd
			m.timer, cmd = m.timer.Update(msg)
			return m, cmd
		}

	case timer.TimeoutMsg:
		if m.timer.ID() == msg.ID {
			m.errMsg = nil
		}
		return m, nil

	case spinner.TickMsg:
		if msg.ID == m.spinner.ID() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case stopwatch.TickMsg, stopwatch.StartStopMsg:
		var cmd tea.Cmd
		m.stopwatch, cmd = m.stopwatch.Update(msg)
		return m, cmd
	}
	cmd := m.updateAll(msg)
	return m, cmd
}

func (m TabContainerModel) View() string {
	tabs := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		s := tabStyle
		if i == m.activeTab {
			s = activeTabStyle
		}
		if i == messagesTab && m.client.Deriver.HasUnread() {
			t += unreadDotStyle.Render(" ●")
		}
		tabs = append(tabs, zone.Mark(m.tabs[i], s.Render(t)))
	}
	t := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	t = m.renderTabsWithStatus(t)

	content := m.activeContent()
	c := tabContainerStyle.
		Width(max(0, terminalWidth-2)).
		Height(max(0, terminalHeight-lipgloss.Height(t)-2)).
		Render(content)
	v := lipgloss.JoinVertical(lipgloss.Left, t, c)
	switch {
	case m.errMsg != nil:
		v = overlayBottomRight(v, renderErr(m.errMsg, m.timer.View()))
	case m.toast != nil:
		v = overlayBottomRight(v, renderToast(*m.toast))
	}
	return zone.Scan(v)
}

// Helpers & Stuff -----------------------------------------------------------------------------------------------------

func (m TabContainerModel) activeContent() string {
	if m.usr == nil && m.activeTab != boardTab {
		return m.login.View()
	}
	switch m.activeTab {
	case boardTab:
		return m.feed.View()
	case messagesTab:
		return m.messages.View()
	case composeTab:
		return m.compose.View()
	default:
		return ""
	}
}

func (m TabContainerModel) renderTabsWithStatus(tabs string) string {
	left := statusTextStyle.Render("Campusboard")
	if m.usr != nil {
		left = statusTextStyle.Render(fmt.Sprintf("Campusboard • %s", m.usr.Username))
	}
	right := statusTextStyle.Render("Session Uptime: " + m.stopwatch.View())
	if m.client.Sync.Loading() {
		right = statusTextStyle.Render("Getting conversations " + m.spinner.View())
	}
	gap := max(0, terminalWidth-lipgloss.Width(tabs)-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		left,
		lipgloss.NewStyle().Width(gap/2).Render(""),
		tabs,
		lipgloss.NewStyle().Width(gap-gap/2).Render(""),
		right,
	)
}

func overlayBottomRight(bg, fg string) string {
	w := lipgloss.Width(bg)
	return lipgloss.JoinVertical(lipgloss.Right, bg, lipgloss.PlaceHorizontal(w, lipgloss.Right, fg))
}

// setTab switches tabs & tells the deriver which view is active
func (m *TabContainerModel) setTab(i int) tea.Cmd {
	m.activeTab = i
	view := notify.ViewFeed
	if i == messagesTab && m.usr != nil {
		view = notify.ViewMessages
		m.toast = nil
	}
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		if err := m.client.Deriver.SetView(ctx, view); err != nil {
			return newErrMsg("Unable to mark the conversation as read", err)
		}
		return nil
	}
}

func (m *TabContainerModel) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.usr == nil && m.activeTab != boardTab {
		m.login, cmd = m.login.Update(msg)
		return cmd
	}
	switch m.activeTab {
	case boardTab:
		m.feed, cmd = m.feed.Update(msg)
	case messagesTab:
		m.messages, cmd = m.messages.Update(msg)
	case composeTab:
		m.compose, cmd = m.compose.Update(msg)
	}
	return cmd
}

func (m *TabContainerModel) updateAll(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 4)
	m.feed, cmds[0] = m.feed.Update(msg)
	m.messages, cmds[1] = m.messages.Update(msg)
	m.compose, cmds[2] = m.compose.Update(msg)
	m.login, cmds[3] = m.login.Update(msg)
	return tea.Batch(cmds...)
}

func (m TabContainerModel) statusCmd(s string) tea.Cmd {
	return func() tea.Msg { return statusMsg(s) }
}

func (m TabContainerModel) signOut() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		if err := m.client.SignOut(ctx); err != nil {
			slog.Error("signing out", "err", err)
			return newErrMsg("Unable to sign out", err)
		}
		return nil
	}
}

func (m TabContainerModel) listenInbox() tea.Cmd {
	return listen(m.sub.inboxes, func(in *domain.Inbox) tea.Msg { return inboxMsg{in} })
}

func (m TabContainerModel) listenPosts() tea.Cmd {
	return listen(m.sub.posts, func(p []*domain.Post) tea.Msg { return postsMsg(p) })
}

func (m TabContainerModel) listenLogin() tea.Cmd {
	return listen(m.sub.logins, func(usr *domain.User) tea.Msg { return loginStateMsg{usr} })
}

func (m TabContainerModel) listenNotifications() tea.Cmd {
	return listen(m.client.Deriver.Events(), func(n notify.Notification) tea.Msg { return notificationMsg(n) })
}

func (m TabContainerModel) unsubBroadcasts() {
	m.client.Sync.Inboxes.Unsubscribe(m.sub.inboxToken)
	m.client.Board.Posts.Unsubscribe(m.sub.postsToken)
	m.client.Session.LoginState.Unsubscribe(m.sub.loginToken)
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// filters in the order tab cycles through them
var feedCategories = append([]domain.Category{domain.CategoryAll}, domain.Categories...)

type postItem struct{ post *domain.Post }

func (i postItem) Title() string {
	p := i.post
	return fmt.Sprintf("%s  %s", catalogNumberStyle.Render(p.CatalogNumber), zone.Mark(p.ID, p.Author))
}

func (i postItem) Description() string {
	p := i.post
	return fmt.Sprintf("[%s] %s · %s", p.Category.Label(), firstLine(p.Content), p.CreatedAt.Local().Format("Jan 02 15:04"))
}

func (i postItem) FilterValue() string { return i.post.Content }

type FeedModel struct {
	posts    list.Model
	category int
	client   *client.Client
}

func InitialFeedModel(c *client.Client) FeedModel {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(primarySubtleColor).
		BorderForeground(primaryColor)

	l := list.New(nil, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("post", "posts")
	l.Styles.NoItems = l.Styles.NoItems.Foreground(primarySubtleColor).SetString("Nothing pinned here yet")
	l.StatusMessageLifetime = 2 * time.Second
	return FeedModel{posts: l, client: c}
}

func (m FeedModel) Init() tea.Cmd {
	return nil
}

func (m FeedModel) Update(msg tea.Msg) (FeedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.posts.SetSize(terminalWidth-6, terminalHeight-10)
	case postsMsg:
		items := make([]list.Item, len(msg))
		for i, p := range msg {
			items[i] = postItem{p}
		}
		cmd := m.posts.SetItems(items)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.category = (m.category + 1) % len(feedCategories)
			return m, m.refresh()
		case "shift+tab":
			m.category = (m.category + len(feedCategories) - 1) % len(feedCategories)
			return m, m.refresh()
		case "ctrl+r":
			return m, m.refresh()
		case "enter":
			if p := m.selected(); p != nil {
				return m, func() tea.Msg { return respondToPostMsg{p} }
			}
		case "ctrl+y":
			if p := m.selected(); p != nil {
				if err := clipboard.WriteAll(p.CatalogNumber); err != nil {
					cmd := m.posts.NewStatusMessage("clipboard unavailable")
					return m, cmd
				}
				cmd := m.posts.NewStatusMessage("copied " + p.CatalogNumber)
				return m, cmd
			}
		}
	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft {
			for i, item := range m.posts.VisibleItems() {
				if zone.Get(item.(postItem).post.ID).InBounds(msg) {
					m.posts.Select(i)
					break
				}
			}
		}
	}
	var cmd tea.Cmd
	m.posts, cmd = m.posts.Update(msg)
	return m, cmd
}

func (m FeedModel) View() string {
	cats := make([]string, len(feedCategories))
	for i, c := range feedCategories {
		s := categoryStyle
		if i == m.category {
			s = activeCategoryStyle
		}
		cats[i] = s.Render(c.Label())
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, cats...)
	var body string
	if err := m.client.Board.Err(); err != nil {
		body = errHeaderStyle.Render("Unable to load the board, ctrl+r to retry")
	}
	help := helpTxtStyle.Render("tab category • enter respond • ctrl+y copy reference • ctrl+r refresh")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.posts.View(), help)
}

func (m FeedModel) selected() *domain.Post {
	item, ok := m.posts.SelectedItem().(postItem)
	if !ok {
		return nil
	}
	return item.post
}

func (m FeedModel) refresh() tea.Cmd {
	category := feedCategories[m.category]
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		// posts arrive through the board broadcast
		m.client.Board.Refresh(ctx, category)
		return nil
	}
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return s
}

package tui

import (
	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ComposeModel struct {
	content  textarea.Model
	category int // index into domain.Categories
	posting  bool
	client   *client.Client
}

func InitialComposeModel(c *client.Client) ComposeModel {
	ta := textarea.New()
	ta.Placeholder = "Seen someone? Lost something? Pin it to the board..."
	ta.ShowLineNumbers = false
	ta.CharLimit = domain.MaxMessageBytes
	ta.Prompt = ""
	ta.Cursor.Style = lipgloss.NewStyle().Foreground(primaryColor)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle().Foreground(whiteColor)
	ta.SetHeight(8)
	return ComposeModel{content: ta, client: c}
}

func (m ComposeModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m ComposeModel) Update(msg tea.Msg) (ComposeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.content.SetWidth(terminalWidth - 8)
	case tea.KeyMsg:
		if !m.content.Focused() {
			cmd := m.content.Focus()
			return m, cmd
		}
		switch msg.String() {
		case "tab":
			m.category = (m.category + 1) % len(domain.Categories)
			return m, nil
		case "ctrl+s":
			if m.posting {
				return m, nil
			}
			m.posting = true
			return m, m.post(m.content.Value(), domain.Categories[m.category])
		case "esc":
			m.content.Blur()
			return m, nil
		}
	case postCreatedMsg:
		m.posting = false
		m.content.Reset()
		return m, nil
	case *errMsg:
		m.posting = false
	}
	var cmd tea.Cmd
	m.content, cmd = m.content.Update(msg)
	return m, cmd
}

func (m ComposeModel) View() string {
	cats := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		s := categoryStyle
		if i == m.category {
			s = activeCategoryStyle
		}
		cats[i] = s.Render(c.Label())
	}
	status := helpTxtStyle.Render("tab category • ctrl+s post anonymously • esc stop typing")
	if m.posting {
		status = helpTxtStyle.Render("pinning...")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, cats...),
		chatTxtareaStyle.Render(m.content.View()),
		status,
	)
}

func (m ComposeModel) post(content string, category domain.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		p, err := m.client.Board.CreatePost(ctx, content, category)
		if err != nil {
			return newErrMsg("Unable to post", err)
		}
		return postCreatedMsg{p}
	}
}

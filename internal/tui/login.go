package tui

import (
	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type LoginModel struct {
	username textinput.Model
	spinner  spinner.Model
	spin     bool
	errMsg   string
	client   *client.Client
}

func InitialLoginModel(c *client.Client) LoginModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 32
	ti.Placeholder = "pick a username..."
	ti.TextStyle = lipgloss.NewStyle().Foreground(primaryColor)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(primaryColor)
	ti.Focus()

	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)
	s.Spinner = spinner.Points
	return LoginModel{username: ti, spinner: s, client: c}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.errMsg = ""
		if msg.String() == "enter" && !m.spin {
			m.spin = true
			return m, tea.Batch(m.spinner.Tick, m.signIn(m.username.Value()))
		}
	case *errMsg:
		m.spin = false
		m.errMsg = msg.err
		return m, nil
	case loginStateMsg:
		m.spin = false
		m.username.Reset()
		return m, nil
	case spinner.TickMsg:
		if !m.spin {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	return m, cmd
}

func (m LoginModel) View() string {
	in := activeInputStyle.Width(34).Render(m.username.View())
	info := infoTxtStyle.Render("Anonymous to the board, known only to the people you message.")
	status := helpTxtStyle.Render("enter to sign in • ctrl+c to quit")
	if m.spin {
		status = m.spinner.View()
	}
	if m.errMsg != "" {
		status = errHeaderStyle.Render(m.errMsg)
	}
	form := lipgloss.JoinVertical(lipgloss.Center, campusboardLogo, info, in, status)
	return lipgloss.Place(terminalWidth-4, terminalHeight-8,
		lipgloss.Center, lipgloss.Center,
		form,
		lipgloss.WithWhitespaceChars("▄▀"),
		lipgloss.WithWhitespaceForeground(greyColor))
}

func (m LoginModel) signIn(username string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ioCtx()
		defer cancel()
		// the session's login state broadcast moves the app past this screen
		if _, err := m.client.SignIn(ctx, username); err != nil {
			return newErrMsg("Unable to sign in", err)
		}
		return nil
	}
}

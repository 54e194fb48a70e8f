package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/stockdeck/internal/route"
	"github.com/fyrsmithlabs/stockdeck/internal/session"
)

// accountModel renders the signed-in user's profile and hosts logout.
type accountModel struct {
	session *session.Session
}

func newAccountModel(sess *session.Session) accountModel {
	return accountModel{session: sess}
}

func (m accountModel) Init() tea.Cmd { return nil }

func (m accountModel) Update(msg tea.Msg) (accountModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "b":
			return m, navigate(route.SectionRoot)
		case "l":
			return m, func() tea.Msg { return logoutMsg{} }
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// initials derives a two-letter avatar fallback from the display name,
// or from the email when no display name is set.
func initials(sess *session.Session) string {
	source := strings.TrimSpace(sess.DisplayName)
	if source == "" {
		source = sess.Email
	}
	parts := strings.Fields(source)
	switch {
	case len(parts) >= 2:
		return strings.ToUpper(firstRunes(parts[0], 1) + firstRunes(parts[1], 1))
	case len(parts) == 1:
		return strings.ToUpper(firstRunes(parts[0], 2))
	}
	return "??"
}

// firstRunes slices by rune so multibyte names keep valid initials.
func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

func (m accountModel) View() string {
	sess := m.session
	content := headerStyle.Render(" Account ") + "\n\n"

	content += "  " + selectedStyle.Render("("+initials(sess)+")") + "  "
	name := sess.DisplayName
	if name == "" {
		name = sess.Email
	}
	content += valueStyle.Render(name) + "\n\n"

	content += "  " + labelStyle.Render("Email:  ") + valueStyle.Render(sess.Email) + "\n"
	if sess.DisplayName != "" {
		content += "  " + labelStyle.Render("Name:   ") + valueStyle.Render(sess.DisplayName) + "\n"
	}
	status := sess.Status
	if status == "" {
		status = "active"
	}
	content += "  " + labelStyle.Render("Status: ") + successStyle.Render(status) + "\n"
	if sess.AvatarURL != "" {
		content += "  " + labelStyle.Render("Avatar: ") + dimStyle.Render(sess.AvatarURL) + "\n"
	}

	content += "\n" + footerHint("l", "log out", "q", "quit", "esc", "back to stocks")
	return containerStyle.Render(content)
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/stockdeck/internal/session"
)

// Shell-level messages. Workspace-local messages live next to their models.

// sessionHydratedMsg carries the persisted session read at startup. A nil
// session means unauthenticated.
type sessionHydratedMsg struct {
	session *session.Session
}

// sessionStartedMsg is emitted by the login view after a successful login.
// The shell persists the seed and navigates to the default view.
type sessionStartedMsg struct {
	session *session.Session
}

// logoutMsg tears the session down: clear the store, drop in-memory state,
// navigate to the login path.
type logoutMsg struct{}

// navigateMsg moves the shell to a new location path. The shell re-resolves
// the view on receipt.
type navigateMsg struct {
	path string
}

// navigate returns a command that moves the shell to path.
func navigate(path string) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{path: path}
	}
}

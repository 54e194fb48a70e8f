package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/stockdeck/internal/auth"
	"github.com/fyrsmithlabs/stockdeck/internal/session"
)

// authMode selects between the login and signup forms.
type authMode int

const (
	modeLogin authMode = iota
	modeSignup
)

// Field order within the signup form.
const (
	fieldDisplayName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	loginFieldCount  = 2 // email, password
	signupFieldCount = 4
)

// loginDoneMsg is the outcome of a login submission.
type loginDoneMsg struct {
	session *session.Session
	err     error
}

// signupDoneMsg is the outcome of a signup submission.
type signupDoneMsg struct {
	message string
	err     error
}

// loginModel renders the auth card. It validates nothing itself; the
// gateway owns validation so the same rules hold for every caller.
type loginModel struct {
	gateway *auth.Gateway

	mode       authMode
	inputs     [signupFieldCount]textinput.Model
	focus      int
	message    banner
	submitting bool
}

func newLoginModel(gateway *auth.Gateway) loginModel {
	m := loginModel{gateway: gateway}

	displayName := textinput.New()
	displayName.Placeholder = "Your name as shown publicly"
	displayName.Prompt = "Display name: "

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email: "

	password := textinput.New()
	password.Placeholder = "Minimum 8 characters"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword

	confirm := textinput.New()
	confirm.Placeholder = "Re-enter your password"
	confirm.Prompt = "Confirm password: "
	confirm.EchoMode = textinput.EchoPassword

	m.inputs[fieldDisplayName] = displayName
	m.inputs[fieldEmail] = email
	m.inputs[fieldPassword] = password
	m.inputs[fieldConfirm] = confirm

	m.focus = fieldEmail
	m.inputs[fieldEmail].Focus()
	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

// visibleFields returns the input indexes active for the current mode, in
// display order.
func (m loginModel) visibleFields() []int {
	if m.mode == modeSignup {
		return []int{fieldDisplayName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+t":
			return m.switchMode(), nil
		case "tab", "down":
			return m.moveFocus(1), nil
		case "shift+tab", "up":
			return m.moveFocus(-1), nil
		case "enter":
			return m.submit()
		}

	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			// One-shot banner; the form stays populated for re-submission.
			m.message = banner{text: msg.err.Error(), isError: true}
			return m, nil
		}
		seed := msg.session
		return m, func() tea.Msg { return sessionStartedMsg{session: seed} }

	case signupDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.message = banner{text: msg.err.Error(), isError: true}
			return m, nil
		}
		// Back to login mode, preserving the confirmation message.
		m = m.switchMode()
		m.message = banner{text: msg.message}
		return m, nil
	}

	// Everything else (runes, paste, blink) goes to the focused input.
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// switchMode flips login/signup, clearing inputs and any stale message.
func (m loginModel) switchMode() loginModel {
	if m.mode == modeLogin {
		m.mode = modeSignup
	} else {
		m.mode = modeLogin
	}
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.message = banner{}
	fields := m.visibleFields()
	m.focus = fields[0]
	m.inputs[m.focus].Focus()
	return m
}

func (m loginModel) moveFocus(delta int) loginModel {
	fields := m.visibleFields()
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
			break
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.inputs[m.focus].Blur()
	m.focus = fields[pos]
	m.inputs[m.focus].Focus()
	return m
}

// submit dispatches the mode's gateway call. Validation failures come back
// as loginDoneMsg/signupDoneMsg errors; the gateway guarantees no request
// was sent for those.
func (m loginModel) submit() (loginModel, tea.Cmd) {
	gateway := m.gateway
	email := m.inputs[fieldEmail].Value()
	password := m.inputs[fieldPassword].Value()

	m.message = banner{}
	m.submitting = true

	if m.mode == modeLogin {
		return m, func() tea.Msg {
			sess, err := gateway.Login(context.Background(), email, password)
			return loginDoneMsg{session: sess, err: err}
		}
	}

	displayName := m.inputs[fieldDisplayName].Value()
	confirm := m.inputs[fieldConfirm].Value()
	return m, func() tea.Msg {
		message, err := gateway.Signup(context.Background(), email, password, displayName, confirm)
		return signupDoneMsg{message: message, err: err}
	}
}

func (m loginModel) View() string {
	title := "Welcome back"
	subhead := "Log in to manage your stocks."
	action := "log in"
	other := "sign up"
	if m.mode == modeSignup {
		title = "Create your account"
		subhead = "Sign up to start tracking inventory."
		action = "create account"
		other = "log in"
	}

	content := headerStyle.Render(" stockdeck ") + "\n\n"
	content += valueStyle.Render(title) + "\n"
	content += dimStyle.Render(subhead) + "\n\n"

	for _, f := range m.visibleFields() {
		content += m.inputs[f].View() + "\n"
	}

	if m.message.text != "" {
		content += "\n" + m.message.render() + "\n"
	}

	if m.submitting {
		content += "\n" + dimStyle.Render("Submitting...") + "\n"
	}

	content += "\n" + footerHint(
		"enter", action,
		"ctrl+t", "switch to "+other,
		"tab", "next field",
		"ctrl+c", "quit",
	)

	return containerStyle.Render(content)
}

package ui

import (
	"context"
	"runtime"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/route"
)

// healthCheckedMsg carries the backend health probe result.
type healthCheckedMsg struct {
	gen int
	err error
}

// adminModel is the admin panel: a backend health probe. Anything under
// /admin lands here regardless of the remainder of the path.
type adminModel struct {
	client   *api.Client
	probing  bool
	probeErr error
	probed   bool
	gen      int
	spin     spinner.Model
}

func newAdminModel(client *api.Client) adminModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return adminModel{client: client, probing: true, gen: 1, spin: spin}
}

func (m adminModel) Init() tea.Cmd {
	return tea.Batch(m.probeCmd(m.gen), m.spin.Tick)
}

func (m adminModel) probeCmd(gen int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return healthCheckedMsg{gen: gen, err: client.Health(context.Background())}
	}
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case healthCheckedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.probing = false
		m.probed = true
		m.probeErr = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.gen++
			m.probing = true
			return m, m.probeCmd(m.gen)
		case "q":
			return m, tea.Quit
		case "esc", "b":
			return m, navigate(route.SectionRoot)
		}
	}
	return m, nil
}

func (m adminModel) View() string {
	content := headerStyle.Render(" Admin ") + "\n\n"
	content += "  " + labelStyle.Render("Backend health: ")
	switch {
	case m.probing:
		content += m.spin.View() + dimStyle.Render(" checking...")
	case m.probeErr != nil:
		content += errorStyle.Render("unreachable: " + m.probeErr.Error())
	case m.probed:
		content += successStyle.Render("ok")
	}
	content += "\n\n" + sectionStyle.Render("┃ Environment") + "\n"
	content += "  " + labelStyle.Render("Backend:  ") + valueStyle.Render(m.client.BaseURL()) + "\n"
	content += "  " + labelStyle.Render("Platform: ") + valueStyle.Render(runtime.GOOS+"/"+runtime.GOARCH) + "\n"
	content += "  " + labelStyle.Render("Runtime:  ") + valueStyle.Render(runtime.Version()) + "\n"
	content += "\n" + footerHint("r", "re-check", "q", "quit", "esc", "back to stocks")
	return containerStyle.Render(content)
}

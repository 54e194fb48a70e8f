package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/auth"
	"github.com/fyrsmithlabs/stockdeck/internal/logging"
	"github.com/fyrsmithlabs/stockdeck/internal/route"
	"github.com/fyrsmithlabs/stockdeck/internal/session"
	"github.com/fyrsmithlabs/stockdeck/internal/snapshot"
)

// Shell is the program root. It hydrates the persisted session, resolves the
// current location to a view, and mounts exactly one workspace model at a
// time. Workspace models are constructed fresh on every mount.
type Shell struct {
	client    *api.Client
	gateway   *auth.Gateway
	sessions  session.Store
	snapshots *snapshot.Store
	log       *logging.Logger

	hydrated bool
	session  *session.Session
	location string
	view     route.View

	login    loginModel
	stocks   stocksModel
	products productsModel
	account  accountModel
	admin    adminModel

	width  int
	height int
}

// NewShell wires the shell at the root location. Nothing renders until the
// hydrate command delivers the persisted session.
func NewShell(client *api.Client, gateway *auth.Gateway, sessions session.Store, snapshots *snapshot.Store, log *logging.Logger) Shell {
	return Shell{
		client:    client,
		gateway:   gateway,
		sessions:  sessions,
		snapshots: snapshots,
		log:       log.Named("shell"),
		location:  route.RootPath,
	}
}

func (s Shell) Init() tea.Cmd {
	return s.hydrateCmd()
}

// hydrateCmd reads the persisted session once at startup. Load errors are
// already degraded to an absent session by the store.
func (s Shell) hydrateCmd() tea.Cmd {
	sessions := s.sessions
	log := s.log
	return func() tea.Msg {
		sess, err := sessions.Load()
		if err != nil {
			log.Warn("session hydrate failed", zap.Error(err))
			sess = nil
		}
		return sessionHydratedMsg{session: sess}
	}
}

func (s Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return s, tea.Quit
		}

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s.forward(msg)

	case sessionHydratedMsg:
		s.hydrated = true
		s.session = msg.session
		return s.applyLocation(s.location)

	case sessionStartedMsg:
		s.session = msg.session
		if err := s.sessions.Save(msg.session); err != nil {
			s.log.Warn("failed to persist session", zap.Error(err))
		}
		return s.applyLocation(route.SectionRoot)

	case logoutMsg:
		s.session = nil
		if err := s.sessions.Clear(); err != nil {
			s.log.Warn("failed to clear session", zap.Error(err))
		}
		return s.applyLocation(route.LoginPath)

	case navigateMsg:
		return s.applyLocation(msg.path)
	}

	return s.forward(msg)
}

// applyLocation resolves a target path to a view, following redirects until
// the resolver settles. A redirect back to the current location is applied
// once and not chased further.
func (s Shell) applyLocation(path string) (tea.Model, tea.Cmd) {
	authenticated := s.session != nil && s.session.Valid()

	// The resolver's redirects are finite, but cap the chase anyway.
	for hop := 0; hop < 8; hop++ {
		res := route.Resolve(path, authenticated, s.hydrated)
		if res.RedirectTo == "" || res.RedirectTo == path {
			return s.mount(path, res)
		}
		path = res.RedirectTo
	}
	s.log.Error("route resolution did not settle", zap.String("path", path))
	return s.mount(route.SectionRoot, route.Resolve(route.SectionRoot, authenticated, s.hydrated))
}

// mount records the settled location and constructs the workspace model for
// the resolved view. Remounting the same view still builds a fresh model.
func (s Shell) mount(path string, res route.Resolution) (tea.Model, tea.Cmd) {
	s.location = path
	s.view = res.View

	switch res.View {
	case route.ViewLogin:
		s.login = newLoginModel(s.gateway)
		return s, s.login.Init()
	case route.ViewStockList:
		userID := ""
		if s.session != nil {
			userID = s.session.UserID
		}
		s.stocks = newStocksModel(s.client, s.snapshots, s.log, userID)
		return s, s.stocks.Init()
	case route.ViewStockDetail:
		s.products = newProductsModel(s.client, s.snapshots, s.log, res.StockName)
		return s, s.products.Init()
	case route.ViewAccount:
		s.account = newAccountModel(s.session)
		return s, s.account.Init()
	case route.ViewAdmin:
		s.admin = newAdminModel(s.client)
		return s, s.admin.Init()
	}
	return s, nil
}

// forward hands a message to the mounted workspace model.
func (s Shell) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch s.view {
	case route.ViewLogin:
		s.login, cmd = s.login.Update(msg)
	case route.ViewStockList:
		s.stocks, cmd = s.stocks.Update(msg)
	case route.ViewStockDetail:
		s.products, cmd = s.products.Update(msg)
	case route.ViewAccount:
		s.account, cmd = s.account.Update(msg)
	case route.ViewAdmin:
		s.admin, cmd = s.admin.Update(msg)
	}
	return s, cmd
}

func (s Shell) View() string {
	switch s.view {
	case route.ViewLogin:
		return s.login.View()
	case route.ViewStockList:
		return s.stocks.View()
	case route.ViewStockDetail:
		return s.products.View()
	case route.ViewAccount:
		return s.account.View()
	case route.ViewAdmin:
		return s.admin.View()
	}
	return dimStyle.Render("Starting stockdeck...")
}

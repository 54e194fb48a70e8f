package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/logging"
	"github.com/fyrsmithlabs/stockdeck/internal/route"
	"github.com/fyrsmithlabs/stockdeck/internal/snapshot"
)

// Fixed stock workspace messages, matching the original client.
const (
	msgStockNameRequired = "Stock name is required."
	msgMissingUserID     = "Missing user id from login response."
	msgDeleteMismatch    = "Name did not match. Please type the exact stock name."
	msgStockCreated      = "Stock created successfully."
	msgStockUpdated      = "Stock updated."
	msgStockDeleted      = "Stock deleted."
)

// listState is the stock list's fetch lifecycle.
type listState int

const (
	listIdle listState = iota
	listLoading
	listLoaded
	listErrored
)

// modalMode is the shared rename/delete modal's state.
type modalMode int

const (
	modalClosed modalMode = iota
	modalEdit
	modalDelete
)

// stockFocus selects which part of the view receives keys.
type stockFocus int

const (
	focusCreate stockFocus = iota
	focusList
)

// stocksFetchedMsg carries a list fetch result. gen guards against a
// response landing after a newer fetch was issued.
type stocksFetchedMsg struct {
	gen    int
	stocks []api.Stock
	err    error
}

// stockMutatedMsg is the outcome of a create, rename, or delete.
type stockMutatedMsg struct {
	op      string // "create", "rename", "delete"
	success string
	err     error
}

// stocksModel is the stock workspace: list, create form, and the shared
// rename/delete modal. Every successful mutation re-fetches the list; the
// server is the source of truth after every mutation, never a local splice.
type stocksModel struct {
	client    *api.Client
	snapshots *snapshot.Store
	log       *logging.Logger
	userID    string

	state  listState
	stocks []api.Stock
	gen    int

	focus    stockFocus
	selected int
	spin     spinner.Model

	nameInput  textinput.Model
	submitting bool
	message    banner

	modal      modalMode
	modalStock api.Stock
	modalInput textinput.Model
	modalErr   string
	mutating   bool
}

func newStocksModel(client *api.Client, snapshots *snapshot.Store, log *logging.Logger, userID string) stocksModel {
	name := textinput.New()
	name.Placeholder = "e.g. ACME"
	name.Prompt = "Stock name: "
	name.Focus()

	modal := textinput.New()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return stocksModel{
		client:     client,
		snapshots:  snapshots,
		log:        log.Named("stocks"),
		userID:     userID,
		nameInput:  name,
		modalInput: modal,
		spin:       spin,
		state:      listLoading,
		gen:        1,
	}
}

func (m stocksModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.gen), m.spin.Tick, textinput.Blink)
}

// refetch invalidates any in-flight fetch and issues a new one.
func (m stocksModel) refetch() (stocksModel, tea.Cmd) {
	m.gen++
	m.state = listLoading
	return m, m.fetchCmd(m.gen)
}

// fetchCmd lists stocks and, on success, writes the snapshot through so the
// product/category workspace can resolve names later. This workspace is the
// snapshot's only writer.
func (m stocksModel) fetchCmd(gen int) tea.Cmd {
	client := m.client
	snapshots := m.snapshots
	log := m.log
	return func() tea.Msg {
		stocks, err := client.ListStocks(context.Background())
		if err == nil {
			if putErr := snapshots.Put(stocks); putErr != nil {
				log.Warn("failed to persist stock snapshot", zap.Error(putErr))
			}
		}
		return stocksFetchedMsg{gen: gen, stocks: stocks, err: err}
	}
}

// visible filters the list to the current user's stocks when a user id is
// available. Defensive fallback, not a security boundary.
func (m stocksModel) visible() []api.Stock {
	if m.userID == "" {
		return m.stocks
	}
	var out []api.Stock
	for _, s := range m.stocks {
		if s.UserID == m.userID {
			out = append(out, s)
		}
	}
	return out
}

func (m stocksModel) Update(msg tea.Msg) (stocksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case stocksFetchedMsg:
		if msg.gen != m.gen {
			// A newer fetch is in flight; this response is for state that
			// no longer exists.
			return m, nil
		}
		if msg.err != nil {
			m.state = listErrored
			m.message = banner{text: msg.err.Error(), isError: true}
			return m, nil
		}
		m.state = listLoaded
		m.stocks = msg.stocks
		if m.selected >= len(m.visible()) {
			m.selected = 0
		}
		return m, nil

	case stockMutatedMsg:
		m.submitting = false
		m.mutating = false
		if msg.err != nil {
			m.message = banner{text: msg.err.Error(), isError: true}
			return m, nil
		}
		m.message = banner{text: msg.success}
		if msg.op == "create" {
			m.nameInput.SetValue("")
		} else {
			m.closeModal()
		}
		return m.refetch()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocusedInput(msg)
}

func (m stocksModel) handleKey(msg tea.KeyMsg) (stocksModel, tea.Cmd) {
	if m.modal != modalClosed {
		return m.handleModalKey(msg)
	}

	switch msg.String() {
	case "tab":
		if m.focus == focusCreate {
			m.focus = focusList
			m.nameInput.Blur()
		} else {
			m.focus = focusCreate
			m.nameInput.Focus()
		}
		return m, nil
	case "r":
		if m.focus == focusList {
			return m.refetch()
		}
	case "up", "k":
		if m.focus == focusList && m.selected > 0 {
			m.selected--
			return m, nil
		}
	case "down", "j":
		if m.focus == focusList && m.selected < len(m.visible())-1 {
			m.selected++
			return m, nil
		}
	case "enter":
		if m.focus == focusCreate {
			return m.submitCreate()
		}
		// Open the detail view for the selected stock.
		if stock, ok := m.selectedStock(); ok {
			return m, navigate(route.SectionRoot + "/" + url.PathEscape(stock.StockName))
		}
		return m, nil
	case "a":
		if m.focus == focusList {
			return m, navigate(route.AccountPath)
		}
	case "e":
		if m.focus == focusList {
			if stock, ok := m.selectedStock(); ok {
				m.openModal(modalEdit, stock)
			}
			return m, nil
		}
	case "d":
		if m.focus == focusList {
			if stock, ok := m.selectedStock(); ok {
				m.openModal(modalDelete, stock)
			}
			return m, nil
		}
	}

	return m.updateFocusedInput(msg)
}

func (m stocksModel) updateFocusedInput(msg tea.Msg) (stocksModel, tea.Cmd) {
	var cmd tea.Cmd
	if m.modal != modalClosed {
		m.modalInput, cmd = m.modalInput.Update(msg)
	} else if m.focus == focusCreate {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m stocksModel) selectedStock() (api.Stock, bool) {
	visible := m.visible()
	if m.selected < 0 || m.selected >= len(visible) {
		return api.Stock{}, false
	}
	return visible[m.selected], true
}

// submitCreate validates locally, then issues the create. The submit is
// disabled for the duration of the in-flight request.
func (m stocksModel) submitCreate() (stocksModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.message = banner{}

	if m.userID == "" {
		m.message = banner{text: msgMissingUserID, isError: true}
		return m, nil
	}
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		m.message = banner{text: msgStockNameRequired, isError: true}
		return m, nil
	}

	m.submitting = true
	client := m.client
	userID := m.userID
	return m, func() tea.Msg {
		conf, err := client.CreateStock(context.Background(), api.CreateStockRequest{StockName: name, UserID: userID})
		if err != nil {
			return stockMutatedMsg{op: "create", err: err}
		}
		success := conf.Text()
		if success == "" {
			success = msgStockCreated
		}
		return stockMutatedMsg{op: "create", success: success}
	}
}

func (m *stocksModel) openModal(mode modalMode, stock api.Stock) {
	m.modal = mode
	m.modalStock = stock
	m.modalErr = ""
	if mode == modalEdit {
		m.modalInput.Placeholder = "Enter a new stock name"
		m.modalInput.SetValue(stock.StockName)
	} else {
		m.modalInput.Placeholder = "Type the stock name to delete"
		m.modalInput.SetValue("")
	}
	m.modalInput.Focus()
	m.nameInput.Blur()
}

func (m *stocksModel) closeModal() {
	m.modal = modalClosed
	m.modalStock = api.Stock{}
	m.modalInput.SetValue("")
	m.modalInput.Blur()
	m.modalErr = ""
	if m.focus == focusCreate {
		m.nameInput.Focus()
	}
}

func (m stocksModel) handleModalKey(msg tea.KeyMsg) (stocksModel, tea.Cmd) {
	if m.mutating {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "enter":
		if m.modal == modalDelete {
			return m.submitDelete()
		}
		return m.submitRename()
	}
	return m.updateFocusedInput(msg)
}

// submitDelete requires the operator to re-type the exact stock name. A
// mismatch is a local validation error; no request is made.
func (m stocksModel) submitDelete() (stocksModel, tea.Cmd) {
	typed := strings.TrimSpace(m.modalInput.Value())
	if typed != strings.TrimSpace(m.modalStock.StockName) {
		m.modalErr = msgDeleteMismatch
		return m, nil
	}

	m.modalErr = ""
	m.mutating = true
	client := m.client
	stockID := m.modalStock.StockID
	return m, func() tea.Msg {
		if err := client.DeleteStock(context.Background(), stockID); err != nil {
			return stockMutatedMsg{op: "delete", err: err}
		}
		return stockMutatedMsg{op: "delete", success: msgStockDeleted}
	}
}

// submitRename requires a non-empty trimmed name.
func (m stocksModel) submitRename() (stocksModel, tea.Cmd) {
	name := strings.TrimSpace(m.modalInput.Value())
	if name == "" {
		m.modalErr = msgStockNameRequired
		return m, nil
	}

	m.modalErr = ""
	m.mutating = true
	client := m.client
	stockID := m.modalStock.StockID
	owner := m.modalStock.UserID
	if owner == "" {
		owner = m.userID
	}
	return m, func() tea.Msg {
		err := client.RenameStock(context.Background(), stockID, api.CreateStockRequest{StockName: name, UserID: owner})
		if err != nil {
			return stockMutatedMsg{op: "rename", err: err}
		}
		return stockMutatedMsg{op: "rename", success: msgStockUpdated}
	}
}

func (m stocksModel) View() string {
	if m.modal != modalClosed {
		return m.viewModal()
	}

	visible := m.visible()

	content := headerStyle.Render(" Manage stocks ") + "\n"
	content += labelStyle.Render("My stocks: ") + valueStyle.Render(fmt.Sprintf("%d", len(visible))) + "\n"

	content += "\n" + sectionStyle.Render("┃ Create stock") + "\n"
	content += "  " + m.nameInput.View() + "\n"
	if m.submitting {
		content += "  " + dimStyle.Render("Creating...") + "\n"
	}

	if m.message.text != "" {
		content += "\n" + m.message.render() + "\n"
	}

	content += "\n" + sectionStyle.Render("┃ Your stocks") + "\n"
	switch m.state {
	case listLoading, listIdle:
		content += "  " + m.spin.View() + dimStyle.Render(" Loading stocks...") + "\n"
	case listErrored:
		content += "  " + errorStyle.Render("Could not load stocks.") + "\n"
	case listLoaded:
		if len(visible) == 0 {
			content += "  " + dimStyle.Render("No stocks yet.") + "\n"
		}
		for i, stock := range visible {
			line := fmt.Sprintf("%s  %s", stock.StockName, dimStyle.Render("Stock ID: "+stock.StockID))
			if m.focus == focusList && i == m.selected {
				line = selectedStyle.Render("> " + stock.StockName)
				line += "  " + dimStyle.Render("Stock ID: "+stock.StockID)
			} else {
				line = "  " + line
			}
			content += line + "\n"
		}
	}

	content += "\n" + footerHint(
		"tab", "switch focus",
		"enter", "create / view",
		"e", "edit",
		"d", "delete",
		"r", "refresh",
		"a", "account",
	)

	return containerStyle.Render(content)
}

func (m stocksModel) viewModal() string {
	title := "Edit stock name"
	helper := "Update the stock name and save."
	if m.modal == modalDelete {
		title = "Delete stock"
		helper = "Type the exact stock name to confirm deletion."
	}

	content := headerStyle.Render(" "+title+" ") + "\n"
	content += dimStyle.Render(helper) + "\n\n"
	if m.modal == modalDelete {
		content += labelStyle.Render("Stock name: ") + valueStyle.Render(m.modalStock.StockName) + "\n"
	}
	content += m.modalInput.View() + "\n"

	if m.modalErr != "" {
		content += "\n" + errorStyle.Render(m.modalErr) + "\n"
	}
	if m.mutating {
		content += "\n" + dimStyle.Render("Working...") + "\n"
	}

	action := "save"
	if m.modal == modalDelete {
		action = "delete"
	}
	content += "\n" + footerHint("enter", action, "esc", "cancel")

	return modalStyle.Render(content)
}

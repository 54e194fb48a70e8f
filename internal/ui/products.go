package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/logging"
	"github.com/fyrsmithlabs/stockdeck/internal/route"
	"github.com/fyrsmithlabs/stockdeck/internal/snapshot"
)

// Fixed product/category workspace messages.
const (
	msgProductNameRequired = "Product name is required."
	msgSelectCategory      = "Select a category."
	msgProductAdded        = "Product added successfully."
	msgProductDeleted      = "Product deleted."
	msgCategoryDeleted     = "Category deleted."
	msgCategoriesCreated   = "Categories created."
	msgDraftNameRequired   = "At least one category name is required."
	msgStockNotFound       = "Stock not found. Return to the stock list to refresh it."
	msgUnknownCategory     = "unknown category"
)

// inventoryFetchedMsg is the joined products+categories result. Either
// failure fails the whole join; there is no partial render of one list
// without the other.
type inventoryFetchedMsg struct {
	gen        int
	products   []api.Product
	categories []api.Category
	err        error
}

// inventoryMutatedMsg is the outcome of a product or category mutation.
type inventoryMutatedMsg struct {
	success string
	err     error
}

// armedDelete marks the single list item whose delete is one press away
// from executing. Arming any other item, or cancelling, disarms it.
type armedDelete struct {
	kind string // "product" or "category"
	key  string // ProductID, or CategoryID/name surrogate
}

// categoryDraft is one row of the bulk category form.
type categoryDraft struct {
	name textinput.Model
	desc textinput.Model
}

// productsSection selects which pane has keyboard focus.
type productsSection int

const (
	sectionForm productsSection = iota
	sectionProducts
	sectionCategories
)

// productsModel is the product/category workspace for one resolved stock.
//
// The stock is resolved against the cached snapshot only; this workspace
// never lists stocks itself. A name missing from the snapshot is a terminal
// NotFound state, recoverable by going back to the list view, which
// refreshes the snapshot.
type productsModel struct {
	client *api.Client
	log    *logging.Logger

	stockName string
	stock     api.Stock
	notFound  bool

	loading    bool
	loadErr    string
	products   []api.Product
	categories []api.Category
	gen        int
	spin       spinner.Model

	section  productsSection
	selected int

	// add-product form
	nameInput  textinput.Model
	unitInput  textinput.Model
	qtyInput   textinput.Model
	formField  int // 0 name, 1 unit, 2 qty
	catIndex   int // index into categories, -1 when none selected
	submitting bool
	message    banner

	// bulk category modal
	catModalOpen   bool
	drafts         []categoryDraft
	draftRow       int
	draftCol       int // 0 name, 1 desc
	draftErr       string
	submittingCats bool

	armed *armedDelete
}

func newProductsModel(client *api.Client, snapshots *snapshot.Store, log *logging.Logger, stockName string) productsModel {
	name := textinput.New()
	name.Placeholder = "e.g. Medium box"
	name.Prompt = "Product name: "
	name.Focus()

	unit := textinput.New()
	unit.Placeholder = "e.g. pcs"
	unit.Prompt = "Unit: "

	qty := textinput.New()
	qty.Placeholder = "0"
	qty.Prompt = "Quantity: "

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := productsModel{
		client:    client,
		log:       log.Named("products"),
		stockName: stockName,
		nameInput: name,
		unitInput: unit,
		qtyInput:  qty,
		catIndex:  -1,
		spin:      spin,
		drafts:    []categoryDraft{newCategoryDraft()},
	}

	snap, err := snapshots.Get()
	if err != nil {
		m.log.Warn("failed to read stock snapshot", zap.Error(err))
	}
	stock, ok := snap.Lookup(stockName)
	if !ok {
		m.notFound = true
		return m
	}
	m.stock = stock
	m.loading = true
	m.gen = 1
	return m
}

func newCategoryDraft() categoryDraft {
	name := textinput.New()
	name.Placeholder = "Category name"
	name.Prompt = "Name: "
	desc := textinput.New()
	desc.Placeholder = "Optional description"
	desc.Prompt = "Description: "
	return categoryDraft{name: name, desc: desc}
}

func (m productsModel) Init() tea.Cmd {
	if m.notFound {
		// Terminal state: no fetches are issued for an unresolved stock.
		return nil
	}
	return tea.Batch(m.fetchCmd(m.gen), m.spin.Tick, textinput.Blink)
}

// refetch invalidates any in-flight join and issues a new one.
func (m productsModel) refetch() (productsModel, tea.Cmd) {
	m.gen++
	m.loading = true
	return m, m.fetchCmd(m.gen)
}

// fetchCmd issues the paired products+categories fetch. Both requests go
// out together and are joined before rendering; either failure is reported
// as a single failure.
func (m productsModel) fetchCmd(gen int) tea.Cmd {
	client := m.client
	stockID := m.stock.StockID
	return func() tea.Msg {
		ctx := context.Background()
		var (
			wg         sync.WaitGroup
			products   []api.Product
			categories []api.Category
			perr, cerr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			products, perr = client.ListProducts(ctx, stockID)
		}()
		go func() {
			defer wg.Done()
			categories, cerr = client.ListCategories(ctx, stockID)
		}()
		wg.Wait()

		if perr != nil {
			return inventoryFetchedMsg{gen: gen, err: perr}
		}
		if cerr != nil {
			return inventoryFetchedMsg{gen: gen, err: cerr}
		}
		return inventoryFetchedMsg{gen: gen, products: products, categories: categories}
	}
}

func (m productsModel) Update(msg tea.Msg) (productsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case inventoryFetchedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.products = msg.products
		m.categories = msg.categories
		if m.catIndex >= len(m.categories) {
			m.catIndex = -1
		}
		m.clampSelection()
		return m, nil

	case inventoryMutatedMsg:
		m.submitting = false
		wasBatch := m.submittingCats
		m.submittingCats = false
		if msg.err != nil {
			if wasBatch {
				m.draftErr = msg.err.Error()
				return m, nil
			}
			m.message = banner{text: msg.err.Error(), isError: true}
			return m, nil
		}
		if wasBatch {
			// Successful batch resets the form to a single empty row.
			m.drafts = []categoryDraft{newCategoryDraft()}
			m.closeCategoryModal()
		}
		m.message = banner{text: msg.success}
		m.armed = nil
		return m.refetch()

	case tea.KeyMsg:
		if m.notFound {
			return m.handleNotFoundKey(msg)
		}
		if m.catModalOpen {
			return m.handleDraftKey(msg)
		}
		return m.handleKey(msg)
	}

	return m.updateFocusedInput(msg)
}

func (m productsModel) handleNotFoundKey(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "b", "enter":
		return m, navigate(route.SectionRoot)
	}
	return m, nil
}

func (m productsModel) handleKey(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.armed != nil {
			m.armed = nil
			return m, nil
		}
		return m, navigate(route.SectionRoot)
	case "tab":
		m.section = (m.section + 1) % 3
		m.selected = 0
		m.syncFormFocus()
		return m, nil
	case "ctrl+g":
		m.openCategoryModal()
		return m, nil
	}

	switch m.section {
	case sectionForm:
		return m.handleFormKey(msg)
	case sectionProducts:
		return m.handleProductListKey(msg)
	case sectionCategories:
		return m.handleCategoryListKey(msg)
	}
	return m, nil
}

func (m *productsModel) syncFormFocus() {
	m.nameInput.Blur()
	m.unitInput.Blur()
	m.qtyInput.Blur()
	if m.section != sectionForm {
		return
	}
	switch m.formField {
	case 0:
		m.nameInput.Focus()
	case 1:
		m.unitInput.Focus()
	case 2:
		m.qtyInput.Focus()
	}
}

func (m productsModel) handleFormKey(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "up", "shift+tab":
		m.formField = (m.formField + 2) % 3
		m.syncFormFocus()
		return m, nil
	case "down":
		m.formField = (m.formField + 1) % 3
		m.syncFormFocus()
		return m, nil
	case "ctrl+p":
		return m.cycleCategory(-1), nil
	case "ctrl+n":
		return m.cycleCategory(1), nil
	case "enter":
		return m.submitProduct()
	}
	return m.updateFocusedInput(msg)
}

// cycleCategory moves the category selection through the fetched list.
func (m productsModel) cycleCategory(delta int) productsModel {
	if len(m.categories) == 0 {
		m.catIndex = -1
		return m
	}
	m.catIndex = (m.catIndex + delta + len(m.categories)) % len(m.categories)
	return m
}

// submitProduct validates, coerces the quantity, and issues the create.
// Quantity is permissive: non-numeric input becomes 0, never an error.
func (m productsModel) submitProduct() (productsModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.message = banner{}

	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		m.message = banner{text: msgProductNameRequired, isError: true}
		return m, nil
	}
	if m.catIndex < 0 || m.catIndex >= len(m.categories) {
		m.message = banner{text: msgSelectCategory, isError: true}
		return m, nil
	}

	qty := coerceQuantity(m.qtyInput.Value())
	req := api.CreateProductRequest{
		Category:    m.categories[m.catIndex].CategoryName,
		ProductName: name,
		ProductQty:  qty,
		StockID:     m.stock.StockID,
		Unit:        strings.TrimSpace(m.unitInput.Value()),
	}

	m.submitting = true
	client := m.client
	return m, func() tea.Msg {
		conf, err := client.CreateProduct(context.Background(), req)
		if err != nil {
			return inventoryMutatedMsg{err: err}
		}
		success := conf.Text()
		if success == "" {
			success = msgProductAdded
		}
		return inventoryMutatedMsg{success: success}
	}
}

// coerceQuantity turns user input into a non-negative integer. Invalid
// numeric input coerces to 0 rather than failing, matching the original
// client's permissive behavior.
func coerceQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 0 {
		return 0
	}
	return qty
}

func (m productsModel) handleProductListKey(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.products)-1 {
			m.selected++
		}
		return m, nil
	case "r":
		return m.refetch()
	case "d":
		if m.selected < 0 || m.selected >= len(m.products) {
			return m, nil
		}
		return m.pressDelete("product", m.products[m.selected].ProductID)
	}
	return m, nil
}

func (m productsModel) handleCategoryListKey(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.categories)-1 {
			m.selected++
		}
		return m, nil
	case "r":
		return m.refetch()
	case "d":
		if m.selected < 0 || m.selected >= len(m.categories) {
			return m, nil
		}
		return m.pressDelete("category", categoryKey(m.categories[m.selected]))
	}
	return m, nil
}

// categoryKey is the category's delete identity: the server-assigned ID
// when present, else the name surrogate.
func categoryKey(c api.Category) string {
	if c.CategoryID != "" {
		return c.CategoryID
	}
	return c.CategoryName
}

// pressDelete implements the two-step confirm. The first press arms the
// item; a second press on the same item executes. Pressing delete on any
// other item re-arms that item instead, so at most one item is armed.
func (m productsModel) pressDelete(kind, key string) (productsModel, tea.Cmd) {
	if m.armed == nil || m.armed.kind != kind || m.armed.key != key {
		m.armed = &armedDelete{kind: kind, key: key}
		return m, nil
	}

	m.armed = nil
	client := m.client
	if kind == "product" {
		return m, func() tea.Msg {
			if err := client.DeleteProduct(context.Background(), key); err != nil {
				return inventoryMutatedMsg{err: err}
			}
			return inventoryMutatedMsg{success: msgProductDeleted}
		}
	}
	return m, func() tea.Msg {
		if err := client.DeleteCategory(context.Background(), key); err != nil {
			return inventoryMutatedMsg{err: err}
		}
		return inventoryMutatedMsg{success: msgCategoryDeleted}
	}
}

func (m *productsModel) openCategoryModal() {
	m.catModalOpen = true
	m.draftErr = ""
	m.draftRow = 0
	m.draftCol = 0
	m.syncDraftFocus()
	m.nameInput.Blur()
	m.unitInput.Blur()
	m.qtyInput.Blur()
}

func (m *productsModel) closeCategoryModal() {
	m.catModalOpen = false
	m.draftErr = ""
	for i := range m.drafts {
		m.drafts[i].name.Blur()
		m.drafts[i].desc.Blur()
	}
	m.syncFormFocus()
}

func (m *productsModel) syncDraftFocus() {
	for i := range m.drafts {
		m.drafts[i].name.Blur()
		m.drafts[i].desc.Blur()
	}
	if m.draftRow < 0 || m.draftRow >= len(m.drafts) {
		m.draftRow = 0
	}
	if m.draftCol == 0 {
		m.drafts[m.draftRow].name.Focus()
	} else {
		m.drafts[m.draftRow].desc.Focus()
	}
}

func (m productsModel) handleDraftKey(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	if m.submittingCats {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.closeCategoryModal()
		return m, nil
	case "tab":
		if m.draftCol == 0 {
			m.draftCol = 1
		} else {
			m.draftCol = 0
			m.draftRow = (m.draftRow + 1) % len(m.drafts)
		}
		m.syncDraftFocus()
		return m, nil
	case "ctrl+a":
		m.drafts = append(m.drafts, newCategoryDraft())
		m.draftRow = len(m.drafts) - 1
		m.draftCol = 0
		m.syncDraftFocus()
		return m, nil
	case "ctrl+x":
		if len(m.drafts) > 1 {
			m.drafts = append(m.drafts[:m.draftRow], m.drafts[m.draftRow+1:]...)
			if m.draftRow >= len(m.drafts) {
				m.draftRow = len(m.drafts) - 1
			}
			m.syncDraftFocus()
		}
		return m, nil
	case "enter":
		return m.submitCategories()
	}
	return m.updateFocusedInput(msg)
}

// submitCategories sends the whole draft batch in one call. At least one
// draft must carry a non-empty name; empty rows are skipped.
func (m productsModel) submitCategories() (productsModel, tea.Cmd) {
	var batch []api.CreateCategoryRequest
	for _, d := range m.drafts {
		name := strings.TrimSpace(d.name.Value())
		if name == "" {
			continue
		}
		batch = append(batch, api.CreateCategoryRequest{
			CategoryName: name,
			Discription:  strings.TrimSpace(d.desc.Value()),
			StockID:      m.stock.StockID,
		})
	}
	if len(batch) == 0 {
		m.draftErr = msgDraftNameRequired
		return m, nil
	}

	m.draftErr = ""
	m.submittingCats = true
	client := m.client
	return m, func() tea.Msg {
		if err := client.CreateCategories(context.Background(), batch); err != nil {
			return inventoryMutatedMsg{err: err}
		}
		return inventoryMutatedMsg{success: msgCategoriesCreated}
	}
}

func (m productsModel) updateFocusedInput(msg tea.Msg) (productsModel, tea.Cmd) {
	var cmd tea.Cmd
	if m.catModalOpen {
		if m.draftRow >= 0 && m.draftRow < len(m.drafts) {
			if m.draftCol == 0 {
				m.drafts[m.draftRow].name, cmd = m.drafts[m.draftRow].name.Update(msg)
			} else {
				m.drafts[m.draftRow].desc, cmd = m.drafts[m.draftRow].desc.Update(msg)
			}
		}
		return m, cmd
	}
	if m.section == sectionForm {
		switch m.formField {
		case 0:
			m.nameInput, cmd = m.nameInput.Update(msg)
		case 1:
			m.unitInput, cmd = m.unitInput.Update(msg)
		case 2:
			m.qtyInput, cmd = m.qtyInput.Update(msg)
		}
	}
	return m, cmd
}

func (m *productsModel) clampSelection() {
	var max int
	switch m.section {
	case sectionProducts:
		max = len(m.products)
	case sectionCategories:
		max = len(m.categories)
	default:
		return
	}
	if m.selected >= max {
		m.selected = 0
	}
}

// categoryNames is the set of fetched category names, for the orphan check.
func (m productsModel) categoryNames() map[string]bool {
	names := make(map[string]bool, len(m.categories))
	for _, c := range m.categories {
		names[c.CategoryName] = true
	}
	return names
}

func (m productsModel) View() string {
	if m.notFound {
		content := headerStyle.Render(" "+m.stockName+" ") + "\n\n"
		content += errorStyle.Render(msgStockNotFound) + "\n"
		content += "\n" + footerHint("esc", "back to stocks")
		return containerStyle.Render(content)
	}
	if m.catModalOpen {
		return m.viewCategoryModal()
	}

	title := m.stock.StockName
	if title == "" {
		title = m.stockName
	}
	content := headerStyle.Render(" "+title+" ") + "\n"
	content += labelStyle.Render("Products: ") + valueStyle.Render(fmt.Sprintf("%d", len(m.products))) +
		labelStyle.Render("   Categories: ") + valueStyle.Render(fmt.Sprintf("%d", len(m.categories))) + "\n"

	if m.loading {
		content += "\n  " + m.spin.View() + dimStyle.Render(" Loading products and categories...") + "\n"
		return containerStyle.Render(content)
	}
	if m.loadErr != "" {
		content += "\n  " + errorStyle.Render(m.loadErr) + "\n"
		content += "\n" + footerHint("r", "retry", "esc", "back")
		return containerStyle.Render(content)
	}

	content += m.viewForm()
	content += m.viewProducts()
	content += m.viewCategories()

	if m.message.text != "" {
		content += "\n" + m.message.render() + "\n"
	}

	content += "\n" + footerHint(
		"tab", "switch section",
		"enter", "add product",
		"ctrl+g", "manage categories",
		"d", "delete (press twice)",
		"r", "refresh",
		"esc", "back",
	)

	return containerStyle.Render(content)
}

func (m productsModel) viewForm() string {
	marker := " "
	if m.section == sectionForm {
		marker = ">"
	}
	content := "\n" + sectionStyle.Render("┃ Add product "+marker) + "\n"
	content += "  " + m.nameInput.View() + "\n"
	content += "  " + m.unitInput.View() + "\n"
	content += "  " + m.qtyInput.View() + "\n"

	category := dimStyle.Render("none selected (ctrl+n/ctrl+p to choose)")
	if m.catIndex >= 0 && m.catIndex < len(m.categories) {
		category = valueStyle.Render(m.categories[m.catIndex].CategoryName)
	}
	if len(m.categories) == 0 {
		category = warningStyle.Render("no categories yet - create one first (ctrl+g)")
	}
	content += "  " + labelStyle.Render("Category: ") + category + "\n"
	if m.submitting {
		content += "  " + dimStyle.Render("Saving...") + "\n"
	}
	return content
}

func (m productsModel) viewProducts() string {
	content := "\n" + sectionStyle.Render("┃ Products") + "\n"
	if len(m.products) == 0 {
		content += "  " + dimStyle.Render("No products for this stock yet.") + "\n"
		return content
	}
	known := m.categoryNames()
	for i, p := range m.products {
		category := p.Category
		if category == "" || !known[category] {
			category = msgUnknownCategory
		}
		line := fmt.Sprintf("%s  %s", p.ProductName,
			dimStyle.Render(fmt.Sprintf("%s - Qty: %d %s", category, p.ProductQty, p.Unit)))
		prefix := "  "
		if m.section == sectionProducts && i == m.selected {
			prefix = selectedStyle.Render(">") + " "
		}
		if m.armed != nil && m.armed.kind == "product" && m.armed.key == p.ProductID {
			line += "  " + warningStyle.Render("press d again to delete")
		}
		content += prefix + line + "\n"
	}
	return content
}

func (m productsModel) viewCategories() string {
	content := "\n" + sectionStyle.Render("┃ Categories") + "\n"
	if len(m.categories) == 0 {
		content += "  " + dimStyle.Render("No categories for this stock yet.") + "\n"
		return content
	}
	for i, c := range m.categories {
		line := c.CategoryName
		if c.Discription != "" {
			line += "  " + dimStyle.Render(c.Discription)
		}
		prefix := "  "
		if m.section == sectionCategories && i == m.selected {
			prefix = selectedStyle.Render(">") + " "
		}
		if m.armed != nil && m.armed.kind == "category" && m.armed.key == categoryKey(c) {
			line += "  " + warningStyle.Render("press d again to delete")
		}
		content += prefix + line + "\n"
	}
	return content
}

func (m productsModel) viewCategoryModal() string {
	content := headerStyle.Render(" Manage categories ") + "\n"
	content += dimStyle.Render("Add one or more categories for "+m.stock.StockName+".") + "\n\n"

	for i, d := range m.drafts {
		marker := "  "
		if i == m.draftRow {
			marker = selectedStyle.Render(">") + " "
		}
		content += marker + d.name.View() + "\n"
		content += "   " + d.desc.View() + "\n"
	}

	if m.draftErr != "" {
		content += "\n" + errorStyle.Render(m.draftErr) + "\n"
	}
	if m.submittingCats {
		content += "\n" + dimStyle.Render("Submitting...") + "\n"
	}

	content += "\n" + footerHint(
		"enter", "create all",
		"ctrl+a", "add row",
		"ctrl+x", "remove row",
		"tab", "next field",
		"esc", "cancel",
	)

	return modalStyle.Render(content)
}

package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/logging"
)

func newTestProductsModel(t *testing.T, stockName string) productsModel {
	t.Helper()
	snapshots := testSnapshots(t)
	require.NoError(t, snapshots.Put([]api.Stock{
		{StockID: "s1", UserID: "user-1", StockName: "Warehouse"},
	}))
	return newProductsModel(testClient(t, "http://localhost:1"), snapshots, logging.NewNop(), stockName)
}

func TestNewProductsModel_ResolvesFromSnapshot(t *testing.T) {
	model := newTestProductsModel(t, "warehouse")

	assert.False(t, model.notFound)
	assert.Equal(t, "s1", model.stock.StockID)
	assert.True(t, model.loading)
	assert.NotNil(t, model.Init())
}

func TestNewProductsModel_UnknownStockIsTerminal(t *testing.T) {
	// The workspace resolves names against the snapshot only. An unknown
	// name never triggers a fetch; it renders the not-found state.
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	snapshots := testSnapshots(t)
	model := newProductsModel(testClient(t, server.URL), snapshots, logging.NewNop(), "ghost")

	assert.True(t, model.notFound)
	assert.Nil(t, model.Init())
	assert.Equal(t, int64(0), calls.Load())
	assert.Contains(t, model.View(), msgStockNotFound)
}

func TestProductsModel_NotFoundEscapeNavigatesBack(t *testing.T) {
	snapshots := testSnapshots(t)
	model := newProductsModel(testClient(t, "http://localhost:1"), snapshots, logging.NewNop(), "ghost")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	nav, ok := cmd().(navigateMsg)
	require.True(t, ok)
	assert.Equal(t, "/stocks", nav.path)
}

func TestProductsModel_JoinedFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/products":
			w.Write([]byte(`[{"ProductID":"p1","StockID":"s1","ProductName":"Box","Category":"Packaging","Unit":"pcs","ProductQty":4}]`))
		case "/api/categories":
			w.Write([]byte(`[{"CategoryID":"c1","StockID":"s1","CategoryName":"Packaging"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	snapshots := testSnapshots(t)
	require.NoError(t, snapshots.Put([]api.Stock{{StockID: "s1", UserID: "user-1", StockName: "Warehouse"}}))
	model := newProductsModel(testClient(t, server.URL), snapshots, logging.NewNop(), "Warehouse")

	msg := model.fetchCmd(model.gen)()
	fetched, ok := msg.(inventoryFetchedMsg)
	require.True(t, ok)
	require.NoError(t, fetched.err)
	assert.Len(t, fetched.products, 1)
	assert.Len(t, fetched.categories, 1)

	updated, _ := model.Update(fetched)
	assert.False(t, updated.loading)
	assert.Empty(t, updated.loadErr)
}

func TestProductsModel_JoinFailsWhole(t *testing.T) {
	// Either leg failing fails the join; there is no partial result.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/categories" {
			http.Error(w, "categories exploded", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	snapshots := testSnapshots(t)
	require.NoError(t, snapshots.Put([]api.Stock{{StockID: "s1", UserID: "user-1", StockName: "Warehouse"}}))
	model := newProductsModel(testClient(t, server.URL), snapshots, logging.NewNop(), "Warehouse")

	msg := model.fetchCmd(model.gen)()
	fetched, ok := msg.(inventoryFetchedMsg)
	require.True(t, ok)
	require.Error(t, fetched.err)
	assert.Empty(t, fetched.products)

	updated, _ := model.Update(fetched)
	assert.Contains(t, updated.loadErr, "categories exploded")
}

func TestProductsModel_StaleJoinDropped(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model, _ = model.refetch() // gen is now 2

	updated, cmd := model.Update(inventoryFetchedMsg{gen: 1, products: []api.Product{{ProductID: "old"}}})

	assert.Nil(t, cmd)
	assert.True(t, updated.loading)
	assert.Empty(t, updated.products)
}

func TestProductsModel_SubmitValidation(t *testing.T) {
	t.Run("blank name", func(t *testing.T) {
		model := newTestProductsModel(t, "Warehouse")
		updated, cmd := model.submitProduct()

		assert.Nil(t, cmd)
		assert.Equal(t, msgProductNameRequired, updated.message.text)
	})

	t.Run("no category selected", func(t *testing.T) {
		model := newTestProductsModel(t, "Warehouse")
		model.nameInput.SetValue("Box")
		model.categories = []api.Category{{CategoryName: "Packaging"}}

		updated, cmd := model.submitProduct()

		assert.Nil(t, cmd)
		assert.Equal(t, msgSelectCategory, updated.message.text)
	})
}

func TestProductsModel_ArrowKeysEditFormInputs(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model.categories = []api.Category{
		{CategoryName: "Packaging"},
		{CategoryName: "Fragile"},
	}
	model.nameInput.SetValue("Box")

	// Arrow keys move the cursor inside the focused input; they must not
	// be captured for category cycling.
	updated, _ := model.handleFormKey(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, -1, updated.catIndex)
	assert.Equal(t, 2, updated.nameInput.Position())

	// Category selection moves via ctrl+n / ctrl+p.
	updated, _ = updated.handleFormKey(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, 0, updated.catIndex)
	updated, _ = updated.handleFormKey(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, 1, updated.catIndex)
}

func TestCoerceQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"12", 12},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"-5", 0},
		{"3.5", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceQuantity(tt.input), "input %q", tt.input)
	}
}

func TestProductsModel_ArmedDeleteIsTwoStep(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model.products = []api.Product{
		{ProductID: "p1", ProductName: "Box"},
		{ProductID: "p2", ProductName: "Tape"},
	}

	// First press arms, does not execute.
	updated, cmd := model.pressDelete("product", "p1")
	assert.Nil(t, cmd)
	require.NotNil(t, updated.armed)
	assert.Equal(t, "p1", updated.armed.key)

	// Pressing delete on a different item re-arms; still no execution.
	updated, cmd = updated.pressDelete("product", "p2")
	assert.Nil(t, cmd)
	require.NotNil(t, updated.armed)
	assert.Equal(t, "p2", updated.armed.key)

	// Second press on the armed item executes and disarms.
	updated, cmd = updated.pressDelete("product", "p2")
	assert.NotNil(t, cmd)
	assert.Nil(t, updated.armed)
}

func TestProductsModel_EscDisarmsBeforeNavigating(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model.armed = &armedDelete{kind: "product", key: "p1"}

	updated, cmd := model.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Nil(t, updated.armed)

	// With nothing armed, esc leaves the workspace.
	_, cmd = updated.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	nav, ok := cmd().(navigateMsg)
	require.True(t, ok)
	assert.Equal(t, "/stocks", nav.path)
}

func TestProductsModel_CategoryDraftsRequireName(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model.openCategoryModal()
	model.drafts[0].desc.SetValue("description only")

	updated, cmd := model.submitCategories()

	assert.Nil(t, cmd)
	assert.Equal(t, msgDraftNameRequired, updated.draftErr)
}

func TestProductsModel_CategoryDraftsSkipEmptyRows(t *testing.T) {
	var got []api.CreateCategoryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"message":"categories created"}`))
	}))
	defer server.Close()

	snapshots := testSnapshots(t)
	require.NoError(t, snapshots.Put([]api.Stock{{StockID: "s1", UserID: "user-1", StockName: "Warehouse"}}))
	model := newProductsModel(testClient(t, server.URL), snapshots, logging.NewNop(), "Warehouse")

	model.openCategoryModal()
	model.drafts = append(model.drafts, newCategoryDraft(), newCategoryDraft())
	model.drafts[0].name.SetValue("Packaging")
	model.drafts[2].name.SetValue("  Fragile  ")

	updated, cmd := model.submitCategories()
	require.NotNil(t, cmd)
	assert.True(t, updated.submittingCats)

	msg := cmd()
	mutated, ok := msg.(inventoryMutatedMsg)
	require.True(t, ok)
	require.NoError(t, mutated.err)

	require.Len(t, got, 2)
	assert.Equal(t, "Packaging", got[0].CategoryName)
	assert.Equal(t, "Fragile", got[1].CategoryName)
	assert.Equal(t, "s1", got[0].StockID)
}

func TestProductsModel_MutationRefetchesBothLists(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model.armed = &armedDelete{kind: "product", key: "p1"}

	updated, cmd := model.Update(inventoryMutatedMsg{success: msgProductDeleted})

	assert.Equal(t, msgProductDeleted, updated.message.text)
	assert.Nil(t, updated.armed)
	assert.Equal(t, 2, updated.gen)
	assert.True(t, updated.loading)
	assert.NotNil(t, cmd)
}

func TestProductsModel_BatchSuccessResetsDrafts(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model.openCategoryModal()
	model.drafts = append(model.drafts, newCategoryDraft())
	model.drafts[0].name.SetValue("Packaging")
	model.submittingCats = true

	updated, cmd := model.Update(inventoryMutatedMsg{success: msgCategoriesCreated})

	assert.False(t, updated.catModalOpen)
	require.Len(t, updated.drafts, 1)
	assert.Empty(t, updated.drafts[0].name.Value())
	assert.Equal(t, msgCategoriesCreated, updated.message.text)
	assert.NotNil(t, cmd)
}

func TestProductsModel_MutationError(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")

	updated, cmd := model.Update(inventoryMutatedMsg{err: errors.New("denied")})

	assert.Nil(t, cmd)
	assert.True(t, updated.message.isError)
	assert.Equal(t, 1, updated.gen)
}

func TestProductsModel_UnknownCategoryRendered(t *testing.T) {
	model := newTestProductsModel(t, "Warehouse")
	model.loading = false
	model.products = []api.Product{{ProductID: "p1", ProductName: "Box", Category: "Removed", ProductQty: 2}}
	model.categories = []api.Category{{CategoryName: "Packaging"}}

	assert.Contains(t, model.View(), msgUnknownCategory)
}

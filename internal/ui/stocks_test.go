package ui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/logging"
	"github.com/fyrsmithlabs/stockdeck/internal/snapshot"
)

func testClient(t *testing.T, base string) *api.Client {
	t.Helper()
	client, err := api.New(base, 5*time.Second, logging.NewNop())
	require.NoError(t, err)
	return client
}

func testSnapshots(t *testing.T) *snapshot.Store {
	t.Helper()
	return snapshot.NewStore(filepath.Join(t.TempDir(), "stocks.json"))
}

func newTestStocksModel(t *testing.T, userID string) stocksModel {
	t.Helper()
	client := testClient(t, "http://localhost:1")
	return newStocksModel(client, testSnapshots(t), logging.NewNop(), userID)
}

func TestNewStocksModel(t *testing.T) {
	model := newTestStocksModel(t, "user-1")

	assert.Equal(t, listLoading, model.state)
	assert.Equal(t, 1, model.gen)
	assert.Equal(t, modalClosed, model.modal)
	assert.NotNil(t, model.Init())
}

func TestStocksModel_FetchedMsg(t *testing.T) {
	model := newTestStocksModel(t, "user-1")

	stocks := []api.Stock{
		{StockID: "s1", UserID: "user-1", StockName: "Warehouse"},
		{StockID: "s2", UserID: "user-2", StockName: "Someone else's"},
	}
	updated, cmd := model.Update(stocksFetchedMsg{gen: 1, stocks: stocks})

	assert.Nil(t, cmd)
	assert.Equal(t, listLoaded, updated.state)
	// Only the current user's stocks are visible.
	visible := updated.visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Warehouse", visible[0].StockName)
}

func TestStocksModel_StaleFetchDropped(t *testing.T) {
	model := newTestStocksModel(t, "user-1")
	model, _ = model.refetch() // gen is now 2

	// A response from the superseded fetch must not land.
	updated, cmd := model.Update(stocksFetchedMsg{gen: 1, stocks: []api.Stock{{StockID: "old"}}})

	assert.Nil(t, cmd)
	assert.Equal(t, listLoading, updated.state)
	assert.Empty(t, updated.stocks)
}

func TestStocksModel_FetchError(t *testing.T) {
	model := newTestStocksModel(t, "user-1")

	updated, _ := model.Update(stocksFetchedMsg{gen: 1, err: errors.New("connection refused")})

	assert.Equal(t, listErrored, updated.state)
	assert.True(t, updated.message.isError)
	assert.Contains(t, updated.message.text, "connection refused")
}

func TestStocksModel_CreateValidation(t *testing.T) {
	t.Run("missing user id", func(t *testing.T) {
		model := newTestStocksModel(t, "")
		updated, cmd := model.submitCreate()

		assert.Nil(t, cmd)
		assert.Equal(t, msgMissingUserID, updated.message.text)
	})

	t.Run("blank name", func(t *testing.T) {
		model := newTestStocksModel(t, "user-1")
		model.nameInput.SetValue("   ")
		updated, cmd := model.submitCreate()

		assert.Nil(t, cmd)
		assert.Equal(t, msgStockNameRequired, updated.message.text)
	})
}

func TestStocksModel_MutationRefetches(t *testing.T) {
	model := newTestStocksModel(t, "user-1")
	model, _ = model.Update(stocksFetchedMsg{gen: 1, stocks: []api.Stock{{StockID: "s1", UserID: "user-1", StockName: "A"}}})

	updated, cmd := model.Update(stockMutatedMsg{op: "create", success: msgStockCreated})

	// Success banner, cleared input, and a fresh fetch under a new generation.
	assert.Equal(t, msgStockCreated, updated.message.text)
	assert.False(t, updated.message.isError)
	assert.Empty(t, updated.nameInput.Value())
	assert.Equal(t, 2, updated.gen)
	assert.Equal(t, listLoading, updated.state)
	assert.NotNil(t, cmd)
}

func TestStocksModel_MutationErrorKeepsState(t *testing.T) {
	model := newTestStocksModel(t, "user-1")
	model, _ = model.Update(stocksFetchedMsg{gen: 1, stocks: []api.Stock{{StockID: "s1", UserID: "user-1", StockName: "A"}}})

	updated, cmd := model.Update(stockMutatedMsg{op: "create", err: errors.New("boom")})

	assert.Nil(t, cmd)
	assert.True(t, updated.message.isError)
	assert.Equal(t, listLoaded, updated.state)
	assert.Equal(t, 1, updated.gen)
}

func TestStocksModel_DeleteRequiresExactName(t *testing.T) {
	model := newTestStocksModel(t, "user-1")
	model.openModal(modalDelete, api.Stock{StockID: "s1", UserID: "user-1", StockName: "Warehouse"})

	model.modalInput.SetValue("warehouse")
	updated, cmd := model.submitDelete()

	// A mismatch is a local error: no command means no request.
	assert.Nil(t, cmd)
	assert.Equal(t, msgDeleteMismatch, updated.modalErr)
	assert.False(t, updated.mutating)
}

func TestStocksModel_DeleteAcceptsExactName(t *testing.T) {
	model := newTestStocksModel(t, "user-1")
	model.openModal(modalDelete, api.Stock{StockID: "s1", UserID: "user-1", StockName: "Warehouse"})

	model.modalInput.SetValue("  Warehouse  ")
	updated, cmd := model.submitDelete()

	assert.NotNil(t, cmd)
	assert.True(t, updated.mutating)
	assert.Empty(t, updated.modalErr)
}

func TestStocksModel_SnapshotWrittenOnFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"StockID":"s1","UserID":"user-1","StockName":"Warehouse"}]`))
	}))
	defer server.Close()

	snapshots := testSnapshots(t)
	model := newStocksModel(testClient(t, server.URL), snapshots, logging.NewNop(), "user-1")

	msg := model.fetchCmd(model.gen)()
	fetched, ok := msg.(stocksFetchedMsg)
	require.True(t, ok)
	require.NoError(t, fetched.err)

	snap, err := snapshots.Get()
	require.NoError(t, err)
	stock, found := snap.Lookup("warehouse")
	assert.True(t, found)
	assert.Equal(t, "s1", stock.StockID)
}

func TestStocksModel_EnterOnSelectionNavigates(t *testing.T) {
	model := newTestStocksModel(t, "user-1")
	model, _ = model.Update(stocksFetchedMsg{gen: 1, stocks: []api.Stock{{StockID: "s1", UserID: "user-1", StockName: "My Stock"}}})
	model.focus = focusList

	updated, cmd := model.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	nav, ok := cmd().(navigateMsg)
	require.True(t, ok)
	assert.Equal(t, "/stocks/My%20Stock", nav.path)
	assert.Equal(t, modalClosed, updated.modal)
}

func TestStocksModel_ModalEscCancels(t *testing.T) {
	model := newTestStocksModel(t, "user-1")
	model.openModal(modalDelete, api.Stock{StockID: "s1", StockName: "Warehouse"})
	model.modalInput.SetValue("half-typed")

	updated, cmd := model.handleModalKey(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.Equal(t, modalClosed, updated.modal)
	assert.Empty(t, updated.modalInput.Value())
}

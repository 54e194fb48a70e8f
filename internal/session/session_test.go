package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestFileStore_LoadAbsent(t *testing.T) {
	store := newStore(t)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	store := newStore(t)
	saved := &Session{
		UserID:      "u1",
		DisplayName: "Op",
		Email:       "op@example.com",
		Status:      "ACTIVE",
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved, loaded)
}

func TestFileStore_LoadCorruptRecordPurges(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0600))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Corrupt record is gone; the next load sees a clean absence.
	_, statErr := os.Stat(store.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_LoadMissingEmailPurges(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte(`{"UserId":"u1"}`), 0600))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, statErr := os.Stat(store.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_SaveRejectsInvalid(t *testing.T) {
	store := newStore(t)
	err := store.Save(&Session{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without an email")
}

func TestFileStore_ClearAbsentIsNoop(t *testing.T) {
	store := newStore(t)
	assert.NoError(t, store.Clear())
}

func TestFileStore_Clear(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(&Session{Email: "op@example.com"}))
	require.NoError(t, store.Clear())

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

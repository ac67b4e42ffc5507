package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
}

func testSession() *models.Session {
	return &models.Session{
		Token: "token-abc",
		User: models.User{
			ID:    "u1",
			Name:  "Binh",
			Email: "binh@example.edu",
			Role:  models.RoleStudent,
		},
	}
}

func TestLoadWithoutFileReturnsNoSession(t *testing.T) {
	store := testStore(t)

	session, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoSession))
	assert.Nil(t, session)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Save(testSession()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "token-abc", loaded.Token)
	assert.Equal(t, "u1", loaded.User.ID)
	assert.Equal(t, models.RoleStudent, loaded.User.Role)
}

func TestCorruptFileIsClearedAndReported(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	session, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSessionCorrupt))
	assert.Nil(t, session)

	// The corrupt file is removed so the next load sees a clean logout
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))

	_, err = store.Load()
	assert.True(t, errors.Is(err, apperrors.ErrNoSession))
}

func TestStructurallyValidButIncompleteSessionIsCorrupt(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"token":"","user":{}}`), 0o600))

	_, err := store.Load()
	assert.True(t, errors.Is(err, apperrors.ErrSessionCorrupt))
}

func TestTokenReadsFreshOnEveryCall(t *testing.T) {
	store := testStore(t)
	assert.Equal(t, "", store.Token())

	require.NoError(t, store.Save(testSession()))
	assert.Equal(t, "token-abc", store.Token())

	require.NoError(t, store.Clear())
	assert.Equal(t, "", store.Token())
}

func TestClearIsIdempotent(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Clear())
	require.NoError(t, store.Save(testSession()))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.True(t, errors.Is(err, apperrors.ErrNoSession))
}

func TestCurrentReturnsNilWhenLoggedOut(t *testing.T) {
	store := testStore(t)
	assert.Nil(t, store.Current())

	require.NoError(t, store.Save(testSession()))
	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.User.ID)
}

package graph

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewFileTokenStore(path)
	ctx := context.Background()

	token := &Token{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, store.Save(ctx, token))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.AccessToken)
	assert.Equal(t, "r", loaded.RefreshToken)
}

func TestFileTokenStoreMissingFile(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "absent.json"))
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewFileTokenStore(path)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileTokenStore(path)
	require.NoError(t, store.Save(context.Background(), &Token{AccessToken: "a"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSessionLoadsStoredTokenOnStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileTokenStore(path)
	require.NoError(t, store.Save(context.Background(), &Token{AccessToken: "persisted"}))

	session := NewSession("common", "client-id", "", store, nil)
	tok, err := session.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "persisted", tok)
}

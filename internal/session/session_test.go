package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionPersistsToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token"))

	s := New(store, zap.NewNop())
	require.NoError(t, s.Init())
	assert.False(t, s.Authenticated())

	require.NoError(t, s.SetToken("abc"))

	restored := New(store, zap.NewNop())
	require.NoError(t, restored.Init())
	assert.Equal(t, "abc", restored.Token())
}

func TestSessionInvalidate(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	s := New(store, zap.NewNop())
	require.NoError(t, s.SetToken("abc"))

	calls := 0
	s.OnUnauthorized(func() { calls++ })

	s.Invalidate()
	s.Invalidate()

	assert.Equal(t, 1, calls)
	assert.Empty(t, s.Token())

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSessionTeardownDropsCallbacks(t *testing.T) {
	s := New(nil, zap.NewNop())
	require.NoError(t, s.SetToken("abc"))

	called := false
	s.OnUnauthorized(func() { called = true })
	s.Teardown()
	s.Invalidate()

	assert.False(t, called)
	assert.Empty(t, s.Token())
}

func TestSessionLogoutSkipsCallbacks(t *testing.T) {
	s := New(nil, zap.NewNop())
	require.NoError(t, s.SetToken("abc"))

	called := false
	s.OnUnauthorized(func() { called = true })
	s.Logout()

	assert.False(t, called)
	assert.False(t, s.Authenticated())
}

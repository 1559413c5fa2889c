package session_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pine_hotel/internal/domain"
	"pine_hotel/internal/session"
)

func TestStore_RoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	st := session.NewStore(path)

	empty, err := st.Load()
	require.NoError(t, err)
	assert.False(t, empty.Valid(time.Now()))

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	in := session.Session{BaseURL: "http://localhost:8080", Token: "tok", ExpiresAt: exp, Email: "ana@example.com", Role: domain.RoleGuest}
	require.NoError(t, st.Save(in))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, in.Token, got.Token)
	assert.True(t, got.ExpiresAt.Equal(exp))
	assert.True(t, got.Valid(time.Now()))
	assert.False(t, got.Valid(exp.Add(time.Second)))

	require.NoError(t, st.Clear())
	require.NoError(t, st.Clear())
	got, err = st.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Token)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))
	_, err := session.NewStore(path).Load()
	assert.Error(t, err)
}

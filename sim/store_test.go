package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *AccountStore {
	t.Helper()
	store, err := OpenAccountStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAccountStore_CheckPassword(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddUser("alice", "hunter2", 0))

	ok, err := store.CheckPassword("alice", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CheckPassword("alice", "hunter3")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.CheckPassword("nobody", "hunter2")
	require.NoError(t, err)
	assert.False(t, ok, "unknown user must fail the password check")
}

func TestAccountStore_LoginStateLifecycle(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddUser("bob", "pw", 0))

	state, known, err := store.LoginState("bob")
	require.NoError(t, err)
	require.True(t, known)
	assert.Equal(t, 0, state.FailedAttempts)
	assert.Nil(t, state.LockedUntil)

	until := 42.0
	require.NoError(t, store.RecordFailure("bob", 3, &until, 10))

	state, known, err = store.LoginState("bob")
	require.NoError(t, err)
	require.True(t, known)
	assert.Equal(t, 3, state.FailedAttempts)
	require.NotNil(t, state.LockedUntil)
	assert.Equal(t, 42.0, *state.LockedUntil)
	require.NotNil(t, state.LastFailure)
	assert.Equal(t, 10.0, *state.LastFailure)

	require.NoError(t, store.ResetLoginState("bob"))
	state, _, err = store.LoginState("bob")
	require.NoError(t, err)
	assert.Equal(t, 0, state.FailedAttempts)
	assert.Nil(t, state.LockedUntil)
	assert.Nil(t, state.LastFailure)
}

func TestAccountStore_UnknownAccountHasNoState(t *testing.T) {
	store := newTestStore(t)
	_, known, err := store.LoginState("ghost")
	require.NoError(t, err)
	assert.False(t, known)
}

package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/99designs/keyring"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSignInRestoreSignOut(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	kr := keyring.NewArrayKeyring(nil)
	s := NewSession(kr, store)

	usr, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, usr)

	token, states := s.LoginState.Subscribe()
	defer s.LoginState.Unsubscribe(token)
	signedIn, err := s.SignIn(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "a", Username: "alice"}, signedIn)
	assert.Equal(t, signedIn, <-states)

	// a new process finds the remembered identity
	restored := NewSession(kr, store)
	ok, err := restored.Restore()
	require.NoError(t, err)
	assert.True(t, ok)
	usr, err = restored.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, signedIn, usr)

	require.NoError(t, restored.SignOut())
	usr, _ = restored.CurrentUser(ctx)
	assert.Nil(t, usr)
	ok, err = NewSession(kr, store).Restore()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionSignInCreatesProfile(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	s := NewSession(keyring.NewArrayKeyring(nil), store)

	usr, err := s.SignIn(ctx, " dave ")
	require.NoError(t, err)
	assert.Equal(t, "dave", usr.Username)
	assert.NotEmpty(t, usr.ID)

	p, err := store.GetProfileByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, p.UserID)

	_, err = s.SignIn(ctx, "  ")
	var ev *domain.ErrValidation
	assert.ErrorAs(t, err, &ev)
}

func TestSessionRestoreForgetsGarbage(t *testing.T) {
	kr := keyring.NewArrayKeyring([]keyring.Item{{Key: sessionKey, Data: []byte("not json")}})
	s := NewSession(kr, setup(t))

	ok, err := s.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = kr.Get(sessionKey)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestSessionSignInLosesUsernameRace(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	// another client claims the username between the lookup & the insert
	store.onInsertProfile = func() { store.addProfile("racer", "dave") }
	store.errInsertProfile = fmt.Errorf("%w: profiles_username_key", domain.ErrDuplicateRecord)
	s := NewSession(keyring.NewArrayKeyring(nil), store)

	usr, err := s.SignIn(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "racer", Username: "dave"}, usr)
}

func TestSessionSignInInsertFailure(t *testing.T) {
	store := setup(t)
	store.errInsertProfile = errors.New("store unreachable")
	s := NewSession(keyring.NewArrayKeyring(nil), store)

	_, err := s.SignIn(context.Background(), "erin")
	require.ErrorContains(t, err, "store unreachable")
	usr, _ := s.CurrentUser(context.Background())
	assert.Nil(t, usr)
}

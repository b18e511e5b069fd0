package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	gosync "sync"

	"github.com/99designs/keyring"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/M0hammadUsman/campusboard/internal/sync"
	"github.com/google/uuid"
)

var (
	appName     = "Campusboard"
	serviceName = "Campusboard Session"
	sessionKey  = "Signed In User"
)

var _ domain.IdentityProvider = (*Session)(nil)

type LoginStateBroadcaster = sync.Broadcaster[*domain.User]

// Session remembers which user is signed in, across restarts via the OS keyring.
// Credentials are the hosted auth provider's business, only the identity is kept here.
type Session struct {
	kr       keyring.Keyring
	profiles domain.ProfileRepository
	// written with the new user on sign-in, nil on sign-out
	LoginState *LoginStateBroadcaster

	mu  gosync.RWMutex
	usr *domain.User
}

func OpenKeyring() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName:             serviceName,
		KeyCtlScope:             "user",
		LibSecretCollectionName: appName,
		WinCredPrefix:           appName,
	})
}

func NewSession(kr keyring.Keyring, profiles domain.ProfileRepository) *Session {
	return &Session{
		kr:         kr,
		profiles:   profiles,
		LoginState: sync.NewBroadcaster[*domain.User](),
	}
}

func (s *Session) CurrentUser(context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.usr == nil {
		return nil, nil
	}
	usr := *s.usr
	return &usr, nil
}

// Restore signs the user remembered in the keyring back in, reports false when there is none
func (s *Session) Restore() (bool, error) {
	item, err := s.kr.Get(sessionKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	var usr domain.User
	if err = json.Unmarshal(item.Data, &usr); err != nil || usr.ID == "" {
		// unreadable leftovers of an older version, forget them
		_ = s.kr.Remove(sessionKey)
		return false, nil
	}
	s.set(&usr)
	return true, nil
}

// SignIn resolves username to its profile & remembers it as the current user, a username seen for
// the first time gets a fresh profile
func (s *Session) SignIn(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		ev := domain.NewErrValidation()
		ev.AddError("username", "must be provided")
		return nil, ev
	}
	p, err := s.profiles.GetProfileByUsername(ctx, username)
	if errors.Is(err, domain.ErrRecordNotFound) {
		p = &domain.Profile{UserID: uuid.NewString(), Username: username}
		insertErr := s.profiles.InsertProfile(ctx, p)
		if insertErr == nil {
			slog.Info("profile created", "username", username)
		}
		// a concurrent sign-in may have won the username, whoever owns it now is the profile
		p, err = s.profiles.GetProfileByUsername(ctx, username)
		if err != nil && insertErr != nil {
			err = insertErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("signing in %q: %w", username, err)
	}
	usr := &domain.User{ID: p.UserID, Username: p.Username}
	data, err := json.Marshal(usr)
	if err != nil {
		return nil, err
	}
	item := keyring.Item{
		Key:         sessionKey,
		Data:        data,
		Label:       "user=" + usr.Username,
		Description: "identity of the signed in campusboard user",
	}
	if err = s.kr.Set(item); err != nil {
		return nil, err
	}
	s.set(usr)
	return usr, nil
}

func (s *Session) SignOut() error {
	if err := s.kr.Remove(sessionKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	s.set(nil)
	return nil
}

func (s *Session) set(usr *domain.User) {
	s.mu.Lock()
	s.usr = usr
	s.mu.Unlock()
	s.LoginState.Write(usr)
}

// Package auth maps usernames to stored credentials and manages the single
// active-session marker.
//
// Passwords are stored and compared as plain text. That is a deliberate,
// documented limitation of this local-first design, not an oversight to fix
// here: there is no network boundary and the storage medium is the user's own.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/events"
	"kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/store"
)

type credential struct {
	Password string `json:"password"`
}

// Service gates signup on credential existence and initializes the default
// user record through the User Data Store.
type Service struct {
	kv       storage.KV
	users    *store.Store
	notifier events.Notifier
	logger   *log.Logger
}

func New(kv storage.KV, users *store.Store, notifier events.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(0, "auth")
	}
	return &Service{kv: kv, users: users, notifier: notifier, logger: logger}
}

// Exists reports whether a credential record exists for the username.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	_, ok, err := s.kv.Get(ctx, store.AuthKey(username))
	if err != nil {
		return false, fmt.Errorf("%w: read credential: %v", core.ErrStorageUnavailable, err)
	}
	return ok, nil
}

// Signup stores a credential, initializes the default user record and
// establishes the session. Fails with ErrConflict if the username is taken.
func (s *Service) Signup(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", core.ErrMalformedInput)
	}

	exists, err := s.Exists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("signup %s: %w", username, core.ErrConflict)
	}

	raw, err := json.Marshal(credential{Password: password})
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := s.kv.Set(ctx, store.AuthKey(username), string(raw)); err != nil {
		return fmt.Errorf("%w: write credential: %v", core.ErrStorageUnavailable, err)
	}

	if err := s.users.Write(ctx, username, core.DefaultUserData()); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "User signed up", "username", username)
	return s.setSession(ctx, username)
}

// Login verifies the password by exact comparison and establishes the
// session. Absent users and wrong passwords are indistinguishable to callers.
func (s *Service) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)

	raw, ok, err := s.kv.Get(ctx, store.AuthKey(username))
	if err != nil {
		return fmt.Errorf("%w: read credential: %v", core.ErrStorageUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("login %s: %w", username, core.ErrInvalidCredentials)
	}

	var cred credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil || cred.Password != password {
		return fmt.Errorf("login %s: %w", username, core.ErrInvalidCredentials)
	}

	s.logger.InfoContext(ctx, "User logged in", "username", username)
	return s.setSession(ctx, username)
}

// Logout clears the session marker. Idempotent; always succeeds when the
// storage medium is reachable.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, store.SessionKey); err != nil {
		return fmt.Errorf("%w: clear session: %v", core.ErrStorageUnavailable, err)
	}
	s.notifySession(ctx, "")
	return nil
}

// CurrentSession returns the active username, if any. Storage failures fail
// closed to "no session".
func (s *Service) CurrentSession(ctx context.Context) (string, bool) {
	username, ok, err := s.kv.Get(ctx, store.SessionKey)
	if err != nil {
		s.logger.WarnContext(ctx, "Storage read failed, treating session as absent", "error", err)
		return "", false
	}
	return username, ok && username != ""
}

func (s *Service) setSession(ctx context.Context, username string) error {
	if err := s.kv.Set(ctx, store.SessionKey, username); err != nil {
		return fmt.Errorf("%w: set session: %v", core.ErrStorageUnavailable, err)
	}
	s.notifySession(ctx, username)
	return nil
}

func (s *Service) notifySession(ctx context.Context, username string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, events.NewEvent(events.KindSessionChanged, username)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish session event", "error", err)
	}
}

// Package store owns the per-user aggregate record. Every mutation reads the
// whole record, changes one part and writes the whole record back; there is
// no partial-field write path. Two concurrent writers can clobber each other
// and the last write wins — a documented limitation of the storage medium.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/events"
	"kharcha/internal/log"
	"kharcha/internal/storage"
)

// Store is the User Data Store. The cache and notifier are optional; a nil
// notifier means changes are not broadcast, never that operations fail.
type Store struct {
	kv       storage.KV
	cache    *cache.LRU[string]
	notifier events.Notifier
	logger   *log.Logger

	// Now and NewID are swappable for tests.
	Now   func() time.Time
	NewID func() string
}

func New(kv storage.KV, readCache *cache.LRU[string], notifier events.Notifier, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(0, "store")
	}
	return &Store{
		kv:       kv,
		cache:    readCache,
		notifier: notifier,
		logger:   logger,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

// Read returns the user's aggregate record. It never fails for an existing
// user: a missing or malformed record self-heals to defaults, nil
// sub-collections heal to empty slices, and the healed record is persisted
// before returning. Storage errors fail closed to the default record but
// write nothing back: a transient read failure must not replace a record
// that is still intact underneath.
func (s *Store) Read(ctx context.Context, username string) (core.UserData, error) {
	raw, ok, err := s.cachedOrFetch(ctx, username)
	if err != nil {
		s.logger.WarnContext(ctx, "Storage read failed, serving defaults",
			"username", username, "error", err)
		return core.DefaultUserData(), nil
	}
	if !ok {
		healed := core.DefaultUserData()
		s.persistHealed(ctx, username, healed)
		return healed, nil
	}

	var data core.UserData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.WarnContext(ctx, "User record malformed, resetting to defaults",
			"username", username, "error", err)
		healed := core.DefaultUserData()
		s.persistHealed(ctx, username, healed)
		return healed, nil
	}

	healed := false
	if data.Expenses == nil {
		data.Expenses = []core.Expense{}
		healed = true
	}
	if data.RecurringTemplates == nil {
		data.RecurringTemplates = []core.RecurringTemplate{}
		healed = true
	}
	if data.Budgets == nil {
		data.Budgets = []core.Budget{}
		healed = true
	}
	if healed {
		s.persistHealed(ctx, username, data)
	}

	return data, nil
}

// Write replaces the user's whole record. Last writer wins; there is no
// optimistic concurrency check.
func (s *Store) Write(ctx context.Context, username string, data core.UserData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}

	if err := s.kv.Set(ctx, UserKey(username), string(raw)); err != nil {
		return fmt.Errorf("%w: write user record: %v", core.ErrStorageUnavailable, err)
	}
	if s.cache != nil {
		s.cache.Set(UserKey(username), string(raw))
	}

	s.notify(ctx, events.NewEvent(events.KindUserDataChanged, username))
	return nil
}

// Invalidate drops a cached user record, typically in response to a change
// event from another process.
func (s *Store) Invalidate(username string) {
	if s.cache != nil {
		s.cache.Delete(UserKey(username))
	}
}

// cachedOrFetch keeps a failed read distinct from an absent record: only
// absence may trigger self-healing in the caller.
func (s *Store) cachedOrFetch(ctx context.Context, username string) (string, bool, error) {
	key := UserKey(username)
	if s.cache != nil {
		if raw, ok := s.cache.Get(key); ok {
			return raw, true, nil
		}
	}
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if ok && s.cache != nil {
		s.cache.Set(key, raw)
	}
	return raw, ok, nil
}

func (s *Store) persistHealed(ctx context.Context, username string, data core.UserData) {
	if err := s.Write(ctx, username, data); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist healed user record",
			"username", username, "error", err)
	}
}

func (s *Store) notify(ctx context.Context, e events.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, e); err != nil {
		// Notification is advisory; the write already succeeded.
		s.logger.WarnContext(ctx, "Failed to publish change event",
			"kind", e.Kind, "username", e.Username, "error", err)
	}
}

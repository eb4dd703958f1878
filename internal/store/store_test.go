package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/events"
	"kharcha/internal/storage"
)

var testNow = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

// newTestStore returns a store over a fresh in-memory KV with a fixed clock
// and sequential ids.
func newTestStore(t *testing.T) (*Store, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	s := New(kv, cache.NewLRU[string](16, time.Minute), nil, nil)
	s.Now = func() time.Time { return testNow }
	n := 0
	s.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s, kv
}

// failingKV wraps MemoryKV and fails every operation.
type failingKV struct{ *storage.MemoryKV }

func (f failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (f failingKV) Set(context.Context, string, string) error {
	return errors.New("disk gone")
}

func TestReadMissingRecordHealsToDefaults(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	data, err := s.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if data.Preferences.Currency != core.INR || len(data.Expenses) != 0 {
		t.Errorf("expected default record, got %+v", data)
	}

	// The healed record is persisted.
	if _, ok, _ := kv.Get(ctx, UserKey("alice")); !ok {
		t.Error("healed record was not written back")
	}
}

func TestReadMalformedRecordResets(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	if err := kv.Set(ctx, UserKey("alice"), "{not json"); err != nil {
		t.Fatal(err)
	}

	data, err := s.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if data.Preferences.Threshold != core.DefaultThreshold {
		t.Errorf("expected defaults after reset, got %+v", data.Preferences)
	}
}

func TestReadHealsNilSubCollections(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	// Record with preferences only; collections absent.
	if err := kv.Set(ctx, UserKey("alice"), `{"preferences":{"currency":"USD","threshold":100}}`); err != nil {
		t.Fatal(err)
	}

	data, err := s.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if data.Expenses == nil || data.RecurringTemplates == nil || data.Budgets == nil {
		t.Error("nil sub-collections should heal to empty slices")
	}
	if data.Preferences.Currency != core.USD {
		t.Errorf("existing preferences must survive healing, got %+v", data.Preferences)
	}
}

func TestReadFailsClosedOnStorageError(t *testing.T) {
	ctx := context.Background()
	kv := failingKV{storage.NewMemoryKV()}
	s := New(kv, nil, nil, nil)

	data, err := s.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read should fail closed, got error %v", err)
	}
	if data.Preferences.Currency != core.INR {
		t.Errorf("expected default record, got %+v", data)
	}
}

// readFailingKV fails reads but accepts writes, like a store whose read
// replica is down while the primary still takes traffic.
type readFailingKV struct{ *storage.MemoryKV }

func (f readFailingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("read timeout")
}

func TestReadErrorDoesNotOverwriteStoredRecord(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryKV()
	raw := `{"expenses":[{"id":"e1","amount":250,"category":"Food","date":"2025-01-10","createdAt":"2025-01-10T08:00:00Z"}],"preferences":{"currency":"EUR","threshold":5000,"theme":"system"},"recurringTemplates":[],"budgets":[]}`
	if err := inner.Set(ctx, UserKey("alice"), raw); err != nil {
		t.Fatal(err)
	}
	s := New(readFailingKV{inner}, nil, nil, nil)

	data, err := s.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read should fail closed, got error %v", err)
	}
	if len(data.Expenses) != 0 || data.Preferences.Currency != core.INR {
		t.Errorf("expected default record, got %+v", data)
	}

	// The intact record must survive even though writes would succeed.
	got, ok, err := inner.Get(ctx, UserKey("alice"))
	if err != nil || !ok {
		t.Fatalf("stored record vanished: ok=%v err=%v", ok, err)
	}
	if got != raw {
		t.Errorf("stored record was rewritten during a failed read:\n got %s\nwant %s", got, raw)
	}
}

func TestWriteSurfacesStorageError(t *testing.T) {
	ctx := context.Background()
	kv := failingKV{storage.NewMemoryKV()}
	s := New(kv, nil, nil, nil)

	err := s.Write(ctx, "alice", core.DefaultUserData())
	if !errors.Is(err, core.ErrStorageUnavailable) {
		t.Errorf("Write error = %v, want ErrStorageUnavailable", err)
	}
}

func TestWriteReachesBusSubscribers(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	var got []events.Event
	bus.Subscribe(func(e events.Event) { got = append(got, e) })

	s := New(storage.NewMemoryKV(), nil, bus, nil)
	if err := s.Write(ctx, "alice", core.DefaultUserData()); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != events.KindUserDataChanged || got[0].Username != "alice" {
		t.Errorf("events = %+v, want one user_data_changed for alice", got)
	}
}

func TestInvalidateDropsCachedRecord(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	if err := s.Write(ctx, "alice", core.DefaultUserData()); err != nil {
		t.Fatal(err)
	}

	// Simulate another process replacing the record behind the cache.
	raw := `{"expenses":[],"preferences":{"currency":"EUR","threshold":5000,"theme":"system"},"recurringTemplates":[],"budgets":[]}`
	if err := kv.Set(ctx, UserKey("alice"), raw); err != nil {
		t.Fatal(err)
	}

	// Cached read still sees the old record.
	data, _ := s.Read(ctx, "alice")
	if data.Preferences.Currency != core.INR {
		t.Fatalf("expected cached INR, got %v", data.Preferences.Currency)
	}

	s.Invalidate("alice")
	data, _ = s.Read(ctx, "alice")
	if data.Preferences.Currency != core.EUR {
		t.Errorf("expected EUR after invalidation, got %v", data.Preferences.Currency)
	}
}

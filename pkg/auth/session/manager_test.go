package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type mockStore struct {
	mu      sync.Mutex
	data    map[string]time.Duration
	fail    error
	expires int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]time.Duration)}
}

func (m *mockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = ttl
	return true, nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	m.expires++
	if _, ok := m.data[key]; !ok {
		return false, nil
	}
	m.data[key] = ttl
	return true, nil
}

func (m *mockStore) SessionKey(sessionID string) string {
	return fmt.Sprintf("sess:%s", sessionID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestResolveIssuesNewSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)

	id, created, err := manager.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !created {
		t.Fatal("expected a new session")
	}
	if !validID(id) {
		t.Fatalf("issued id has unexpected shape %q", id)
	}
	if store.data["sess:"+id] != time.Hour {
		t.Fatalf("expected session stored with ttl")
	}
}

func TestResolveKeepsKnownSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	id, _, err := manager.Resolve(ctx, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	again, created, err := manager.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("resolve known: %v", err)
	}
	if created || again != id {
		t.Fatalf("expected same session back, got %q created=%v", again, created)
	}
	if store.expires != 1 {
		t.Fatalf("expected ttl refresh, got %d expire calls", store.expires)
	}
}

func TestResolveReplacesUnknownAndMalformedIDs(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	forged, err := NewSessionID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	for _, presented := range []string{forged, "short", "../../etc/passwd"} {
		id, created, err := manager.Resolve(ctx, presented)
		if err != nil {
			t.Fatalf("resolve %q: %v", presented, err)
		}
		if !created || id == presented {
			t.Fatalf("expected replacement for %q", presented)
		}
	}
	if store.expires != 1 {
		t.Fatalf("only the well-formed id should hit the store, got %d", store.expires)
	}
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	store := newMockStore()
	store.fail = errors.New("redis down")
	manager := newTestManager(store)
	if _, _, err := manager.Resolve(context.Background(), ""); err == nil {
		t.Fatal("expected store error")
	}
}

package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

type prefixKeyer struct{}

func (prefixKeyer) AccessSessionKey(accessID string) string {
	return "session:access:" + accessID
}

func newTestManager() (*Manager, *memStore) {
	store := newMemStore()
	return &Manager{store: store, keyer: prefixKeyer{}, ttl: time.Hour}, store
}

func TestGenerateAndHasSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	token, err := m.Generate(ctx, "acc-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}

	ok, err := m.HasSession(ctx, "acc-1")
	if err != nil || !ok {
		t.Fatalf("expected session, got ok=%v err=%v", ok, err)
	}

	ok, err = m.HasSession(ctx, "acc-unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("unknown access id should have no session")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	token, _ := m.Generate(ctx, "acc-1")

	newID, newToken, err := m.Rotate(ctx, "acc-1", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newID == "acc-1" || newToken == token {
		t.Fatal("rotation must issue a fresh pair")
	}

	if ok, _ := m.HasSession(ctx, "acc-1"); ok {
		t.Fatal("old session should be gone")
	}
	if ok, _ := m.HasSession(ctx, newID); !ok {
		t.Fatal("new session should exist")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.Generate(ctx, "acc-1")
	if _, _, err := m.Rotate(ctx, "acc-1", "bogus"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.Generate(ctx, "acc-1")
	if err := m.Revoke(ctx, "acc-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := m.HasSession(ctx, "acc-1"); ok {
		t.Fatal("revoked session should be gone")
	}
}

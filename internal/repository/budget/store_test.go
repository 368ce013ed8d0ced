package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talentgrid/matchengine/internal/db"
)

type mockKVStore struct {
	data    map[string][]byte
	getErr  error
	incrErr error
	expErr  error

	expireKey string
	expireTTL time.Duration
	expireNX  bool
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.data[key] = []byte("1")
	return nil
}

func (m *mockKVStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expireKey = key
	m.expireTTL = ttl
	m.expireNX = nx
	return m.expErr
}

func TestIncrBy_SetsDailyTTL(t *testing.T) {
	kv := newMockKVStore()
	s := New(kv, 48*time.Hour, 62*24*time.Hour)

	err := s.IncrBy(context.Background(), "matchengine:budget:openai:daily:2026-08-29", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv.expireTTL != 48*time.Hour {
		t.Errorf("TTL = %v, want 48h for daily key", kv.expireTTL)
	}
	if !kv.expireNX {
		t.Error("Expire must use NX so repeat increments keep the original expiry")
	}
}

func TestIncrBy_SetsMonthlyTTL(t *testing.T) {
	kv := newMockKVStore()
	s := New(kv, 48*time.Hour, 62*24*time.Hour)

	err := s.IncrBy(context.Background(), "matchengine:budget:openai:monthly:2026-08", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv.expireTTL != 62*24*time.Hour {
		t.Errorf("TTL = %v, want 62 days for monthly key", kv.expireTTL)
	}
}

func TestIncrBy_StoreError(t *testing.T) {
	kv := newMockKVStore()
	kv.incrErr = errors.New("store down")
	s := New(kv, time.Hour, time.Hour)

	if err := s.IncrBy(context.Background(), "k", 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_MissingKeyIsZero(t *testing.T) {
	s := New(newMockKVStore(), time.Hour, time.Hour)

	val, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0 {
		t.Errorf("Get() = %d, want 0 for missing key", val)
	}
}

func TestGet_ParsesValue(t *testing.T) {
	kv := newMockKVStore()
	kv.data["k"] = []byte("12345")
	s := New(kv, time.Hour, time.Hour)

	val, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 12345 {
		t.Errorf("Get() = %d, want 12345", val)
	}
}

func TestGet_MalformedValue(t *testing.T) {
	kv := newMockKVStore()
	kv.data["k"] = []byte("not-a-number")
	s := New(kv, time.Hour, time.Hour)

	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGet_StoreError(t *testing.T) {
	kv := newMockKVStore()
	kv.getErr = errors.New("store down")
	s := New(kv, time.Hour, time.Hour)

	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error")
	}
}

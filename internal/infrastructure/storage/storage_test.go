package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/callanalyzer/dashboard/internal/core/ports"
)

func exerciseStorage(t *testing.T, s ports.ClientStorage) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "sid-1", "auth_token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "sid-1", "auth_token", "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "sid-1", "auth_token", "def"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, "sid-1", "auth_token")
	if err != nil || !ok || v != "def" {
		t.Fatalf("expected def, got %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := s.Get(ctx, "sid-2", "auth_token"); ok {
		t.Fatal("sessions must not share storage")
	}
	if err := s.Remove(ctx, "sid-1", "auth_token"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "sid-1", "auth_token"); ok {
		t.Fatal("expected key removed")
	}
	if err := s.Remove(ctx, "sid-1", "auth_token"); err != nil {
		t.Fatalf("Remove of missing key should succeed: %v", err)
	}
}

func TestMemory_ClientStorage(t *testing.T) {
	exerciseStorage(t, NewMemory(0))
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2025, 3, 24, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Set(context.Background(), "s", "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(context.Background(), "s", "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemory_PurgeExpired(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2025, 3, 24, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Set(ctx, "old", "auth_token", "a")
	_ = m.Set(ctx, "old", "auth_user", "u")
	now = now.Add(2 * time.Minute)
	_ = m.Set(ctx, "new", "auth_token", "b")

	n, err := m.PurgeExpired(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 purged entries, got %d (%v)", n, err)
	}
	if _, ok := m.data["old"]; ok {
		t.Fatal("expected empty session to be dropped")
	}
	if v, ok, _ := m.Get(ctx, "new", "auth_token"); !ok || v != "b" {
		t.Fatalf("live entry lost: %q ok=%v", v, ok)
	}
}

func openTestSQLite(t *testing.T, ttl time.Duration) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sessions.db"), ttl)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_ClientStorage(t *testing.T) {
	exerciseStorage(t, openTestSQLite(t, time.Hour))
}

func TestSQLite_ExpiryAndPurge(t *testing.T) {
	s := openTestSQLite(t, time.Minute)
	now := time.Date(2025, 3, 24, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Set(ctx, "s", "auth_token", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "s", "auth_token"); ok {
		t.Fatal("expected expired row to be hidden")
	}
	n, err := s.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 purged row, got %d (%v)", n, err)
	}
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RefreshStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRefreshStore(client, "tg", time.Second), mr
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-1", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "token-1" {
		t.Fatalf("expected token-1, got %q", got)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutOverwritesLastWriterWins(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-1", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "alice", "token-2", time.Minute); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "token-2" {
		t.Fatalf("expected last written token-2, got %q", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-1", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "alice"); err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEntryExpiresWithTTL(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-1", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := s.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL lapse, got %v", err)
	}
}

func TestPutValidatesInput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "", "token", time.Minute); err == nil {
		t.Fatal("expected error for empty subject")
	}
	if err := s.Put(ctx, "alice", "token", 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}

func TestRotateReplacesLiveToken(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-1", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Rotate(ctx, "alice", "token-1", "token-2", time.Minute); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "token-2" {
		t.Fatalf("expected rotated token-2, got %q", got)
	}
}

func TestRotateMismatchKeepsLiveToken(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-1", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Rotate(ctx, "alice", "stale-token", "token-2", time.Minute); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected ErrTokenMismatch, got %v", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "token-1" {
		t.Fatalf("expected live token unchanged, got %q", got)
	}
}

func TestRotateAbsentEntry(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Rotate(context.Background(), "nobody", "token-1", "token-2", time.Minute)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOperationsReportUnavailableWhenRedisDown(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-1", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	mr.Close()

	if err := s.Put(ctx, "alice", "token-2", time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Put, got %v", err)
	}
	if _, err := s.Get(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Get, got %v", err)
	}
	if err := s.Delete(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Delete, got %v", err)
	}
	if err := s.Rotate(ctx, "alice", "token-1", "token-2", time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Rotate, got %v", err)
	}
}

func TestKeysAreNamespacedPerSubject(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "alice", "token-a", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "bob", "token-b", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	gotA, err := s.Get(ctx, "alice")
	if err != nil || gotA != "token-a" {
		t.Fatalf("expected token-a for alice, got %q err %v", gotA, err)
	}
	gotB, err := s.Get(ctx, "bob")
	if err != nil || gotB != "token-b" {
		t.Fatalf("expected token-b for bob, got %q err %v", gotB, err)
	}
}

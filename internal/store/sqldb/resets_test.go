package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quiverapp/quiver-server/internal/domain"
	"github.com/quiverapp/quiver-server/internal/store"
)

func makeTestReset(id, userID, tokenHash string, ttl time.Duration) *domain.PasswordReset {
	now := time.Now()
	return &domain.PasswordReset{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestCreateAndGetPasswordReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")

	reset := makeTestReset("reset-1", "user-1", "hash-abc", time.Hour)
	if err := s.CreatePasswordReset(ctx, reset); err != nil {
		t.Fatalf("CreatePasswordReset: %v", err)
	}

	got, err := s.GetPasswordReset(ctx, "hash-abc")
	if err != nil {
		t.Fatalf("GetPasswordReset: %v", err)
	}
	if got.ID != "reset-1" {
		t.Errorf("ID: got %q, want %q", got.ID, "reset-1")
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID: got %q, want %q", got.UserID, "user-1")
	}
	if got.UsedAt != nil {
		t.Error("UsedAt: expected nil for fresh token")
	}
	if !got.IsUsable(time.Now()) {
		t.Error("fresh token should be usable")
	}
}

func TestGetPasswordResetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPasswordReset(context.Background(), "missing-hash")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePasswordResetDuplicateHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")

	if err := s.CreatePasswordReset(ctx, makeTestReset("reset-1", "user-1", "same-hash", time.Hour)); err != nil {
		t.Fatalf("CreatePasswordReset: %v", err)
	}

	err := s.CreatePasswordReset(ctx, makeTestReset("reset-2", "user-1", "same-hash", time.Hour))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMarkPasswordResetUsed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	if err := s.CreatePasswordReset(ctx, makeTestReset("reset-1", "user-1", "hash-abc", time.Hour)); err != nil {
		t.Fatalf("CreatePasswordReset: %v", err)
	}

	if err := s.MarkPasswordResetUsed(ctx, "reset-1"); err != nil {
		t.Fatalf("MarkPasswordResetUsed: %v", err)
	}

	got, err := s.GetPasswordReset(ctx, "hash-abc")
	if err != nil {
		t.Fatalf("GetPasswordReset: %v", err)
	}
	if got.UsedAt == nil {
		t.Fatal("UsedAt: expected non-nil after use")
	}
	if got.IsUsable(time.Now()) {
		t.Error("used token should not be usable")
	}

	// A token can only be consumed once.
	err = s.MarkPasswordResetUsed(ctx, "reset-1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second use: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteExpiredPasswordResets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")

	if err := s.CreatePasswordReset(ctx, makeTestReset("live", "user-1", "hash-live", time.Hour)); err != nil {
		t.Fatalf("CreatePasswordReset live: %v", err)
	}
	if err := s.CreatePasswordReset(ctx, makeTestReset("dead", "user-1", "hash-dead", -time.Hour)); err != nil {
		t.Fatalf("CreatePasswordReset dead: %v", err)
	}

	n, err := s.DeleteExpiredPasswordResets(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredPasswordResets: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count: got %d, want 1", n)
	}

	if _, err := s.GetPasswordReset(ctx, "hash-live"); err != nil {
		t.Errorf("live token should survive: %v", err)
	}
	if _, err := s.GetPasswordReset(ctx, "hash-dead"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("dead token should be gone, got %v", err)
	}
}

package stores

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOTPChallengeConsumeMatch(t *testing.T) {
	store := NewOTPChallengeStore(newStoreRedis(t), "tc", 3)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", "p1", "483920", time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Consume(ctx, "sess-1", "p1", "483920"); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	// single use: the same code cannot be consumed twice
	if err := store.Consume(ctx, "sess-1", "p1", "483920"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("second consume: got %v", err)
	}
}

func TestOTPChallengeWrongCodeCountsAttempts(t *testing.T) {
	store := NewOTPChallengeStore(newStoreRedis(t), "tc", 2)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", "p1", "483920", time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Consume(ctx, "sess-1", "p1", "000000"); !errors.Is(err, ErrChallengeCode) {
		t.Fatalf("first wrong: got %v", err)
	}
	if err := store.Consume(ctx, "sess-1", "p1", "000000"); !errors.Is(err, ErrChallengeExceeded) {
		t.Fatalf("second wrong: got %v", err)
	}
	// the cap invalidated the challenge even for the right code
	if err := store.Consume(ctx, "sess-1", "p1", "483920"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("after cap: got %v", err)
	}
}

func TestOTPChallengeWrongPrincipalIsMismatch(t *testing.T) {
	store := NewOTPChallengeStore(newStoreRedis(t), "tc", 3)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", "p1", "483920", time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Consume(ctx, "sess-1", "p2", "483920"); !errors.Is(err, ErrChallengeCode) {
		t.Fatalf("wrong principal: got %v", err)
	}
}

func TestOTPChallengeUnknownSession(t *testing.T) {
	store := NewOTPChallengeStore(newStoreRedis(t), "tc", 3)
	if err := store.Consume(context.Background(), "never-saved", "p1", "123456"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("got %v, want ErrChallengeNotFound", err)
	}
}

func TestOTPChallengeSaveReplacesPrevious(t *testing.T) {
	store := NewOTPChallengeStore(newStoreRedis(t), "tc", 3)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", "p1", "111111", time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "sess-1", "p1", "222222", time.Minute); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if err := store.Consume(ctx, "sess-1", "p1", "111111"); !errors.Is(err, ErrChallengeCode) {
		t.Fatalf("stale code: got %v", err)
	}
	if err := store.Consume(ctx, "sess-1", "p1", "222222"); err != nil {
		t.Fatalf("current code: got %v", err)
	}
}

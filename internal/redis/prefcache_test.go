package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AniiitaCode/email-srv/internal/db"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := &Client{rdb: rdb, logger: zap.NewNop()}

	return client, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testPreference(userID uuid.UUID) *db.Preference {
	return &db.Preference{
		ID:           uuid.New(),
		UserID:       userID,
		Enabled:      true,
		ContactEmail: "user@example.com",
		CreatedOn:    time.Now().UTC().Truncate(time.Second),
		UpdatedOn:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestPreferenceCache_MissReturnsNil(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewPreferenceCache(client, zap.NewNop())

	pref, err := cache.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pref != nil {
		t.Fatalf("expected nil on cache miss, got: %+v", pref)
	}
}

func TestPreferenceCache_SetThenGet(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewPreferenceCache(client, zap.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	stored := testPreference(userID)

	if err := cache.Set(ctx, stored); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cached preference")
	}
	if got.ID != stored.ID {
		t.Errorf("expected id %s, got %s", stored.ID, got.ID)
	}
	if got.ContactEmail != "user@example.com" {
		t.Errorf("expected contact email to round-trip, got %s", got.ContactEmail)
	}
	if !got.Enabled {
		t.Error("expected enabled flag to round-trip")
	}
}

func TestPreferenceCache_Invalidate(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewPreferenceCache(client, zap.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	if err := cache.Set(ctx, testPreference(userID)); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Invalidate(ctx, userID); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	got, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss after invalidate, got: %+v", got)
	}
}

func TestPreferenceCache_ExpiresAfterTTL(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewPreferenceCache(client, zap.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	if err := cache.Set(ctx, testPreference(userID)); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(PreferenceTTL + time.Second)

	got, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestPreferenceCache_UserIsolation(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewPreferenceCache(client, zap.NewNop())
	ctx := context.Background()

	userA := uuid.New()
	userB := uuid.New()
	if err := cache.Set(ctx, testPreference(userA)); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := cache.Get(ctx, userB)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected miss for a different user")
	}
}

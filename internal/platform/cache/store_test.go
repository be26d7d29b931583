package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestStore_SetGet(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Fatal("hit on empty store")
	}

	s.Set(ctx, "key", "value")
	got, ok := s.Get(ctx, "key")
	if !ok || got != "value" {
		t.Fatalf("unexpected get: got=%v ok=%t", got, ok)
	}

	// Empty keys are ignored, not stored.
	s.Set(ctx, "", "value")
	if _, ok := s.Get(ctx, ""); ok {
		t.Fatal("empty key was stored")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	s := NewStore(time.Minute)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }
	ctx := context.Background()

	s.Set(ctx, "key", "value")
	if _, ok := s.Get(ctx, "key"); !ok {
		t.Fatal("fresh item missing")
	}

	current = current.Add(61 * time.Second)
	if _, ok := s.Get(ctx, "key"); ok {
		t.Fatal("expired item served")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(0)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }
	ctx := context.Background()

	s.Set(ctx, "key", "value")
	current = current.Add(24 * time.Hour)
	if _, ok := s.Get(ctx, "key"); !ok {
		t.Fatal("item with zero TTL expired")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	s.Set(ctx, "rules:pool-1", 1)
	s.Set(ctx, "rules:pool-2", 2)
	s.Set(ctx, "memberships:user-1", 3)

	s.DeletePrefix(ctx, "rules:")

	if _, ok := s.Get(ctx, "rules:pool-1"); ok {
		t.Fatal("prefixed key survived")
	}
	if _, ok := s.Get(ctx, "rules:pool-2"); ok {
		t.Fatal("prefixed key survived")
	}
	if _, ok := s.Get(ctx, "memberships:user-1"); !ok {
		t.Fatal("unrelated key deleted")
	}

	// A blank prefix must not wipe the store.
	s.DeletePrefix(ctx, "")
	if _, ok := s.Get(ctx, "memberships:user-1"); !ok {
		t.Fatal("blank prefix wiped the store")
	}
}

func TestStore_GetOrLoad(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		got, err := s.GetOrLoad(ctx, "key", loader)
		if err != nil {
			t.Fatalf("get or load: %v", err)
		}
		if got != "loaded" {
			t.Fatalf("unexpected value: %v", got)
		}
	}
	if loads != 1 {
		t.Fatalf("loader calls: got=%d want=%d", loads, 1)
	}
}

func TestStore_GetOrLoadErrorNotCached(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	calls := 0
	failing := func(context.Context) (any, error) {
		calls++
		return nil, fmt.Errorf("backend down")
	}

	if _, err := s.GetOrLoad(ctx, "key", failing); err == nil {
		t.Fatal("expected error")
	}

	got, err := s.GetOrLoad(ctx, "key", func(context.Context) (any, error) { return "recovered", nil })
	if err != nil {
		t.Fatalf("get or load after failure: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("failed load cached: got=%v", got)
	}
	if calls != 1 {
		t.Fatalf("failing loader calls: got=%d want=%d", calls, 1)
	}
}

func TestStore_GetOrLoadRequiresLoader(t *testing.T) {
	s := NewStore(time.Minute)

	if _, err := s.GetOrLoad(context.Background(), "key", nil); err == nil {
		t.Fatal("expected error for nil loader")
	}
}

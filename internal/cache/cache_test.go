package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, _ := m.Get(ctx, "missing"); ok {
		t.Fatal("Get on empty cache reported a hit")
	}

	value := []byte(`{"rows":60}`)
	if err := m.Set(ctx, "fp", value, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'x'

	got, ok, err := m.Get(ctx, "fp")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(got) != `{"rows":60}` {
		t.Fatalf("Get = %q, cached value aliased the caller's slice", got)
	}

	got[0] = 'x'
	again, _, _ := m.Get(ctx, "fp")
	if string(again) != `{"rows":60}` {
		t.Fatalf("Get = %q, returned slice aliased the cached value", again)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "fp", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, ok, _ := m.Get(ctx, "fp"); !ok {
		t.Fatal("entry expired early")
	}
	now = now.Add(time.Second)
	if _, ok, _ := m.Get(ctx, "fp"); ok {
		t.Fatal("entry still present after its ttl")
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want expired entry evicted", m.Len())
	}
}

func TestMemoryClose(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "a", []byte("1"), 0)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Fatalf("Len after Close = %d", m.Len())
	}
}

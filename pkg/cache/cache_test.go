package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	defer c.Close()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)

	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "1" {
		t.Fatalf("Get(a) = %q, %v, %v", data, hit, err)
	}

	// a was used last, so b is evicted.
	c.Set(ctx, "c", []byte("3"), 0)
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("least recently used entry should be evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("recently used entry should survive")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Delete(ctx, "a")
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("deleted entry should miss")
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	in := []byte("abc")
	c.Set(ctx, "k", in, 0)
	in[0] = 'x'

	out, _, _ := c.Get(ctx, "k")
	if string(out) != "abc" {
		t.Errorf("stored value changed with the caller's slice: %q", out)
	}
	out[1] = 'y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed with a returned slice: %q", again)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(4)
	c.now = func() time.Time { return now }

	c.Set(ctx, "short", []byte("x"), time.Minute)
	c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(30 * time.Second)
	if _, hit, _ := c.Get(ctx, "short"); !hit {
		t.Error("entry should live until its ttl")
	}

	now = now.Add(time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want the expired entry dropped", c.Len())
	}
}

func TestKey(t *testing.T) {
	k1, err := Key("layout", 330.0, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := Key("layout", 330.0, []string{"a", "b"})
	k3, _ := Key("layout", 331.0, []string{"a", "b"})

	if k1 != k2 {
		t.Error("Key should be deterministic")
	}
	if k1 == k3 {
		t.Error("different parts should give different keys")
	}
	if len(k1) != len("layout:")+64 || k1[:7] != "layout:" {
		t.Errorf("key = %q, want layout:<sha256>", k1)
	}

	if _, err := Key("bad", func() {}); err == nil {
		t.Error("unencodable parts should fail")
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if n := len(Hash(nil)); n != 64 {
		t.Errorf("Hash length = %d, want 64", n)
	}
}

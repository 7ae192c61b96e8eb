package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type item struct {
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoadJSONCachesValue(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return &item{Name: "alice"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(c, ctx, "user:1", time.Minute, load)
		if err != nil {
			t.Fatalf("GetOrLoadJSON: %v", err)
		}
		if got == nil || got.Name != "alice" {
			t.Fatalf("got %+v, want alice", got)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls: got %d, want 1", calls)
	}
	if !mr.Exists("taskhub:user:1") {
		t.Error("expected prefixed key in redis")
	}

	if err := c.Del(ctx, "user:1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := GetOrLoadJSON(c, ctx, "user:1", time.Minute, load); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("loader calls after Del: got %d, want 2", calls)
	}
}

func TestGetOrLoadJSONNegativeCache(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return nil, nil
	}
	for i := 0; i < 2; i++ {
		got, err := GetOrLoadJSON(c, ctx, "user:missing", time.Minute, load)
		if err != nil || got != nil {
			t.Fatalf("got %+v, %v; want nil, nil", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls: got %d, want 1", calls)
	}
}

func TestGetOrLoadJSONErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")
	_, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*item, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if mr.Exists("taskhub:k") {
		t.Error("error result must not be cached")
	}
}

func TestNilCachePassThrough(t *testing.T) {
	var c *Cache
	calls := 0
	for i := 0; i < 2; i++ {
		got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*item, error) {
			calls++
			return &item{Name: "x"}, nil
		})
		if err != nil || got.Name != "x" {
			t.Fatalf("got %+v, %v", got, err)
		}
	}
	if calls != 2 {
		t.Errorf("loader calls: got %d, want 2", calls)
	}
	if err := c.Del(context.Background(), "k"); err != nil {
		t.Errorf("nil Del: %v", err)
	}
}

func TestRedisDownFallsBackToLoader(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*item, error) {
		return &item{Name: "db"}, nil
	})
	if err != nil || got.Name != "db" {
		t.Fatalf("got %+v, %v", got, err)
	}
}

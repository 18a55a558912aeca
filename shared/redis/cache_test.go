package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ---- fake client ----

// memClient implements the three commands ViewCache uses; any other call
// panics on the nil embedded interface.
type memClient struct {
	goredis.Cmdable
	data    map[string]string
	ttls    map[string]time.Duration
	readErr error
}

func newMemClient() *memClient {
	return &memClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memClient) Get(_ context.Context, key string) *goredis.StringCmd {
	if m.readErr != nil {
		return goredis.NewStringResult("", m.readErr)
	}
	v, ok := m.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (m *memClient) Set(_ context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func (m *memClient) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

type view struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestViewCache(t *testing.T) {
	ctx := context.Background()
	client := newMemClient()
	cache := NewViewCache[view](client, "view:", time.Hour, nil)

	if _, ok := cache.Get(ctx, "1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	cache.Set(ctx, "1", &view{ID: "1", Name: "one"})
	if _, ok := client.data["view:1"]; !ok {
		t.Fatalf("expected key to be prefixed, got %v", client.data)
	}
	if client.ttls["view:1"] != time.Hour {
		t.Fatalf("expected ttl to be applied")
	}

	got, ok := cache.Get(ctx, "1")
	if !ok || got.Name != "one" {
		t.Fatalf("expected hit, got %+v ok=%v", got, ok)
	}

	cache.Delete(ctx, "1")
	if _, ok := cache.Get(ctx, "1"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestViewCache_FailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	client := newMemClient()
	cache := NewViewCache[view](client, "view:", 0, nil)

	client.data["view:bad"] = "{not json"
	if _, ok := cache.Get(ctx, "bad"); ok {
		t.Fatalf("expected corrupt entry to be a miss")
	}

	client.readErr = errors.New("connection reset")
	if _, ok := cache.Get(ctx, "anything"); ok {
		t.Fatalf("expected read error to be a miss")
	}
}

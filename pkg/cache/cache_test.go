package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestNew_FallsBackToNoop(t *testing.T) {
	c := New(nil, "catalog")
	if _, ok := c.(Noop); !ok {
		t.Fatalf("expected Noop cache without a client, got %T", c)
	}

	var dst []string
	found, err := c.Get(context.Background(), "bikes", &dst)
	if found || err != nil {
		t.Errorf("Noop.Get() = %v, %v; want miss", found, err)
	}
	if err := c.Set(context.Background(), "bikes", []string{"a"}, time.Minute); err != nil {
		t.Errorf("Noop.Set() error = %v", err)
	}
	if err := c.Delete(context.Background(), "bikes"); err != nil {
		t.Errorf("Noop.Delete() error = %v", err)
	}
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{prefix: "rentabike", key: "bikes:available", want: "rentabike:bikes:available"},
		{prefix: "", key: "bikes:available", want: "bikes:available"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := NewRedisCache(client, tt.prefix)
			if got := c.key(tt.key); got != tt.want {
				t.Errorf("key() = %q, want %q", got, tt.want)
			}
		})
	}
}

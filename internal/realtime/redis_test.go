package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(_ context.Context, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestRedisNotifierRelaysToLocal(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	local := &recorder{}
	n := NewRedisNotifier(client, "", local, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := n.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	n.Publish(ctx, "dashboard:update")
	deadline := time.Now().Add(2 * time.Second)
	for len(local.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("event not relayed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := local.snapshot()[0]; got != "dashboard:update" {
		t.Fatalf("event = %q", got)
	}
}

func TestRedisNotifierFallsBackWhenRedisDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	defer client.Close()
	srv.Close()

	local := &recorder{}
	n := NewRedisNotifier(client, "events", local, nil)
	n.Publish(context.Background(), "analytics:update")
	if got := local.snapshot(); len(got) != 1 || got[0] != "analytics:update" {
		t.Fatalf("events = %v", got)
	}
}

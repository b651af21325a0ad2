package security

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestAlerter(t *testing.T) (*Alerter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAlerter(client, "test:alerts"), mr
}

func TestObserveTriggersAtThreshold(t *testing.T) {
	alerter, _ := newTestAlerter(t)
	var last Alert
	for i := 0; i < 10; i++ {
		result, err := alerter.Observe(context.Background(), "auth.login", "fail", "127.0.0.1")
		if err != nil {
			t.Fatalf("observe: %v", err)
		}
		if i < 9 && result.Triggered {
			t.Fatalf("triggered early at %d", i+1)
		}
		last = result
	}
	if !last.Triggered || last.Count != 10 {
		t.Fatalf("alert = %+v", last)
	}
}

func TestObserveCountsPerIP(t *testing.T) {
	alerter, _ := newTestAlerter(t)
	for i := 0; i < 9; i++ {
		_, _ = alerter.Observe(context.Background(), "auth.login", "fail", "10.0.0.1")
	}
	result, err := alerter.Observe(context.Background(), "auth.login", "fail", "10.0.0.2")
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if result.Triggered || result.Count != 1 {
		t.Fatalf("alert = %+v", result)
	}
}

func TestObserveNewWindowResets(t *testing.T) {
	alerter, _ := newTestAlerter(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	alerter.now = func() time.Time { return now }
	for i := 0; i < 10; i++ {
		_, _ = alerter.Observe(context.Background(), "auth.register", "fail", "1.2.3.4")
	}
	now = now.Add(5 * time.Minute)
	result, err := alerter.Observe(context.Background(), "auth.register", "fail", "1.2.3.4")
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("count = %d, want 1", result.Count)
	}
}

func TestObserveIgnoresUnknownRule(t *testing.T) {
	alerter, _ := newTestAlerter(t)
	result, err := alerter.Observe(context.Background(), "auth.login", "success", "127.0.0.1")
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if result.Triggered || result.Count != 0 {
		t.Fatalf("unexpected alert %+v", result)
	}
}

func TestNilAlerterObservesNothing(t *testing.T) {
	var alerter *Alerter
	if NewAlerter(nil, "") != nil {
		t.Fatalf("expected nil alerter without client")
	}
	result, err := alerter.Observe(context.Background(), "auth.login", "fail", "127.0.0.1")
	if err != nil || result.Triggered {
		t.Fatalf("nil alerter: %+v %v", result, err)
	}
}

func TestObserveRedisDown(t *testing.T) {
	alerter, mr := newTestAlerter(t)
	mr.Close()
	if _, err := alerter.Observe(context.Background(), "auth.login", "fail", "127.0.0.1"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "resxai:alerts"

var alertCounterScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Alert is the outcome of observing one security event.
type Alert struct {
	Triggered bool
	Count     int64
	Threshold int64
	Window    time.Duration
}

// Alerter counts failed security events per client IP and reports when a
// rule's threshold is reached within its window.
type Alerter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewAlerter returns nil when client is nil. A nil Alerter observes nothing.
func NewAlerter(client *redis.Client, prefix string) *Alerter {
	if client == nil {
		return nil
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Alerter{client: client, prefix: prefix, now: time.Now}
}

// Observe records the event and reports whether its threshold was reached.
func (a *Alerter) Observe(ctx context.Context, event, outcome, ip string) (Alert, error) {
	if a == nil {
		return Alert{}, nil
	}
	threshold, window, ok := rule(event, outcome)
	if !ok {
		return Alert{}, nil
	}
	slot := a.now().UTC().UnixMilli() / window.Milliseconds()
	key := fmt.Sprintf("%s:%s:%s:%s:%d", a.prefix, segment(event), segment(outcome), segment(ip), slot)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := alertCounterScript.Run(ctx, a.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return Alert{}, fmt.Errorf("count %s: %w", event, err)
	}
	return Alert{
		Triggered: count >= threshold,
		Count:     count,
		Threshold: threshold,
		Window:    window,
	}, nil
}

func rule(event, outcome string) (int64, time.Duration, bool) {
	if outcome == "rate_limited" {
		return 20, time.Minute, true
	}
	if outcome != "fail" {
		return 0, 0, false
	}
	switch event {
	case "auth.login", "auth.register":
		return 10, 5 * time.Minute, true
	case "authorize", "ws.connect":
		return 25, 5 * time.Minute, true
	default:
		return 0, 0, false
	}
}

func segment(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return "unknown"
	}
	return strings.NewReplacer(":", "_", "|", "_", " ", "_").Replace(in)
}

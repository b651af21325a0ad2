// Package realtime tells connected dashboards that their data changed.
// Events are hints to re-fetch; missed events are never replayed.
package realtime

import "context"

// Notifier publishes a named change event. Implementations must not block
// the caller on slow observers and never report delivery failures.
type Notifier interface {
	Publish(ctx context.Context, event string)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string) {}
